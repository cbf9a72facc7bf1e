package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_Roundtrip(t *testing.T) {
	j := NewJWT("secret")
	u := uuid.New()

	tok, err := j.Generate(u)
	require.NoError(t, err)

	got, err := j.Parse(tok)
	require.NoError(t, err)
	require.Equal(t, u, got)
}

func TestJWT_TokensAreUnique(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	j := &JWT{secretKey: "secret", now: func() time.Time { return fixed }}
	u := uuid.New()

	first, err := j.Generate(u)
	require.NoError(t, err)
	second, err := j.Generate(u)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestJWT_NoExpiry(t *testing.T) {
	old := time.Now().Add(-5 * 365 * 24 * time.Hour)
	j := &JWT{secretKey: "secret", now: func() time.Time { return old }}
	u := uuid.New()

	tok, err := j.Generate(u)
	require.NoError(t, err)

	got, err := NewJWT("secret").Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, u, got)
}

func TestJWT_Parse_Rejects(t *testing.T) {
	u := uuid.New()
	valid, err := NewJWT("secret").Generate(u)
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: u}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		key   string
	}{
		{name: "wrong secret", token: valid, key: "other"},
		{name: "garbage", token: "not.a.jwt", key: "secret"},
		{name: "empty", token: "", key: "secret"},
		{name: "unsigned", token: noneToken, key: "secret"},
		{name: "no subject", token: noSubject, key: "secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewJWT(tt.key).Parse(tt.token)
			assert.Error(t, err)
		})
	}
}
