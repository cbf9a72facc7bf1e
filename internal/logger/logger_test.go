package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithFormat(t *testing.T) {
	t.Parallel()

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		l := NewWithFormat(0, "JSON", &buf)
		l.With("component", "test").Info("hello", "user_id", "42")

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "hello", rec["msg"])
		assert.Equal(t, "test", rec["component"])
		assert.Equal(t, "42", rec["user_id"])
	})

	t.Run("text filters by level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		l := NewWithFormat(4, "text", &buf)
		l.Info("dropped")
		l.Warn("kept")

		assert.NotContains(t, buf.String(), "dropped")
		assert.Contains(t, buf.String(), "msg=kept")
	})
}
