package model

import "github.com/google/uuid"

// TokenManager signs and verifies session tokens.
type TokenManager interface {
	Generate(userID uuid.UUID) (string, error)
	Parse(token string) (uuid.UUID, error)
}

// PasswordHasher hashes and checks account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
