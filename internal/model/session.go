package model

import (
	"context"

	"github.com/google/uuid"
)

// SessionStore persists the active session set of each user as token hashes.
type SessionStore interface {
	// Add appends a session and evicts the oldest ones so that at most
	// limit remain. A limit below one disables eviction.
	Add(ctx context.Context, userID uuid.UUID, tokenHash []byte, limit int) error
	// FindUser returns the user only if tokenHash is in their session set.
	FindUser(ctx context.Context, userID uuid.UUID, tokenHash []byte) (User, error)
	Remove(ctx context.Context, userID uuid.UUID, tokenHash []byte) error
	RemoveAll(ctx context.Context, userID uuid.UUID) error
}

// Principal is the identity resolved from a request's session token.
// It is handed explicitly to every operation acting on the user's behalf.
type Principal struct {
	User  User
	Token string
}
