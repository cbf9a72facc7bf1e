package service

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/taskmanager-server/internal/logger"
	"github.com/dtroode/taskmanager-server/internal/model"
)

const unauthenticatedMessage = "please authenticate"

// Sessions issues, validates and revokes session tokens. A token is valid
// only while its hash is in the owner's session set.
type Sessions struct {
	store       model.SessionStore
	tokens      model.TokenManager
	maxSessions int
	logger      *logger.Logger
}

func NewSessions(store model.SessionStore, tokens model.TokenManager, maxSessions int, logger *logger.Logger) *Sessions {
	return &Sessions{
		store:       store,
		tokens:      tokens,
		maxSessions: maxSessions,
		logger:      logger,
	}
}

// Issue signs a new token for the user and adds it to the session set,
// evicting the oldest sessions beyond the configured cap.
func (s *Sessions) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := s.tokens.Generate(userID)
	if err != nil {
		s.logger.Error("Session service: failed to generate token",
			"user_id", userID,
			"error", err.Error())
		return "", model.NewInternalError("failed to generate token", err)
	}

	if err := s.store.Add(ctx, userID, hashToken(token), s.maxSessions); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", model.NewNotFoundError("user not found")
		}
		s.logger.Error("Session service: failed to store session",
			"user_id", userID,
			"error", err.Error())
		return "", model.NewInternalError("failed to store session", err)
	}

	s.logger.Debug("Session service: session issued", "user_id", userID)

	return token, nil
}

// Validate resolves a presented token to its Principal. Every failure is
// reported as the same Unauthorized error.
func (s *Sessions) Validate(ctx context.Context, token string) (model.Principal, error) {
	if token == "" {
		return model.Principal{}, model.NewUnauthorizedError(unauthenticatedMessage)
	}

	userID, err := s.tokens.Parse(token)
	if err != nil {
		s.logger.Debug("Session service: token rejected", "error", err.Error())
		return model.Principal{}, model.NewUnauthorizedError(unauthenticatedMessage)
	}

	user, err := s.store.FindUser(ctx, userID, hashToken(token))
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			s.logger.Error("Session service: failed to look up session",
				"user_id", userID,
				"error", err.Error())
		}
		return model.Principal{}, model.NewUnauthorizedError(unauthenticatedMessage)
	}

	return model.Principal{User: user, Token: token}, nil
}

// Revoke removes exactly one session.
func (s *Sessions) Revoke(ctx context.Context, userID uuid.UUID, token string) error {
	if err := s.store.Remove(ctx, userID, hashToken(token)); err != nil {
		return model.NewInternalError("failed to remove session", fmt.Errorf("remove session: %w", err))
	}
	return nil
}

// RevokeAll empties the user's session set.
func (s *Sessions) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.RemoveAll(ctx, userID); err != nil {
		return model.NewInternalError("failed to remove sessions", fmt.Errorf("remove all sessions: %w", err))
	}
	return nil
}

func hashToken(token string) []byte {
	h := sha256.Sum256([]byte(token))
	return h[:]
}
