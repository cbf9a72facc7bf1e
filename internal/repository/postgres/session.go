package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/taskmanager-server/internal/model"
)

var _ model.SessionStore = (*SessionRepository)(nil)

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// Add inserts the session and trims the user's set to limit rows in the same
// statement. The DELETE runs on the statement snapshot, so it never sees the
// row being inserted and keeps the newest limit-1 older sessions.
func (r *SessionRepository) Add(ctx context.Context, userID uuid.UUID, tokenHash []byte, limit int) error {
	if limit < 1 {
		const query = `INSERT INTO user_sessions (id, user_id, token_hash) VALUES ($1, $2, $3)`
		if _, err := r.db.ExecContext(ctx, query, uuid.New(), userID, tokenHash); err != nil {
			return r.mapAddError(err)
		}
		return nil
	}

	const query = `
		WITH inserted AS (
			INSERT INTO user_sessions (id, user_id, token_hash) VALUES ($1, $2, $3)
			RETURNING id
		)
		DELETE FROM user_sessions
		WHERE user_id = $2
		  AND id NOT IN (
			SELECT id FROM user_sessions
			WHERE user_id = $2
			ORDER BY created_at DESC, id DESC
			LIMIT $4
		  )`

	if _, err := r.db.ExecContext(ctx, query, uuid.New(), userID, tokenHash, limit-1); err != nil {
		return r.mapAddError(err)
	}
	return nil
}

func (r *SessionRepository) mapAddError(err error) error {
	if isForeignKeyViolation(err) {
		return model.ErrNotFound
	}
	return fmt.Errorf("failed to add session: %w", err)
}

func (r *SessionRepository) FindUser(ctx context.Context, userID uuid.UUID, tokenHash []byte) (model.User, error) {
	const query = `
		SELECT u.id, u.name, u.email, u.age, u.password_hash, COALESCE(u.avatar_key, ''), u.created_at, u.updated_at
		FROM users u
		JOIN user_sessions s ON s.user_id = u.id
		WHERE u.id = $1 AND s.token_hash = $2`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, userID, tokenHash))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to find session user: %w", err)
	}

	return user, nil
}

func (r *SessionRepository) Remove(ctx context.Context, userID uuid.UUID, tokenHash []byte) error {
	const query = `DELETE FROM user_sessions WHERE user_id = $1 AND token_hash = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, tokenHash); err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

func (r *SessionRepository) RemoveAll(ctx context.Context, userID uuid.UUID) error {
	const query = `DELETE FROM user_sessions WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to remove sessions: %w", err)
	}
	return nil
}
