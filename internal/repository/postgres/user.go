package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dtroode/taskmanager-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

const userColumns = `id, name, email, age, password_hash, COALESCE(avatar_key, ''), created_at, updated_at`

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func scanUser(row scanner) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Age, &u.PasswordHash, &u.AvatarKey, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (id, name, email, age, password_hash)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING ` + userColumns

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	saved, err := scanUser(r.db.QueryRowContext(ctx, query,
		user.ID, user.Name, user.Email, user.Age, user.PasswordHash,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, model.ErrEmailTaken
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return saved, nil
}

// Update applies the non-nil changes in a single statement.
func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, changes model.UserChanges) (model.User, error) {
	if changes.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if changes.Name != nil {
		set("name", *changes.Name)
	}
	if changes.Email != nil {
		set("email", *changes.Email)
	}
	if changes.Age != nil {
		set("age", *changes.Age)
	}
	if changes.PasswordHash != nil {
		set("password_hash", *changes.PasswordHash)
	}
	if changes.AvatarKey != nil {
		set("avatar_key", sql.NullString{String: *changes.AvatarKey, Valid: *changes.AvatarKey != ""})
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), userColumns)

	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		if isUniqueViolation(err) {
			return model.User{}, model.ErrEmailTaken
		}
		return model.User{}, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// Delete removes the user row. Sessions go with it; tasks must be removed first.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `DELETE FROM users WHERE id = $1 RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to delete user: %w", err)
	}

	return user, nil
}
