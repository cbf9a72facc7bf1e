package service

import (
	"context"
	"errors"
	"sync"

	"github.com/dtroode/taskmanager-server/internal/logger"
	"github.com/dtroode/taskmanager-server/internal/model"
)

// Auth verifies credentials and opens sessions.
type Auth struct {
	users    model.UserStore
	accounts *Users
	sessions *Sessions
	hasher   model.PasswordHasher
	logger   *logger.Logger

	decoyOnce sync.Once
	decoyHash string
}

// decoyPassword is hashed once at the configured cost. Logins for unknown
// emails compare against it so both failure paths pay for one bcrypt check.
const decoyPassword = "taskmanager-login-decoy"

func NewAuth(users model.UserStore, accounts *Users, sessions *Sessions, hasher model.PasswordHasher, logger *logger.Logger) *Auth {
	return &Auth{
		users:    users,
		accounts: accounts,
		sessions: sessions,
		hasher:   hasher,
		logger:   logger,
	}
}

// Signup creates the account and opens its first session.
func (a *Auth) Signup(ctx context.Context, draft model.UserDraft) (model.User, string, error) {
	user, err := a.accounts.Create(ctx, draft)
	if err != nil {
		return model.User{}, "", err
	}

	token, err := a.sessions.Issue(ctx, user.ID)
	if err != nil {
		return model.User{}, "", err
	}

	return user, token, nil
}

// Login checks the credentials and opens a new session. Unknown emails and
// wrong passwords both fail as Unauthorized.
func (a *Auth) Login(ctx context.Context, email, password string) (model.User, string, error) {
	email = model.NormalizeEmail(email)

	a.logger.Debug("Auth service: login attempt", "email", email)

	user, err := a.users.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		a.compareDecoy(password)
		return model.User{}, "", model.NewUnauthorizedError("unable to login")
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return model.User{}, "", model.NewInternalError("failed to get user by email", err)
	}

	if err := a.hasher.Compare(user.PasswordHash, password); err != nil {
		a.logger.Info("Auth service: password mismatch", "user_id", user.ID)
		return model.User{}, "", model.NewUnauthorizedError("email or password incorrect")
	}

	token, err := a.sessions.Issue(ctx, user.ID)
	if err != nil {
		return model.User{}, "", err
	}

	a.logger.Info("Auth service: user logged in", "user_id", user.ID)

	return user, token, nil
}

func (a *Auth) compareDecoy(password string) {
	a.decoyOnce.Do(func() {
		hash, err := a.hasher.Hash(decoyPassword)
		if err != nil {
			a.logger.Error("Auth service: failed to hash decoy password", "error", err.Error())
			return
		}
		a.decoyHash = hash
	})
	if a.decoyHash != "" {
		_ = a.hasher.Compare(a.decoyHash, password)
	}
}

// Logout ends the session the principal authenticated with.
func (a *Auth) Logout(ctx context.Context, p model.Principal) error {
	return a.sessions.Revoke(ctx, p.User.ID, p.Token)
}

// LogoutAll ends every session of the principal's user.
func (a *Auth) LogoutAll(ctx context.Context, p model.Principal) error {
	return a.sessions.RevokeAll(ctx, p.User.ID)
}
