package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/dtroode/taskmanager-server/internal/avatar"
	"github.com/dtroode/taskmanager-server/internal/logger"
	"github.com/dtroode/taskmanager-server/internal/model"
)

// Users manages accounts: credentials, profile and avatar.
type Users struct {
	store     model.UserStore
	tx        model.Transactor
	lifecycle *Lifecycle
	hasher    model.PasswordHasher
	storage   model.Storage
	notifier  model.Notifier
	logger    *logger.Logger
}

func NewUsers(
	store model.UserStore,
	tx model.Transactor,
	lifecycle *Lifecycle,
	hasher model.PasswordHasher,
	storage model.Storage,
	notifier model.Notifier,
	logger *logger.Logger,
) *Users {
	return &Users{
		store:     store,
		tx:        tx,
		lifecycle: lifecycle,
		hasher:    hasher,
		storage:   storage,
		notifier:  notifier,
		logger:    logger,
	}
}

// Create validates the draft, stores the user with a hashed password and
// sends the welcome notification.
func (s *Users) Create(ctx context.Context, draft model.UserDraft) (model.User, error) {
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return model.User{}, err
	}

	hash, err := s.hasher.Hash(draft.Password)
	if err != nil {
		return model.User{}, model.NewInternalError("failed to hash password", err)
	}

	user, err := s.store.Create(ctx, model.User{
		ID:           uuid.New(),
		Name:         draft.Name,
		Email:        draft.Email,
		Age:          draft.Age,
		PasswordHash: hash,
	})
	if errors.Is(err, model.ErrEmailTaken) {
		s.logger.Info("User service: email already taken", "email", draft.Email)
		return model.User{}, model.NewConflictError("email is already taken", err)
	}
	if err != nil {
		s.logger.Error("User service: failed to create user",
			"email", draft.Email,
			"error", err.Error())
		return model.User{}, model.NewInternalError("failed to create user", err)
	}

	s.logger.Info("User service: user created", "user_id", user.ID)

	if err := s.notifier.Welcome(ctx, user); err != nil {
		s.logger.Warn("User service: failed to send welcome notification",
			"user_id", user.ID,
			"error", err.Error())
	}

	return user, nil
}

func (s *Users) FindByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	user, err := s.store.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, model.NewNotFoundError("user not found")
	}
	if err != nil {
		return model.User{}, model.NewInternalError("failed to get user", err)
	}
	return user, nil
}

func (s *Users) FindByEmail(ctx context.Context, email string) (model.User, error) {
	user, err := s.store.GetByEmail(ctx, model.NormalizeEmail(email))
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, model.NewNotFoundError("user not found")
	}
	if err != nil {
		return model.User{}, model.NewInternalError("failed to get user", err)
	}
	return user, nil
}

// Update applies a profile change. A new password is validated and re-hashed.
func (s *Users) Update(ctx context.Context, id uuid.UUID, update model.UserUpdate) (model.User, error) {
	update.Normalize()
	if err := update.Validate(); err != nil {
		return model.User{}, err
	}

	changes := model.UserChanges{
		Name:  update.Name,
		Email: update.Email,
		Age:   update.Age,
	}
	if update.Password != nil {
		hash, err := s.hasher.Hash(*update.Password)
		if err != nil {
			return model.User{}, model.NewInternalError("failed to hash password", err)
		}
		changes.PasswordHash = &hash
	}

	return s.applyChanges(ctx, id, changes)
}

// Delete removes the user and everything they own in one transaction. The
// avatar object and the cancellation notice are handled after commit and
// never fail the call.
func (s *Users) Delete(ctx context.Context, id uuid.UUID) (model.User, error) {
	var deleted model.User

	err := s.tx.WithinTx(ctx, func(ctx context.Context, stores model.TxStores) error {
		if _, err := s.lifecycle.OnIdentityDeleted(ctx, stores.Tasks, id); err != nil {
			return err
		}

		user, err := stores.Users.Delete(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		deleted = user
		return nil
	})
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, model.NewNotFoundError("user not found")
	}
	if err != nil {
		s.logger.Error("User service: failed to delete user",
			"user_id", id,
			"error", err.Error())
		return model.User{}, model.NewInternalError("failed to delete user", err)
	}

	s.logger.Info("User service: user deleted", "user_id", id)

	if deleted.HasAvatar() {
		if err := s.storage.Delete(ctx, deleted.AvatarKey); err != nil {
			s.logger.Warn("User service: failed to delete avatar object",
				"user_id", id,
				"key", deleted.AvatarKey,
				"error", err.Error())
		}
	}

	if err := s.notifier.Cancellation(ctx, deleted); err != nil {
		s.logger.Warn("User service: failed to send cancellation notification",
			"user_id", id,
			"error", err.Error())
	}

	return deleted, nil
}

// SetAvatar validates the upload, normalizes it to a square PNG and stores it.
func (s *Users) SetAvatar(ctx context.Context, p model.Principal, filename string, size int64, r io.Reader) (model.User, error) {
	if err := avatar.Check(filename, size); err != nil {
		return model.User{}, err
	}

	img, err := avatar.Normalize(r)
	if err != nil {
		return model.User{}, err
	}

	key := avatar.Key(p.User.ID)
	if err := s.storage.Upload(ctx, key, bytes.NewReader(img), int64(len(img)), avatar.ContentType); err != nil {
		s.logger.Error("User service: failed to upload avatar",
			"user_id", p.User.ID,
			"error", err.Error())
		return model.User{}, model.NewInternalError("failed to upload avatar", err)
	}

	return s.applyChanges(ctx, p.User.ID, model.UserChanges{AvatarKey: &key})
}

// ClearAvatar removes the avatar reference and, best-effort, the object.
func (s *Users) ClearAvatar(ctx context.Context, p model.Principal) (model.User, error) {
	noAvatar := ""
	user, err := s.applyChanges(ctx, p.User.ID, model.UserChanges{AvatarKey: &noAvatar})
	if err != nil {
		return model.User{}, err
	}

	if p.User.HasAvatar() {
		if err := s.storage.Delete(ctx, p.User.AvatarKey); err != nil {
			s.logger.Warn("User service: failed to delete avatar object",
				"user_id", p.User.ID,
				"key", p.User.AvatarKey,
				"error", err.Error())
		}
	}

	return user, nil
}

// GetAvatar opens the stored avatar of any user. The caller closes it.
func (s *Users) GetAvatar(ctx context.Context, userID uuid.UUID) (io.ReadCloser, error) {
	user, err := s.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.HasAvatar() {
		return nil, model.NewNotFoundError("avatar not found")
	}

	rc, err := s.storage.Download(ctx, user.AvatarKey)
	if errors.Is(err, model.ErrNotFound) {
		return nil, model.NewNotFoundError("avatar not found")
	}
	if err != nil {
		return nil, model.NewInternalError("failed to download avatar", err)
	}
	return rc, nil
}

func (s *Users) applyChanges(ctx context.Context, id uuid.UUID, changes model.UserChanges) (model.User, error) {
	user, err := s.store.Update(ctx, id, changes)
	switch {
	case errors.Is(err, model.ErrNotFound):
		return model.User{}, model.NewNotFoundError("user not found")
	case errors.Is(err, model.ErrEmailTaken):
		return model.User{}, model.NewConflictError("email is already taken", err)
	case err != nil:
		s.logger.Error("User service: failed to update user",
			"user_id", id,
			"error", err.Error())
		return model.User{}, model.NewInternalError("failed to update user", err)
	}
	return user, nil
}
