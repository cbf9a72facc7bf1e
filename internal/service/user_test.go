package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/taskmanager-server/internal/mocks"
	"github.com/dtroode/taskmanager-server/internal/model"
	"github.com/dtroode/taskmanager-server/internal/testutil"
)

type userDeps struct {
	store    *mocks.UserStore
	tx       *mocks.Transactor
	txUsers  *mocks.UserStore
	txTasks  *mocks.TaskStore
	hasher   *mocks.PasswordHasher
	storage  *mocks.Storage
	notifier *mocks.Notifier
}

func newTestUsers() (*Users, userDeps) {
	d := userDeps{
		store:    &mocks.UserStore{},
		txUsers:  &mocks.UserStore{},
		txTasks:  &mocks.TaskStore{},
		hasher:   &mocks.PasswordHasher{},
		storage:  &mocks.Storage{},
		notifier: &mocks.Notifier{},
	}
	d.tx = &mocks.Transactor{Stores: model.TxStores{Users: d.txUsers, Tasks: d.txTasks}}

	log := testutil.MakeNoopLogger()
	return NewUsers(d.store, d.tx, NewLifecycle(log), d.hasher, d.storage, d.notifier, log), d
}

func TestUsers_Create(t *testing.T) {
	ctx := context.Background()
	draft := model.UserDraft{Name: " Ann ", Email: "ANN@example.com", Password: "secret12", Age: 30}

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		s, d := newTestUsers()
		d.hasher.On("Hash", "secret12").Return("hash", nil)
		d.store.On("Create", mock.Anything, mock.Anything).Return(model.User{}, model.ErrEmailTaken)

		_, err := s.Create(ctx, draft)
		require.Error(t, err)
		assert.Equal(t, model.KindConflict, model.KindOf(err))
		d.notifier.AssertNotCalled(t, "Welcome", mock.Anything, mock.Anything)
	})

	t.Run("notification failure does not fail signup", func(t *testing.T) {
		s, d := newTestUsers()
		created := model.User{ID: uuid.New(), Name: "Ann", Email: "ann@example.com", Age: 30}
		d.hasher.On("Hash", "secret12").Return("hash", nil)
		d.store.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool {
			return u.Name == "Ann" && u.Email == "ann@example.com" && u.Age == 30
		})).Return(created, nil)
		d.notifier.On("Welcome", mock.Anything, created).Return(errors.New("smtp down"))

		user, err := s.Create(ctx, draft)
		require.NoError(t, err)
		assert.Equal(t, created, user)
		d.notifier.AssertExpectations(t)
	})
}

func TestUsers_Update(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("password is re-hashed", func(t *testing.T) {
		s, d := newTestUsers()
		pw := "newsecret"
		hash := "newhash"
		d.hasher.On("Hash", "newsecret").Return(hash, nil)
		d.store.On("Update", mock.Anything, id, model.UserChanges{PasswordHash: &hash}).Return(model.User{ID: id}, nil)

		_, err := s.Update(ctx, id, model.UserUpdate{Password: &pw})
		require.NoError(t, err)
		d.store.AssertExpectations(t)
	})

	t.Run("name only leaves the hash alone", func(t *testing.T) {
		s, d := newTestUsers()
		name := " Bob "
		trimmed := "Bob"
		d.store.On("Update", mock.Anything, id, model.UserChanges{Name: &trimmed}).Return(model.User{ID: id, Name: "Bob"}, nil)

		user, err := s.Update(ctx, id, model.UserUpdate{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Bob", user.Name)
		d.hasher.AssertNotCalled(t, "Hash", mock.Anything)
	})

	t.Run("taken email is a conflict", func(t *testing.T) {
		s, d := newTestUsers()
		email := "bob@example.com"
		d.store.On("Update", mock.Anything, id, mock.Anything).Return(model.User{}, model.ErrEmailTaken)

		_, err := s.Update(ctx, id, model.UserUpdate{Email: &email})
		assert.Equal(t, model.KindConflict, model.KindOf(err))
	})

	t.Run("invalid age", func(t *testing.T) {
		s, d := newTestUsers()
		age := -1

		_, err := s.Update(ctx, id, model.UserUpdate{Age: &age})
		assert.Equal(t, model.KindValidation, model.KindOf(err))
		d.store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUsers_Delete(t *testing.T) {
	ctx := context.Background()
	user := model.User{ID: uuid.New(), Email: "ann@example.com", AvatarKey: "avatars/ann.png"}

	t.Run("cascades to tasks and cleans up after commit", func(t *testing.T) {
		s, d := newTestUsers()
		d.tx.On("WithinTx", mock.Anything).Return(nil)
		d.txTasks.On("DeleteAllByOwner", mock.Anything, user.ID).Return(int64(3), nil).Once()
		d.txUsers.On("Delete", mock.Anything, user.ID).Return(user, nil).Once()
		d.storage.On("Delete", mock.Anything, "avatars/ann.png").Return(errors.New("gone"))
		d.notifier.On("Cancellation", mock.Anything, user).Return(errors.New("smtp down"))

		deleted, err := s.Delete(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user, deleted)

		d.txTasks.AssertExpectations(t)
		d.txUsers.AssertExpectations(t)
		d.storage.AssertExpectations(t)
		d.notifier.AssertExpectations(t)
		d.store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("cascade failure keeps the user", func(t *testing.T) {
		s, d := newTestUsers()
		d.tx.On("WithinTx", mock.Anything).Return(nil)
		d.txTasks.On("DeleteAllByOwner", mock.Anything, user.ID).Return(int64(0), errors.New("deadlock"))

		_, err := s.Delete(ctx, user.ID)
		require.Error(t, err)
		assert.Equal(t, model.KindInternal, model.KindOf(err))
		d.txUsers.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		d.notifier.AssertNotCalled(t, "Cancellation", mock.Anything, mock.Anything)
	})

	t.Run("unknown user", func(t *testing.T) {
		s, d := newTestUsers()
		d.tx.On("WithinTx", mock.Anything).Return(nil)
		d.txTasks.On("DeleteAllByOwner", mock.Anything, user.ID).Return(int64(0), nil)
		d.txUsers.On("Delete", mock.Anything, user.ID).Return(model.User{}, model.ErrNotFound)

		_, err := s.Delete(ctx, user.ID)
		assert.Equal(t, model.KindNotFound, model.KindOf(err))
	})

	t.Run("transaction cannot start", func(t *testing.T) {
		s, d := newTestUsers()
		d.tx.On("WithinTx", mock.Anything).Return(errors.New("pool closed"))

		_, err := s.Delete(ctx, user.ID)
		assert.Equal(t, model.KindInternal, model.KindOf(err))
		d.txTasks.AssertNotCalled(t, "DeleteAllByOwner", mock.Anything, mock.Anything)
	})
}

func TestUsers_Avatar(t *testing.T) {
	ctx := context.Background()
	p := model.Principal{User: model.User{ID: uuid.New()}, Token: "tok"}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10))))

	t.Run("set stores a normalized png", func(t *testing.T) {
		s, d := newTestUsers()
		key := "avatars/" + p.User.ID.String() + ".png"
		d.storage.On("Upload", mock.Anything, key, mock.Anything, mock.AnythingOfType("int64"), "image/png").Return(nil)
		d.store.On("Update", mock.Anything, p.User.ID, model.UserChanges{AvatarKey: &key}).
			Return(model.User{ID: p.User.ID, AvatarKey: key}, nil)

		user, err := s.SetAvatar(ctx, p, "me.png", int64(buf.Len()), bytes.NewReader(buf.Bytes()))
		require.NoError(t, err)
		assert.True(t, user.HasAvatar())
		d.storage.AssertExpectations(t)
	})

	t.Run("set rejects non images", func(t *testing.T) {
		s, d := newTestUsers()

		_, err := s.SetAvatar(ctx, p, "cv.pdf", 10, strings.NewReader("pdf"))
		assert.Equal(t, model.KindValidation, model.KindOf(err))
		d.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("clear drops the reference and the object", func(t *testing.T) {
		s, d := newTestUsers()
		withAvatar := model.Principal{User: model.User{ID: p.User.ID, AvatarKey: "avatars/x.png"}}
		noAvatar := ""
		d.store.On("Update", mock.Anything, p.User.ID, model.UserChanges{AvatarKey: &noAvatar}).Return(model.User{ID: p.User.ID}, nil)
		d.storage.On("Delete", mock.Anything, "avatars/x.png").Return(nil)

		user, err := s.ClearAvatar(ctx, withAvatar)
		require.NoError(t, err)
		assert.False(t, user.HasAvatar())
		d.storage.AssertExpectations(t)
	})

	t.Run("get without avatar is not found", func(t *testing.T) {
		s, d := newTestUsers()
		d.store.On("GetByID", mock.Anything, p.User.ID).Return(model.User{ID: p.User.ID}, nil)

		_, err := s.GetAvatar(ctx, p.User.ID)
		assert.Equal(t, model.KindNotFound, model.KindOf(err))
	})

	t.Run("get streams the object", func(t *testing.T) {
		s, d := newTestUsers()
		d.store.On("GetByID", mock.Anything, p.User.ID).Return(model.User{ID: p.User.ID, AvatarKey: "k"}, nil)
		d.storage.On("Download", mock.Anything, "k").Return(io.NopCloser(strings.NewReader("png")), nil)

		rc, err := s.GetAvatar(ctx, p.User.ID)
		require.NoError(t, err)
		defer rc.Close()
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "png", string(b))
	})
}

func TestUsers_Find(t *testing.T) {
	ctx := context.Background()
	s, d := newTestUsers()
	d.store.On("GetByEmail", mock.Anything, "ann@example.com").Return(model.User{}, model.ErrNotFound)
	d.store.On("GetByID", mock.Anything, mock.Anything).Return(model.User{}, errors.New("db down"))

	_, err := s.FindByEmail(ctx, " ANN@example.com")
	assert.Equal(t, model.KindNotFound, model.KindOf(err))

	_, err = s.FindByID(ctx, uuid.New())
	assert.Equal(t, model.KindInternal, model.KindOf(err))
}
