// Package mocks holds testify mocks for the interfaces in internal/model.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/taskmanager-server/internal/model"
)

var (
	_ model.UserStore    = (*UserStore)(nil)
	_ model.TaskStore    = (*TaskStore)(nil)
	_ model.SessionStore = (*SessionStore)(nil)
	_ model.Transactor   = (*Transactor)(nil)
)

// UserStore mocks model.UserStore.
type UserStore struct {
	mock.Mock
}

func (m *UserStore) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) Update(ctx context.Context, id uuid.UUID, changes model.UserChanges) (model.User, error) {
	args := m.Called(ctx, id, changes)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) Delete(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

// TaskStore mocks model.TaskStore.
type TaskStore struct {
	mock.Mock
}

func (m *TaskStore) Create(ctx context.Context, task model.Task) (model.Task, error) {
	args := m.Called(ctx, task)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *TaskStore) GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (model.Task, error) {
	args := m.Called(ctx, ownerID, id)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *TaskStore) ListByOwner(ctx context.Context, ownerID uuid.UUID, query model.TaskQuery) ([]model.Task, error) {
	args := m.Called(ctx, ownerID, query)
	tasks, _ := args.Get(0).([]model.Task)
	return tasks, args.Error(1)
}

func (m *TaskStore) UpdateByOwner(ctx context.Context, ownerID, id uuid.UUID, update model.TaskUpdate) (model.Task, error) {
	args := m.Called(ctx, ownerID, id, update)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *TaskStore) DeleteByOwner(ctx context.Context, ownerID, id uuid.UUID) (model.Task, error) {
	args := m.Called(ctx, ownerID, id)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *TaskStore) DeleteAllByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

// SessionStore mocks model.SessionStore.
type SessionStore struct {
	mock.Mock
}

func (m *SessionStore) Add(ctx context.Context, userID uuid.UUID, tokenHash []byte, limit int) error {
	args := m.Called(ctx, userID, tokenHash, limit)
	return args.Error(0)
}

func (m *SessionStore) FindUser(ctx context.Context, userID uuid.UUID, tokenHash []byte) (model.User, error) {
	args := m.Called(ctx, userID, tokenHash)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *SessionStore) Remove(ctx context.Context, userID uuid.UUID, tokenHash []byte) error {
	args := m.Called(ctx, userID, tokenHash)
	return args.Error(0)
}

func (m *SessionStore) RemoveAll(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// Transactor mocks model.Transactor. When the expectation returns a nil
// error, fn runs against Stores and its result is returned.
type Transactor struct {
	mock.Mock
	Stores model.TxStores
}

func (m *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context, stores model.TxStores) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx, m.Stores)
}
