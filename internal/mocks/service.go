package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/taskmanager-server/internal/model"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// AuthService mocks the HTTP-facing authentication service.
type AuthService struct {
	mock.Mock
}

// NewAuthService creates an AuthService mock that asserts its expectations
// when the test ends.
func NewAuthService(t testingT) *AuthService {
	m := &AuthService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *AuthService) Signup(ctx context.Context, draft model.UserDraft) (model.User, string, error) {
	args := m.Called(ctx, draft)
	return args.Get(0).(model.User), args.String(1), args.Error(2)
}

func (m *AuthService) Login(ctx context.Context, email, password string) (model.User, string, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(model.User), args.String(1), args.Error(2)
}

func (m *AuthService) Logout(ctx context.Context, p model.Principal) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *AuthService) LogoutAll(ctx context.Context, p model.Principal) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// UserService mocks the HTTP-facing account service.
type UserService struct {
	mock.Mock
}

// NewUserService creates a UserService mock that asserts its expectations
// when the test ends.
func NewUserService(t testingT) *UserService {
	m := &UserService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *UserService) Update(ctx context.Context, id uuid.UUID, update model.UserUpdate) (model.User, error) {
	args := m.Called(ctx, id, update)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserService) Delete(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserService) SetAvatar(ctx context.Context, p model.Principal, filename string, size int64, r io.Reader) (model.User, error) {
	args := m.Called(ctx, p, filename, size, r)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserService) ClearAvatar(ctx context.Context, p model.Principal) (model.User, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserService) GetAvatar(ctx context.Context, userID uuid.UUID) (io.ReadCloser, error) {
	args := m.Called(ctx, userID)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

// TaskService mocks the HTTP-facing task service.
type TaskService struct {
	mock.Mock
}

// NewTaskService creates a TaskService mock that asserts its expectations
// when the test ends.
func NewTaskService(t testingT) *TaskService {
	m := &TaskService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *TaskService) Create(ctx context.Context, p model.Principal, draft model.TaskDraft) (model.Task, error) {
	args := m.Called(ctx, p, draft)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *TaskService) Get(ctx context.Context, p model.Principal, id uuid.UUID) (model.Task, error) {
	args := m.Called(ctx, p, id)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *TaskService) List(ctx context.Context, p model.Principal, query model.TaskQuery) ([]model.Task, error) {
	args := m.Called(ctx, p, query)
	tasks, _ := args.Get(0).([]model.Task)
	return tasks, args.Error(1)
}

func (m *TaskService) Update(ctx context.Context, p model.Principal, id uuid.UUID, update model.TaskUpdate) (model.Task, error) {
	args := m.Called(ctx, p, id, update)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *TaskService) Delete(ctx context.Context, p model.Principal, id uuid.UUID) (model.Task, error) {
	args := m.Called(ctx, p, id)
	return args.Get(0).(model.Task), args.Error(1)
}

// SessionValidator mocks the token check behind the access gate.
type SessionValidator struct {
	mock.Mock
}

// NewSessionValidator creates a SessionValidator mock that asserts its
// expectations when the test ends.
func NewSessionValidator(t testingT) *SessionValidator {
	m := &SessionValidator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *SessionValidator) Validate(ctx context.Context, token string) (model.Principal, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(model.Principal), args.Error(1)
}

// Pinger mocks a dependency probed by health checks.
type Pinger struct {
	mock.Mock
}

// NewPinger creates a Pinger mock that asserts its expectations when the
// test ends.
func NewPinger(t testingT) *Pinger {
	m := &Pinger{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Pinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
