package mocks

import (
	"context"
	"io"
	"net"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/taskmanager-server/internal/model"
)

var (
	_ model.TokenManager   = (*TokenManager)(nil)
	_ model.PasswordHasher = (*PasswordHasher)(nil)
	_ model.Notifier       = (*Notifier)(nil)
	_ model.Storage        = (*Storage)(nil)
	_ model.SecurityLayer  = (*SecurityLayer)(nil)
	_ model.ContextManager = (*ContextManager)(nil)
)

// TokenManager mocks model.TokenManager.
type TokenManager struct {
	mock.Mock
}

func (m *TokenManager) Generate(userID uuid.UUID) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *TokenManager) Parse(token string) (uuid.UUID, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// PasswordHasher mocks model.PasswordHasher.
type PasswordHasher struct {
	mock.Mock
}

func (m *PasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *PasswordHasher) Compare(hash, password string) error {
	args := m.Called(hash, password)
	return args.Error(0)
}

// Notifier mocks model.Notifier.
type Notifier struct {
	mock.Mock
}

func (m *Notifier) Welcome(ctx context.Context, user model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *Notifier) Cancellation(ctx context.Context, user model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// Storage mocks model.Storage.
type Storage struct {
	mock.Mock
}

func (m *Storage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, key, reader, size, contentType)
	return args.Error(0)
}

func (m *Storage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

func (m *Storage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *Storage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// SecurityLayer mocks model.SecurityLayer.
type SecurityLayer struct {
	mock.Mock
}

// NewSecurityLayer creates a SecurityLayer mock that asserts its
// expectations when the test ends.
func NewSecurityLayer(t testingT) *SecurityLayer {
	m := &SecurityLayer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *SecurityLayer) Listen(protocol, addr string) (net.Listener, error) {
	args := m.Called(protocol, addr)
	l, _ := args.Get(0).(net.Listener)
	return l, args.Error(1)
}

// ContextManager mocks model.ContextManager.
type ContextManager struct {
	mock.Mock
}

func (m *ContextManager) SetPrincipalToContext(ctx context.Context, principal model.Principal) context.Context {
	args := m.Called(ctx, principal)
	return args.Get(0).(context.Context)
}

func (m *ContextManager) GetPrincipalFromContext(ctx context.Context) (model.Principal, bool) {
	args := m.Called(ctx)
	return args.Get(0).(model.Principal), args.Bool(1)
}
