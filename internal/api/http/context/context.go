package context

import (
	"context"

	"github.com/dtroode/taskmanager-server/internal/model"
)

type principalKey struct{}

var _ model.ContextManager = (*Manager)(nil)

// Manager stores the authenticated Principal in a request context.
type Manager struct{}

// NewManager creates a new context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetPrincipalToContext returns a copy of ctx carrying principal.
func (m *Manager) SetPrincipalToContext(ctx context.Context, principal model.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// GetPrincipalFromContext returns the Principal set by the access gate.
func (m *Manager) GetPrincipalFromContext(ctx context.Context) (model.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(model.Principal)
	return p, ok
}
