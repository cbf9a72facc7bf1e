package model

import "context"

// ContextManager carries the request's Principal from the access gate to
// the handler that serves the request.
type ContextManager interface {
	SetPrincipalToContext(ctx context.Context, principal Principal) context.Context
	GetPrincipalFromContext(ctx context.Context) (Principal, bool)
}
