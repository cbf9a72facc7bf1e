package model

import "context"

// Notifier tells users about account lifecycle events.
type Notifier interface {
	Welcome(ctx context.Context, user User) error
	Cancellation(ctx context.Context, user User) error
}
