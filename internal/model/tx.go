package model

import "context"

// TxStores are stores bound to a single database transaction.
type TxStores struct {
	Users    UserStore
	Tasks    TaskStore
	Sessions SessionStore
}

// Transactor runs fn in a transaction that commits only if fn returns nil.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, stores TxStores) error) error
}
