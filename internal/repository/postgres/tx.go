package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dtroode/taskmanager-server/internal/model"
)

// DBTX is the subset of database/sql used by the repositories.
// Both *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var _ model.Transactor = (*Transactor)(nil)

// Transactor runs functions against repositories bound to one transaction.
type Transactor struct {
	db *sql.DB
}

func NewTransactor(db *sql.DB) *Transactor {
	return &Transactor{db: db}
}

// WithinTx commits when fn returns nil and rolls back on error or panic.
// Panics are rethrown after the rollback.
func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context, stores model.TxStores) error) (err error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", cerr)
		}
	}()

	err = fn(ctx, model.TxStores{
		Users:    NewUserRepository(tx),
		Tasks:    NewTaskRepository(tx),
		Sessions: NewSessionRepository(tx),
	})
	return err
}
