package postgres

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var (
	userRowColumns = []string{"id", "name", "email", "age", "password_hash", "avatar_key", "created_at", "updated_at"}
	taskRowColumns = []string{"id", "owner_id", "description", "completed", "created_at", "updated_at"}
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	return db, mock
}
