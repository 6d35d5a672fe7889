package services

import (
	"database/sql"
	"testing"

	"github.com/lrivas/postly-be/internal/database"
	"github.com/stretchr/testify/require"
)

// newTestDB opens an in-memory sqlite database with the full schema.
// Max one connection: each pooled connection would otherwise get its own
// private :memory: database.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() { db.Close() })
	return db
}
