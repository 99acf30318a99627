// Package repotest opens throwaway SQLite databases with the production
// schema for repository and service tests.
package repotest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/tripkeeper/internal/logging"
	"github.com/dmitrijs2005/tripkeeper/internal/store/migrations"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// NewDB returns a migrated database file under t.TempDir. A file is used
// instead of :memory: so every pooled connection sees the same schema.
func NewDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Up(context.Background(), db, logging.NewDiscardLogger()))
	return db
}
