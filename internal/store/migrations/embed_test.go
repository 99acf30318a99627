package migrations

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/tripkeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func TestUp_CreatesSchemaAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Up(ctx, db, logging.NewDiscardLogger()))
	require.NoError(t, Up(ctx, db, logging.NewDiscardLogger()))

	for _, table := range []string{"users", "metadata", "deliveries", "delivery_stops", "trip_logs",
		"fuel_records", "delivery_expenses", "expense_types", "trucks", "payees"} {
		var n int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&n))
		require.Equal(t, 1, n, "table %s must exist", table)
	}

	v, err := Version(ctx, db, logging.NewDiscardLogger())
	require.NoError(t, err)
	require.Equal(t, int64(2), v)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('trip_logs') WHERE name = 'revision'`).Scan(&n))
	require.Equal(t, 1, n)
}

func TestUp_PreservesRowsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "m.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	require.NoError(t, Up(ctx, db, logging.NewDiscardLogger()))
	_, err = db.Exec(`INSERT INTO trucks (plate_no, refreshed_at) VALUES ('ABC-123', '2026-10-18 08:00:00')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Up(ctx, db, logging.NewDiscardLogger()))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM trucks`).Scan(&n))
	require.Equal(t, 1, n)
}

func TestUp_RoutesGooseOutputToLogger(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var buf bytes.Buffer
	require.NoError(t, Up(ctx, db, logging.NewTextLogger(&buf, "debug")))

	assert.Contains(t, buf.String(), "00001_init.sql")
	assert.Contains(t, buf.String(), "component=goose")
	assert.Contains(t, buf.String(), "level=DEBUG")
}
