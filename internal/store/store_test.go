package store

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/logging"
	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepos_BeforeOpen(t *testing.T) {
	s := New()

	_, err := s.Repos()
	require.ErrorIs(t, err, common.ErrNotInitialized)

	err = s.InTx(context.Background(), func(context.Context, *Repositories) error { return nil })
	require.ErrorIs(t, err, common.ErrNotInitialized)

	require.NoError(t, s.Close())
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "tripkeeper.db")

	s := New()
	require.NoError(t, s.Open(ctx, dsn))
	require.NoError(t, s.Open(ctx, dsn), "second open is a no-op")

	r, err := s.Repos()
	require.NoError(t, err)
	_, err = r.Trips.Insert(ctx, &models.TripLog{
		ClientRef: "ref-1", DlfCode: "DLF-001", DropNumber: 1, FormType: models.FormDelivery,
		CustomerName: "ACME", Status: models.StatusDraft,
		CreatedAt: "2026-10-18 08:00:00", UpdatedAt: "2026-10-18 08:00:00",
	})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.Repos()
	require.ErrorIs(t, err, common.ErrNotInitialized)

	require.NoError(t, s.Open(ctx, dsn))
	defer s.Close()
	r, err = s.Repos()
	require.NoError(t, err)
	rows, err := r.Trips.ListByCode(ctx, "DLF-001")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestInTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Open(ctx, filepath.Join(t.TempDir(), "tx.db")))
	defer s.Close()

	boom := errors.New("boom")
	err := s.InTx(ctx, func(ctx context.Context, r *Repositories) error {
		if _, err := r.Users.Insert(ctx, &models.User{
			Username: "juan", FullName: "Juan", Position: models.PositionDriver,
			PasswordHash: []byte{1}, Salt: []byte{2},
			CreatedAt: "2026-10-18 08:00:00", UpdatedAt: "2026-10-18 08:00:00",
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	r, err := s.Repos()
	require.NoError(t, err)
	list, err := r.Users.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestOpen_BadPath(t *testing.T) {
	s := New()
	err := s.Open(context.Background(), filepath.Join(t.TempDir(), "missing", "dir", "x.db"))
	require.Error(t, err)

	_, err = s.Repos()
	require.ErrorIs(t, err, common.ErrNotInitialized)
}

func TestOpen_LogsSchemaVersion(t *testing.T) {
	var buf bytes.Buffer
	s := New(WithLogger(logging.NewTextLogger(&buf, "info")))
	require.NoError(t, s.Open(context.Background(), filepath.Join(t.TempDir(), "v.db")))
	defer s.Close()

	assert.Contains(t, buf.String(), "database ready")
	assert.Contains(t, buf.String(), "schema_version=2")
	assert.NotContains(t, buf.String(), "component=goose", "goose output is debug only")
}
