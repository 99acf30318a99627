package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/logging"
	"github.com/dmitrijs2005/tripkeeper/internal/store"
	"github.com/dmitrijs2005/tripkeeper/internal/timex"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 18, 8, 0, 0, 0, time.Local)

func testClock() timex.Clock { return timex.FixedClock{T: testNow} }

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New()
	require.NoError(t, s.Open(context.Background(), filepath.Join(t.TempDir(), "services.db")))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func discard() logging.Logger { return logging.NewDiscardLogger() }

func ptr[T any](v T) *T { return &v }
