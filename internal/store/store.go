// Package store opens the local SQLite database, applies the embedded
// migrations and hands out repositories. It is the initialization barrier of
// the application: nothing reaches the database before Open succeeds.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/dbx"
	"github.com/dmitrijs2005/tripkeeper/internal/logging"
	"github.com/dmitrijs2005/tripkeeper/internal/repositories/deliveries"
	"github.com/dmitrijs2005/tripkeeper/internal/repositories/expenses"
	"github.com/dmitrijs2005/tripkeeper/internal/repositories/fuel"
	"github.com/dmitrijs2005/tripkeeper/internal/repositories/metadata"
	"github.com/dmitrijs2005/tripkeeper/internal/repositories/references"
	"github.com/dmitrijs2005/tripkeeper/internal/repositories/trips"
	"github.com/dmitrijs2005/tripkeeper/internal/repositories/users"
	"github.com/dmitrijs2005/tripkeeper/internal/store/migrations"

	_ "modernc.org/sqlite"
)

// Repositories groups every repository bound to one handle, either the pool
// or a transaction.
type Repositories struct {
	Users      users.Repository
	Metadata   metadata.Repository
	Deliveries deliveries.Repository
	Trips      trips.Repository
	Fuel       fuel.Repository
	Expenses   expenses.Repository
	References references.Repository
}

func newRepositories(db dbx.DBTX) *Repositories {
	return &Repositories{
		Users:      users.NewSQLiteRepository(db),
		Metadata:   metadata.NewSQLiteRepository(db),
		Deliveries: deliveries.NewSQLiteRepository(db),
		Trips:      trips.NewSQLiteRepository(db),
		Fuel:       fuel.NewSQLiteRepository(db),
		Expenses:   expenses.NewSQLiteRepository(db),
		References: references.NewSQLiteRepository(db),
	}
}

type Store struct {
	mu    sync.RWMutex
	db    *sql.DB
	repos *Repositories
	log   logging.Logger
}

type Option func(*Store)

// WithLogger sets the logger used for migration output.
func WithLogger(log logging.Logger) Option {
	return func(s *Store) { s.log = log }
}

func New(opts ...Option) *Store {
	s := &Store{log: logging.NewDiscardLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens dsn and migrates it. Calling Open on an open store is a no-op.
//
// The pool is limited to one connection: SQLite serializes writers anyway and
// a single connection keeps the sync engine and the front end from tripping
// over SQLITE_BUSY. Code running inside InTx must therefore only use the
// repositories it was given.
func (s *Store) Open(ctx context.Context, dsn string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := migrations.Up(ctx, db, s.log); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	version, err := migrations.Version(ctx, db, s.log)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	s.log.Info(ctx, "database ready", "path", dsn, "schema_version", version)

	s.db = db
	s.repos = newRepositories(db)
	return nil
}

// Repos returns the pool-bound repositories, or common.ErrNotInitialized
// before Open.
func (s *Store) Repos() (*Repositories, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.repos == nil {
		return nil, common.ErrNotInitialized
	}
	return s.repos, nil
}

// InTx runs fn with repositories bound to a single transaction.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, r *Repositories) error) error {
	s.mu.RLock()
	db := s.db
	s.mu.RUnlock()

	if db == nil {
		return common.ErrNotInitialized
	}
	return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, newRepositories(tx))
	})
}

// Close releases the database. The store may be opened again afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db, s.repos = nil, nil
	return err
}
