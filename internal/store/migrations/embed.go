// Package migrations embeds the goose SQL migrations of the local store and
// applies them.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/tripkeeper/internal/logging"
	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var Migrations embed.FS

// gooseLogger routes goose output to the application logger at debug level
// instead of stdout.
type gooseLogger struct {
	ctx context.Context
	log logging.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.log.Debug(g.ctx, strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "goose")
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.log.Error(g.ctx, strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "goose")
}

func setup(ctx context.Context, log logging.Logger) error {
	goose.SetBaseFS(Migrations)
	goose.SetLogger(gooseLogger{ctx: ctx, log: log})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

// Up applies every pending migration. Applied versions are recorded in
// goose_db_version, so repeated calls are no-ops and existing rows survive
// restarts.
func Up(ctx context.Context, db *sql.DB, log logging.Logger) error {
	if err := setup(ctx, log); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Version reports the current schema version.
func Version(ctx context.Context, db *sql.DB, log logging.Logger) (int64, error) {
	if err := setup(ctx, log); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, db)
}
