// Package app wires configuration, the local store, the remote gateway, the
// services and the background sync into a runnable tripkeeper process.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/tripkeeper/internal/cache"
	"github.com/dmitrijs2005/tripkeeper/internal/cli"
	"github.com/dmitrijs2005/tripkeeper/internal/config"
	"github.com/dmitrijs2005/tripkeeper/internal/filex"
	"github.com/dmitrijs2005/tripkeeper/internal/gateway"
	"github.com/dmitrijs2005/tripkeeper/internal/logging"
	"github.com/dmitrijs2005/tripkeeper/internal/receipts"
	"github.com/dmitrijs2005/tripkeeper/internal/services"
	"github.com/dmitrijs2005/tripkeeper/internal/store"
	"github.com/dmitrijs2005/tripkeeper/internal/syncer"
	"github.com/dmitrijs2005/tripkeeper/internal/timex"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	store     *store.Store
	engine    *syncer.Engine
	scheduler *syncer.Scheduler
	cli       *cli.App
}

// NewApp opens the database and builds every component. in and out carry
// the REPL; nil means stdin and stdout.
func NewApp(ctx context.Context, c *config.Config, in io.Reader, out io.Writer) (*App, error) {
	logger := logging.NewTextLogger(os.Stderr, c.LogLevel)
	clock := timex.SystemClock{}

	if _, err := filex.EnsureParentDir(c.DBPath); err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	st := store.New(store.WithLogger(logger.With("component", "store")))
	if err := st.Open(ctx, c.DBPath); err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	remote := gateway.NewClient(gateway.Options{
		ManifestURL:     c.ManifestURL,
		ManifestToken:   c.ManifestToken,
		ManifestTimeout: c.ManifestTimeout,
		TripsURL:        c.TripsURL,
		FuelURL:         c.FuelURL,
		IngestTimeout:   c.IngestTimeout,
	}, logger.With("component", "gateway"))

	uploader := receipts.NewUploader(receipts.Options{
		Region:       c.S3.Region,
		AccessKey:    c.S3.AccessKey,
		SecretKey:    c.S3.SecretKey,
		BaseEndpoint: c.S3.BaseEndpoint,
		Bucket:       c.S3.Bucket,
		PublicURL:    c.S3.PublicURL,
	})

	catalog := cache.NewManager(st, remote, clock, logger.With("component", "cache"))
	engine := syncer.NewEngine(st, remote, remote, uploader, clock, logger.With("component", "sync"))

	front := cli.NewApp(cli.Deps{
		Auth:     services.NewAuthService(st, clock, logger),
		Trips:    services.NewTripService(st, clock, logger),
		Fuel:     services.NewFuelService(st, clock, logger),
		Expenses: services.NewExpenseService(st, catalog, clock, logger),
		Catalog:  catalog,
		Syncer:   engine,
		Pinger:   remote,
		Clock:    clock,
		Log:      logger,
		In:       in,
		Out:      out,
	})

	return &App{
		config:    c,
		logger:    logger,
		store:     st,
		engine:    engine,
		scheduler: syncer.NewScheduler(engine, c.SyncInterval, logger.With("component", "scheduler")),
		cli:       front,
	}, nil
}

// Run serves the REPL while the scheduler and the connectivity watcher run
// in the background. It returns when the user exits or on SIGINT/SIGTERM,
// after the scheduler has stopped and the database is closed.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.logger.Info(ctx, "Starting tripkeeper...", "db", a.config.DBPath)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.scheduler.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		return a.scheduler.Stop()
	})

	g.Go(func() error {
		a.cli.StartOnlineStatusWatcher(gctx, a.config.OnlineCheckInterval)
		return nil
	})

	// The REPL blocks on input that a signal cannot interrupt, so it is not
	// part of the group; leaving it cancels everything else.
	go func() {
		a.cli.Run(gctx)
		stop()
	}()

	err := g.Wait()
	if cerr := a.store.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
