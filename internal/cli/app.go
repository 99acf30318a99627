package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/logging"
	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/dmitrijs2005/tripkeeper/internal/services"
	"github.com/dmitrijs2005/tripkeeper/internal/syncer"
	"github.com/dmitrijs2005/tripkeeper/internal/timex"
)

type Mode string

const defaultOnlineCheckInterval = 5 * time.Second

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// Catalog is the reference data the prompts offer.
type Catalog interface {
	RefreshDeliveries(ctx context.Context, driver string) (int, error)
	RefreshTrucks(ctx context.Context) (int, error)
	ListDeliveries(ctx context.Context) []models.Delivery
	GetDelivery(ctx context.Context, code string) (*models.Delivery, error)
	ListTrucks(ctx context.Context) []string
	ListExpenseTypes(ctx context.Context) []string
	SuggestPayees(ctx context.Context, q string) []models.Payee
}

type Syncer interface {
	Sync(ctx context.Context) (syncer.Result, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators of App. In and Out default to the process
// stdin and stdout.
type Deps struct {
	Auth     services.AuthService
	Trips    services.TripService
	Fuel     services.FuelService
	Expenses services.ExpenseService
	Catalog  Catalog
	Syncer   Syncer
	Pinger   Pinger
	Clock    timex.Clock
	Log      logging.Logger
	In       io.Reader
	Out      io.Writer
}

type App struct {
	auth     services.AuthService
	trips    services.TripService
	fuel     services.FuelService
	expenses services.ExpenseService
	catalog  Catalog
	syncer   Syncer
	pinger   Pinger
	clock    timex.Clock
	log      logging.Logger

	reader *bufio.Reader
	out    io.Writer

	mu   sync.Mutex
	user *models.User
	mode Mode
}

func NewApp(d Deps) *App {
	in, out := d.In, d.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	clock := d.Clock
	if clock == nil {
		clock = timex.SystemClock{}
	}
	log := d.Log
	if log == nil {
		log = logging.NewDiscardLogger()
	}
	return &App{
		auth:     d.Auth,
		trips:    d.Trips,
		fuel:     d.Fuel,
		expenses: d.Expenses,
		catalog:  d.Catalog,
		syncer:   d.Syncer,
		pinger:   d.Pinger,
		clock:    clock,
		log:      log,
		reader:   bufio.NewReader(in),
		out:      out,
		mode:     ModeOffline,
	}
}

// Run resumes a persisted session, then serves the REPL until the input ends
// or the user exits.
func (a *App) Run(ctx context.Context) {
	u, err := a.auth.Current(ctx)
	switch {
	case err == nil:
		a.setUser(u)
		a.printf("Welcome back, %s\n", u.FullName)
	case !errors.Is(err, common.ErrNoSession):
		a.log.Warn(ctx, "failed to resume session", "error", err)
	}

	a.printf("tripkeeper (type 'help' for commands)\n")
	runREPL(ctx, a, a.status, a.reader, a.out)
}

func (a *App) isLoggedIn() bool {
	return a.currentUser() != nil
}

func (a *App) currentUser() *models.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user
}

func (a *App) setUser(u *models.User) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.user = u
}

// Mode reports the last observed connectivity.
func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(ctx, "connectivity changed", "mode", string(mode))
	}
}

func (a *App) status() string {
	s := ""
	if u := a.currentUser(); u != nil {
		s = u.Username + " "
	}
	return "(" + s + string(a.Mode()) + ")"
}

// checkOnline pings the server once and records the result.
func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.pinger.Ping(ctx); err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}

// StartOnlineStatusWatcher pings the server every interval until ctx is
// done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultOnlineCheckInterval
	}
	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}
