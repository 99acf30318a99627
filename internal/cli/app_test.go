package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/gateway"
	"github.com/dmitrijs2005/tripkeeper/internal/logging"
	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/dmitrijs2005/tripkeeper/internal/services"
	"github.com/dmitrijs2005/tripkeeper/internal/store"
	"github.com/dmitrijs2005/tripkeeper/internal/syncer"
	"github.com/dmitrijs2005/tripkeeper/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	deliveries []models.Delivery
	manifest   map[string]*models.Delivery
	trucks     []string
	types      []string
	payees     []models.Payee

	refreshedFor string
	refreshErr   error
}

func (f *fakeCatalog) RefreshDeliveries(_ context.Context, driver string) (int, error) {
	f.refreshedFor = driver
	return len(f.deliveries), f.refreshErr
}
func (f *fakeCatalog) RefreshTrucks(context.Context) (int, error) { return len(f.trucks), nil }
func (f *fakeCatalog) ListDeliveries(context.Context) []models.Delivery {
	return f.deliveries
}
func (f *fakeCatalog) GetDelivery(_ context.Context, code string) (*models.Delivery, error) {
	if d, ok := f.manifest[code]; ok {
		return d, nil
	}
	return nil, common.ErrNotFound
}
func (f *fakeCatalog) ListTrucks(context.Context) []string       { return f.trucks }
func (f *fakeCatalog) ListExpenseTypes(context.Context) []string { return f.types }
func (f *fakeCatalog) SuggestPayees(context.Context, string) []models.Payee {
	return f.payees
}

type fakeSyncer struct {
	calls int
	res   syncer.Result
	err   error
}

func (f *fakeSyncer) Sync(context.Context) (syncer.Result, error) {
	f.calls++
	return f.res, f.err
}

type fakePinger struct{ online atomic.Bool }

func (f *fakePinger) Ping(context.Context) error {
	if f.online.Load() {
		return nil
	}
	return common.ErrUnreachable
}

type testApp struct {
	*App
	out     *bytes.Buffer
	store   *store.Store
	catalog *fakeCatalog
	syncer  *fakeSyncer
	pinger  *fakePinger
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}

func newTestApp(t *testing.T, lines ...string) *testApp {
	t.Helper()

	s := store.New()
	require.NoError(t, s.Open(context.Background(), filepath.Join(t.TempDir(), "cli.db")))
	t.Cleanup(func() { _ = s.Close() })

	clock := timex.FixedClock{T: time.Date(2026, 10, 18, 8, 0, 0, 0, time.Local)}
	log := logging.NewDiscardLogger()
	ta := &testApp{
		out:     &bytes.Buffer{},
		store:   s,
		catalog: &fakeCatalog{},
		syncer:  &fakeSyncer{},
		pinger:  &fakePinger{},
	}
	ta.App = NewApp(Deps{
		Auth:     services.NewAuthService(s, clock, log),
		Trips:    services.NewTripService(s, clock, log),
		Fuel:     services.NewFuelService(s, clock, log),
		Expenses: services.NewExpenseService(s, nil, clock, log),
		Catalog:  ta.catalog,
		Syncer:   ta.syncer,
		Pinger:   ta.pinger,
		Clock:    clock,
		Log:      log,
		In:       strings.NewReader(strings.Join(lines, "\n") + "\n"),
		Out:      ta.out,
	})
	return ta
}

func registerAndLogin(position string) []string {
	return []string{
		"register", "juan", "Juan Dela Cruz", position,
		"login", "juan",
	}
}

func TestApp_DeliveryFlow(t *testing.T) {
	stubPassword(t, "secret")

	lines := append(registerAndLogin("driver"),
		"start DLF-001", "ABC-123", "",
		"drop DLF-001", "Store A", "Addr A", "09:30", "", "DR-1", "", "3", "",
		"times DLF-001", "07:00", "",
		"finalize DLF-001",
		"sync",
		"show DLF-001",
		"exit",
	)
	ta := newTestApp(t, lines...)
	ta.syncer.res = syncer.Result{Outcome: syncer.OutcomeSynced, Trips: 1}

	ta.Run(context.Background())

	out := ta.out.String()
	assert.Contains(t, out, "Registered juan")
	assert.Contains(t, out, "Welcome, Juan Dela Cruz (driver)")
	assert.Contains(t, out, "Saved drop 1 of DLF-001 (draft)")
	assert.Contains(t, out, "DLF-001 is pending, 1 drops queued for sync")
	assert.Contains(t, out, "Synced 1 trip logs, 0 fuel records")
	assert.Contains(t, out, "company departure 2026-10-18 07:00:00")
	assert.Contains(t, out, "arr 2026-10-18 09:30:00")
	assert.Contains(t, out, "Bye!")
	assert.Equal(t, 1, ta.syncer.calls)
	assert.Equal(t, ModeOnline, ta.Mode())
}

func TestApp_FinalizeReportsMissingFields(t *testing.T) {
	stubPassword(t, "secret")

	lines := append(registerAndLogin("driver"),
		"start DLF-002", "", "",
		"finalize DLF-002",
	)
	ta := newTestApp(t, lines...)
	ta.Run(context.Background())

	assert.Contains(t, ta.out.String(), "Error: validation failed: missing plate number, at least one drop")
}

func TestApp_DropWithUnknownNumberFailsBeforePrompts(t *testing.T) {
	stubPassword(t, "secret")

	lines := append(registerAndLogin("driver"),
		"start DLF-001", "ABC-123", "",
		"drop DLF-001", "Store A", "Addr A", "09:30", "", "", "", "", "",
		"drop DLF-001 7",
		"show DLF-001",
		"exit",
	)
	ta := newTestApp(t, lines...)
	ta.Run(context.Background())

	out := ta.out.String()
	assert.Contains(t, out, "Error: delivery DLF-001 drop 7: not found")
	assert.Contains(t, out, "company departure", "next command is read as a command, not a prompt answer")
	assert.Contains(t, out, "Bye!")
}

func TestApp_RequiresLogin(t *testing.T) {
	ta := newTestApp(t, "sync", "drop DLF-001", "exit")
	ta.Run(context.Background())

	assert.Equal(t, 2, strings.Count(ta.out.String(), "Please login first"))
	assert.Zero(t, ta.syncer.calls)
}

func TestApp_ResumesSession(t *testing.T) {
	stubPassword(t, "secret")

	first := newTestApp(t, registerAndLogin("helper")...)
	first.Run(context.Background())

	second := &testApp{out: &bytes.Buffer{}}
	second.App = NewApp(Deps{
		Auth:  services.NewAuthService(first.store, timex.SystemClock{}, logging.NewDiscardLogger()),
		Log:   logging.NewDiscardLogger(),
		In:    strings.NewReader("exit\n"),
		Out:   second.out,
		Clock: timex.SystemClock{},
	})
	second.Run(context.Background())

	assert.Contains(t, second.out.String(), "Welcome back, Juan Dela Cruz")
	assert.True(t, second.isLoggedIn())
}

func TestApp_FuelFlow(t *testing.T) {
	stubPassword(t, "secret")

	lines := append(registerAndLogin("driver"),
		"fuel", "ABC-123", "cash", "Shell", "10234", "50", "65.50", "", "", "",
		"fuelfinal 1",
		"fuels",
	)
	ta := newTestApp(t, lines...)
	ta.Run(context.Background())

	out := ta.out.String()
	assert.Contains(t, out, "= 3275.00 (VAT 350.89, net 2924.11) [draft]")
	assert.Contains(t, out, "= 3275.00 (VAT 350.89, net 2924.11) [pending]")
	assert.Contains(t, out, "FM-00001-JDC")
}

func TestApp_ExpenseReusesKnownPayee(t *testing.T) {
	stubPassword(t, "secret")

	lines := append(registerAndLogin("driver"),
		"expense DLF-001", "Toll", "120", "petron edsa",
		"show DLF-001",
	)
	ta := newTestApp(t, lines...)
	ta.catalog.types = []string{"Parking", "Toll"}
	ta.catalog.payees = []models.Payee{{Name: "Petron EDSA", TaxID: "123-456"}}
	ta.Run(context.Background())

	out := ta.out.String()
	assert.Contains(t, out, "Types: Parking, Toll")
	assert.Contains(t, out, "Added expense #1 Toll 120.00")
	assert.NotContains(t, out, "Payee TIN")

	r, err := ta.store.Repos()
	require.NoError(t, err)
	exps, err := r.Expenses.ListByCode(context.Background(), "DLF-001")
	require.NoError(t, err)
	require.Len(t, exps, 1)
	assert.Equal(t, "Petron EDSA", exps[0].Payee)
	assert.Equal(t, "123-456", exps[0].PayeeTaxID)
}

func TestApp_RefreshUsesFullName(t *testing.T) {
	stubPassword(t, "secret")

	lines := append(registerAndLogin("driver"), "refresh", "deliveries")
	ta := newTestApp(t, lines...)
	ta.catalog.deliveries = []models.Delivery{{Code: "DLF-001", Trip: 1, PlateNo: "ABC-123", Driver: "Juan Dela Cruz"}}
	ta.catalog.trucks = []string{"ABC-123", "XYZ-789"}
	ta.Run(context.Background())

	out := ta.out.String()
	assert.Equal(t, "Juan Dela Cruz", ta.catalog.refreshedFor)
	assert.Contains(t, out, "Cached 1 deliveries")
	assert.Contains(t, out, "Cached 2 trucks")
	assert.Contains(t, out, "DLF-001")
}

func TestApp_SyncOfflineAndFailure(t *testing.T) {
	stubPassword(t, "secret")

	lines := append(registerAndLogin("driver"), "sync", "sync")
	ta := newTestApp(t, lines...)
	ta.syncer.res = syncer.Result{Outcome: syncer.OutcomeOffline}
	ta.Run(context.Background())
	assert.Contains(t, ta.out.String(), "No connectivity, records stay queued")

	ta2 := newTestApp(t, append(registerAndLogin("driver"), "sync")...)
	ta2.syncer.err = common.ErrForbidden
	ta2.setMode(context.Background(), ModeOnline)
	ta2.Run(context.Background())
	assert.Contains(t, ta2.out.String(), "Sync failed, records stay queued")
	assert.Contains(t, ta2.out.String(), "Error: forbidden")
	assert.Equal(t, ModeOnline, ta2.Mode(), "a rejection is not a connectivity loss")

	ta3 := newTestApp(t, append(registerAndLogin("driver"), "sync")...)
	ta3.syncer.err = &gateway.RemoteError{Kind: common.ErrTimeout, Message: "request timed out"}
	ta3.setMode(context.Background(), ModeOnline)
	ta3.Run(context.Background())
	assert.Contains(t, ta3.out.String(), "Sync failed, records stay queued")
	assert.Equal(t, ModeOffline, ta3.Mode())

	ta4 := newTestApp(t, append(registerAndLogin("driver"), "sync")...)
	ta4.syncer.err = errors.New("disk I/O error")
	ta4.Run(context.Background())
	assert.NotContains(t, ta4.out.String(), "records stay queued")
	assert.Contains(t, ta4.out.String(), "Error: disk I/O error")
}

func TestApp_UsersNeedsManager(t *testing.T) {
	stubPassword(t, "secret")

	ta := newTestApp(t, append(registerAndLogin("driver"), "users")...)
	ta.Run(context.Background())
	assert.Contains(t, ta.out.String(), "Error: forbidden")

	admin := newTestApp(t,
		"register", "boss", "Maria Santos", "admin",
		"register", "juan", "Juan Dela Cruz", "driver",
		"login", "boss",
		"users",
		"users delete 1",
		"users delete 2",
		"users",
	)
	admin.Run(context.Background())

	out := admin.out.String()
	assert.Contains(t, out, "Error: "+common.ErrSelfDelete.Error())
	assert.Contains(t, out, "Deleted user 2")
}

func TestApp_OnlineStatusWatcher(t *testing.T) {
	ta := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ta.StartOnlineStatusWatcher(ctx, 10*time.Millisecond)
		close(done)
	}()

	assert.Equal(t, "(offline)", ta.status())
	ta.pinger.online.Store(true)
	require.Eventually(t, func() bool { return ta.Mode() == ModeOnline }, time.Second, 5*time.Millisecond)
	ta.pinger.online.Store(false)
	require.Eventually(t, func() bool { return ta.Mode() == ModeOffline }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
