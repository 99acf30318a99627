package syncer

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/gateway"
	"github.com/dmitrijs2005/tripkeeper/internal/logging"
	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/dmitrijs2005/tripkeeper/internal/services"
	"github.com/dmitrijs2005/tripkeeper/internal/store"
	"github.com/dmitrijs2005/tripkeeper/internal/timex"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	mu        sync.Mutex
	tripCalls [][]gateway.TripPayload
	fuelCalls [][]gateway.FuelPayload
	keys      []string
	tripErr   error
	fuelErr   error

	entered chan struct{}
	release chan struct{}

	fuelEntered chan struct{}
	fuelRelease chan struct{}
}

func (f *fakeGateway) SubmitTrips(ctx context.Context, key string, logs []gateway.TripPayload) (int, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tripCalls = append(f.tripCalls, logs)
	f.keys = append(f.keys, key)
	return len(logs), f.tripErr
}

func (f *fakeGateway) SubmitFuel(ctx context.Context, key string, records []gateway.FuelPayload) (int, error) {
	if f.fuelEntered != nil {
		f.fuelEntered <- struct{}{}
		<-f.fuelRelease
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fuelCalls = append(f.fuelCalls, records)
	return len(records), f.fuelErr
}

func (f *fakeGateway) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tripCalls) + len(f.fuelCalls)
}

type fakeReach struct{ err error }

func (f fakeReach) Ping(context.Context) error { return f.err }

type fakeUploader struct {
	uploaded []string
	err      error
}

func (f *fakeUploader) Enabled() bool { return true }

func (f *fakeUploader) Upload(ctx context.Context, path string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploaded = append(f.uploaded, path)
	return "https://minio/receipts/" + filepath.Base(path), nil
}

type env struct {
	store *store.Store
	trips services.TripService
	fuel  services.FuelService
	gw    *fakeGateway
}

func newEnv(t *testing.T) *env {
	t.Helper()
	s := store.New()
	require.NoError(t, s.Open(context.Background(), filepath.Join(t.TempDir(), "sync.db")))
	t.Cleanup(func() { _ = s.Close() })

	clock := timex.FixedClock{T: time.Date(2026, 10, 18, 8, 0, 0, 0, time.Local)}
	log := logging.NewDiscardLogger()
	return &env{
		store: s,
		trips: services.NewTripService(s, clock, log),
		fuel:  services.NewFuelService(s, clock, log),
		gw:    &fakeGateway{},
	}
}

func (e *env) engine(reach Reachability, up ReceiptUploader) *Engine {
	return NewEngine(e.store, e.gw, reach, up, timex.FixedClock{T: time.Date(2026, 10, 18, 12, 0, 0, 0, time.Local)}, logging.NewDiscardLogger())
}

func (e *env) pendingDelivery(t *testing.T, code string, drops int) {
	t.Helper()
	ctx := context.Background()
	_, err := e.trips.StartDelivery(ctx, services.StartInput{DlfCode: code, Driver: "Juan", PlateNo: "ABC-123"})
	require.NoError(t, err)
	for i := 0; i < drops; i++ {
		_, err := e.trips.SaveDrop(ctx, services.DropInput{DlfCode: code, CustomerName: "C", StopArrival: ptr("2026-10-18 09:00:00")})
		require.NoError(t, err)
	}
	_, err = e.trips.Finalize(ctx, code)
	require.NoError(t, err)
}

func (e *env) pendingFuel(t *testing.T, receipt string) *models.FuelRecord {
	t.Helper()
	rec, err := e.fuel.Finalize(context.Background(), services.FuelInput{
		Driver: "Juan Dela Cruz", PlateNo: "ABC-123", PaymentType: "cash",
		Liters: decimal.NewFromInt(50), CostPerLiter: decimal.RequireFromString("65.50"), ReceiptPath: receipt,
	})
	require.NoError(t, err)
	return rec
}

func (e *env) status(t *testing.T, code string) models.Status {
	t.Helper()
	v, err := e.trips.Get(context.Background(), code)
	require.NoError(t, err)
	return v.Status
}

func ptr[T any](v T) *T { return &v }

func TestSync_SuccessMarksEverythingSynced(t *testing.T) {
	e := newEnv(t)
	e.pendingDelivery(t, "DLF-001", 2)
	e.pendingDelivery(t, "DLF-002", 1)
	rec := e.pendingFuel(t, "")

	res, err := e.engine(fakeReach{}, nil).Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSynced, res.Outcome)
	assert.Equal(t, 3, res.Trips)
	assert.Equal(t, 1, res.Fuel)

	require.Len(t, e.gw.tripCalls, 1)
	for _, p := range e.gw.tripCalls[0] {
		assert.NotZero(t, p.DropNumber, "placeholders are never sent")
		require.NotNil(t, p.PlateNo)
	}
	require.Len(t, e.gw.fuelCalls, 1)
	assert.Equal(t, "350.89", e.gw.fuelCalls[0][0].VAT)

	assert.Equal(t, models.StatusSynced, e.status(t, "DLF-001"), "placeholder follows its drops")
	assert.Equal(t, models.StatusSynced, e.status(t, "DLF-002"))
	got, err := e.fuel.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSynced, got.Status)

	res, err = e.engine(fakeReach{}, nil).Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeNothingToSync, res.Outcome)
	assert.Equal(t, 2, e.gw.calls())
}

func TestSync_DropEditedInFlightStaysPending(t *testing.T) {
	e := newEnv(t)
	e.pendingDelivery(t, "DLF-001", 2)
	e.gw.entered = make(chan struct{})
	e.gw.release = make(chan struct{})
	ctx := context.Background()

	eng := e.engine(fakeReach{}, nil)
	done := make(chan error, 1)
	go func() {
		_, err := eng.Sync(ctx)
		done <- err
	}()

	<-e.gw.entered
	_, err := e.trips.SaveDrop(ctx, services.DropInput{DlfCode: "DLF-001", DropNumber: 1, Remarks: "short 2 boxes"})
	require.NoError(t, err)
	close(e.gw.release)
	require.NoError(t, <-done)

	assert.Empty(t, e.gw.tripCalls[0][0].Remarks, "batch carried the old remarks")

	r, err := e.store.Repos()
	require.NoError(t, err)
	edited, err := r.Trips.GetByDrop(ctx, "DLF-001", 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, edited.Status)
	assert.Equal(t, "short 2 boxes", edited.Remarks)
	untouched, err := r.Trips.GetByDrop(ctx, "DLF-001", 2)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSynced, untouched.Status)

	pending, err := r.Trips.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	e.gw.entered, e.gw.release = nil, nil
	res, err := eng.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Trips)
	require.Len(t, e.gw.tripCalls, 2)
	assert.Equal(t, "short 2 boxes", e.gw.tripCalls[1][0].Remarks)
	assert.Equal(t, models.StatusSynced, e.status(t, "DLF-001"))
}

func TestSync_CompanyTimesChangedInFlightStayPending(t *testing.T) {
	e := newEnv(t)
	e.pendingDelivery(t, "DLF-001", 1)
	e.gw.entered = make(chan struct{})
	e.gw.release = make(chan struct{})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := e.engine(fakeReach{}, nil).Sync(ctx)
		done <- err
	}()

	<-e.gw.entered
	_, err := e.trips.SetCompanyTimes(ctx, "DLF-001", ptr("2026-10-18 06:30:00"), nil)
	require.NoError(t, err)
	close(e.gw.release)
	require.NoError(t, <-done)

	assert.Equal(t, models.StatusPending, e.status(t, "DLF-001"))
}

func TestSync_FuelEditedInFlightStaysPending(t *testing.T) {
	e := newEnv(t)
	rec := e.pendingFuel(t, "")
	e.gw.fuelEntered = make(chan struct{})
	e.gw.fuelRelease = make(chan struct{})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := e.engine(fakeReach{}, nil).Sync(ctx)
		done <- err
	}()

	<-e.gw.fuelEntered
	_, err := e.fuel.SaveDraft(ctx, services.FuelInput{
		ID: rec.ID, Driver: "Juan Dela Cruz", PlateNo: "ABC-123", PaymentType: "cash", Station: "Petron",
		Liters: decimal.NewFromInt(50), CostPerLiter: decimal.RequireFromString("65.50"),
	})
	require.NoError(t, err)
	close(e.gw.fuelRelease)
	require.NoError(t, <-done)

	got, err := e.fuel.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, "Petron", got.Station)
}

func TestSync_FailureMarksNothing(t *testing.T) {
	e := newEnv(t)
	e.pendingDelivery(t, "DLF-001", 2)
	e.gw.tripErr = &gateway.RemoteError{Kind: common.ErrServer, Message: "sheet is locked"}

	_, err := e.engine(fakeReach{}, nil).Sync(context.Background())
	require.ErrorIs(t, err, common.ErrServer)
	assert.Equal(t, "sheet is locked", err.Error())
	assert.Equal(t, models.StatusPending, e.status(t, "DLF-001"))

	r, err := e.store.Repos()
	require.NoError(t, err)
	pending, err := r.Trips.ListPending(context.Background())
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestSync_FuelFailureKeepsAcceptedTrips(t *testing.T) {
	e := newEnv(t)
	e.pendingDelivery(t, "DLF-001", 1)
	rec := e.pendingFuel(t, "")
	e.gw.fuelErr = &gateway.RemoteError{Kind: common.ErrTimeout, Message: "slow"}

	res, err := e.engine(fakeReach{}, nil).Sync(context.Background())
	require.ErrorIs(t, err, common.ErrTimeout)
	assert.Equal(t, 1, res.Trips)
	assert.Equal(t, models.StatusSynced, e.status(t, "DLF-001"))

	got, err := e.fuel.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
}

func TestSync_OfflineShortCircuits(t *testing.T) {
	e := newEnv(t)
	e.pendingDelivery(t, "DLF-001", 1)
	e.pendingFuel(t, "")

	res, err := e.engine(fakeReach{err: common.ErrUnreachable}, nil).Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeOffline, res.Outcome)
	assert.Zero(t, e.gw.calls())
	assert.Equal(t, models.StatusPending, e.status(t, "DLF-001"))
}

func TestSync_MutualExclusion(t *testing.T) {
	e := newEnv(t)
	e.pendingDelivery(t, "DLF-001", 1)
	e.gw.entered = make(chan struct{})
	e.gw.release = make(chan struct{})
	eng := e.engine(fakeReach{}, nil)

	done := make(chan Result)
	go func() {
		res, err := eng.Sync(context.Background())
		assert.NoError(t, err)
		done <- res
	}()

	<-e.gw.entered
	assert.True(t, eng.Running())

	res, err := eng.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeInProgress, res.Outcome)

	close(e.gw.release)
	first := <-done
	assert.Equal(t, OutcomeSynced, first.Outcome)
	assert.Equal(t, 1, e.gw.calls())
	assert.False(t, eng.Running(), "lock released")
}

func TestSync_ReleasesLockOnError(t *testing.T) {
	e := newEnv(t)
	e.pendingDelivery(t, "DLF-001", 1)
	e.gw.tripErr = errors.New("boom")
	eng := e.engine(fakeReach{}, nil)

	_, err := eng.Sync(context.Background())
	require.Error(t, err)
	assert.False(t, eng.Running())

	e.gw.tripErr = nil
	res, err := eng.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSynced, res.Outcome)
}

func TestSync_UploadsReceiptsBeforeFuelBatch(t *testing.T) {
	e := newEnv(t)
	rec := e.pendingFuel(t, "/photos/r1.jpg")
	up := &fakeUploader{}

	res, err := e.engine(fakeReach{}, up).Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Receipts)
	assert.Equal(t, []string{"/photos/r1.jpg"}, up.uploaded)
	require.Len(t, e.gw.fuelCalls, 1)
	assert.Equal(t, "https://minio/receipts/r1.jpg", e.gw.fuelCalls[0][0].ReceiptURL)

	got, err := e.fuel.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.True(t, got.ReceiptUploaded)
	assert.Equal(t, models.StatusSynced, got.Status)
}

func TestSync_ReceiptFailureAbortsFuelBatch(t *testing.T) {
	e := newEnv(t)
	rec := e.pendingFuel(t, "/photos/r1.jpg")

	_, err := e.engine(fakeReach{}, &fakeUploader{err: errors.New("bucket missing")}).Sync(context.Background())
	require.Error(t, err)
	assert.Empty(t, e.gw.fuelCalls)

	got, err := e.fuel.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.False(t, got.ReceiptUploaded)
}

func TestSync_NotInitialized(t *testing.T) {
	eng := NewEngine(store.New(), &fakeGateway{}, fakeReach{}, nil, timex.SystemClock{}, logging.NewDiscardLogger())
	_, err := eng.Sync(context.Background())
	require.ErrorIs(t, err, common.ErrNotInitialized)
}

func TestBatchKey_StableForSameRecords(t *testing.T) {
	a := BatchKey([]string{"r1", "r2", "r3"})
	b := BatchKey([]string{"r3", "r1", "r2"})
	c := BatchKey([]string{"r1", "r2"})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

// Delivery DLF-001 with two manifest stops, driven from first drop to SYNCED.
func TestEndToEnd_DeliveryLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	r, err := e.store.Repos()
	require.NoError(t, err)
	require.NoError(t, r.Deliveries.Upsert(ctx, &models.Delivery{
		Code: "DLF-001", DeliveryDate: "2026-10-18", Driver: "Juan", PlateNo: "ABC-123", Trip: 1,
		Stops: []models.Stop{{CustomerName: "Stop A", ExternalID: "A"}, {CustomerName: "Stop B", ExternalID: "B"}},
	}))

	_, err = e.trips.SaveDrop(ctx, services.DropInput{DlfCode: "DLF-001", StopPosition: 1})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, e.status(t, "DLF-001"))

	_, err = e.trips.Finalize(ctx, "DLF-001")
	require.ErrorIs(t, err, common.ErrValidationFailed)
	assert.Equal(t, models.StatusDraft, e.status(t, "DLF-001"))

	_, err = e.trips.SaveDrop(ctx, services.DropInput{DlfCode: "DLF-001", DropNumber: 1, StopArrival: ptr("2026-10-18 09:30:00")})
	require.NoError(t, err)
	_, err = e.trips.Finalize(ctx, "DLF-001")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, e.status(t, "DLF-001"))

	res, err := e.engine(fakeReach{err: common.ErrUnreachable}, nil).Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, OutcomeOffline, res.Outcome)
	assert.Equal(t, models.StatusPending, e.status(t, "DLF-001"))

	res, err = e.engine(fakeReach{}, nil).Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSynced, res.Outcome)
	assert.Equal(t, models.StatusSynced, e.status(t, "DLF-001"))

	require.Len(t, e.gw.tripCalls, 1)
	require.Len(t, e.gw.tripCalls[0], 1)
	assert.Equal(t, "A", e.gw.tripCalls[0][0].DDSID)
}
