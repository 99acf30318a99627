// Package syncer moves PENDING trip logs and fuel records to the ingestion
// API and marks them SYNCED once the server accepts the batch.
package syncer

import (
	"context"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/dmitrijs2005/tripkeeper/internal/gateway"
	"github.com/dmitrijs2005/tripkeeper/internal/logging"
	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/dmitrijs2005/tripkeeper/internal/store"
	"github.com/dmitrijs2005/tripkeeper/internal/timex"
	"github.com/google/uuid"
)

type Outcome int

const (
	// OutcomeSynced means at least one batch was accepted.
	OutcomeSynced Outcome = iota
	OutcomeNothingToSync
	OutcomeOffline
	// OutcomeInProgress means another sync held the lock; nothing was done.
	OutcomeInProgress
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSynced:
		return "synced"
	case OutcomeNothingToSync:
		return "nothing to sync"
	case OutcomeOffline:
		return "no connectivity"
	case OutcomeInProgress:
		return "sync in progress"
	}
	return "unknown"
}

type Result struct {
	Outcome  Outcome
	Trips    int
	Fuel     int
	Receipts int
}

type Storage interface {
	Repos() (*store.Repositories, error)
	InTx(ctx context.Context, fn func(ctx context.Context, r *store.Repositories) error) error
}

// Gateway submits batches to the ingestion API.
type Gateway interface {
	SubmitTrips(ctx context.Context, key string, logs []gateway.TripPayload) (int, error)
	SubmitFuel(ctx context.Context, key string, records []gateway.FuelPayload) (int, error)
}

type Reachability interface {
	Ping(ctx context.Context) error
}

type ReceiptUploader interface {
	Enabled() bool
	Upload(ctx context.Context, localPath string) (string, error)
}

type Engine struct {
	store    Storage
	remote   Gateway
	reach    Reachability
	receipts ReceiptUploader
	clock    timex.Clock
	log      logging.Logger

	running atomic.Bool
}

// NewEngine builds an engine. receipts may be nil.
func NewEngine(s Storage, remote Gateway, reach Reachability, receipts ReceiptUploader, clock timex.Clock, log logging.Logger) *Engine {
	return &Engine{store: s, remote: remote, reach: reach, receipts: receipts, clock: clock, log: log}
}

// Running reports whether a sync currently holds the lock.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Sync submits the trip batch, then the fuel batch.
//
// Only one Sync runs at a time; a concurrent call returns OutcomeInProgress
// with a nil error. When the server is unreachable nothing is sent and
// OutcomeOffline is returned. A failed batch leaves every record of that
// batch PENDING and its error is returned unchanged. A trip batch accepted
// before a failing fuel batch stays SYNCED. A record edited while its batch
// was in flight keeps PENDING and goes out with the next sync.
func (e *Engine) Sync(ctx context.Context) (Result, error) {
	if !e.running.CompareAndSwap(false, true) {
		return Result{Outcome: OutcomeInProgress}, nil
	}
	defer e.running.Store(false)

	if err := e.reach.Ping(ctx); err != nil {
		e.log.Debug(ctx, "sync skipped, server unreachable", "error", err)
		return Result{Outcome: OutcomeOffline}, nil
	}

	r, err := e.store.Repos()
	if err != nil {
		return Result{}, err
	}

	var res Result
	res.Trips, err = e.syncTrips(ctx, r)
	if err != nil {
		return res, err
	}
	res.Receipts, res.Fuel, err = e.syncFuel(ctx, r)
	if err != nil {
		return res, err
	}

	if res.Trips+res.Fuel == 0 {
		res.Outcome = OutcomeNothingToSync
	} else {
		res.Outcome = OutcomeSynced
		e.log.Info(ctx, "sync finished", "trips", res.Trips, "fuel", res.Fuel, "receipts", res.Receipts)
	}
	return res, nil
}

func (e *Engine) syncTrips(ctx context.Context, r *store.Repositories) (int, error) {
	rows, err := r.Trips.ListPending(ctx)
	if err != nil || len(rows) == 0 {
		return 0, err
	}

	payload := make([]gateway.TripPayload, 0, len(rows))
	revs := make([]models.Revision, 0, len(rows))
	refs := make([]string, 0, len(rows))
	seen := make(map[string]bool)
	var codes []string
	for _, row := range rows {
		payload = append(payload, gateway.NewTripPayload(row))
		revs = append(revs, models.Revision{ID: row.ID, Revision: row.Revision})
		refs = append(refs, row.ClientRef)
		if !seen[row.DlfCode] {
			seen[row.DlfCode] = true
			codes = append(codes, row.DlfCode)
		}
	}

	if _, err := e.remote.SubmitTrips(ctx, BatchKey(refs), payload); err != nil {
		e.log.Warn(ctx, "trip batch rejected", "rows", len(rows), "error", err)
		return 0, err
	}

	now := timex.Stamp(e.clock.Now())
	var marked int64
	err = e.store.InTx(ctx, func(ctx context.Context, tx *store.Repositories) error {
		var err error
		if marked, err = tx.Trips.MarkSynced(ctx, revs, now); err != nil {
			return err
		}
		_, err = tx.Trips.MarkPlaceholdersSynced(ctx, codes, now)
		return err
	})
	if err != nil {
		return 0, err
	}
	if left := int64(len(rows)) - marked; left > 0 {
		e.log.Info(ctx, "trip logs changed during sync stay pending", "rows", left)
	}
	return len(rows), nil
}

func (e *Engine) syncFuel(ctx context.Context, r *store.Repositories) (receipts int, synced int, err error) {
	recs, err := r.Fuel.ListPending(ctx)
	if err != nil || len(recs) == 0 {
		return 0, 0, err
	}

	if e.receipts != nil && e.receipts.Enabled() {
		for i := range recs {
			if !recs[i].HasPendingReceipt() {
				continue
			}
			url, err := e.receipts.Upload(ctx, recs[i].ReceiptPath)
			if err != nil {
				e.log.Warn(ctx, "receipt upload failed", "fuel_no", recs[i].FuelNo, "error", err)
				return receipts, 0, err
			}
			if err := r.Fuel.SetReceipt(ctx, recs[i].ID, url, timex.Stamp(e.clock.Now())); err != nil {
				return receipts, 0, err
			}
			recs[i].ReceiptURL, recs[i].ReceiptUploaded = url, true
			recs[i].Revision++
			receipts++
		}
	}

	payload := make([]gateway.FuelPayload, 0, len(recs))
	revs := make([]models.Revision, 0, len(recs))
	refs := make([]string, 0, len(recs))
	for _, f := range recs {
		payload = append(payload, gateway.NewFuelPayload(f))
		revs = append(revs, models.Revision{ID: f.ID, Revision: f.Revision})
		refs = append(refs, f.ClientRef)
	}

	if _, err := e.remote.SubmitFuel(ctx, BatchKey(refs), payload); err != nil {
		e.log.Warn(ctx, "fuel batch rejected", "records", len(recs), "error", err)
		return receipts, 0, err
	}

	now := timex.Stamp(e.clock.Now())
	var marked int64
	err = e.store.InTx(ctx, func(ctx context.Context, tx *store.Repositories) error {
		var err error
		marked, err = tx.Fuel.MarkSynced(ctx, revs, now)
		return err
	})
	if err != nil {
		return receipts, 0, err
	}
	if left := int64(len(recs)) - marked; left > 0 {
		e.log.Info(ctx, "fuel records changed during sync stay pending", "records", left)
	}
	return receipts, len(recs), nil
}

// BatchKey derives the idempotency key of a batch from its record refs. The
// same set of records always yields the same key, so a batch resent after
// an interrupted acknowledgement can be recognized by the server.
func BatchKey(refs []string) string {
	sorted := append([]string(nil), refs...)
	sort.Strings(sorted)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.Join(sorted, ","))).String()
}
