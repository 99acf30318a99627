// Package cache keeps remote reference data usable offline: delivery
// manifests, trucks, expense types and the payee directory.
//
// Refreshes are explicit. A failed fetch leaves cached rows untouched and
// returns the gateway error. List reads fail open: on a store error they log
// and return an empty result.
package cache

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/tripkeeper/internal/gateway"
	"github.com/dmitrijs2005/tripkeeper/internal/logging"
	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/dmitrijs2005/tripkeeper/internal/store"
	"github.com/dmitrijs2005/tripkeeper/internal/timex"
)

// SuggestLimit caps payee suggestions.
const SuggestLimit = 10

// Source is the remote side of the cache.
type Source interface {
	FetchManifest(ctx context.Context, driver string) (*gateway.Manifest, error)
	FetchTrucks(ctx context.Context) ([]string, error)
}

type Storage interface {
	Repos() (*store.Repositories, error)
	InTx(ctx context.Context, fn func(ctx context.Context, r *store.Repositories) error) error
}

type Manager struct {
	store  Storage
	source Source
	clock  timex.Clock
	log    logging.Logger
}

func NewManager(s Storage, src Source, clock timex.Clock, log logging.Logger) *Manager {
	return &Manager{store: s, source: src, clock: clock, log: log}
}

// RefreshDeliveries fetches the driver's manifest and upserts every delivery
// by code, replacing its stops. Expense types in the answer are upserted too.
// It returns the number of deliveries stored.
func (m *Manager) RefreshDeliveries(ctx context.Context, driver string) (int, error) {
	if _, err := m.store.Repos(); err != nil {
		return 0, err
	}

	manifest, err := m.source.FetchManifest(ctx, driver)
	if err != nil {
		return 0, err
	}

	now := timex.Stamp(m.clock.Now())
	err = m.store.InTx(ctx, func(ctx context.Context, r *store.Repositories) error {
		for i := range manifest.Deliveries {
			d := manifest.Deliveries[i]
			d.RefreshedAt = now
			if err := r.Deliveries.Upsert(ctx, &d); err != nil {
				return err
			}
		}
		if len(manifest.ExpenseTypes) > 0 {
			return r.References.UpsertExpenseTypes(ctx, manifest.ExpenseTypes, now)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	m.log.Info(ctx, "deliveries refreshed", "driver", driver, "count", len(manifest.Deliveries))
	return len(manifest.Deliveries), nil
}

// ListDeliveries returns cached deliveries dated today. Older rows stay
// stored and remain reachable through GetDelivery.
func (m *Manager) ListDeliveries(ctx context.Context) []models.Delivery {
	r, err := m.store.Repos()
	if err != nil {
		m.log.Warn(ctx, "delivery cache unavailable", "error", err)
		return nil
	}
	list, err := r.Deliveries.ListByDate(ctx, timex.Date(m.clock.Now()))
	if err != nil {
		m.log.Warn(ctx, "failed to read delivery cache", "error", err)
		return nil
	}
	return list
}

func (m *Manager) GetDelivery(ctx context.Context, code string) (*models.Delivery, error) {
	r, err := m.store.Repos()
	if err != nil {
		return nil, err
	}
	return r.Deliveries.GetByCode(ctx, code)
}

// RefreshTrucks replaces the whole truck list in one transaction.
func (m *Manager) RefreshTrucks(ctx context.Context) (int, error) {
	if _, err := m.store.Repos(); err != nil {
		return 0, err
	}

	plates, err := m.source.FetchTrucks(ctx)
	if err != nil {
		return 0, err
	}

	now := timex.Stamp(m.clock.Now())
	err = m.store.InTx(ctx, func(ctx context.Context, r *store.Repositories) error {
		return r.References.ReplaceTrucks(ctx, plates, now)
	})
	if err != nil {
		return 0, err
	}
	return len(plates), nil
}

// RefreshExpenseTypes upserts the expense types carried by the manifest
// answer and leaves deliveries alone.
func (m *Manager) RefreshExpenseTypes(ctx context.Context, driver string) (int, error) {
	r, err := m.store.Repos()
	if err != nil {
		return 0, err
	}

	manifest, err := m.source.FetchManifest(ctx, driver)
	if err != nil {
		return 0, err
	}
	if err := r.References.UpsertExpenseTypes(ctx, manifest.ExpenseTypes, timex.Stamp(m.clock.Now())); err != nil {
		return 0, err
	}
	return len(manifest.ExpenseTypes), nil
}

func (m *Manager) ListTrucks(ctx context.Context) []string {
	r, err := m.store.Repos()
	if err != nil {
		m.log.Warn(ctx, "truck cache unavailable", "error", err)
		return nil
	}
	list, err := r.References.ListTrucks(ctx)
	if err != nil {
		m.log.Warn(ctx, "failed to read truck cache", "error", err)
		return nil
	}
	return list
}

func (m *Manager) ListExpenseTypes(ctx context.Context) []string {
	r, err := m.store.Repos()
	if err != nil {
		m.log.Warn(ctx, "expense type cache unavailable", "error", err)
		return nil
	}
	list, err := r.References.ListExpenseTypes(ctx)
	if err != nil {
		m.log.Warn(ctx, "failed to read expense type cache", "error", err)
		return nil
	}
	return list
}

// RecordPayeeUsage bumps the payee's usage count, inserting it if new.
func (m *Manager) RecordPayeeUsage(ctx context.Context, name, taxID string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	r, err := m.store.Repos()
	if err != nil {
		return err
	}
	return r.References.RecordPayee(ctx, name, strings.TrimSpace(taxID), timex.Stamp(m.clock.Now()))
}

// SuggestPayees returns up to SuggestLimit payees whose name contains q,
// most used first, then most recently used.
func (m *Manager) SuggestPayees(ctx context.Context, q string) []models.Payee {
	r, err := m.store.Repos()
	if err != nil {
		m.log.Warn(ctx, "payee cache unavailable", "error", err)
		return nil
	}
	list, err := r.References.SuggestPayees(ctx, strings.TrimSpace(q), SuggestLimit)
	if err != nil {
		m.log.Warn(ctx, "failed to read payees", "error", err)
		return nil
	}
	return list
}
