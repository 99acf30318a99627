package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/logging"
	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/dmitrijs2005/tripkeeper/internal/timex"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	vatRate    = decimal.RequireFromString("0.12")
	vatDivisor = decimal.RequireFromString("1.12")
)

// Totals are the money fields derived from liters and price.
type Totals struct {
	Total decimal.Decimal
	VAT   decimal.Decimal
	Net   decimal.Decimal
}

// ComputeTotals derives VAT inclusive totals: total = liters x price,
// VAT = total / 1.12 x 0.12, net = total - VAT. Total and VAT are rounded
// half away from zero to two places.
func ComputeTotals(liters, costPerLiter decimal.Decimal) Totals {
	total := liters.Mul(costPerLiter).Round(2)
	vat := total.Div(vatDivisor).Mul(vatRate).Round(2)
	return Totals{Total: total, VAT: vat, Net: total.Sub(vat)}
}

// FuelNumber formats the human readable fuel identifier.
func FuelNumber(seq int64, driver string) string {
	return fmt.Sprintf("FM-%05d-%s", seq, common.Initials(driver))
}

// FuelInput creates (ID 0) or edits a fuel record. On edit every field is
// replaced.
type FuelInput struct {
	ID           int64
	Driver       string
	PlateNo      string
	PaymentType  string
	Station      string
	Odometer     string
	Liters       decimal.Decimal
	CostPerLiter decimal.Decimal
	ReceiptPath  string
	Departure    *string
	Arrival      *string
}

type FuelService interface {
	SaveDraft(ctx context.Context, in FuelInput) (*models.FuelRecord, error)
	// Finalize validates and saves the record as PENDING. Finalizing an
	// existing record keeps its id and fuel number.
	Finalize(ctx context.Context, in FuelInput) (*models.FuelRecord, error)
	Get(ctx context.Context, id int64) (*models.FuelRecord, error)
	List(ctx context.Context) ([]models.FuelRecord, error)
	Delete(ctx context.Context, id int64) error
}

type fuelService struct {
	store Storage
	clock timex.Clock
	log   logging.Logger
}

func NewFuelService(s Storage, clock timex.Clock, log logging.Logger) FuelService {
	return &fuelService{store: s, clock: clock, log: log}
}

func (f *fuelService) SaveDraft(ctx context.Context, in FuelInput) (*models.FuelRecord, error) {
	return f.save(ctx, in, false)
}

func (f *fuelService) Finalize(ctx context.Context, in FuelInput) (*models.FuelRecord, error) {
	return f.save(ctx, in, true)
}

func (f *fuelService) save(ctx context.Context, in FuelInput, finalize bool) (*models.FuelRecord, error) {
	if err := checkStamps(map[string]*string{"departure": in.Departure, "arrival": in.Arrival}); err != nil {
		return nil, err
	}

	r, err := f.store.Repos()
	if err != nil {
		return nil, err
	}

	var rec *models.FuelRecord
	if in.ID > 0 {
		rec, err = r.Fuel.GetByID(ctx, in.ID)
		if err != nil {
			return nil, err
		}
		if rec.Status == models.StatusSynced {
			return nil, common.ErrAlreadySynced
		}
	}

	// an edited PENDING record must stay complete
	if finalize || (rec != nil && rec.Status == models.StatusPending) {
		if err := fuelFinalMissing(in).err(); err != nil {
			return nil, err
		}
	} else if err := fuelDraftMissing(in).err(); err != nil {
		return nil, err
	}

	now := timex.Stamp(f.clock.Now())
	if rec == nil {
		seq, err := r.Fuel.MaxSeq(ctx)
		if err != nil {
			return nil, err
		}
		seq++
		rec = &models.FuelRecord{
			Seq:       seq,
			FuelNo:    FuelNumber(seq, in.Driver),
			ClientRef: uuid.NewString(),
			Status:    models.StatusDraft,
			CreatedAt: now,
		}
	}

	if rec.ReceiptPath != strings.TrimSpace(in.ReceiptPath) {
		rec.ReceiptPath = strings.TrimSpace(in.ReceiptPath)
		rec.ReceiptURL = ""
		rec.ReceiptUploaded = false
	}
	rec.Driver = strings.TrimSpace(in.Driver)
	rec.PlateNo = strings.TrimSpace(in.PlateNo)
	rec.PaymentType = strings.TrimSpace(in.PaymentType)
	rec.Station = strings.TrimSpace(in.Station)
	rec.Odometer = strings.TrimSpace(in.Odometer)
	rec.Liters = in.Liters
	rec.CostPerLiter = in.CostPerLiter
	totals := ComputeTotals(in.Liters, in.CostPerLiter)
	rec.Total, rec.VAT, rec.Net = totals.Total, totals.VAT, totals.Net
	rec.Departure = in.Departure
	rec.Arrival = in.Arrival
	if finalize {
		rec.Status = models.StatusPending
	}
	rec.UpdatedAt = now

	if rec.ID == 0 {
		id, err := r.Fuel.Insert(ctx, rec)
		if err != nil {
			return nil, err
		}
		rec.ID = id
	} else if err := r.Fuel.Update(ctx, rec); err != nil {
		return nil, err
	}

	if finalize {
		f.log.Info(ctx, "fuel record finalized", "fuel_no", rec.FuelNo)
	}
	return rec, nil
}

func (f *fuelService) Get(ctx context.Context, id int64) (*models.FuelRecord, error) {
	r, err := f.store.Repos()
	if err != nil {
		return nil, err
	}
	return r.Fuel.GetByID(ctx, id)
}

func (f *fuelService) List(ctx context.Context) ([]models.FuelRecord, error) {
	r, err := f.store.Repos()
	if err != nil {
		return nil, err
	}
	return r.Fuel.List(ctx)
}

func (f *fuelService) Delete(ctx context.Context, id int64) error {
	r, err := f.store.Repos()
	if err != nil {
		return err
	}
	rec, err := r.Fuel.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rec.Status == models.StatusSynced {
		return common.ErrAlreadySynced
	}
	return r.Fuel.Delete(ctx, id)
}

func fuelDraftMissing(in FuelInput) fields {
	var missing fields
	missing.require(!blank(in.Driver), "driver")
	missing.require(!blank(in.PlateNo), "plate number")
	return missing
}

func fuelFinalMissing(in FuelInput) fields {
	missing := fuelDraftMissing(in)
	missing.require(!blank(in.PaymentType), "payment type")
	missing.require(in.Liters.IsPositive(), "liters")
	missing.require(in.CostPerLiter.IsPositive(), "cost per liter")
	return missing
}
