package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/logging"
	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/dmitrijs2005/tripkeeper/internal/store"
	"github.com/dmitrijs2005/tripkeeper/internal/timex"
	"github.com/google/uuid"
)

// StartInput starts (or re-starts) a delivery. Empty header fields are taken
// from the cached manifest.
type StartInput struct {
	DlfCode  string
	FormType models.FormType
	Driver   string
	Helper   string
	PlateNo  string
	Trip     *int64
}

// DropInput saves one stop of a delivery.
//
// DropNumber 0 allocates the next number; any other number must name an
// existing drop. StopPosition, when > 0, pre-fills
// the customer fields from that manifest stop. When an existing drop is
// edited, empty strings and nil times leave the stored values unchanged.
type DropInput struct {
	DlfCode    string
	DropNumber int64
	FormType   models.FormType

	Driver  string
	Helper  string
	PlateNo string
	Trip    *int64

	StopPosition    int
	CustomerName    string
	DeliveryAddress string
	SONo            string
	ExternalID      string

	StopArrival   *string
	StopDeparture *string

	DRNo     string
	SINo     string
	Quantity string
	Remarks  string
	Location string
}

type TripService interface {
	StartDelivery(ctx context.Context, in StartInput) (*models.DeliveryView, error)
	SaveDrop(ctx context.Context, in DropInput) (*models.TripLog, error)
	NextDropNumber(ctx context.Context, code string) (int64, error)
	// SetCompanyTimes writes the company departure and arrival to every row
	// of the delivery. A nil argument keeps the current value. Calls are
	// last-write-wins.
	SetCompanyTimes(ctx context.Context, code string, departure, arrival *string) (*models.DeliveryView, error)
	// Finalize validates the delivery and moves its DRAFT rows to PENDING.
	Finalize(ctx context.Context, code string) (*models.DeliveryView, error)
	Get(ctx context.Context, code string) (*models.DeliveryView, error)
	List(ctx context.Context) ([]models.DeliveryView, error)
	DeleteDrop(ctx context.Context, code string, drop int64) error
	// DeleteDelivery removes every trip log and expense of the delivery.
	DeleteDelivery(ctx context.Context, code string) error
}

type tripService struct {
	store Storage
	clock timex.Clock
	log   logging.Logger
}

func NewTripService(s Storage, clock timex.Clock, log logging.Logger) TripService {
	return &tripService{store: s, clock: clock, log: log}
}

func (t *tripService) StartDelivery(ctx context.Context, in StartInput) (*models.DeliveryView, error) {
	code := strings.TrimSpace(in.DlfCode)
	if code == "" {
		return nil, &ValidationError{Missing: []string{"delivery code"}}
	}
	if in.FormType != "" && !in.FormType.Valid() {
		return nil, &ValidationError{Missing: []string{"form type"}}
	}

	r, err := t.store.Repos()
	if err != nil {
		return nil, err
	}

	manifest, err := cachedDelivery(ctx, r, code)
	if err != nil {
		return nil, err
	}

	row, err := r.Trips.GetByDrop(ctx, code, models.PlaceholderDrop)
	switch {
	case errors.Is(err, common.ErrNotFound):
		row = nil
	case err != nil:
		return nil, err
	case row.Status == models.StatusSynced:
		return nil, common.ErrAlreadySynced
	}

	existing, err := r.Trips.ListByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	view := FoldDelivery(existing)

	now := timex.Stamp(t.clock.Now())
	if row == nil {
		row = &models.TripLog{
			ClientRef:        uuid.NewString(),
			DlfCode:          code,
			DropNumber:       models.PlaceholderDrop,
			CompanyDeparture: view.CompanyDeparture,
			CompanyArrival:   view.CompanyArrival,
			Status:           models.StatusDraft,
			CreatedAt:        now,
		}
	}

	applyHeader(row, in.FormType, in.Driver, in.Helper, in.PlateNo, in.Trip)
	backfillHeader(row, view, manifest)
	if row.FormType == "" {
		row.FormType = models.FormDelivery
	}
	if blankPtr(row.Driver) {
		return nil, &ValidationError{Missing: []string{"driver"}}
	}
	row.UpdatedAt = now

	if row.ID == 0 {
		if _, err := r.Trips.Insert(ctx, row); err != nil {
			return nil, err
		}
		t.log.Info(ctx, "delivery started", "dlf_code", code)
	} else if err := r.Trips.Update(ctx, row); err != nil {
		return nil, err
	}

	return t.get(ctx, r, code)
}

func (t *tripService) SaveDrop(ctx context.Context, in DropInput) (*models.TripLog, error) {
	code := strings.TrimSpace(in.DlfCode)
	if code == "" {
		return nil, &ValidationError{Missing: []string{"delivery code"}}
	}
	if in.FormType != "" && !in.FormType.Valid() {
		return nil, &ValidationError{Missing: []string{"form type"}}
	}
	if in.DropNumber < 0 {
		return nil, &ValidationError{Missing: []string{"drop number"}}
	}
	if err := checkStamps(map[string]*string{"arrival": in.StopArrival, "departure": in.StopDeparture}); err != nil {
		return nil, err
	}

	r, err := t.store.Repos()
	if err != nil {
		return nil, err
	}

	manifest, err := cachedDelivery(ctx, r, code)
	if err != nil {
		return nil, err
	}

	var row *models.TripLog
	if in.DropNumber > 0 {
		row, err = r.Trips.GetByDrop(ctx, code, in.DropNumber)
		if err != nil {
			return nil, fmt.Errorf("delivery %s drop %d: %w", code, in.DropNumber, err)
		}
		if row.Status == models.StatusSynced {
			return nil, common.ErrAlreadySynced
		}
	}

	existing, err := r.Trips.ListByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	view := FoldDelivery(existing)

	now := timex.Stamp(t.clock.Now())
	if row == nil {
		max, err := r.Trips.MaxDropNumber(ctx, code)
		if err != nil {
			return nil, err
		}
		row = &models.TripLog{
			ClientRef:        uuid.NewString(),
			DlfCode:          code,
			DropNumber:       max + 1,
			CompanyDeparture: view.CompanyDeparture,
			CompanyArrival:   view.CompanyArrival,
			Status:           models.StatusDraft,
			CreatedAt:        now,
		}
	}

	applyHeader(row, in.FormType, in.Driver, in.Helper, in.PlateNo, in.Trip)
	backfillHeader(row, view, manifest)
	if row.FormType == "" {
		row.FormType = models.FormDelivery
	}
	applyStop(row, in, manifest)
	row.UpdatedAt = now

	var missing fields
	missing.require(!blankPtr(row.Driver), "driver")
	missing.require(!blank(row.CustomerName), "customer name")
	if row.Status == models.StatusPending {
		missing = append(missing, finalizeHeaderMissing(FoldDelivery([]models.TripLog{*row}))...)
		missing = append(missing, dropMissing(*row)...)
	}
	if err := missing.err(); err != nil {
		return nil, err
	}

	if row.ID == 0 {
		id, err := r.Trips.Insert(ctx, row)
		if err != nil {
			return nil, err
		}
		row.ID = id
	} else if err := r.Trips.Update(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (t *tripService) NextDropNumber(ctx context.Context, code string) (int64, error) {
	r, err := t.store.Repos()
	if err != nil {
		return 0, err
	}
	max, err := r.Trips.MaxDropNumber(ctx, code)
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// SetCompanyTimes also rewrites SYNCED rows so the delivery stays consistent
// locally; those rows are not resent.
func (t *tripService) SetCompanyTimes(ctx context.Context, code string, departure, arrival *string) (*models.DeliveryView, error) {
	if err := checkStamps(map[string]*string{"company departure": departure, "company arrival": arrival}); err != nil {
		return nil, err
	}

	r, err := t.store.Repos()
	if err != nil {
		return nil, err
	}

	rows, err := r.Trips.ListByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("delivery %s: %w", code, common.ErrNotFound)
	}
	view := FoldDelivery(rows)

	if departure == nil {
		departure = view.CompanyDeparture
	}
	if arrival == nil {
		arrival = view.CompanyArrival
	}

	if _, err := r.Trips.SetCompanyTimes(ctx, code, departure, arrival, timex.Stamp(t.clock.Now())); err != nil {
		return nil, err
	}
	return t.get(ctx, r, code)
}

func (t *tripService) Finalize(ctx context.Context, code string) (*models.DeliveryView, error) {
	r, err := t.store.Repos()
	if err != nil {
		return nil, err
	}

	rows, err := r.Trips.ListByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("delivery %s: %w", code, common.ErrNotFound)
	}
	view := FoldDelivery(rows)

	missing := fields(finalizeHeaderMissing(view))
	if len(view.Drops) == 0 {
		missing = append(missing, "at least one drop")
	}
	for _, d := range view.Drops {
		missing = append(missing, dropMissing(d)...)
	}
	if err := missing.err(); err != nil {
		return nil, err
	}

	now := timex.Stamp(t.clock.Now())
	err = t.store.InTx(ctx, func(ctx context.Context, tx *store.Repositories) error {
		for i := range rows {
			row := rows[i]
			if row.Status != models.StatusDraft {
				continue
			}
			backfillHeader(&row, view, nil)
			row.Status = models.StatusPending
			row.UpdatedAt = now
			if err := tx.Trips.Update(ctx, &row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.log.Info(ctx, "delivery finalized", "dlf_code", code, "drops", len(view.Drops))
	return t.get(ctx, r, code)
}

func (t *tripService) Get(ctx context.Context, code string) (*models.DeliveryView, error) {
	r, err := t.store.Repos()
	if err != nil {
		return nil, err
	}
	return t.get(ctx, r, code)
}

func (t *tripService) get(ctx context.Context, r *store.Repositories, code string) (*models.DeliveryView, error) {
	rows, err := r.Trips.ListByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("delivery %s: %w", code, common.ErrNotFound)
	}
	v := FoldDelivery(rows)
	return &v, nil
}

func (t *tripService) List(ctx context.Context) ([]models.DeliveryView, error) {
	r, err := t.store.Repos()
	if err != nil {
		return nil, err
	}
	rows, err := r.Trips.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return GroupTripLogs(rows), nil
}

func (t *tripService) DeleteDrop(ctx context.Context, code string, drop int64) error {
	r, err := t.store.Repos()
	if err != nil {
		return err
	}
	row, err := r.Trips.GetByDrop(ctx, code, drop)
	if err != nil {
		return err
	}
	if row.Status == models.StatusSynced {
		return common.ErrAlreadySynced
	}
	return r.Trips.Delete(ctx, row.ID)
}

func (t *tripService) DeleteDelivery(ctx context.Context, code string) error {
	err := t.store.InTx(ctx, func(ctx context.Context, tx *store.Repositories) error {
		if err := tx.Trips.DeleteByCode(ctx, code); err != nil {
			return err
		}
		return tx.Expenses.DeleteByCode(ctx, code)
	})
	if err != nil {
		return err
	}
	t.log.Info(ctx, "delivery deleted", "dlf_code", code)
	return nil
}

// cachedDelivery returns the cached manifest for code, or nil when the code
// was never fetched.
func cachedDelivery(ctx context.Context, r *store.Repositories, code string) (*models.Delivery, error) {
	d, err := r.Deliveries.GetByCode(ctx, code)
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	return d, err
}

func applyHeader(row *models.TripLog, form models.FormType, driver, helper, plate string, trip *int64) {
	if form != "" {
		row.FormType = form
	}
	if v := optional(driver); v != nil {
		row.Driver = v
	}
	if v := optional(helper); v != nil {
		row.Helper = v
	}
	if v := optional(plate); v != nil {
		row.PlateNo = v
	}
	if trip != nil {
		tr := *trip
		row.Trip = &tr
	}
}

// backfillHeader fills nil header fields from the delivery view, then from
// the cached manifest.
func backfillHeader(row *models.TripLog, v models.DeliveryView, m *models.Delivery) {
	if row.FormType == "" {
		row.FormType = v.FormType
	}
	row.Driver = firstNonNil(row.Driver, v.Driver)
	row.Helper = firstNonNil(row.Helper, v.Helper)
	row.PlateNo = firstNonNil(row.PlateNo, v.PlateNo)
	if row.Trip == nil {
		row.Trip = v.Trip
	}

	if m == nil {
		return
	}
	row.Driver = firstNonNil(row.Driver, optional(m.Driver))
	row.Helper = firstNonNil(row.Helper, optional(m.Helper))
	row.PlateNo = firstNonNil(row.PlateNo, optional(m.PlateNo))
	if row.Trip == nil && m.Trip > 0 {
		tr := m.Trip
		row.Trip = &tr
	}
}

func applyStop(row *models.TripLog, in DropInput, m *models.Delivery) {
	if m != nil && in.StopPosition > 0 {
		for _, s := range m.Stops {
			if s.Position != in.StopPosition {
				continue
			}
			row.CustomerName = s.CustomerName
			row.DeliveryAddress = s.DeliveryAddress
			row.SONo = s.SONo
			row.ExternalID = s.ExternalID
			break
		}
	}

	set := func(dst *string, v string) {
		if !blank(v) {
			*dst = strings.TrimSpace(v)
		}
	}
	set(&row.CustomerName, in.CustomerName)
	set(&row.DeliveryAddress, in.DeliveryAddress)
	set(&row.SONo, in.SONo)
	set(&row.ExternalID, in.ExternalID)
	set(&row.DRNo, in.DRNo)
	set(&row.SINo, in.SINo)
	set(&row.Quantity, in.Quantity)
	set(&row.Remarks, in.Remarks)
	set(&row.Location, in.Location)

	if in.StopArrival != nil {
		row.StopArrival = optional(*in.StopArrival)
	}
	if in.StopDeparture != nil {
		row.StopDeparture = optional(*in.StopDeparture)
	}
}

func finalizeHeaderMissing(v models.DeliveryView) []string {
	var missing fields
	missing.require(!blankPtr(v.Driver), "driver")
	missing.require(!blankPtr(v.PlateNo), "plate number")
	missing.require(v.FormType.Valid(), "form type")
	return missing
}

func dropMissing(d models.TripLog) []string {
	var missing fields
	missing.require(!blank(d.CustomerName), fmt.Sprintf("drop %d customer name", d.DropNumber))
	missing.require(!blankPtr(d.StopArrival), fmt.Sprintf("drop %d arrival", d.DropNumber))
	return missing
}
