package fuel

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/dbx"
	"github.com/dmitrijs2005/tripkeeper/internal/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const fuelColumns = `id, fuel_no, seq, client_ref, driver, plate_no, payment_type, station, odometer,
	liters, cost_per_liter, total, vat, net, receipt_path, receipt_url, receipt_uploaded,
	departure, arrival, status, revision, created_at, updated_at`

func (r *SQLiteRepository) Insert(ctx context.Context, f *models.FuelRecord) (int64, error) {
	query := `INSERT INTO fuel_records (fuel_no, seq, client_ref, driver, plate_no, payment_type, station, odometer,
		liters, cost_per_liter, total, vat, net, receipt_path, receipt_url, receipt_uploaded,
		departure, arrival, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		f.FuelNo, f.Seq, f.ClientRef, f.Driver, f.PlateNo, f.PaymentType, f.Station, f.Odometer,
		f.Liters.String(), f.CostPerLiter.String(), f.Total.StringFixed(2), f.VAT.StringFixed(2), f.Net.StringFixed(2),
		f.ReceiptPath, f.ReceiptURL, f.ReceiptUploaded,
		dbx.NullString(f.Departure), dbx.NullString(f.Arrival), int(f.Status), f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert fuel record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get fuel record id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, f *models.FuelRecord) error {
	query := `UPDATE fuel_records SET driver = ?, plate_no = ?, payment_type = ?, station = ?, odometer = ?,
		liters = ?, cost_per_liter = ?, total = ?, vat = ?, net = ?,
		receipt_path = ?, receipt_url = ?, receipt_uploaded = ?,
		departure = ?, arrival = ?, status = ?, updated_at = ?, revision = revision + 1
		WHERE id = ? AND status <> ?`

	res, err := r.db.ExecContext(ctx, query,
		f.Driver, f.PlateNo, f.PaymentType, f.Station, f.Odometer,
		f.Liters.String(), f.CostPerLiter.String(), f.Total.StringFixed(2), f.VAT.StringFixed(2), f.Net.StringFixed(2),
		f.ReceiptPath, f.ReceiptURL, f.ReceiptUploaded,
		dbx.NullString(f.Departure), dbx.NullString(f.Arrival), int(f.Status), f.UpdatedAt, f.ID, int(models.StatusSynced))
	if err != nil {
		return fmt.Errorf("failed to update fuel record: %w", err)
	}
	return r.expectUnsynced(ctx, res, f.ID)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM fuel_records WHERE id = ? AND status <> ?`, id, int(models.StatusSynced))
	if err != nil {
		return fmt.Errorf("failed to delete fuel record: %w", err)
	}
	return r.expectUnsynced(ctx, res, id)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.FuelRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+fuelColumns+` FROM fuel_records WHERE id = ?`, id)
	return scanFuel(row)
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.FuelRecord, error) {
	return r.list(ctx, `SELECT `+fuelColumns+` FROM fuel_records ORDER BY id DESC`)
}

func (r *SQLiteRepository) ListPending(ctx context.Context) ([]models.FuelRecord, error) {
	return r.list(ctx, `SELECT `+fuelColumns+` FROM fuel_records WHERE status = ? ORDER BY id`, int(models.StatusPending))
}

func (r *SQLiteRepository) MaxSeq(ctx context.Context) (int64, error) {
	var max int64
	if err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM fuel_records`).Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to get max fuel sequence: %w", err)
	}
	return max, nil
}

func (r *SQLiteRepository) SetReceipt(ctx context.Context, id int64, url string, updatedAt string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE fuel_records SET receipt_url = ?, receipt_uploaded = 1, updated_at = ?,
		revision = revision + 1
		WHERE id = ? AND status <> ?`, url, updatedAt, id, int(models.StatusSynced))
	if err != nil {
		return fmt.Errorf("failed to set receipt url: %w", err)
	}
	return r.expectUnsynced(ctx, res, id)
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, revs []models.Revision, updatedAt string) (int64, error) {
	var total int64
	for _, rev := range revs {
		res, err := r.db.ExecContext(ctx, `UPDATE fuel_records SET status = ?, updated_at = ?
			WHERE id = ? AND status = ? AND revision = ?`,
			int(models.StatusSynced), updatedAt, rev.ID, int(models.StatusPending), rev.Revision)
		if err != nil {
			return total, fmt.Errorf("failed to mark fuel record synced: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("failed to get rows affected: %w", err)
		}
		total += n
	}
	return total, nil
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]models.FuelRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select fuel records: %w", err)
	}
	defer rows.Close()

	var result []models.FuelRecord
	for rows.Next() {
		f, err := scanFuel(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFuel(s scanner) (*models.FuelRecord, error) {
	var (
		f                 models.FuelRecord
		status            int
		departure, arrive sql.NullString
	)
	err := s.Scan(&f.ID, &f.FuelNo, &f.Seq, &f.ClientRef, &f.Driver, &f.PlateNo, &f.PaymentType, &f.Station, &f.Odometer,
		&f.Liters, &f.CostPerLiter, &f.Total, &f.VAT, &f.Net, &f.ReceiptPath, &f.ReceiptURL, &f.ReceiptUploaded,
		&departure, &arrive, &status, &f.Revision, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan fuel record: %w", err)
	}
	f.Status = models.Status(status)
	f.Departure, f.Arrival = dbx.StringPtr(departure), dbx.StringPtr(arrive)
	return &f, nil
}

// expectUnsynced turns a write that matched no row into ErrNotFound when
// the record is gone, or ErrAlreadySynced when it was synced meanwhile.
func (r *SQLiteRepository) expectUnsynced(ctx context.Context, res sql.Result, id int64) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra > 0 {
		return nil
	}
	var status int
	err = r.db.QueryRowContext(ctx, `SELECT status FROM fuel_records WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check fuel record status: %w", err)
	}
	return common.ErrAlreadySynced
}
