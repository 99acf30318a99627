package trips

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/dbx"
	"github.com/dmitrijs2005/tripkeeper/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const tripColumns = `id, client_ref, dlf_code, drop_number, form_type, driver, helper, plate_no, trip,
	customer_name, delivery_address, so_no, dds_id,
	company_departure, company_arrival, stop_arrival, stop_departure,
	dr_no, si_no, quantity, remarks, location, status, revision, created_at, updated_at`

func (r *SQLiteRepository) Insert(ctx context.Context, t *models.TripLog) (int64, error) {
	query := `INSERT INTO trip_logs (client_ref, dlf_code, drop_number, form_type, driver, helper, plate_no, trip,
		customer_name, delivery_address, so_no, dds_id,
		company_departure, company_arrival, stop_arrival, stop_departure,
		dr_no, si_no, quantity, remarks, location, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		t.ClientRef, t.DlfCode, t.DropNumber, string(t.FormType),
		dbx.NullString(t.Driver), dbx.NullString(t.Helper), dbx.NullString(t.PlateNo), dbx.NullInt64(t.Trip),
		t.CustomerName, t.DeliveryAddress, t.SONo, t.ExternalID,
		dbx.NullString(t.CompanyDeparture), dbx.NullString(t.CompanyArrival),
		dbx.NullString(t.StopArrival), dbx.NullString(t.StopDeparture),
		t.DRNo, t.SINo, t.Quantity, t.Remarks, t.Location, int(t.Status), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert trip log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get trip log id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, t *models.TripLog) error {
	query := `UPDATE trip_logs SET form_type = ?, driver = ?, helper = ?, plate_no = ?, trip = ?,
		customer_name = ?, delivery_address = ?, so_no = ?, dds_id = ?,
		company_departure = ?, company_arrival = ?, stop_arrival = ?, stop_departure = ?,
		dr_no = ?, si_no = ?, quantity = ?, remarks = ?, location = ?, status = ?, updated_at = ?,
		revision = revision + 1
		WHERE id = ? AND status <> ?`

	res, err := r.db.ExecContext(ctx, query,
		string(t.FormType),
		dbx.NullString(t.Driver), dbx.NullString(t.Helper), dbx.NullString(t.PlateNo), dbx.NullInt64(t.Trip),
		t.CustomerName, t.DeliveryAddress, t.SONo, t.ExternalID,
		dbx.NullString(t.CompanyDeparture), dbx.NullString(t.CompanyArrival),
		dbx.NullString(t.StopArrival), dbx.NullString(t.StopDeparture),
		t.DRNo, t.SINo, t.Quantity, t.Remarks, t.Location, int(t.Status), t.UpdatedAt, t.ID, int(models.StatusSynced))
	if err != nil {
		return fmt.Errorf("failed to update trip log: %w", err)
	}
	return r.expectUnsynced(ctx, res, t.ID)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trip_logs WHERE id = ? AND status <> ?`, id, int(models.StatusSynced))
	if err != nil {
		return fmt.Errorf("failed to delete trip log: %w", err)
	}
	return r.expectUnsynced(ctx, res, id)
}

func (r *SQLiteRepository) DeleteByCode(ctx context.Context, code string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM trip_logs WHERE dlf_code = ?`, code); err != nil {
		return fmt.Errorf("failed to delete trip logs: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.TripLog, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+tripColumns+` FROM trip_logs WHERE id = ?`, id)
	return scanTrip(row)
}

func (r *SQLiteRepository) GetByDrop(ctx context.Context, code string, drop int64) (*models.TripLog, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+tripColumns+` FROM trip_logs WHERE dlf_code = ? AND drop_number = ?`, code, drop)
	return scanTrip(row)
}

func (r *SQLiteRepository) ListByCode(ctx context.Context, code string) ([]models.TripLog, error) {
	return r.list(ctx, `SELECT `+tripColumns+` FROM trip_logs WHERE dlf_code = ? ORDER BY id`, code)
}

func (r *SQLiteRepository) ListAll(ctx context.Context) ([]models.TripLog, error) {
	return r.list(ctx, `SELECT `+tripColumns+` FROM trip_logs ORDER BY id`)
}

func (r *SQLiteRepository) ListPending(ctx context.Context) ([]models.TripLog, error) {
	return r.list(ctx, `SELECT `+tripColumns+` FROM trip_logs WHERE status = ? AND drop_number > 0 ORDER BY id`,
		int(models.StatusPending))
}

func (r *SQLiteRepository) MaxDropNumber(ctx context.Context, code string) (int64, error) {
	var max int64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(drop_number), 0) FROM trip_logs WHERE dlf_code = ?`, code).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to get max drop number: %w", err)
	}
	return max, nil
}

func (r *SQLiteRepository) SetCompanyTimes(ctx context.Context, code string, departure, arrival *string, updatedAt string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE trip_logs SET company_departure = ?, company_arrival = ?, updated_at = ?,
		revision = revision + 1
		WHERE dlf_code = ?`, dbx.NullString(departure), dbx.NullString(arrival), updatedAt, code)
	if err != nil {
		return 0, fmt.Errorf("failed to set company times: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, revs []models.Revision, updatedAt string) (int64, error) {
	var total int64
	for _, rev := range revs {
		res, err := r.db.ExecContext(ctx, `UPDATE trip_logs SET status = ?, updated_at = ?
			WHERE id = ? AND status = ? AND revision = ?`,
			int(models.StatusSynced), updatedAt, rev.ID, int(models.StatusPending), rev.Revision)
		if err != nil {
			return total, fmt.Errorf("failed to mark trip log synced: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("failed to get rows affected: %w", err)
		}
		total += n
	}
	return total, nil
}

func (r *SQLiteRepository) MarkPlaceholdersSynced(ctx context.Context, codes []string, updatedAt string) (int64, error) {
	if len(codes) == 0 {
		return 0, nil
	}
	args := make([]any, 0, len(codes)+3)
	args = append(args, int(models.StatusSynced), updatedAt)
	for _, c := range codes {
		args = append(args, c)
	}
	args = append(args, int(models.StatusPending))

	query := `UPDATE trip_logs SET status = ?, updated_at = ?
		WHERE drop_number = 0 AND dlf_code IN (` + placeholders(len(codes)) + `) AND status = ?`
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to mark placeholders synced: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]models.TripLog, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select trip logs: %w", err)
	}
	defer rows.Close()

	var result []models.TripLog
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrip(s scanner) (*models.TripLog, error) {
	var (
		t                      models.TripLog
		formType               string
		status                 int
		driver, helper, plate  sql.NullString
		trip                   sql.NullInt64
		cDep, cArr, sArr, sDep sql.NullString
	)
	err := s.Scan(&t.ID, &t.ClientRef, &t.DlfCode, &t.DropNumber, &formType, &driver, &helper, &plate, &trip,
		&t.CustomerName, &t.DeliveryAddress, &t.SONo, &t.ExternalID,
		&cDep, &cArr, &sArr, &sDep,
		&t.DRNo, &t.SINo, &t.Quantity, &t.Remarks, &t.Location, &status, &t.Revision, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan trip log: %w", err)
	}

	t.FormType = models.FormType(formType)
	t.Status = models.Status(status)
	t.Driver, t.Helper, t.PlateNo = dbx.StringPtr(driver), dbx.StringPtr(helper), dbx.StringPtr(plate)
	t.Trip = dbx.Int64Ptr(trip)
	t.CompanyDeparture, t.CompanyArrival = dbx.StringPtr(cDep), dbx.StringPtr(cArr)
	t.StopArrival, t.StopDeparture = dbx.StringPtr(sArr), dbx.StringPtr(sDep)
	return &t, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// expectUnsynced turns a write that matched no row into ErrNotFound when
// the row is gone, or ErrAlreadySynced when it was synced meanwhile.
func (r *SQLiteRepository) expectUnsynced(ctx context.Context, res sql.Result, id int64) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra > 0 {
		return nil
	}
	var status int
	err = r.db.QueryRowContext(ctx, `SELECT status FROM trip_logs WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check trip log status: %w", err)
	}
	return common.ErrAlreadySynced
}
