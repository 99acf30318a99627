package deliveries

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

func (r *SQLiteRepository) Upsert(ctx context.Context, d *models.Delivery) error {
	query := `INSERT INTO deliveries (dlf_code, delivery_date, driver, helper, plate_no, trip, refreshed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(dlf_code) DO UPDATE SET delivery_date = excluded.delivery_date,
			driver = excluded.driver,
			helper = excluded.helper,
			plate_no = excluded.plate_no,
			trip = excluded.trip,
			refreshed_at = excluded.refreshed_at`
	_, err := r.db.ExecContext(ctx, query,
		d.Code, d.DeliveryDate, d.Driver, d.Helper, d.PlateNo, d.Trip, d.RefreshedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert delivery: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM delivery_stops WHERE dlf_code = ?`, d.Code); err != nil {
		return fmt.Errorf("failed to clear delivery stops: %w", err)
	}

	for i, s := range d.Stops {
		_, err := r.db.ExecContext(ctx, `INSERT INTO delivery_stops
			(dlf_code, position, customer_name, delivery_address, so_no, dds_id) VALUES (?, ?, ?, ?, ?, ?)`,
			d.Code, i+1, s.CustomerName, s.DeliveryAddress, s.SONo, s.ExternalID)
		if err != nil {
			return fmt.Errorf("failed to insert delivery stop: %w", err)
		}
	}
	return nil
}

func (r *SQLiteRepository) GetByCode(ctx context.Context, code string) (*models.Delivery, error) {
	row := r.db.QueryRowContext(ctx, `SELECT dlf_code, delivery_date, driver, helper, plate_no, trip, refreshed_at
		FROM deliveries WHERE dlf_code = ?`, code)

	d := &models.Delivery{}
	err := row.Scan(&d.Code, &d.DeliveryDate, &d.Driver, &d.Helper, &d.PlateNo, &d.Trip, &d.RefreshedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery: %w", err)
	}

	stops, err := r.stops(ctx, code)
	if err != nil {
		return nil, err
	}
	d.Stops = stops
	return d, nil
}

func (r *SQLiteRepository) ListByDate(ctx context.Context, date string) ([]models.Delivery, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT dlf_code, delivery_date, driver, helper, plate_no, trip, refreshed_at
		FROM deliveries WHERE delivery_date = ? ORDER BY trip, dlf_code`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to select deliveries: %w", err)
	}

	var result []models.Delivery
	for rows.Next() {
		var d models.Delivery
		if err := rows.Scan(&d.Code, &d.DeliveryDate, &d.Driver, &d.Helper, &d.PlateNo, &d.Trip, &d.RefreshedAt); err != nil {
			rows.Close()
			return nil, err
		}
		result = append(result, d)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	// stops are loaded after the header cursor is closed so this also works
	// on a single-connection pool
	for i := range result {
		stops, err := r.stops(ctx, result[i].Code)
		if err != nil {
			return nil, err
		}
		result[i].Stops = stops
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, code string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM delivery_stops WHERE dlf_code = ?`, code); err != nil {
		return fmt.Errorf("failed to delete delivery stops: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM deliveries WHERE dlf_code = ?`, code); err != nil {
		return fmt.Errorf("failed to delete delivery: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) stops(ctx context.Context, code string) ([]models.Stop, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT position, customer_name, delivery_address, so_no, dds_id
		FROM delivery_stops WHERE dlf_code = ? ORDER BY position`, code)
	if err != nil {
		return nil, fmt.Errorf("failed to select delivery stops: %w", err)
	}
	defer rows.Close()

	var stops []models.Stop
	for rows.Next() {
		var s models.Stop
		if err := rows.Scan(&s.Position, &s.CustomerName, &s.DeliveryAddress, &s.SONo, &s.ExternalID); err != nil {
			return nil, err
		}
		stops = append(stops, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stops, nil
}
