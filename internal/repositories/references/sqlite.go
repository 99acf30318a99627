package references

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tripkeeper/internal/dbx"
	"github.com/dmitrijs2005/tripkeeper/internal/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) UpsertExpenseTypes(ctx context.Context, names []string, refreshedAt string) error {
	query := `INSERT INTO expense_types (name, refreshed_at) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET refreshed_at = excluded.refreshed_at`
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, err := r.db.ExecContext(ctx, query, n, refreshedAt); err != nil {
			return fmt.Errorf("failed to upsert expense type %q: %w", n, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) ListExpenseTypes(ctx context.Context) ([]string, error) {
	return r.names(ctx, `SELECT name FROM expense_types ORDER BY name`)
}

// ReplaceTrucks is not atomic on its own; callers wrap it in a transaction.
func (r *SQLiteRepository) ReplaceTrucks(ctx context.Context, plates []string, refreshedAt string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM trucks`); err != nil {
		return fmt.Errorf("failed to clear trucks: %w", err)
	}
	query := `INSERT INTO trucks (plate_no, refreshed_at) VALUES (?, ?) ON CONFLICT(plate_no) DO NOTHING`
	for _, p := range plates {
		if p == "" {
			continue
		}
		if _, err := r.db.ExecContext(ctx, query, p, refreshedAt); err != nil {
			return fmt.Errorf("failed to insert truck %q: %w", p, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) ListTrucks(ctx context.Context) ([]string, error) {
	return r.names(ctx, `SELECT plate_no FROM trucks ORDER BY plate_no`)
}

func (r *SQLiteRepository) RecordPayee(ctx context.Context, name, taxID, usedAt string) error {
	query := `INSERT INTO payees (name, tax_id, usage_count, last_used) VALUES (?, ?, 1, ?)
		ON CONFLICT(name) DO UPDATE SET
			usage_count = payees.usage_count + 1,
			last_used = excluded.last_used,
			tax_id = CASE WHEN excluded.tax_id <> '' THEN excluded.tax_id ELSE payees.tax_id END`
	if _, err := r.db.ExecContext(ctx, query, name, taxID, usedAt); err != nil {
		return fmt.Errorf("failed to record payee: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SuggestPayees(ctx context.Context, q string, limit int) ([]models.Payee, error) {
	query := `SELECT name, tax_id, usage_count, last_used FROM payees
		WHERE name LIKE '%' || ? || '%' ESCAPE '\'
		ORDER BY usage_count DESC, last_used DESC
		LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, escapeLike(q), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select payees: %w", err)
	}
	defer rows.Close()

	var result []models.Payee
	for rows.Next() {
		var p models.Payee
		if err := rows.Scan(&p.Name, &p.TaxID, &p.UsageCount, &p.LastUsed); err != nil {
			return nil, fmt.Errorf("failed to scan payee: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) names(ctx context.Context, query string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select names: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan name: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
