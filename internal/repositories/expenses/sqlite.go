package expenses

import (
	"context"
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

func (r *SQLiteRepository) Insert(ctx context.Context, e *models.Expense) (int64, error) {
	query := `INSERT INTO delivery_expenses (dlf_code, expense_type, amount, payee, payee_tin, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, e.DlfCode, e.ExpenseType, e.Amount.StringFixed(2), e.Payee, e.PayeeTaxID, e.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get expense id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) ListByCode(ctx context.Context, dlfCode string) ([]models.Expense, error) {
	query := `SELECT id, dlf_code, expense_type, amount, payee, payee_tin, created_at
		FROM delivery_expenses WHERE dlf_code = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, dlfCode)
	if err != nil {
		return nil, fmt.Errorf("failed to select expenses: %w", err)
	}
	defer rows.Close()

	var result []models.Expense
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.DlfCode, &e.ExpenseType, &e.Amount, &e.Payee, &e.PayeeTaxID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM delivery_expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteByCode(ctx context.Context, dlfCode string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM delivery_expenses WHERE dlf_code = ?`, dlfCode); err != nil {
		return fmt.Errorf("failed to delete expenses: %w", err)
	}
	return nil
}
