package expenses

import (
	"context"

	"github.com/dmitrijs2005/tripkeeper/internal/models"
)

// Repository persists delivery expenses.
type Repository interface {
	Insert(ctx context.Context, e *models.Expense) (int64, error)
	ListByCode(ctx context.Context, dlfCode string) ([]models.Expense, error)
	Delete(ctx context.Context, id int64) error
	DeleteByCode(ctx context.Context, dlfCode string) error
}
