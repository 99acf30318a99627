package deliveries

import (
	"context"

	"github.com/dmitrijs2005/tripkeeper/internal/models"
)

type Repository interface {
	// Upsert inserts or replaces the delivery with d.Code, including its stops.
	Upsert(ctx context.Context, d *models.Delivery) error

	// GetByCode returns the delivery regardless of its date.
	GetByCode(ctx context.Context, code string) (*models.Delivery, error)

	// ListByDate returns deliveries whose delivery date equals date (YYYY-MM-DD).
	ListByDate(ctx context.Context, date string) ([]models.Delivery, error)

	Delete(ctx context.Context, code string) error
}
