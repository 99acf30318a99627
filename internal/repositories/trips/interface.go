package trips

import (
	"context"

	"github.com/dmitrijs2005/tripkeeper/internal/models"
)

type Repository interface {
	Insert(ctx context.Context, t *models.TripLog) (int64, error)
	// Update rewrites a row that is not SYNCED and bumps its revision. A
	// SYNCED row yields common.ErrAlreadySynced.
	Update(ctx context.Context, t *models.TripLog) error
	// Delete removes a row that is not SYNCED.
	Delete(ctx context.Context, id int64) error
	DeleteByCode(ctx context.Context, code string) error

	GetByID(ctx context.Context, id int64) (*models.TripLog, error)
	GetByDrop(ctx context.Context, code string, drop int64) (*models.TripLog, error)

	// ListByCode returns every row of a delivery in storage order.
	ListByCode(ctx context.Context, code string) ([]models.TripLog, error)
	// ListAll returns every row in storage order.
	ListAll(ctx context.Context) ([]models.TripLog, error)
	// ListPending returns PENDING rows with drop_number > 0.
	ListPending(ctx context.Context) ([]models.TripLog, error)

	// MaxDropNumber returns the highest drop number of the delivery, 0 if none.
	MaxDropNumber(ctx context.Context, code string) (int64, error)

	// SetCompanyTimes writes the company departure/arrival to every row of
	// the delivery, bumps their revisions and returns the number of rows
	// touched.
	SetCompanyTimes(ctx context.Context, code string, departure, arrival *string, updatedAt string) (int64, error)

	// MarkSynced moves each PENDING row to SYNCED if its revision still
	// matches, and returns the number of rows moved.
	MarkSynced(ctx context.Context, revs []models.Revision, updatedAt string) (int64, error)

	// MarkPlaceholdersSynced moves PENDING drop 0 rows of the given deliveries
	// to SYNCED.
	MarkPlaceholdersSynced(ctx context.Context, codes []string, updatedAt string) (int64, error)
}
