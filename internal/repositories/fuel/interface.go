package fuel

import (
	"context"

	"github.com/dmitrijs2005/tripkeeper/internal/models"
)

// Repository persists fuel records. Money columns are stored as decimal
// strings.
type Repository interface {
	Insert(ctx context.Context, f *models.FuelRecord) (int64, error)
	// Update rewrites a record that is not SYNCED and bumps its revision. A
	// SYNCED record yields common.ErrAlreadySynced.
	Update(ctx context.Context, f *models.FuelRecord) error
	// Delete removes a record that is not SYNCED.
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.FuelRecord, error)

	// List returns every record, newest first.
	List(ctx context.Context) ([]models.FuelRecord, error)
	// ListPending returns PENDING records in storage order.
	ListPending(ctx context.Context) ([]models.FuelRecord, error)

	// MaxSeq returns the highest running sequence number, 0 if none.
	MaxSeq(ctx context.Context) (int64, error)

	// SetReceipt records the uploaded URL of a receipt photo, flags it
	// uploaded and bumps the revision.
	SetReceipt(ctx context.Context, id int64, url string, updatedAt string) error

	// MarkSynced moves each PENDING record to SYNCED if its revision still
	// matches, and returns the number of records moved.
	MarkSynced(ctx context.Context, revs []models.Revision, updatedAt string) (int64, error)
}
