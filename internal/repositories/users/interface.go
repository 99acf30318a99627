package users

import (
	"context"

	"github.com/dmitrijs2005/tripkeeper/internal/models"
)

// Repository persists local user accounts.
type Repository interface {
	// Insert stores u and returns the generated id.
	Insert(ctx context.Context, u *models.User) (int64, error)

	// Update overwrites profile and credential columns of the user with u.ID.
	Update(ctx context.Context, u *models.User) error

	// Delete hard-deletes the user. A missing id yields common.ErrNotFound.
	Delete(ctx context.Context, id int64) error

	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// List returns every user ordered by username.
	List(ctx context.Context) ([]models.User, error)
}
