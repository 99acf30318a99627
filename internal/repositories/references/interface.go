package references

import (
	"context"

	"github.com/dmitrijs2005/tripkeeper/internal/models"
)

// Repository holds server-provided lookup lists and the locally learned
// payee suggestions.
type Repository interface {
	UpsertExpenseTypes(ctx context.Context, names []string, refreshedAt string) error
	ListExpenseTypes(ctx context.Context) ([]string, error)

	// ReplaceTrucks swaps the truck list wholesale.
	ReplaceTrucks(ctx context.Context, plates []string, refreshedAt string) error
	ListTrucks(ctx context.Context) ([]string, error)

	// RecordPayee inserts the payee or bumps its usage count.
	RecordPayee(ctx context.Context, name, taxID, usedAt string) error
	// SuggestPayees returns payees whose name contains prefix, most used first.
	SuggestPayees(ctx context.Context, prefix string, limit int) ([]models.Payee, error)
}
