package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/tripkeeper/internal/services"
)

// Expense adds an expense to a delivery. Known payees matching the typed
// name are shown so the user can reuse the exact spelling.
func (a *App) Expense(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	in := services.ExpenseInput{DlfCode: args[0]}

	if types := a.catalog.ListExpenseTypes(ctx); len(types) > 0 {
		a.printf("Types: %s\n", strings.Join(types, ", "))
	}

	var err error
	if in.ExpenseType, err = a.ask("Expense type"); err != nil {
		return err
	}
	if in.Amount, err = a.askDecimal("Amount"); err != nil {
		return err
	}
	if in.Payee, err = a.ask("Payee"); err != nil {
		return err
	}

	if in.Payee != "" {
		for _, p := range a.catalog.SuggestPayees(ctx, in.Payee) {
			if strings.EqualFold(p.Name, in.Payee) {
				in.Payee, in.PayeeTaxID = p.Name, p.TaxID
				break
			}
		}
	}
	if in.PayeeTaxID == "" {
		if in.PayeeTaxID, err = a.ask("Payee TIN (optional)"); err != nil {
			return err
		}
	}

	e, err := a.expenses.Add(ctx, in)
	if err != nil {
		return err
	}
	a.printf("Added expense #%d %s %s\n", e.ID, e.ExpenseType, e.Amount.StringFixed(2))
	return nil
}

// Payees prints the autosuggest list for the given text.
func (a *App) Payees(ctx context.Context, args []string) error {
	list := a.catalog.SuggestPayees(ctx, strings.Join(args, " "))
	if len(list) == 0 {
		a.printf("No matching payees\n")
	}
	for _, p := range list {
		a.printf("%-30s %-16s used %d\n", p.Name, p.TaxID, p.UsageCount)
	}
	return nil
}
