package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/tripkeeper/internal/logging"
	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/dmitrijs2005/tripkeeper/internal/timex"
	"github.com/shopspring/decimal"
)

type ExpenseInput struct {
	DlfCode     string
	ExpenseType string
	Amount      decimal.Decimal
	Payee       string
	PayeeTaxID  string
}

// PayeeRecorder ranks payees for autosuggest.
type PayeeRecorder interface {
	RecordPayeeUsage(ctx context.Context, name, taxID string) error
}

type ExpenseService interface {
	Add(ctx context.Context, in ExpenseInput) (*models.Expense, error)
	List(ctx context.Context, code string) ([]models.Expense, error)
	Delete(ctx context.Context, id int64) error
}

type expenseService struct {
	store  Storage
	payees PayeeRecorder
	clock  timex.Clock
	log    logging.Logger
}

func NewExpenseService(s Storage, payees PayeeRecorder, clock timex.Clock, log logging.Logger) ExpenseService {
	return &expenseService{store: s, payees: payees, clock: clock, log: log}
}

// Add stores the expense. A payee that cannot be recorded for autosuggest is
// logged and does not fail the call.
func (e *expenseService) Add(ctx context.Context, in ExpenseInput) (*models.Expense, error) {
	var missing fields
	missing.require(!blank(in.DlfCode), "delivery code")
	missing.require(!blank(in.ExpenseType), "expense type")
	missing.require(in.Amount.IsPositive(), "amount")
	if err := missing.err(); err != nil {
		return nil, err
	}

	r, err := e.store.Repos()
	if err != nil {
		return nil, err
	}

	exp := &models.Expense{
		DlfCode:     strings.TrimSpace(in.DlfCode),
		ExpenseType: strings.TrimSpace(in.ExpenseType),
		Amount:      in.Amount,
		Payee:       strings.TrimSpace(in.Payee),
		PayeeTaxID:  strings.TrimSpace(in.PayeeTaxID),
		CreatedAt:   timex.Stamp(e.clock.Now()),
	}
	id, err := r.Expenses.Insert(ctx, exp)
	if err != nil {
		return nil, err
	}
	exp.ID = id

	if exp.Payee != "" && e.payees != nil {
		if err := e.payees.RecordPayeeUsage(ctx, exp.Payee, exp.PayeeTaxID); err != nil {
			e.log.Warn(ctx, "failed to record payee", "payee", exp.Payee, "error", err)
		}
	}
	return exp, nil
}

func (e *expenseService) List(ctx context.Context, code string) ([]models.Expense, error) {
	r, err := e.store.Repos()
	if err != nil {
		return nil, err
	}
	return r.Expenses.ListByCode(ctx, code)
}

func (e *expenseService) Delete(ctx context.Context, id int64) error {
	r, err := e.store.Repos()
	if err != nil {
		return err
	}
	return r.Expenses.Delete(ctx, id)
}
