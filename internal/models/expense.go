package models

import "github.com/shopspring/decimal"

// Expense belongs to a delivery and is removed with it.
type Expense struct {
	ID          int64
	DlfCode     string
	ExpenseType string
	Amount      decimal.Decimal
	Payee       string
	PayeeTaxID  string
	CreatedAt   string
}

// Payee is an autosuggest entry ranked by usage.
type Payee struct {
	Name       string
	TaxID      string
	UsageCount int64
	LastUsed   string
}
