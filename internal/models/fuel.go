package models

import "github.com/shopspring/decimal"

// FuelRecord is a single refueling event.
//
// Total, VAT and Net are derived from Liters and CostPerLiter on every save
// and are stored only so the wire payload can carry them.
type FuelRecord struct {
	ID           int64
	FuelNo       string
	Seq          int64
	ClientRef    string
	Driver       string
	PlateNo      string
	PaymentType  string
	Station      string
	Odometer     string
	Liters       decimal.Decimal
	CostPerLiter decimal.Decimal
	Total        decimal.Decimal
	VAT          decimal.Decimal
	Net          decimal.Decimal

	ReceiptPath     string
	ReceiptURL      string
	ReceiptUploaded bool

	Departure *string
	Arrival   *string

	Status    Status
	Revision  int64
	CreatedAt string
	UpdatedAt string
}

// HasPendingReceipt reports whether a local receipt photo still needs upload.
func (f FuelRecord) HasPendingReceipt() bool {
	return f.ReceiptPath != "" && !f.ReceiptUploaded
}
