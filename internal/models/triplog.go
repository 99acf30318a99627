package models

// FormType discriminates drop-offs from pick-ups.
type FormType string

const (
	FormDelivery FormType = "delivery"
	FormPickUp   FormType = "pick-up"
)

func (f FormType) Valid() bool {
	return f == FormDelivery || f == FormPickUp
}

// PlaceholderDrop is the reserved drop number of the row written when a
// delivery is started before any stop is logged.
const PlaceholderDrop = 0

// TripLog is one stop row of a delivery (or the drop 0 placeholder).
//
// Header fields are nullable so that the grouped view can back-fill them from
// other rows of the same delivery. Company times are shared by every row of a
// delivery; stop times belong to this row only.
type TripLog struct {
	ID         int64
	ClientRef  string
	DlfCode    string
	DropNumber int64
	FormType   FormType

	Driver  *string
	Helper  *string
	PlateNo *string
	Trip    *int64

	CustomerName    string
	DeliveryAddress string
	SONo            string
	ExternalID      string

	CompanyDeparture *string
	CompanyArrival   *string
	StopArrival      *string
	StopDeparture    *string

	DRNo     string
	SINo     string
	Quantity string
	Remarks  string
	Location string

	Status    Status
	Revision  int64
	CreatedAt string
	UpdatedAt string
}

// IsPlaceholder reports whether the row is the drop 0 placeholder.
func (t TripLog) IsPlaceholder() bool {
	return t.DropNumber == PlaceholderDrop
}

// DeliveryView is the read-side fold of every TripLog row sharing a code.
// It is never persisted.
type DeliveryView struct {
	DlfCode  string
	FormType FormType

	Driver  *string
	Helper  *string
	PlateNo *string
	Trip    *int64

	CompanyDeparture *string
	CompanyArrival   *string

	// Drops holds rows with drop number > 0 in storage order.
	Drops  []TripLog
	Status Status
}
