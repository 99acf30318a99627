package gateway

import (
	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/shopspring/decimal"
)

type manifestResponse struct {
	Success      bool               `json:"success"`
	Message      string             `json:"message,omitempty"`
	Data         []manifestDelivery `json:"data"`
	ExpenseTypes []string           `json:"expense_types,omitempty"`
}

type manifestDelivery struct {
	DeliveryID   string         `json:"delivery_id"`
	DeliveryDate string         `json:"delivery_date"`
	Driver       string         `json:"driver"`
	Helper       string         `json:"helper"`
	TruckPlateNo string         `json:"truckplateno"`
	Trip         int64          `json:"trip"`
	Stops        []manifestStop `json:"dds"`
}

type manifestStop struct {
	CustomerName    string `json:"customer_name"`
	DeliveryAddress string `json:"delivery_address"`
	SONo            string `json:"so_no"`
	DDSID           string `json:"dds_id"`
}

type trucksResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Data    []string `json:"data"`
}

type ingestResponse struct {
	Success bool   `json:"success"`
	Created int    `json:"created"`
	Message string `json:"message,omitempty"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Manifest is the decoded manifest API answer.
type Manifest struct {
	Deliveries   []models.Delivery
	ExpenseTypes []string
}

func (m manifestDelivery) toModel() models.Delivery {
	d := models.Delivery{
		Code:         m.DeliveryID,
		DeliveryDate: m.DeliveryDate,
		Driver:       m.Driver,
		Helper:       m.Helper,
		PlateNo:      m.TruckPlateNo,
		Trip:         m.Trip,
	}
	for i, s := range m.Stops {
		d.Stops = append(d.Stops, models.Stop{
			Position:        i + 1,
			CustomerName:    s.CustomerName,
			DeliveryAddress: s.DeliveryAddress,
			SONo:            s.SONo,
			ExternalID:      s.DDSID,
		})
	}
	return d
}

// TripPayload is the ingestion shape of one trip log row.
type TripPayload struct {
	ClientRef        string  `json:"client_ref"`
	DlfCode          string  `json:"dlf_code"`
	DropNumber       int64   `json:"drop_number"`
	FormType         string  `json:"form_type"`
	Driver           *string `json:"driver"`
	Helper           *string `json:"helper"`
	PlateNo          *string `json:"plate_no"`
	Trip             *int64  `json:"trip"`
	CustomerName     string  `json:"customer_name"`
	DeliveryAddress  string  `json:"delivery_address"`
	SONo             string  `json:"so_no"`
	DDSID            string  `json:"dds_id"`
	CompanyDeparture *string `json:"company_departure"`
	CompanyArrival   *string `json:"company_arrival"`
	StopArrival      *string `json:"arrival"`
	StopDeparture    *string `json:"departure"`
	DRNo             string  `json:"dr_no"`
	SINo             string  `json:"si_no"`
	Quantity         string  `json:"quantity"`
	Remarks          string  `json:"remarks"`
	Location         string  `json:"location"`
	CreatedAt        string  `json:"created_at"`
}

func NewTripPayload(t models.TripLog) TripPayload {
	return TripPayload{
		ClientRef:        t.ClientRef,
		DlfCode:          t.DlfCode,
		DropNumber:       t.DropNumber,
		FormType:         string(t.FormType),
		Driver:           t.Driver,
		Helper:           t.Helper,
		PlateNo:          t.PlateNo,
		Trip:             t.Trip,
		CustomerName:     t.CustomerName,
		DeliveryAddress:  t.DeliveryAddress,
		SONo:             t.SONo,
		DDSID:            t.ExternalID,
		CompanyDeparture: t.CompanyDeparture,
		CompanyArrival:   t.CompanyArrival,
		StopArrival:      t.StopArrival,
		StopDeparture:    t.StopDeparture,
		DRNo:             t.DRNo,
		SINo:             t.SINo,
		Quantity:         t.Quantity,
		Remarks:          t.Remarks,
		Location:         t.Location,
		CreatedAt:        t.CreatedAt,
	}
}

// FuelPayload is the ingestion shape of one fuel record. Money goes out as
// decimal strings.
type FuelPayload struct {
	ClientRef    string          `json:"client_ref"`
	FuelNo       string          `json:"fuel_no"`
	Driver       string          `json:"driver"`
	PlateNo      string          `json:"plate_no"`
	PaymentType  string          `json:"payment_type"`
	Station      string          `json:"station"`
	Odometer     string          `json:"odometer"`
	Liters       decimal.Decimal `json:"liters"`
	CostPerLiter decimal.Decimal `json:"cost_per_liter"`
	Total        string          `json:"total"`
	VAT          string          `json:"vat"`
	Net          string          `json:"net"`
	ReceiptURL   string          `json:"receipt_url"`
	Departure    *string         `json:"departure"`
	Arrival      *string         `json:"arrival"`
	CreatedAt    string          `json:"created_at"`
}

func NewFuelPayload(f models.FuelRecord) FuelPayload {
	return FuelPayload{
		ClientRef:    f.ClientRef,
		FuelNo:       f.FuelNo,
		Driver:       f.Driver,
		PlateNo:      f.PlateNo,
		PaymentType:  f.PaymentType,
		Station:      f.Station,
		Odometer:     f.Odometer,
		Liters:       f.Liters,
		CostPerLiter: f.CostPerLiter,
		Total:        f.Total.StringFixed(2),
		VAT:          f.VAT.StringFixed(2),
		Net:          f.Net.StringFixed(2),
		ReceiptURL:   f.ReceiptURL,
		Departure:    f.Departure,
		Arrival:      f.Arrival,
		CreatedAt:    f.CreatedAt,
	}
}
