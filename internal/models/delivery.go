package models

// Delivery is a cached manifest header fetched from the manifest API,
// identified by its code. It is replaced wholesale on refetch.
type Delivery struct {
	Code         string
	DeliveryDate string
	Driver       string
	Helper       string
	PlateNo      string
	Trip         int64
	Stops        []Stop
	RefreshedAt  string
}

// Stop is one expected customer stop of a delivery manifest.
type Stop struct {
	Position        int
	CustomerName    string
	DeliveryAddress string
	SONo            string
	ExternalID      string
}
