package services

import "github.com/dmitrijs2005/tripkeeper/internal/models"

// statusRank orders statuses by how much they hold a delivery back.
func statusRank(s models.Status) int {
	switch s {
	case models.StatusDraft:
		return 2
	case models.StatusPending:
		return 1
	default:
		return 0
	}
}

// FoldDelivery folds rows of one delivery, in storage order, into a view.
//
// Header fields take the first non-nil value. Rows with drop number > 0 form
// the drop list; the placeholder only feeds the header and the status. The
// status is DRAFT if any row is DRAFT, else PENDING if any row is PENDING,
// else SYNCED.
func FoldDelivery(rows []models.TripLog) models.DeliveryView {
	var v models.DeliveryView
	if len(rows) == 0 {
		return v
	}

	v.DlfCode = rows[0].DlfCode
	v.Status = models.StatusSynced
	for _, r := range rows {
		if v.FormType == "" {
			v.FormType = r.FormType
		}
		v.Driver = firstNonNil(v.Driver, r.Driver)
		v.Helper = firstNonNil(v.Helper, r.Helper)
		v.PlateNo = firstNonNil(v.PlateNo, r.PlateNo)
		if v.Trip == nil {
			v.Trip = r.Trip
		}
		v.CompanyDeparture = firstNonNil(v.CompanyDeparture, r.CompanyDeparture)
		v.CompanyArrival = firstNonNil(v.CompanyArrival, r.CompanyArrival)

		if statusRank(r.Status) > statusRank(v.Status) {
			v.Status = r.Status
		}
		if !r.IsPlaceholder() {
			v.Drops = append(v.Drops, r)
		}
	}
	return v
}

// GroupTripLogs splits rows by delivery code and folds each group. Groups
// come out in the order their code first appears.
func GroupTripLogs(rows []models.TripLog) []models.DeliveryView {
	var order []string
	groups := make(map[string][]models.TripLog)
	for _, r := range rows {
		if _, seen := groups[r.DlfCode]; !seen {
			order = append(order, r.DlfCode)
		}
		groups[r.DlfCode] = append(groups[r.DlfCode], r)
	}

	views := make([]models.DeliveryView, 0, len(order))
	for _, code := range order {
		views = append(views, FoldDelivery(groups[code]))
	}
	return views
}

func firstNonNil(cur, next *string) *string {
	if cur != nil {
		return cur
	}
	return next
}
