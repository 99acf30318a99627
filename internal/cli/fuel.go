package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/dmitrijs2005/tripkeeper/internal/services"
)

// Fuel prompts for a refueling record and saves it as a draft. With an id it
// re-enters that record.
func (a *App) Fuel(ctx context.Context, args []string) error {
	in := services.FuelInput{Driver: a.currentUser().FullName}
	if len(args) == 1 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return errUsage
		}
		in.ID = id
	} else if len(args) > 1 {
		return errUsage
	}

	if trucks := a.catalog.ListTrucks(ctx); len(trucks) > 0 {
		a.printf("Trucks: %s\n", strings.Join(trucks, ", "))
	}

	var err error
	if in.PlateNo, err = a.ask("Plate number"); err != nil {
		return err
	}
	if in.PaymentType, err = a.ask("Payment type (cash, card, fleet card)"); err != nil {
		return err
	}
	if in.Station, err = a.ask("Station"); err != nil {
		return err
	}
	if in.Odometer, err = a.ask("Odometer"); err != nil {
		return err
	}
	if in.Liters, err = a.askDecimal("Liters"); err != nil {
		return err
	}
	if in.CostPerLiter, err = a.askDecimal("Cost per liter"); err != nil {
		return err
	}
	if in.ReceiptPath, err = a.ask("Receipt photo path (empty for none)"); err != nil {
		return err
	}
	if in.Departure, err = a.askTime("Departure"); err != nil {
		return err
	}
	if in.Arrival, err = a.askTime("Arrival"); err != nil {
		return err
	}

	rec, err := a.fuel.SaveDraft(ctx, in)
	if err != nil {
		return err
	}
	a.printFuel(rec)
	a.printf("Saved as draft, run 'fuelfinal %d' to queue it for sync\n", rec.ID)
	return nil
}

// FuelFinal finalizes a stored fuel record without re-entering it.
func (a *App) FuelFinal(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return errUsage
	}

	rec, err := a.fuel.Get(ctx, id)
	if err != nil {
		return err
	}
	rec, err = a.fuel.Finalize(ctx, fuelInputFrom(rec))
	if err != nil {
		return err
	}
	a.printFuel(rec)
	return nil
}

func (a *App) Fuels(ctx context.Context, _ []string) error {
	recs, err := a.fuel.List(ctx)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		a.printf("No fuel records\n")
	}
	for i := range recs {
		a.printFuel(&recs[i])
	}
	return nil
}

func fuelInputFrom(r *models.FuelRecord) services.FuelInput {
	return services.FuelInput{
		ID:           r.ID,
		Driver:       r.Driver,
		PlateNo:      r.PlateNo,
		PaymentType:  r.PaymentType,
		Station:      r.Station,
		Odometer:     r.Odometer,
		Liters:       r.Liters,
		CostPerLiter: r.CostPerLiter,
		ReceiptPath:  r.ReceiptPath,
		Departure:    r.Departure,
		Arrival:      r.Arrival,
	}
}

func (a *App) printFuel(r *models.FuelRecord) {
	a.printf("#%d %s %s %s L x %s = %s (VAT %s, net %s) [%s]\n",
		r.ID, r.FuelNo, r.PlateNo, r.Liters.String(), r.CostPerLiter.StringFixed(2),
		r.Total.StringFixed(2), r.VAT.StringFixed(2), r.Net.StringFixed(2), r.Status)
}
