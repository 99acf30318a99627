package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/dmitrijs2005/tripkeeper/internal/services"
)

// Refresh pulls today's manifest for the session user and the truck list.
// A failing part is reported and the other part still runs.
func (a *App) Refresh(ctx context.Context, _ []string) error {
	u := a.currentUser()

	n, err := a.catalog.RefreshDeliveries(ctx, u.FullName)
	if err != nil {
		a.printf("Deliveries not refreshed: %v\n", err)
	} else {
		a.printf("Cached %d deliveries\n", n)
	}

	trucks, terr := a.catalog.RefreshTrucks(ctx)
	if terr != nil {
		a.printf("Trucks not refreshed: %v\n", terr)
	} else {
		a.printf("Cached %d trucks\n", trucks)
	}

	if err != nil {
		return err
	}
	return terr
}

// Deliveries lists today's cached manifest.
func (a *App) Deliveries(ctx context.Context, _ []string) error {
	list := a.catalog.ListDeliveries(ctx)
	if len(list) == 0 {
		a.printf("No deliveries cached for today, run refresh\n")
		return nil
	}
	for _, d := range list {
		a.printf("%-12s trip %d  %-10s %d stops  driver %s\n", d.Code, d.Trip, d.PlateNo, len(d.Stops), d.Driver)
	}
	return nil
}

// Start opens a delivery. Empty answers fall back to the manifest.
func (a *App) Start(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	if trucks := a.catalog.ListTrucks(ctx); len(trucks) > 0 {
		a.printf("Trucks: %s\n", strings.Join(trucks, ", "))
	}
	plate, err := a.ask("Plate number (empty to use manifest)")
	if err != nil {
		return err
	}
	form, err := a.ask("Form type (delivery, pick-up; empty for delivery)")
	if err != nil {
		return err
	}

	in := services.StartInput{DlfCode: args[0], FormType: models.FormType(form), PlateNo: plate}
	if u := a.currentUser(); u.Position == models.PositionDriver {
		in.Driver = u.FullName
	}

	v, err := a.trips.StartDelivery(ctx, in)
	if err != nil {
		return err
	}
	a.printView(v)
	return nil
}

// Drop records a new stop, or edits stop number args[1].
func (a *App) Drop(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errUsage
	}
	in := services.DropInput{DlfCode: args[0]}
	if len(args) == 2 {
		n, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil || n <= 0 {
			return errUsage
		}
		in.DropNumber = n
		if err := a.requireDrop(ctx, in.DlfCode, n); err != nil {
			return err
		}
	}

	if m, err := a.catalog.GetDelivery(ctx, in.DlfCode); err == nil && len(m.Stops) > 0 {
		for _, s := range m.Stops {
			a.printf("  %d. %s, %s\n", s.Position, s.CustomerName, s.DeliveryAddress)
		}
		pos, err := a.askInt("Manifest stop # (empty to type the customer)")
		if err != nil {
			return err
		}
		in.StopPosition = pos
	}

	var err error
	if in.StopPosition == 0 {
		if in.CustomerName, err = a.ask("Customer name"); err != nil {
			return err
		}
		if in.DeliveryAddress, err = a.ask("Address"); err != nil {
			return err
		}
	}
	if in.StopArrival, err = a.askTime("Arrival"); err != nil {
		return err
	}
	if in.StopDeparture, err = a.askTime("Departure"); err != nil {
		return err
	}
	if in.DRNo, err = a.ask("DR no"); err != nil {
		return err
	}
	if in.SINo, err = a.ask("SI no"); err != nil {
		return err
	}
	if in.Quantity, err = a.ask("Quantity"); err != nil {
		return err
	}
	if in.Remarks, err = a.ask("Remarks"); err != nil {
		return err
	}

	row, err := a.trips.SaveDrop(ctx, in)
	if err != nil {
		return err
	}
	a.printf("Saved drop %d of %s (%s)\n", row.DropNumber, row.DlfCode, row.Status)
	return nil
}

func (a *App) DeleteDrop(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	n, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return errUsage
	}
	if err := a.trips.DeleteDrop(ctx, args[0], n); err != nil {
		return err
	}
	a.printf("Deleted drop %d of %s\n", n, args[0])
	return nil
}

// Times sets the company departure and arrival of a delivery.
func (a *App) Times(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	dep, err := a.askTime("Company departure")
	if err != nil {
		return err
	}
	arr, err := a.askTime("Company arrival")
	if err != nil {
		return err
	}
	v, err := a.trips.SetCompanyTimes(ctx, args[0], dep, arr)
	if err != nil {
		return err
	}
	a.printView(v)
	return nil
}

func (a *App) Finalize(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	v, err := a.trips.Finalize(ctx, args[0])
	if err != nil {
		return err
	}
	a.printf("%s is %s, %d drops queued for sync\n", v.DlfCode, v.Status, len(v.Drops))
	return nil
}

// Show lists all local deliveries, or one delivery with its drops and
// expenses.
func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) == 0 {
		views, err := a.trips.List(ctx)
		if err != nil {
			return err
		}
		if len(views) == 0 {
			a.printf("No deliveries recorded\n")
		}
		for _, v := range views {
			a.printf("%-12s %-8s %d drops\n", v.DlfCode, v.Status, len(v.Drops))
		}
		return nil
	}

	v, err := a.trips.Get(ctx, args[0])
	if err != nil {
		return err
	}
	a.printView(v)

	exps, err := a.expenses.List(ctx, v.DlfCode)
	if err != nil {
		return err
	}
	for _, e := range exps {
		a.printf("  expense #%d %-12s %10s  %s\n", e.ID, e.ExpenseType, e.Amount.StringFixed(2), e.Payee)
	}
	return nil
}

func (a *App) DeleteDelivery(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	confirm, err := a.ask("Delete " + args[0] + " with all drops and expenses? (y/N)")
	if err != nil {
		return err
	}
	if confirm != "y" && confirm != "Y" {
		return nil
	}
	if err := a.trips.DeleteDelivery(ctx, args[0]); err != nil {
		return err
	}
	a.printf("Deleted %s\n", args[0])
	return nil
}

func (a *App) printView(v *models.DeliveryView) {
	a.printf("%s [%s] %s\n", v.DlfCode, v.Status, v.FormType)
	a.printf("  driver %s  helper %s  plate %s\n", deref(v.Driver), deref(v.Helper), deref(v.PlateNo))
	a.printf("  company departure %s  arrival %s\n", deref(v.CompanyDeparture), deref(v.CompanyArrival))
	for _, d := range v.Drops {
		a.printf("  %2d. %-24s arr %s dep %s [%s]\n", d.DropNumber, d.CustomerName, deref(d.StopArrival), deref(d.StopDeparture), d.Status)
	}
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

// requireDrop fails before any prompt when drop n of code does not exist.
func (a *App) requireDrop(ctx context.Context, code string, n int64) error {
	v, err := a.trips.Get(ctx, code)
	if err != nil {
		return err
	}
	for _, d := range v.Drops {
		if d.DropNumber == n {
			return nil
		}
	}
	return fmt.Errorf("delivery %s drop %d: %w", code, n, common.ErrNotFound)
}
