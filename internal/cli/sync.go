package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/syncer"
)

// Sync runs one sync now. Offline and busy outcomes are reported, not
// treated as errors.
func (a *App) Sync(ctx context.Context, _ []string) error {
	res, err := a.syncer.Sync(ctx)
	if err != nil {
		if res.Trips > 0 {
			a.printf("Synced %d trip logs before the failure\n", res.Trips)
		}
		if common.IsRemote(err) {
			a.printf("Sync failed, records stay queued\n")
			if errors.Is(err, common.ErrUnreachable) || errors.Is(err, common.ErrTimeout) {
				a.setMode(ctx, ModeOffline)
			}
		}
		return err
	}

	switch res.Outcome {
	case syncer.OutcomeSynced:
		a.setMode(ctx, ModeOnline)
		a.printf("Synced %d trip logs, %d fuel records (%d receipts uploaded)\n", res.Trips, res.Fuel, res.Receipts)
	case syncer.OutcomeOffline:
		a.setMode(ctx, ModeOffline)
		a.printf("No connectivity, records stay queued\n")
	default:
		a.printf("%s\n", capitalize(res.Outcome.String()))
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
