package app

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/fishlog/internal/common"
)

// startBackgroundSync launches the connectivity monitor and the periodic
// sweep. Two triggers feed the same sweep: the interval ticker and the
// offline-to-online transition; the service's own guard collapses overlaps.
func (a *App) startBackgroundSync(ctx context.Context) {
	a.monitor.OnChange = func(online bool) {
		if online {
			go a.trySweep(ctx)
		}
	}
	go a.monitor.Run(ctx)

	go func() {
		ticker := time.NewTicker(a.config.SyncInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				a.trySweep(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// trySweep runs one pending sweep if the app is signed in and online.
// A sweep already in progress is not an error.
func (a *App) trySweep(ctx context.Context) {
	if !a.isSignedIn() || !a.monitor.Online() {
		return
	}

	res, err := a.syncService.SyncPending(ctx, a.userID)
	if err != nil {
		if !errors.Is(err, common.ErrSweepInProgress) {
			a.log.Warn(ctx, "background sweep failed", "error", err)
		}
		return
	}
	if res.Synced > 0 || res.Failed > 0 {
		a.log.Info(ctx, "background sweep finished", "synced", res.Synced, "failed", res.Failed)
	}
}
