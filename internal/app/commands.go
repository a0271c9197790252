package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/fishlog/internal/common"
	"github.com/dmitrijs2005/fishlog/internal/models"
	"github.com/dmitrijs2005/fishlog/internal/services"
)

// Add interactively creates a catch. The record is always saved locally
// first; the upload happens later through the regular sweeps.
func (a *App) Add(ctx context.Context) error {
	species, err := getSimpleText(a.reader, "Species", a.out)
	if err != nil {
		return err
	}
	if species == "" {
		fmt.Fprintln(a.out, "Species is required.")
		return nil
	}

	c := models.NewCatch(species)
	c.OwnerID = a.userID
	c.SyncStatus = models.SyncStatusPending

	if c.WeightKg, err = getFloat(a.reader, "Weight in kg (empty to skip)", a.out); err != nil {
		fmt.Fprintln(a.out, err)
		return nil
	}
	if c.LengthCm, err = getFloat(a.reader, "Length in cm (empty to skip)", a.out); err != nil {
		fmt.Fprintln(a.out, err)
		return nil
	}
	if c.Latitude, c.Longitude, err = getLatLng(a.reader, a.out); err != nil {
		fmt.Fprintln(a.out, err)
		return nil
	}
	if c.Notes, err = getSimpleText(a.reader, "Notes (empty to skip)", a.out); err != nil {
		return err
	}
	if c.PhotoPath, err = getSimpleText(a.reader, "Photo file path or data URL (empty to skip)", a.out); err != nil {
		return err
	}

	if err := a.catches.CreateOrUpdate(ctx, c); err != nil {
		return fmt.Errorf("failed to save catch: %w", err)
	}
	fmt.Fprintf(a.out, "Saved %s (%s).\n", c.Species, shortID(c.ID))

	// no need to wait for the next tick
	go a.trySweep(ctx)
	return nil
}

// List prints every catch, newest first.
func (a *App) List(ctx context.Context) error {
	records, err := a.catches.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list catches: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(a.out, "No catches yet.")
		return nil
	}

	for _, c := range records {
		status := string(c.SyncStatus)
		if status == "" {
			status = "local"
		}
		fmt.Fprintf(a.out, "%s  %s  %-12s %6.2f kg  [%s]\n",
			shortID(c.ID), c.CapturedAt.Local().Format("2006-01-02 15:04"), c.Species, c.WeightKg, status)
	}
	return nil
}

// Show prints a single catch in full.
func (a *App) Show(ctx context.Context) error {
	c, err := a.findByPrefix(ctx)
	if err != nil || c == nil {
		return err
	}

	fmt.Fprintf(a.out, "ID:        %s\n", c.ID)
	fmt.Fprintf(a.out, "Captured:  %s\n", c.CapturedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(a.out, "Species:   %s\n", c.Species)
	if c.WeightKg != 0 {
		fmt.Fprintf(a.out, "Weight:    %.2f kg\n", c.WeightKg)
	}
	if c.LengthCm != 0 {
		fmt.Fprintf(a.out, "Length:    %.1f cm\n", c.LengthCm)
	}
	if c.HasLocation() {
		fmt.Fprintf(a.out, "Location:  %.5f, %.5f\n", c.Latitude, c.Longitude)
	}
	if c.Notes != "" {
		fmt.Fprintf(a.out, "Notes:     %s\n", c.Notes)
	}
	if c.Weather != nil {
		if c.Weather.Pending {
			fmt.Fprintln(a.out, "Weather:   (still fetching)")
		} else {
			fmt.Fprintf(a.out, "Weather:   %.1f°C, wind %.0f kph, %s\n",
				c.Weather.TempC, c.Weather.WindKph, c.Weather.Conditions)
		}
	}
	if c.PhotoPath != "" {
		fmt.Fprintf(a.out, "Photo:     %s\n", c.PhotoPath)
	}
	if c.PhotoURL != "" {
		fmt.Fprintf(a.out, "Photo URL: %s\n", c.PhotoURL)
	}
	status := string(c.SyncStatus)
	if status == "" {
		status = "local"
	}
	fmt.Fprintf(a.out, "Sync:      %s\n", status)
	if c.LastSyncError != "" {
		fmt.Fprintf(a.out, "Last sync error: %s\n", c.LastSyncError)
	}
	return nil
}

// Delete removes a catch locally and, when it has a cloud copy, deletes the
// remote document and photo as well. The local delete always wins: a failed
// remote cleanup is reported but does not resurrect the record.
func (a *App) Delete(ctx context.Context) error {
	c, err := a.findByPrefix(ctx)
	if err != nil || c == nil {
		return err
	}

	confirm, err := getSimpleText(a.reader, fmt.Sprintf("Delete %s (%s)? y/n", c.Species, shortID(c.ID)), a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(confirm, "y") {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	hadCloudCopy := c.OwnerID != "" && c.SyncStatus == models.SyncStatusSynced

	if err := a.catches.DeleteByID(ctx, c.ID); err != nil {
		return fmt.Errorf("failed to delete catch: %w", err)
	}
	fmt.Fprintln(a.out, "Deleted.")

	if hadCloudCopy {
		if err := a.syncService.DeleteFromCloud(ctx, c.ID, c.OwnerID); err != nil {
			a.log.Warn(ctx, "remote cleanup failed", "catch_id", c.ID, "error", err)
			fmt.Fprintln(a.out, "Could not remove the cloud copy; it will linger until the next delete attempt.")
		}
	}
	return nil
}

// Sync runs a pending sweep on demand.
func (a *App) Sync(ctx context.Context) error {
	if !a.requireSignIn() {
		return nil
	}

	res, err := a.syncService.SyncPending(ctx, a.userID)
	if err != nil {
		if errors.Is(err, common.ErrSweepInProgress) {
			fmt.Fprintln(a.out, "A sync is already running.")
			return nil
		}
		return err
	}
	a.printSyncResult(res)
	return nil
}

// Retry re-queues failed catches and sweeps them.
func (a *App) Retry(ctx context.Context) error {
	if !a.requireSignIn() {
		return nil
	}

	res, err := a.syncService.RetryFailed(ctx, a.userID)
	if err != nil {
		if errors.Is(err, common.ErrSweepInProgress) {
			fmt.Fprintln(a.out, "A sync is already running.")
			return nil
		}
		return err
	}
	a.printSyncResult(res)
	return nil
}

// Migrate uploads pre-sign-in catches into the current user's cloud set.
func (a *App) Migrate(ctx context.Context) error {
	if !a.requireSignIn() {
		return nil
	}

	pending, done, err := a.migrationService.Check(ctx, a.userID)
	if err != nil {
		return err
	}
	if done {
		fmt.Fprintln(a.out, "Migration already completed.")
		return nil
	}
	if pending == 0 {
		fmt.Fprintln(a.out, "Nothing to migrate.")
		return nil
	}
	return a.runMigration(ctx)
}

// SkipMigration opts out permanently; old records stay local-only.
func (a *App) SkipMigration(ctx context.Context) error {
	if !a.requireSignIn() {
		return nil
	}
	if err := a.migrationService.Skip(ctx, a.userID); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Migration skipped; existing catches stay on this device.")
	return nil
}

func (a *App) runMigration(ctx context.Context) error {
	res, err := a.migrationService.Run(ctx, a.userID, func(p services.MigrationProgress) {
		switch p.Phase {
		case services.MigrationPreparing:
			fmt.Fprintln(a.out, "Preparing migration...")
		case services.MigrationMigrating:
			fmt.Fprintf(a.out, "Migrating %s (%d/%d)\n", p.Current, p.Done+1, p.Total)
		case services.MigrationCompleted:
			fmt.Fprintln(a.out, "Migration completed.")
		case services.MigrationError:
			fmt.Fprintf(a.out, "Migration failed: %s\n", p.Message)
		}
	})
	if err != nil {
		return nil // already reported through the progress callback
	}
	if res.Failed > 0 {
		fmt.Fprintf(a.out, "%d record(s) failed and will be retried by regular syncs.\n", res.Failed)
	}
	return nil
}

// promptMigration is the sign-in gate: ask once per identity whether the
// pre-sign-in catches should move to the cloud.
func (a *App) promptMigration(ctx context.Context) {
	pending, done, err := a.migrationService.Check(ctx, a.userID)
	if err != nil {
		a.log.Warn(ctx, "migration check failed", "error", err)
		return
	}
	if done || pending == 0 {
		return
	}

	answer, err := getSimpleText(a.reader,
		fmt.Sprintf("You have %d catch(es) from before sign-in. Upload them now? y/n/skip (skip = never ask again)", pending),
		a.out)
	if err != nil {
		return
	}

	switch strings.ToLower(answer) {
	case "y", "yes":
		_ = a.runMigration(ctx)
	case "skip":
		_ = a.SkipMigration(ctx)
	default:
		fmt.Fprintln(a.out, "Okay, you will be asked again next time.")
	}
}

func (a *App) printSyncResult(res services.SyncResult) {
	if res.Synced == 0 && res.Failed == 0 {
		fmt.Fprintln(a.out, "Everything is up to date.")
		return
	}
	fmt.Fprintf(a.out, "Synced %d, failed %d.\n", res.Synced, res.Failed)
	for _, e := range res.Errors {
		fmt.Fprintf(a.out, "  %s\n", e)
	}
}

func (a *App) requireSignIn() bool {
	if a.isSignedIn() {
		return true
	}
	fmt.Fprintln(a.out, "This command needs a signed-in identity (no token found).")
	return false
}

// findByPrefix prompts for an id and resolves it, accepting any unambiguous
// prefix of a full id. Returns nil without error when nothing matches.
func (a *App) findByPrefix(ctx context.Context) (*models.Catch, error) {
	id, err := getSimpleText(a.reader, "Catch id (or unique prefix)", a.out)
	if err != nil {
		return nil, err
	}
	if id == "" {
		fmt.Fprintln(a.out, "No id given.")
		return nil, nil
	}

	records, err := a.catches.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list catches: %w", err)
	}

	var match *models.Catch
	for i := range records {
		if strings.HasPrefix(records[i].ID, id) {
			if match != nil {
				fmt.Fprintln(a.out, "Ambiguous prefix, use more characters.")
				return nil, nil
			}
			match = &records[i]
		}
	}
	if match == nil {
		fmt.Fprintln(a.out, "Not found.")
		return nil, nil
	}
	return match, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
