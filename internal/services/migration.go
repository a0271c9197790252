package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fishlog/internal/logging"
	"github.com/dmitrijs2005/fishlog/internal/repositories/catches"
	"github.com/dmitrijs2005/fishlog/internal/repositories/metadata"
)

// MigrationPhase labels the stage reported through the progress callback.
type MigrationPhase string

const (
	MigrationPreparing MigrationPhase = "preparing"
	MigrationMigrating MigrationPhase = "migrating"
	MigrationCompleted MigrationPhase = "completed"
	MigrationError     MigrationPhase = "error"
)

// MigrationProgress is a snapshot pushed to the caller while a migration
// runs. Current names the record being uploaded (species, falling back to
// the id).
type MigrationProgress struct {
	Phase   MigrationPhase
	Current string
	Done    int
	Total   int
	Message string
}

// MigrationResult counts the records uploaded by one migration run.
type MigrationResult struct {
	Synced int
	Failed int
}

const migrationMarkerPrefix = "migration_done_"

// MigrationService performs the one-time adoption of catches that predate
// sign-in (or belong to a different identity) into the authenticated user's
// synced set. Completion is tracked per user in the metadata slot, so each
// identity is prompted at most once.
type MigrationService struct {
	catches catches.Repository
	meta    metadata.Repository
	sync    *SyncService
	log     logging.Logger

	recordDelay time.Duration
}

func NewMigrationService(catchRepo catches.Repository, meta metadata.Repository, sync *SyncService, log logging.Logger) *MigrationService {
	return &MigrationService{
		catches:     catchRepo,
		meta:        meta,
		sync:        sync,
		log:         log.With("component", "migration"),
		recordDelay: defaultRecordDelay,
	}
}

func migrationMarkerKey(userID string) string {
	return migrationMarkerPrefix + userID
}

// Completed reports whether migration has already been run (or skipped) for
// this user.
func (s *MigrationService) Completed(ctx context.Context, userID string) (bool, error) {
	v, err := s.meta.Get(ctx, migrationMarkerKey(userID))
	if err != nil {
		return false, err
	}
	return v != nil, nil
}

// Check is called once per sign-in. It returns how many local records await
// adoption, or done=true when this user already completed (or skipped)
// migration. The caller decides whether to run or skip.
func (s *MigrationService) Check(ctx context.Context, userID string) (pending int, done bool, err error) {
	completed, err := s.Completed(ctx, userID)
	if err != nil {
		return 0, false, err
	}
	if completed {
		return 0, true, nil
	}

	records, err := s.catches.GetUnmigrated(ctx, userID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to scan for unmigrated catches: %w", err)
	}
	return len(records), false, nil
}

// Run stamps every unmigrated record with the target owner, then uploads
// them sequentially through the sync service. Migration is marked complete
// even when some records fail: failures stay visible in the result and are
// retried by ordinary sweeps, and the user is not re-prompted forever. Only
// a whole-flow error leaves the marker unset so a future sign-in retries.
func (s *MigrationService) Run(ctx context.Context, userID string, onProgress func(MigrationProgress)) (MigrationResult, error) {
	report := func(p MigrationProgress) {
		if onProgress != nil {
			onProgress(p)
		}
	}

	result, err := s.run(ctx, userID, report)
	if err != nil {
		s.log.Error(ctx, "migration failed", "user_id", userID, "error", err)
		report(MigrationProgress{
			Phase:   MigrationError,
			Done:    result.Synced + result.Failed,
			Message: err.Error(),
		})
		return result, err
	}
	return result, nil
}

func (s *MigrationService) run(ctx context.Context, userID string, report func(MigrationProgress)) (MigrationResult, error) {
	var result MigrationResult

	report(MigrationProgress{Phase: MigrationPreparing})

	records, err := s.catches.GetUnmigrated(ctx, userID)
	if err != nil {
		return result, fmt.Errorf("failed to scan for unmigrated catches: %w", err)
	}

	if len(records) == 0 {
		report(MigrationProgress{Phase: MigrationCompleted})
		return result, s.markComplete(ctx, userID)
	}

	ids := make([]string, len(records))
	for i, c := range records {
		ids[i] = c.ID
	}
	if err := s.catches.StampForMigration(ctx, ids, userID); err != nil {
		return result, fmt.Errorf("failed to stamp catches for migration: %w", err)
	}

	total := len(records)
	s.log.Info(ctx, "migration started", "user_id", userID, "records", total)

	for i, rec := range records {
		label := rec.Species
		if label == "" {
			label = rec.ID
		}
		report(MigrationProgress{Phase: MigrationMigrating, Current: label, Done: i, Total: total})

		// re-read so a local edit made since the scan is not lost
		fresh, err := s.catches.GetByID(ctx, rec.ID)
		if err != nil {
			result.Failed++
			continue
		}

		if err := s.sync.SyncCatch(ctx, fresh, userID); err != nil {
			result.Failed++
		} else {
			result.Synced++
		}

		if i < total-1 {
			time.Sleep(s.recordDelay)
		}
	}

	report(MigrationProgress{Phase: MigrationCompleted, Done: total, Total: total})
	s.log.Info(ctx, "migration finished", "user_id", userID, "synced", result.Synced, "failed", result.Failed)

	return result, s.markComplete(ctx, userID)
}

// Skip marks migration complete without uploading anything. The opt-out is
// permanent until local storage is cleared.
func (s *MigrationService) Skip(ctx context.Context, userID string) error {
	s.log.Info(ctx, "migration skipped", "user_id", userID)
	return s.markComplete(ctx, userID)
}

func (s *MigrationService) markComplete(ctx context.Context, userID string) error {
	value := []byte(time.Now().UTC().Format(time.RFC3339))
	if err := s.meta.Set(ctx, migrationMarkerKey(userID), value); err != nil {
		return fmt.Errorf("failed to mark migration complete: %w", err)
	}
	return nil
}
