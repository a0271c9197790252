// Package services contains the cloud synchronization and migration flows
// that reconcile the local catch log with the remote stores.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/fishlog/internal/common"
	"github.com/dmitrijs2005/fishlog/internal/filex"
	"github.com/dmitrijs2005/fishlog/internal/geo"
	"github.com/dmitrijs2005/fishlog/internal/logging"
	"github.com/dmitrijs2005/fishlog/internal/models"
	"github.com/dmitrijs2005/fishlog/internal/remote/blobstore"
	"github.com/dmitrijs2005/fishlog/internal/remote/docstore"
	"github.com/dmitrijs2005/fishlog/internal/repositories/catches"
)

// defaultRecordDelay paces sequential uploads so a sweep does not burst the
// remote API.
const defaultRecordDelay = 200 * time.Millisecond

// SyncResult aggregates the outcome of one sweep.
type SyncResult struct {
	Synced int
	Failed int
	// Errors holds one "id: message" entry per failed record.
	Errors []string
}

// SyncService moves catches from local-only to remote-consistent state.
// Sweeps are strictly sequential; a guard collapses overlapping sweep
// triggers into a no-op so at most one sweep runs per process.
type SyncService struct {
	catches catches.Repository
	docs    docstore.Store
	blobs   blobstore.Store
	log     logging.Logger

	recordDelay time.Duration
	sweeping    atomic.Bool

	// test seams
	now       func() time.Time
	readPhoto func(string) ([]byte, string, error)
}

func NewSyncService(catchRepo catches.Repository, docs docstore.Store, blobs blobstore.Store, log logging.Logger) *SyncService {
	return &SyncService{
		catches:     catchRepo,
		docs:        docs,
		blobs:       blobs,
		log:         log.With("component", "sync"),
		recordDelay: defaultRecordDelay,
		now:         time.Now,
		readPhoto:   filex.ReadPhotoSource,
	}
}

// SyncCatch uploads one catch, applying the remote-wins-if-strictly-newer
// conflict rule. Any failure is recorded on the local record as status
// "failed" with a diagnostic; the returned error mirrors what was recorded
// and is safe to ignore by batch drivers.
func (s *SyncService) SyncCatch(ctx context.Context, c *models.Catch, ownerID string) error {
	log := s.log.With("catch_id", c.ID)

	if err := s.syncCatch(ctx, log, c, ownerID); err != nil {
		log.Error(ctx, "catch sync failed", "error", err)
		if stErr := s.catches.SetSyncStatus(ctx, c.ID, models.SyncStatusFailed, err.Error()); stErr != nil {
			log.Error(ctx, "failed to record sync failure", "error", stErr)
		}
		return err
	}
	return nil
}

func (s *SyncService) syncCatch(ctx context.Context, log logging.Logger, c *models.Catch, ownerID string) error {
	if err := s.catches.SetSyncStatus(ctx, c.ID, models.SyncStatusSyncing, ""); err != nil {
		return fmt.Errorf("failed to mark catch syncing: %w", err)
	}

	s.uploadPhoto(ctx, log, c, ownerID)

	key := c.RemoteKey(ownerID)
	remote, err := s.docs.Get(ctx, key)
	exists := err == nil
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("failed to read remote document: %w", err)
	}

	if exists {
		if remoteUpdated, ok := remote[fieldUpdatedAt].(time.Time); ok && remoteUpdated.After(c.UpdatedAt) {
			// the cloud copy is strictly newer: adopt it and leave it alone
			return s.pullRemote(ctx, c, ownerID, remote)
		}
	}

	if err := s.docs.Set(ctx, key, s.buildRemoteDoc(c, ownerID, !exists), true); err != nil {
		return fmt.Errorf("failed to upsert remote document: %w", err)
	}

	return s.catches.SetSyncStatus(ctx, c.ID, models.SyncStatusSynced, "")
}

// uploadPhoto pushes a not-yet-uploaded local photo to blob storage and
// records the resulting URL. Photo problems never fail the record sync; the
// record just proceeds without a cloud photo.
func (s *SyncService) uploadPhoto(ctx context.Context, log logging.Logger, c *models.Catch, ownerID string) {
	if c.PhotoPath == "" || c.PhotoURL != "" {
		return
	}

	data, contentType, err := s.readPhoto(c.PhotoPath)
	if err != nil {
		log.Warn(ctx, "failed to read photo, syncing without it", "error", err)
		return
	}

	url, err := s.blobs.Put(ctx, photoKey(ownerID, c.ID), data, contentType)
	if err != nil {
		log.Warn(ctx, "photo upload failed, syncing without it", "error", err)
		return
	}

	if err := s.catches.SetPhotoURL(ctx, c.ID, url); err != nil {
		log.Warn(ctx, "failed to store photo url", "error", err)
		return
	}
	c.PhotoURL = url
}

// DeleteFromCloud removes a catch's remote document, then best-effort cleans
// up its photo blob. A photo that was never uploaded counts as cleaned up.
func (s *SyncService) DeleteFromCloud(ctx context.Context, catchID, ownerID string) error {
	key := fmt.Sprintf("%s_%s", ownerID, catchID)
	if err := s.docs.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete remote document: %w", err)
	}

	if err := s.blobs.Delete(ctx, photoKey(ownerID, catchID)); err != nil && !errors.Is(err, common.ErrNotFound) {
		s.log.Warn(ctx, "failed to delete photo blob", "catch_id", catchID, "error", err)
	}
	return nil
}

// SyncPending sweeps every catch whose status is pending, failed or unset.
// Records are processed sequentially with a small delay between them;
// individual failures do not abort the batch. Returns
// common.ErrSweepInProgress when another sweep is already running.
func (s *SyncService) SyncPending(ctx context.Context, ownerID string) (SyncResult, error) {
	var result SyncResult

	if !s.sweeping.CompareAndSwap(false, true) {
		return result, common.ErrSweepInProgress
	}
	defer s.sweeping.Store(false)

	records, err := s.catches.GetUnsynced(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to select unsynced catches: %w", err)
	}
	if len(records) == 0 {
		return result, nil
	}

	s.log.Info(ctx, "sync sweep started", "records", len(records))

	for i := range records {
		c := &records[i]
		if err := s.SyncCatch(ctx, c, ownerID); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", c.ID, err))
		} else {
			result.Synced++
		}
		if i < len(records)-1 {
			time.Sleep(s.recordDelay)
		}
	}

	s.log.Info(ctx, "sync sweep finished", "synced", result.Synced, "failed", result.Failed)
	return result, nil
}

// RetryFailed flips failed catches back to pending and, if any were reset,
// runs a pending sweep.
func (s *SyncService) RetryFailed(ctx context.Context, ownerID string) (SyncResult, error) {
	n, err := s.catches.ResetFailed(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("failed to reset failed catches: %w", err)
	}
	if n == 0 {
		return SyncResult{}, nil
	}
	return s.SyncPending(ctx, ownerID)
}

// Remote document field names.
const (
	fieldOwnerID    = "ownerId"
	fieldLat        = "lat"
	fieldLng        = "lng"
	fieldSpecies    = "species"
	fieldWeightKg   = "weightKg"
	fieldLengthCm   = "lengthCm"
	fieldNotes      = "notes"
	fieldWeather    = "weather"
	fieldPhotoURL   = "photoUrl"
	fieldCapturedAt = "capturedAt"
	fieldUpdatedAt  = "updatedAt"
	fieldCreatedAt  = "createdAt"
)

// buildRemoteDoc assembles the upload payload. The position is fuzzed here;
// nothing outside this function ever sees exact coordinates leave the device.
func (s *SyncService) buildRemoteDoc(c *models.Catch, ownerID string, isNew bool) map[string]any {
	lat, lng := geo.Fuzz(c.Latitude, c.Longitude, c.ID)

	fields := map[string]any{
		fieldOwnerID:    ownerID,
		fieldLat:        lat,
		fieldLng:        lng,
		fieldSpecies:    c.Species,
		fieldWeightKg:   c.WeightKg,
		fieldLengthCm:   c.LengthCm,
		fieldNotes:      c.Notes,
		fieldPhotoURL:   c.PhotoURL,
		fieldCapturedAt: c.CapturedAt,
		fieldUpdatedAt:  s.now().UTC(),
	}

	if c.Weather != nil {
		// the Pending flag is local bookkeeping and stays off the wire
		fields[fieldWeather] = map[string]any{
			"tempC":      c.Weather.TempC,
			"windKph":    c.Weather.WindKph,
			"conditions": c.Weather.Conditions,
		}
	}

	if isNew {
		fields[fieldCreatedAt] = docstore.ServerTimestamp
	}

	return fields
}

// pullRemote adopts the newer cloud copy into the local record, keeping
// local-only fields: the exact position, the local photo path and the
// pending-weather flag.
func (s *SyncService) pullRemote(ctx context.Context, c *models.Catch, ownerID string, remote map[string]any) error {
	c.OwnerID = ownerID
	if v, ok := remote[fieldSpecies].(string); ok {
		c.Species = v
	}
	if v, ok := remote[fieldWeightKg].(float64); ok {
		c.WeightKg = v
	}
	if v, ok := remote[fieldLengthCm].(float64); ok {
		c.LengthCm = v
	}
	if v, ok := remote[fieldNotes].(string); ok {
		c.Notes = v
	}
	if v, ok := remote[fieldPhotoURL].(string); ok && v != "" {
		c.PhotoURL = v
	}
	if v, ok := remote[fieldUpdatedAt].(time.Time); ok {
		c.UpdatedAt = v.UTC()
	}
	if w, ok := remote[fieldWeather].(map[string]any); ok {
		weather := &models.Weather{}
		if c.Weather != nil {
			weather.Pending = c.Weather.Pending
		}
		if v, ok := w["tempC"].(float64); ok {
			weather.TempC = v
		}
		if v, ok := w["windKph"].(float64); ok {
			weather.WindKph = v
		}
		if v, ok := w["conditions"].(string); ok {
			weather.Conditions = v
		}
		c.Weather = weather
	}

	c.SyncStatus = models.SyncStatusSynced
	c.LastSyncError = ""

	if err := s.catches.CreateOrUpdate(ctx, c); err != nil {
		return fmt.Errorf("failed to store pulled fields: %w", err)
	}
	return nil
}

func photoKey(ownerID, catchID string) string {
	return fmt.Sprintf("photos/%s/%s", ownerID, catchID)
}
