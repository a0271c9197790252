// Package models defines the fishing-log data types persisted locally and
// synchronized with the cloud.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SyncStatus tracks the local-vs-remote consistency state of a catch.
type SyncStatus string

const (
	// SyncStatusNone marks a record that has never been queued for sync.
	SyncStatusNone SyncStatus = ""
	// SyncStatusPending marks a record awaiting upload.
	SyncStatusPending SyncStatus = "pending"
	// SyncStatusSyncing marks a record with an upload in flight.
	SyncStatusSyncing SyncStatus = "syncing"
	// SyncStatusSynced marks a record consistent with the cloud copy.
	SyncStatusSynced SyncStatus = "synced"
	// SyncStatusFailed marks a record whose last sync attempt failed;
	// the diagnostic is kept in Catch.LastSyncError.
	SyncStatusFailed SyncStatus = "failed"
)

// Weather is an optional snapshot taken at catch time. Pending means the
// snapshot is still being fetched; the flag is local-only and never uploaded.
type Weather struct {
	TempC      float64 `json:"temp_c"`
	WindKph    float64 `json:"wind_kph"`
	Conditions string  `json:"conditions"`
	Pending    bool    `json:"pending,omitempty"`
}

// Catch is one logged fishing event, the unit of synchronization.
//
// Latitude/Longitude hold the exact private position and never leave the
// device; only a deterministically offset position is uploaded.
type Catch struct {
	// ID is a stable, client-generated identifier, immutable for the
	// record's lifetime.
	ID string

	// OwnerID is the authenticated identity owning the cloud copy.
	// Empty for records created before sign-in.
	OwnerID string

	// CapturedAt is the event time, set once at creation.
	CapturedAt time.Time
	// UpdatedAt is advanced on every local mutation and is the sole
	// tie-breaker between the local and remote copies.
	UpdatedAt time.Time

	Latitude  float64
	Longitude float64

	Species  string
	WeightKg float64
	LengthCm float64
	Notes    string

	Weather *Weather

	// PhotoPath is a local file path or data: URL; PhotoURL is set once
	// the photo has been uploaded to blob storage.
	PhotoPath string
	PhotoURL  string

	SyncStatus    SyncStatus
	LastSyncError string
}

// NewCatch creates a catch with a fresh id and both timestamps set to now
// (UTC). The record starts out never-synced.
func NewCatch(species string) *Catch {
	now := time.Now().UTC()
	return &Catch{
		ID:         uuid.NewString(),
		CapturedAt: now,
		UpdatedAt:  now,
		Species:    species,
	}
}

// RemoteKey returns the deterministic remote document key for this catch,
// guaranteeing at most one cloud document per record per owner.
func (c *Catch) RemoteKey(ownerID string) string {
	return fmt.Sprintf("%s_%s", ownerID, c.ID)
}

// NeedsSync reports whether the record is eligible for a sync sweep.
func (c *Catch) NeedsSync() bool {
	switch c.SyncStatus {
	case SyncStatusNone, SyncStatusPending, SyncStatusFailed:
		return true
	default:
		return false
	}
}

// HasLocation reports whether the catch carries a real position. The null
// island coordinate (0,0) is treated as "no location".
func (c *Catch) HasLocation() bool {
	return c.Latitude != 0 || c.Longitude != 0
}
