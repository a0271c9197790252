package catches

import (
	"context"

	"github.com/dmitrijs2005/fishlog/internal/models"
)

// Repository describes CRUD and query operations for Catch records.
// Implementations are backed by the local SQLite database.
type Repository interface {
	// CreateOrUpdate inserts a new catch or replaces an existing one by ID.
	CreateOrUpdate(ctx context.Context, c *models.Catch) error

	// GetByID returns a catch by its identifier, or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Catch, error)

	// GetAll lists every catch, newest first.
	GetAll(ctx context.Context) ([]models.Catch, error)

	// GetUnsynced returns catches whose status is pending, failed or unset,
	// in the order they will be uploaded.
	GetUnsynced(ctx context.Context) ([]models.Catch, error)

	// GetUnmigrated returns catches that do not yet belong to ownerID:
	// no owner, a different owner, or a never-queued sync status.
	GetUnmigrated(ctx context.Context, ownerID string) ([]models.Catch, error)

	// SetSyncStatus updates a catch's sync status and diagnostic message.
	SetSyncStatus(ctx context.Context, id string, status models.SyncStatus, syncErr string) error

	// SetPhotoURL records the cloud URL of an uploaded photo.
	SetPhotoURL(ctx context.Context, id, url string) error

	// StampForMigration assigns ownerID and pending status to all listed
	// catches in one transaction.
	StampForMigration(ctx context.Context, ids []string, ownerID string) error

	// ResetFailed flips every failed catch back to pending and reports how
	// many were reset.
	ResetFailed(ctx context.Context) (int64, error)

	// DeleteByID removes a catch from the local store.
	DeleteByID(ctx context.Context, id string) error
}
