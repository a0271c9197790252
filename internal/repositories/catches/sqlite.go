package catches

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fishlog/internal/common"
	"github.com/dmitrijs2005/fishlog/internal/dbx"
	"github.com/dmitrijs2005/fishlog/internal/models"
)

const catchColumns = `id, owner_id, captured_at, updated_at, latitude, longitude,
	species, weight_kg, length_cm, notes, weather, photo_path, photo_url,
	sync_status, last_sync_error`

// SQLiteRepository implements Repository on the local SQLite database.
// Timestamps are stored as unix microseconds, the weather snapshot as JSON.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, c *models.Catch) error {
	weather, err := marshalWeather(c.Weather)
	if err != nil {
		return fmt.Errorf("failed to encode weather: %w", err)
	}

	query := `INSERT INTO catches (` + catchColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner_id = excluded.owner_id,
			captured_at = excluded.captured_at,
			updated_at = excluded.updated_at,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			species = excluded.species,
			weight_kg = excluded.weight_kg,
			length_cm = excluded.length_cm,
			notes = excluded.notes,
			weather = excluded.weather,
			photo_path = excluded.photo_path,
			photo_url = excluded.photo_url,
			sync_status = excluded.sync_status,
			last_sync_error = excluded.last_sync_error
	`
	_, err = r.db.ExecContext(ctx, query,
		c.ID, c.OwnerID, c.CapturedAt.UnixMicro(), c.UpdatedAt.UnixMicro(),
		c.Latitude, c.Longitude, c.Species, c.WeightKg, c.LengthCm, c.Notes,
		weather, c.PhotoPath, c.PhotoURL, string(c.SyncStatus), c.LastSyncError)
	if err != nil {
		return fmt.Errorf("failed to upsert catch: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Catch, error) {
	query := `SELECT ` + catchColumns + ` FROM catches WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	c, err := scanCatch(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select catch: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Catch, error) {
	query := `SELECT ` + catchColumns + ` FROM catches ORDER BY captured_at DESC`
	return r.queryCatches(ctx, query)
}

func (r *SQLiteRepository) GetUnsynced(ctx context.Context) ([]models.Catch, error) {
	query := `SELECT ` + catchColumns + ` FROM catches
		WHERE sync_status IN ('', 'pending', 'failed')
		ORDER BY captured_at`
	return r.queryCatches(ctx, query)
}

func (r *SQLiteRepository) GetUnmigrated(ctx context.Context, ownerID string) ([]models.Catch, error) {
	query := `SELECT ` + catchColumns + ` FROM catches
		WHERE owner_id = '' OR owner_id != ? OR sync_status IN ('', 'pending')
		ORDER BY captured_at`
	return r.queryCatches(ctx, query, ownerID)
}

func (r *SQLiteRepository) SetSyncStatus(ctx context.Context, id string, status models.SyncStatus, syncErr string) error {
	query := `UPDATE catches SET sync_status = ?, last_sync_error = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, string(status), syncErr, id)
	if err != nil {
		return fmt.Errorf("failed to update sync status: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) SetPhotoURL(ctx context.Context, id, url string) error {
	query := `UPDATE catches SET photo_url = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, url, id); err != nil {
		return fmt.Errorf("failed to update photo url: %w", err)
	}
	return nil
}

// StampForMigration runs in one transaction so a crash mid-stamp cannot
// leave a half-adopted batch.
func (r *SQLiteRepository) StampForMigration(ctx context.Context, ids []string, ownerID string) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query := `UPDATE catches SET owner_id = ?, sync_status = ? WHERE id = ?`
		for _, id := range ids {
			if _, err := tx.ExecContext(ctx, query, ownerID, string(models.SyncStatusPending), id); err != nil {
				return fmt.Errorf("failed to stamp catch %s: %w", id, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) ResetFailed(ctx context.Context) (int64, error) {
	query := `UPDATE catches SET sync_status = ? WHERE sync_status = ?`
	res, err := r.db.ExecContext(ctx, query, string(models.SyncStatusPending), string(models.SyncStatusFailed))
	if err != nil {
		return 0, fmt.Errorf("failed to reset failed catches: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM catches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete catch: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) queryCatches(ctx context.Context, query string, args ...any) ([]models.Catch, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select catches: %w", err)
	}
	defer rows.Close()

	var result []models.Catch
	for rows.Next() {
		c, err := scanCatch(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanCatch(scan func(dest ...any) error) (*models.Catch, error) {
	var (
		c                      models.Catch
		capturedAt, updatedAt  int64
		weather                sql.NullString
		status                 string
	)

	err := scan(&c.ID, &c.OwnerID, &capturedAt, &updatedAt, &c.Latitude,
		&c.Longitude, &c.Species, &c.WeightKg, &c.LengthCm, &c.Notes,
		&weather, &c.PhotoPath, &c.PhotoURL, &status, &c.LastSyncError)
	if err != nil {
		return nil, err
	}

	c.CapturedAt = time.UnixMicro(capturedAt).UTC()
	c.UpdatedAt = time.UnixMicro(updatedAt).UTC()
	c.SyncStatus = models.SyncStatus(status)

	if weather.Valid && weather.String != "" {
		var w models.Weather
		if err := json.Unmarshal([]byte(weather.String), &w); err != nil {
			return nil, fmt.Errorf("failed to decode weather: %w", err)
		}
		c.Weather = &w
	}

	return &c, nil
}

func marshalWeather(w *models.Weather) (sql.NullString, error) {
	if w == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(w)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
