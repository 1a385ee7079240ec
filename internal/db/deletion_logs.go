package db

import (
	"context"

	"github.com/google/uuid"

	"shelflife/internal/models"
)

// InsertDeletionLog appends one audit record for a deletion attempt.
// Deletion logs are never updated or deleted.
func (d *DB) InsertDeletionLog(ctx context.Context, entry *models.DeletionLog) error {
	query := `
		INSERT INTO deletion_logs (media_item_id, round_id, deleted_by, delete_files,
			sonarr_success, radarr_success, overseerr_success, errors)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	return d.Pool.QueryRow(ctx, query,
		entry.MediaItemID,
		entry.RoundID,
		entry.DeletedBy,
		entry.DeleteFiles,
		entry.SonarrSuccess,
		entry.RadarrSuccess,
		entry.OverseerrSuccess,
		entry.Errors,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// ListDeletionLogsForItem retrieves the audit trail for one item, newest first.
func (d *DB) ListDeletionLogsForItem(ctx context.Context, mediaItemID uuid.UUID) ([]models.DeletionLog, error) {
	query := `
		SELECT id, media_item_id, round_id, deleted_by, delete_files,
			sonarr_success, radarr_success, overseerr_success, errors, created_at
		FROM deletion_logs
		WHERE media_item_id = $1
		ORDER BY created_at DESC
	`
	rows, err := d.Pool.Query(ctx, query, mediaItemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.DeletionLog
	for rows.Next() {
		var entry models.DeletionLog
		if err := rows.Scan(
			&entry.ID,
			&entry.MediaItemID,
			&entry.RoundID,
			&entry.DeletedBy,
			&entry.DeleteFiles,
			&entry.SonarrSuccess,
			&entry.RadarrSuccess,
			&entry.OverseerrSuccess,
			&entry.Errors,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// DeletionOutcomeCounts aggregates per-service attempt outcomes across the
// whole audit table, read by the Prometheus collector on scrape.
type DeletionOutcomeCounts struct {
	SonarrSuccess    int64
	SonarrFailure    int64
	RadarrSuccess    int64
	RadarrFailure    int64
	OverseerrSuccess int64
	OverseerrFailure int64
}

// GetDeletionOutcomeCounts returns aggregate per-service outcome counts.
func (d *DB) GetDeletionOutcomeCounts(ctx context.Context) (*DeletionOutcomeCounts, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE sonarr_success),
			COUNT(*) FILTER (WHERE sonarr_success = FALSE),
			COUNT(*) FILTER (WHERE radarr_success),
			COUNT(*) FILTER (WHERE radarr_success = FALSE),
			COUNT(*) FILTER (WHERE overseerr_success),
			COUNT(*) FILTER (WHERE overseerr_success = FALSE)
		FROM deletion_logs
	`
	var counts DeletionOutcomeCounts
	err := d.Pool.QueryRow(ctx, query).Scan(
		&counts.SonarrSuccess,
		&counts.SonarrFailure,
		&counts.RadarrSuccess,
		&counts.RadarrFailure,
		&counts.OverseerrSuccess,
		&counts.OverseerrFailure,
	)
	if err != nil {
		return nil, err
	}
	return &counts, nil
}
