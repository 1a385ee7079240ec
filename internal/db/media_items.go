package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"shelflife/internal/models"
)

// mediaItemColumns is the standard column list for media item queries.
const mediaItemColumns = `id, overseerr_request_id, overseerr_media_id, tmdb_id, tvdb_id,
	rating_key, media_type, title, poster_path, season_count, status,
	requested_by_plex_id, requested_by_username, requested_at, last_synced_at,
	created_at, updated_at`

func scanMediaItem(row pgx.Row) (*models.MediaItem, error) {
	var item models.MediaItem
	err := row.Scan(
		&item.ID,
		&item.OverseerrRequestID,
		&item.OverseerrMediaID,
		&item.TmdbID,
		&item.TvdbID,
		&item.RatingKey,
		&item.MediaType,
		&item.Title,
		&item.PosterPath,
		&item.SeasonCount,
		&item.Status,
		&item.RequestedByPlexID,
		&item.RequestedByUsername,
		&item.RequestedAt,
		&item.LastSyncedAt,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMediaItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func scanMediaItems(rows pgx.Rows) ([]models.MediaItem, error) {
	defer rows.Close()

	var items []models.MediaItem
	for rows.Next() {
		var item models.MediaItem
		if err := rows.Scan(
			&item.ID,
			&item.OverseerrRequestID,
			&item.OverseerrMediaID,
			&item.TmdbID,
			&item.TvdbID,
			&item.RatingKey,
			&item.MediaType,
			&item.Title,
			&item.PosterPath,
			&item.SeasonCount,
			&item.Status,
			&item.RequestedByPlexID,
			&item.RequestedByUsername,
			&item.RequestedAt,
			&item.LastSyncedAt,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpsertMediaItem inserts or refreshes an item keyed on its Overseerr
// request id. The status of an existing removed item is never resurrected
// by a sync upsert.
func (d *DB) UpsertMediaItem(ctx context.Context, item *models.MediaItem) error {
	query := `
		INSERT INTO media_items (overseerr_request_id, overseerr_media_id, tmdb_id, tvdb_id,
			rating_key, media_type, title, poster_path, season_count, status,
			requested_by_plex_id, requested_by_username, requested_at, last_synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		ON CONFLICT (overseerr_request_id) DO UPDATE SET
			overseerr_media_id = EXCLUDED.overseerr_media_id,
			tmdb_id = EXCLUDED.tmdb_id,
			tvdb_id = EXCLUDED.tvdb_id,
			rating_key = EXCLUDED.rating_key,
			title = EXCLUDED.title,
			poster_path = EXCLUDED.poster_path,
			season_count = EXCLUDED.season_count,
			status = CASE WHEN media_items.status = 'removed'
				THEN media_items.status ELSE EXCLUDED.status END,
			requested_by_plex_id = EXCLUDED.requested_by_plex_id,
			requested_by_username = EXCLUDED.requested_by_username,
			last_synced_at = NOW(),
			updated_at = NOW()
		RETURNING id, status, last_synced_at, created_at, updated_at
	`

	return d.Pool.QueryRow(ctx, query,
		item.OverseerrRequestID,
		item.OverseerrMediaID,
		item.TmdbID,
		item.TvdbID,
		item.RatingKey,
		item.MediaType,
		item.Title,
		item.PosterPath,
		item.SeasonCount,
		item.Status,
		item.RequestedByPlexID,
		item.RequestedByUsername,
		item.RequestedAt,
	).Scan(&item.ID, &item.Status, &item.LastSyncedAt, &item.CreatedAt, &item.UpdatedAt)
}

// GetMediaItemByID retrieves a media item by its id.
func (d *DB) GetMediaItemByID(ctx context.Context, id uuid.UUID) (*models.MediaItem, error) {
	query := `SELECT ` + mediaItemColumns + ` FROM media_items WHERE id = $1`
	return scanMediaItem(d.Pool.QueryRow(ctx, query, id))
}

// ListMediaItemsByRequester retrieves all non-removed items requested by a user.
func (d *DB) ListMediaItemsByRequester(ctx context.Context, plexID string) ([]models.MediaItem, error) {
	query := `
		SELECT ` + mediaItemColumns + `
		FROM media_items
		WHERE requested_by_plex_id = $1 AND status <> $2
		ORDER BY requested_at DESC NULLS LAST
	`
	rows, err := d.Pool.Query(ctx, query, plexID, models.StatusRemoved)
	if err != nil {
		return nil, err
	}
	return scanMediaItems(rows)
}

// ClaimRemoved conditionally transitions an item to removed. It is the
// deletion orchestrator's claim step: zero affected rows means another
// caller already claimed the item (or it never existed) and no external
// delete may be attempted.
func (d *DB) ClaimRemoved(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE media_items
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status <> $1
	`
	result, err := d.Pool.Exec(ctx, query, models.StatusRemoved, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrAlreadyRemoved
	}
	return nil
}

// MarkStaleRemoved transitions every non-removed item whose Overseerr
// request id is absent from presentIDs to removed, returning the number of
// items transitioned. Removed stays sticky: the conditional update never
// touches already-removed rows.
func (d *DB) MarkStaleRemoved(ctx context.Context, presentIDs []int64) (int64, error) {
	query := `
		UPDATE media_items
		SET status = $1, updated_at = NOW()
		WHERE status <> $1 AND NOT (overseerr_request_id = ANY($2))
	`
	result, err := d.Pool.Exec(ctx, query, models.StatusRemoved, presentIDs)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// CountNonRemovedItems counts locally tracked items that are not removed.
func (d *DB) CountNonRemovedItems(ctx context.Context) (int, error) {
	var count int
	err := d.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM media_items WHERE status <> $1`, models.StatusRemoved,
	).Scan(&count)
	return count, err
}

// UpdateMediaItemStatus refreshes status and season count for a known item
// during a partial sync.
func (d *DB) UpdateMediaItemStatus(ctx context.Context, requestID int64, status string, seasonCount *int) error {
	query := `
		UPDATE media_items
		SET status = CASE WHEN status = $1 THEN status ELSE $2 END,
			season_count = COALESCE($3, season_count),
			last_synced_at = NOW(),
			updated_at = NOW()
		WHERE overseerr_request_id = $4
	`
	result, err := d.Pool.Exec(ctx, query, models.StatusRemoved, status, seasonCount, requestID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrMediaItemNotFound
	}
	return nil
}
