package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"shelflife/internal/models"
)

// StartSyncLog opens a running sync log entry.
func (d *DB) StartSyncLog(ctx context.Context, syncType string) (*models.SyncLog, error) {
	query := `
		INSERT INTO sync_logs (sync_type, status)
		VALUES ($1, $2)
		RETURNING id, started_at
	`
	entry := models.SyncLog{SyncType: syncType, Status: models.SyncRunning}
	err := d.Pool.QueryRow(ctx, query, syncType, models.SyncRunning).Scan(&entry.ID, &entry.StartedAt)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// FinishSyncLog closes a sync log entry with its final status and counts.
func (d *DB) FinishSyncLog(ctx context.Context, id uuid.UUID, status string, itemsSynced, usersSynced int, syncErr *string) error {
	query := `
		UPDATE sync_logs
		SET status = $1, items_synced = $2, users_synced = $3, error = $4, finished_at = NOW()
		WHERE id = $5
	`
	_, err := d.Pool.Exec(ctx, query, status, itemsSynced, usersSynced, syncErr, id)
	return err
}

// GetLatestSyncLog retrieves the most recent sync run, if any.
func (d *DB) GetLatestSyncLog(ctx context.Context) (*models.SyncLog, error) {
	query := `
		SELECT id, sync_type, status, items_synced, users_synced, error, started_at, finished_at
		FROM sync_logs
		ORDER BY started_at DESC
		LIMIT 1
	`
	var entry models.SyncLog
	err := d.Pool.QueryRow(ctx, query).Scan(
		&entry.ID,
		&entry.SyncType,
		&entry.Status,
		&entry.ItemsSynced,
		&entry.UsersSynced,
		&entry.Error,
		&entry.StartedAt,
		&entry.FinishedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// CountSyncRuns returns run counts grouped by status, for the metrics
// collector.
func (d *DB) CountSyncRuns(ctx context.Context) (map[string]int64, error) {
	rows, err := d.Pool.Query(ctx, `SELECT status, COUNT(*) FROM sync_logs GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
