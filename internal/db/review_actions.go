package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"shelflife/internal/models"
)

// UpsertReviewAction records (or overwrites) an admin decision for one item
// in a round, re-stamping actor and time on change. The INSERT ... SELECT
// gates on the round being active in the same statement, so recording
// against a closed or missing round hits zero rows and surfaces not-found.
func (d *DB) UpsertReviewAction(ctx context.Context, action *models.ReviewAction) error {
	query := `
		INSERT INTO review_actions (round_id, media_item_id, action, action_by)
		SELECT r.id, $2, $3, $4
		FROM review_rounds r
		WHERE r.id = $1 AND r.status = $5
		ON CONFLICT (round_id, media_item_id) DO UPDATE SET
			action = EXCLUDED.action,
			action_by = EXCLUDED.action_by,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	err := d.Pool.QueryRow(ctx, query,
		action.RoundID,
		action.MediaItemID,
		action.Action,
		action.ActionBy,
		models.RoundActive,
	).Scan(&action.ID, &action.CreatedAt, &action.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrRoundNotFound
	}
	return err
}

// GetReviewAction retrieves the recorded action for (round, item).
func (d *DB) GetReviewAction(ctx context.Context, roundID, mediaItemID uuid.UUID) (*models.ReviewAction, error) {
	query := `
		SELECT id, round_id, media_item_id, action, action_by, created_at, updated_at
		FROM review_actions
		WHERE round_id = $1 AND media_item_id = $2
	`
	var action models.ReviewAction
	err := d.Pool.QueryRow(ctx, query, roundID, mediaItemID).Scan(
		&action.ID,
		&action.RoundID,
		&action.MediaItemID,
		&action.Action,
		&action.ActionBy,
		&action.CreatedAt,
		&action.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrActionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &action, nil
}

// ListReviewActions retrieves all recorded actions for a round.
func (d *DB) ListReviewActions(ctx context.Context, roundID uuid.UUID) ([]models.ReviewAction, error) {
	query := `
		SELECT id, round_id, media_item_id, action, action_by, created_at, updated_at
		FROM review_actions
		WHERE round_id = $1
		ORDER BY updated_at DESC
	`
	rows, err := d.Pool.Query(ctx, query, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []models.ReviewAction
	for rows.Next() {
		var action models.ReviewAction
		if err := rows.Scan(
			&action.ID,
			&action.RoundID,
			&action.MediaItemID,
			&action.Action,
			&action.ActionBy,
			&action.CreatedAt,
			&action.UpdatedAt,
		); err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	return actions, rows.Err()
}
