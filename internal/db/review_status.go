package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"shelflife/internal/models"
)

const reviewStatusColumns = `id, round_id, user_plex_id, nominations_complete, nominations_completed_at,
	voting_complete, voting_completed_at, created_at, updated_at`

func scanReviewStatus(row pgx.Row) (*models.UserReviewStatus, error) {
	var status models.UserReviewStatus
	err := row.Scan(
		&status.ID,
		&status.RoundID,
		&status.UserPlexID,
		&status.NominationsComplete,
		&status.NominationsCompletedAt,
		&status.VotingComplete,
		&status.VotingCompletedAt,
		&status.CreatedAt,
		&status.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// GetReviewStatus retrieves a user's completion flags for a round. A user
// with no row yet reads as both flags false.
func (d *DB) GetReviewStatus(ctx context.Context, roundID uuid.UUID, plexID string) (*models.UserReviewStatus, error) {
	query := `SELECT ` + reviewStatusColumns + ` FROM user_review_statuses WHERE round_id = $1 AND user_plex_id = $2`
	status, err := scanReviewStatus(d.Pool.QueryRow(ctx, query, roundID, plexID))
	if errors.Is(err, pgx.ErrNoRows) {
		return &models.UserReviewStatus{RoundID: roundID, UserPlexID: plexID}, nil
	}
	return status, err
}

// ToggleNominationsComplete flips the nominations flag for (round, user),
// stamping the completion time on toggle-on and clearing it on toggle-off.
// The voting flag is untouched.
func (d *DB) ToggleNominationsComplete(ctx context.Context, roundID uuid.UUID, plexID string) (*models.UserReviewStatus, error) {
	query := `
		INSERT INTO user_review_statuses (round_id, user_plex_id, nominations_complete, nominations_completed_at)
		VALUES ($1, $2, TRUE, NOW())
		ON CONFLICT (round_id, user_plex_id) DO UPDATE SET
			nominations_complete = NOT user_review_statuses.nominations_complete,
			nominations_completed_at = CASE WHEN user_review_statuses.nominations_complete
				THEN NULL ELSE NOW() END,
			updated_at = NOW()
		RETURNING ` + reviewStatusColumns + `
	`
	return scanReviewStatus(d.Pool.QueryRow(ctx, query, roundID, plexID))
}

// ToggleVotingComplete flips the voting flag for (round, user); see
// ToggleNominationsComplete.
func (d *DB) ToggleVotingComplete(ctx context.Context, roundID uuid.UUID, plexID string) (*models.UserReviewStatus, error) {
	query := `
		INSERT INTO user_review_statuses (round_id, user_plex_id, voting_complete, voting_completed_at)
		VALUES ($1, $2, TRUE, NOW())
		ON CONFLICT (round_id, user_plex_id) DO UPDATE SET
			voting_complete = NOT user_review_statuses.voting_complete,
			voting_completed_at = CASE WHEN user_review_statuses.voting_complete
				THEN NULL ELSE NOW() END,
			updated_at = NOW()
		RETURNING ` + reviewStatusColumns + `
	`
	return scanReviewStatus(d.Pool.QueryRow(ctx, query, roundID, plexID))
}

// GetCompletionSummary counts non-admin users with each flag set, against
// the total eligible user count. Progress data only; closing a round is
// never gated on it.
func (d *DB) GetCompletionSummary(ctx context.Context, roundID uuid.UUID) (*models.CompletionSummary, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE s.nominations_complete),
			COUNT(*) FILTER (WHERE s.voting_complete)
		FROM user_review_statuses s
		JOIN plex_users u ON u.plex_id = s.user_plex_id
		WHERE s.round_id = $1 AND NOT u.is_admin
	`
	summary := models.CompletionSummary{RoundID: roundID}
	err := d.Pool.QueryRow(ctx, query, roundID).Scan(
		&summary.NominationsComplete,
		&summary.VotingComplete,
	)
	if err != nil {
		return nil, err
	}

	summary.EligibleUsers, err = d.CountEligibleUsers(ctx)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
