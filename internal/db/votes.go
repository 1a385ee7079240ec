package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"shelflife/internal/models"
)

// UpsertSelfVote inserts or replaces the acting user's self-vote on an
// item. The unique index on (media_item_id, user_plex_id) keeps at most one
// row per pair under concurrent casts.
func (d *DB) UpsertSelfVote(ctx context.Context, vote *models.SelfVote) error {
	query := `
		INSERT INTO user_votes (media_item_id, user_plex_id, vote, keep_seasons)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (media_item_id, user_plex_id) DO UPDATE SET
			vote = EXCLUDED.vote,
			keep_seasons = EXCLUDED.keep_seasons,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	return d.Pool.QueryRow(ctx, query,
		vote.MediaItemID,
		vote.UserPlexID,
		vote.Vote,
		vote.KeepSeasons,
	).Scan(&vote.ID, &vote.CreatedAt, &vote.UpdatedAt)
}

// GetSelfVote retrieves a user's self-vote on an item.
func (d *DB) GetSelfVote(ctx context.Context, mediaItemID uuid.UUID, plexID string) (*models.SelfVote, error) {
	query := `
		SELECT id, media_item_id, user_plex_id, vote, keep_seasons, created_at, updated_at
		FROM user_votes
		WHERE media_item_id = $1 AND user_plex_id = $2
	`
	var vote models.SelfVote
	err := d.Pool.QueryRow(ctx, query, mediaItemID, plexID).Scan(
		&vote.ID,
		&vote.MediaItemID,
		&vote.UserPlexID,
		&vote.Vote,
		&vote.KeepSeasons,
		&vote.CreatedAt,
		&vote.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrVoteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

// DeleteSelfVote removes a user's self-vote on an item (un-nominate).
func (d *DB) DeleteSelfVote(ctx context.Context, mediaItemID uuid.UUID, plexID string) error {
	query := `DELETE FROM user_votes WHERE media_item_id = $1 AND user_plex_id = $2`
	result, err := d.Pool.Exec(ctx, query, mediaItemID, plexID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrVoteNotFound
	}
	return nil
}

// UpsertCommunityVote inserts or refreshes a keep vote. Eligibility (item
// is a candidate, voter is not the requester) is checked by the caller
// before this runs.
func (d *DB) UpsertCommunityVote(ctx context.Context, vote *models.CommunityVote) error {
	query := `
		INSERT INTO community_votes (media_item_id, user_plex_id, vote)
		VALUES ($1, $2, $3)
		ON CONFLICT (media_item_id, user_plex_id) DO UPDATE SET
			vote = EXCLUDED.vote,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	return d.Pool.QueryRow(ctx, query,
		vote.MediaItemID,
		vote.UserPlexID,
		vote.Vote,
	).Scan(&vote.ID, &vote.CreatedAt, &vote.UpdatedAt)
}

// DeleteCommunityVote removes a user's keep vote on an item.
func (d *DB) DeleteCommunityVote(ctx context.Context, mediaItemID uuid.UUID, plexID string) error {
	query := `DELETE FROM community_votes WHERE media_item_id = $1 AND user_plex_id = $2`
	result, err := d.Pool.Exec(ctx, query, mediaItemID, plexID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrVoteNotFound
	}
	return nil
}

// ListCommunityVoters returns the Plex ids of all keep voters on an item,
// for the admin voter breakdown.
func (d *DB) ListCommunityVoters(ctx context.Context, mediaItemID uuid.UUID) ([]string, error) {
	query := `
		SELECT c.user_plex_id
		FROM community_votes c
		WHERE c.media_item_id = $1 AND c.vote = $2
		ORDER BY c.created_at ASC
	`
	rows, err := d.Pool.Query(ctx, query, mediaItemID, models.VoteKeep)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var voters []string
	for rows.Next() {
		var plexID string
		if err := rows.Scan(&plexID); err != nil {
			return nil, err
		}
		voters = append(voters, plexID)
	}
	return voters, rows.Err()
}
