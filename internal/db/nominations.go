package db

import (
	"context"

	"github.com/google/uuid"

	"shelflife/internal/models"
)

// NominationVote is one qualifying self-vote row: a vote cast by the item's
// requester or by an admin, joined with its item and keep tally. The
// nominations resolver merges these into at most one candidate per item.
type NominationVote struct {
	Item          models.MediaItem
	VoterPlexID   string
	VoterUsername string
	VoterIsAdmin  bool
	Vote          string
	KeepSeasons   *int
	KeepVotes     int
}

// ListNominationVotes returns every qualifying self-vote on a non-removed
// item. A vote qualifies when the acting user is the item's requester or is
// flagged admin (admins nominate on behalf of absent requesters). The merge
// into unique candidates happens in the nominations package, not in SQL, so
// the tie-break stays an explicit named rule.
func (d *DB) ListNominationVotes(ctx context.Context) ([]NominationVote, error) {
	query := `
		SELECT ` + prefixedMediaItemColumns("m") + `,
			v.user_plex_id, COALESCE(u.username, ''), COALESCE(u.is_admin, FALSE),
			v.vote, v.keep_seasons,
			(SELECT COUNT(*) FROM community_votes c
				WHERE c.media_item_id = m.id AND c.vote = 'keep') AS keep_votes
		FROM user_votes v
		JOIN media_items m ON m.id = v.media_item_id
		LEFT JOIN plex_users u ON u.plex_id = v.user_plex_id
		WHERE m.status <> $1
			AND (COALESCE(u.is_admin, FALSE) OR v.user_plex_id = m.requested_by_plex_id)
		ORDER BY m.title ASC, v.user_plex_id ASC
	`
	rows, err := d.Pool.Query(ctx, query, models.StatusRemoved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var votes []NominationVote
	for rows.Next() {
		var nv NominationVote
		if err := rows.Scan(
			&nv.Item.ID,
			&nv.Item.OverseerrRequestID,
			&nv.Item.OverseerrMediaID,
			&nv.Item.TmdbID,
			&nv.Item.TvdbID,
			&nv.Item.RatingKey,
			&nv.Item.MediaType,
			&nv.Item.Title,
			&nv.Item.PosterPath,
			&nv.Item.SeasonCount,
			&nv.Item.Status,
			&nv.Item.RequestedByPlexID,
			&nv.Item.RequestedByUsername,
			&nv.Item.RequestedAt,
			&nv.Item.LastSyncedAt,
			&nv.Item.CreatedAt,
			&nv.Item.UpdatedAt,
			&nv.VoterPlexID,
			&nv.VoterUsername,
			&nv.VoterIsAdmin,
			&nv.Vote,
			&nv.KeepSeasons,
			&nv.KeepVotes,
		); err != nil {
			return nil, err
		}
		votes = append(votes, nv)
	}
	return votes, rows.Err()
}

// ListNominationVotesForItem returns the qualifying self-votes for a single
// item, used by the community-vote eligibility gate.
func (d *DB) ListNominationVotesForItem(ctx context.Context, mediaItemID uuid.UUID) ([]NominationVote, error) {
	query := `
		SELECT ` + prefixedMediaItemColumns("m") + `,
			v.user_plex_id, COALESCE(u.username, ''), COALESCE(u.is_admin, FALSE),
			v.vote, v.keep_seasons,
			(SELECT COUNT(*) FROM community_votes c
				WHERE c.media_item_id = m.id AND c.vote = 'keep') AS keep_votes
		FROM user_votes v
		JOIN media_items m ON m.id = v.media_item_id
		LEFT JOIN plex_users u ON u.plex_id = v.user_plex_id
		WHERE m.id = $1 AND m.status <> $2
			AND (COALESCE(u.is_admin, FALSE) OR v.user_plex_id = m.requested_by_plex_id)
		ORDER BY v.user_plex_id ASC
	`
	rows, err := d.Pool.Query(ctx, query, mediaItemID, models.StatusRemoved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var votes []NominationVote
	for rows.Next() {
		var nv NominationVote
		if err := rows.Scan(
			&nv.Item.ID,
			&nv.Item.OverseerrRequestID,
			&nv.Item.OverseerrMediaID,
			&nv.Item.TmdbID,
			&nv.Item.TvdbID,
			&nv.Item.RatingKey,
			&nv.Item.MediaType,
			&nv.Item.Title,
			&nv.Item.PosterPath,
			&nv.Item.SeasonCount,
			&nv.Item.Status,
			&nv.Item.RequestedByPlexID,
			&nv.Item.RequestedByUsername,
			&nv.Item.RequestedAt,
			&nv.Item.LastSyncedAt,
			&nv.Item.CreatedAt,
			&nv.Item.UpdatedAt,
			&nv.VoterPlexID,
			&nv.VoterUsername,
			&nv.VoterIsAdmin,
			&nv.Vote,
			&nv.KeepSeasons,
			&nv.KeepVotes,
		); err != nil {
			return nil, err
		}
		votes = append(votes, nv)
	}
	return votes, rows.Err()
}

// prefixedMediaItemColumns qualifies the media item column list with a
// table alias for joined queries.
func prefixedMediaItemColumns(alias string) string {
	return alias + `.id, ` + alias + `.overseerr_request_id, ` + alias + `.overseerr_media_id, ` +
		alias + `.tmdb_id, ` + alias + `.tvdb_id, ` + alias + `.rating_key, ` +
		alias + `.media_type, ` + alias + `.title, ` + alias + `.poster_path, ` +
		alias + `.season_count, ` + alias + `.status, ` + alias + `.requested_by_plex_id, ` +
		alias + `.requested_by_username, ` + alias + `.requested_at, ` +
		alias + `.last_synced_at, ` + alias + `.created_at, ` + alias + `.updated_at`
}
