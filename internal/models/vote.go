package models

import (
	"time"

	"github.com/google/uuid"
)

// Self-vote values: a requester (or an admin acting as proxy) votes to
// delete a request outright or trim a show down to keep_seasons seasons.
const (
	VoteDelete = "delete"
	VoteTrim   = "trim"
)

// VoteKeep is the only recordable community vote value; "remove" is
// implicit in the absence of a keep vote.
const VoteKeep = "keep"

// SelfVote is a requester's (or admin proxy's) vote on a request.
// At most one row exists per (media item, acting user).
type SelfVote struct {
	ID          uuid.UUID `json:"id"`
	MediaItemID uuid.UUID `json:"media_item_id"`
	UserPlexID  string    `json:"user_plex_id"`
	Vote        string    `json:"vote"`
	KeepSeasons *int      `json:"keep_seasons"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CommunityVote is a non-requester's keep vote on a nominated item.
// At most one row exists per (media item, acting user).
type CommunityVote struct {
	ID          uuid.UUID `json:"id"`
	MediaItemID uuid.UUID `json:"media_item_id"`
	UserPlexID  string    `json:"user_plex_id"`
	Vote        string    `json:"vote"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
