package models

import (
	"time"

	"github.com/google/uuid"
)

// Media type constants
const (
	MediaTypeMovie = "movie"
	MediaTypeTV    = "tv"
)

// Media item status constants. StatusRemoved is terminal: no code path may
// move a removed item back to any other status. A re-synced request that
// reappears upstream is inserted under a new identity instead.
const (
	StatusUnknown    = "unknown"
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusPartial    = "partial"
	StatusAvailable  = "available"
	StatusRemoved    = "removed"
)

// MediaItem is one tracked library entry, mirrored from the Overseerr
// request system during sync.
type MediaItem struct {
	ID                  uuid.UUID  `json:"id"`
	OverseerrRequestID  int64      `json:"overseerr_request_id"`
	OverseerrMediaID    int64      `json:"overseerr_media_id"`
	TmdbID              *int64     `json:"tmdb_id"`
	TvdbID              *int64     `json:"tvdb_id"`
	RatingKey           *string    `json:"rating_key"`
	MediaType           string     `json:"media_type"`
	Title               string     `json:"title"`
	PosterPath          string     `json:"poster_path"`
	SeasonCount         *int       `json:"season_count"`
	Status              string     `json:"status"`
	RequestedByPlexID   *string    `json:"requested_by_plex_id"`
	RequestedByUsername string     `json:"requested_by_username"`
	RequestedAt         *time.Time `json:"requested_at"`
	LastSyncedAt        time.Time  `json:"last_synced_at"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// IsRequestedBy reports whether the given Plex id is the item's original
// requester. A nil requester (account deleted upstream) matches nobody.
func (m *MediaItem) IsRequestedBy(plexID string) bool {
	return m.RequestedByPlexID != nil && *m.RequestedByPlexID == plexID
}
