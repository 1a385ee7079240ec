package models

import (
	"time"

	"github.com/google/uuid"
)

// DeletionLog is one append-only audit record per deletion attempt.
// The per-service success flags are tri-state: nil means the service was
// never attempted (not configured or not applicable), true/false is the
// attempted outcome. Rows are never mutated after insert.
type DeletionLog struct {
	ID               uuid.UUID  `json:"id"`
	MediaItemID      uuid.UUID  `json:"media_item_id"`
	RoundID          *uuid.UUID `json:"round_id"`
	DeletedBy        string     `json:"deleted_by"`
	DeleteFiles      bool       `json:"delete_files"`
	SonarrSuccess    *bool      `json:"sonarr_success"`
	RadarrSuccess    *bool      `json:"radarr_success"`
	OverseerrSuccess *bool      `json:"overseerr_success"`
	Errors           *string    `json:"errors"`
	CreatedAt        time.Time  `json:"created_at"`
}
