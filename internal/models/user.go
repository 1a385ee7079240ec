package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a Plex community member known to the dashboard.
// Identity is keyed on the Plex account id supplied by the OIDC provider
// and refreshed from Tautulli's user listing during sync.
type User struct {
	ID        uuid.UUID `json:"id"`
	PlexID    string    `json:"plex_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Thumb     string    `json:"thumb"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
