package models

import (
	"time"

	"github.com/google/uuid"
)

// Sync type constants.
const (
	SyncFull    = "full"
	SyncPartial = "partial"
)

// Sync log status constants.
const (
	SyncRunning   = "running"
	SyncCompleted = "completed"
	SyncFailed    = "failed"
)

// SyncLog records one sync run against the upstream request system.
type SyncLog struct {
	ID          uuid.UUID  `json:"id"`
	SyncType    string     `json:"sync_type"`
	Status      string     `json:"status"`
	ItemsSynced int        `json:"items_synced"`
	UsersSynced int        `json:"users_synced"`
	Error       *string    `json:"error"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at"`
}
