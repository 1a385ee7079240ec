package models

import (
	"time"

	"github.com/google/uuid"
)

// Review round status constants. A closed round stays closed.
const (
	RoundActive = "active"
	RoundClosed = "closed"
)

// Review action constants recorded by admins against (round, item).
const (
	ActionRemove = "remove"
	ActionKeep   = "keep"
	ActionSkip   = "skip"
)

// ReviewRound is a bounded admin-run review period. At most one round is
// active system-wide, enforced by a partial unique index.
type ReviewRound struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	StartedAt time.Time  `json:"started_at"`
	ClosedAt  *time.Time `json:"closed_at"`
	EndDate   *time.Time `json:"end_date"`
	CreatedBy string     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// UserReviewStatus tracks a user's two independent completion flags for a
// round. A missing row reads as both flags false.
type UserReviewStatus struct {
	ID                     uuid.UUID  `json:"id"`
	RoundID                uuid.UUID  `json:"round_id"`
	UserPlexID             string     `json:"user_plex_id"`
	NominationsComplete    bool       `json:"nominations_complete"`
	NominationsCompletedAt *time.Time `json:"nominations_completed_at"`
	VotingComplete         bool       `json:"voting_complete"`
	VotingCompletedAt      *time.Time `json:"voting_completed_at"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// ReviewAction is an admin's recorded decision for one item in a round.
// Upserting re-stamps actor and timestamp.
type ReviewAction struct {
	ID          uuid.UUID `json:"id"`
	RoundID     uuid.UUID `json:"round_id"`
	MediaItemID uuid.UUID `json:"media_item_id"`
	Action      string    `json:"action"`
	ActionBy    string    `json:"action_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CompletionSummary aggregates non-admin completion flags for a round.
type CompletionSummary struct {
	RoundID             uuid.UUID `json:"round_id"`
	EligibleUsers       int       `json:"eligible_users"`
	NominationsComplete int       `json:"nominations_complete"`
	VotingComplete      int       `json:"voting_complete"`
}
