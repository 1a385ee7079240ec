// Package nominations derives the canonical candidate view from overlapping
// self-votes and admin proxy votes. The merge is done in application code
// over the qualifying vote rows so the tie-break is an explicit named rule
// rather than a side effect of SQL aggregation.
package nominations

import (
	"shelflife/internal/db"
	"shelflife/internal/models"
)

// Candidate is one nominated item as presented to admins and community
// voters. For any fixed set of votes there is at most one Candidate per
// media item.
type Candidate struct {
	Item                models.MediaItem `json:"item"`
	NominationType      string           `json:"nomination_type"`
	KeepSeasons         *int             `json:"keep_seasons,omitempty"`
	NominatedBy         string           `json:"nominated_by"`
	NominatedByUsername string           `json:"nominated_by_username"`
	IsNominator         bool             `json:"is_nominator"`
	IsRequester         bool             `json:"is_requester"`
	KeepVotes           int              `json:"keep_votes"`
}

// votePriority orders vote values for the fallback tie-break among multiple
// admin proxy votes: trim outranks delete. The self-vote preference in
// Resolve is the intentional rule; this ordering only makes the fallback
// deterministic.
func votePriority(vote string) int {
	switch vote {
	case models.VoteTrim:
		return 2
	case models.VoteDelete:
		return 1
	default:
		return 0
	}
}

// preferred reports whether row a beats row b for one item. Self-nomination
// wins over everything; otherwise higher vote priority wins; otherwise the
// lower voter id wins, purely for determinism.
func preferred(a, b db.NominationVote) bool {
	aSelf := a.Item.IsRequestedBy(a.VoterPlexID)
	bSelf := b.Item.IsRequestedBy(b.VoterPlexID)
	if aSelf != bSelf {
		return aSelf
	}
	if pa, pb := votePriority(a.Vote), votePriority(b.Vote); pa != pb {
		return pa > pb
	}
	return a.VoterPlexID < b.VoterPlexID
}

// Resolve merges qualifying vote rows into at most one candidate per media
// item, computing the viewer-relative flags for viewerPlexID. Input order
// is preserved for first appearance of each item.
func Resolve(rows []db.NominationVote, viewerPlexID string) []Candidate {
	best := make(map[string]db.NominationVote)
	var order []string

	for _, row := range rows {
		key := row.Item.ID.String()
		current, seen := best[key]
		if !seen {
			best[key] = row
			order = append(order, key)
			continue
		}
		if preferred(row, current) {
			best[key] = row
		}
	}

	candidates := make([]Candidate, 0, len(order))
	for _, key := range order {
		row := best[key]

		nominationType := row.Vote
		if votePriority(nominationType) == 0 {
			// Unknown vote value; default to delete rather than dropping
			// the candidate.
			nominationType = models.VoteDelete
		}

		var keepSeasons *int
		if nominationType == models.VoteTrim {
			keepSeasons = row.KeepSeasons
		}

		candidates = append(candidates, Candidate{
			Item:                row.Item,
			NominationType:      nominationType,
			KeepSeasons:         keepSeasons,
			NominatedBy:         row.VoterPlexID,
			NominatedByUsername: row.VoterUsername,
			IsNominator:         row.VoterPlexID == viewerPlexID,
			IsRequester:         row.Item.IsRequestedBy(viewerPlexID),
			KeepVotes:           row.KeepVotes,
		})
	}

	return candidates
}

// IsCandidate reports whether any qualifying vote row exists, i.e. whether
// the item is nominated at all.
func IsCandidate(rows []db.NominationVote) bool {
	return len(rows) > 0
}

// CanCommunityVote is the eligibility gate for casting a keep vote: the
// item must be a candidate and the voter must not be its requester. Both
// violations surface as not-found so a rejected caller learns nothing about
// the item's nomination state.
func CanCommunityVote(rows []db.NominationVote, voterPlexID string) bool {
	if len(rows) == 0 {
		return false
	}
	return !rows[0].Item.IsRequestedBy(voterPlexID)
}
