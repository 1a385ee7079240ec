package validation

import (
	"strings"

	"shelflife/internal/models"
)

// ValidateSelfVote checks a self-vote value and its trim parameter.
// A trim vote must carry keepSeasons, and keepSeasons must be at least 1
// and strictly less than the item's season count (keeping every season is
// not a trim).
func ValidateSelfVote(vote string, keepSeasons *int, item *models.MediaItem) (bool, string) {
	switch vote {
	case models.VoteDelete:
		if keepSeasons != nil {
			return false, "keep_seasons is only valid for trim votes"
		}
		return true, ""
	case models.VoteTrim:
		if item.MediaType != models.MediaTypeTV {
			return false, "Trim votes are only valid for TV shows"
		}
		if keepSeasons == nil {
			return false, "Trim votes require keep_seasons"
		}
		if *keepSeasons < 1 {
			return false, "keep_seasons must be at least 1"
		}
		if item.SeasonCount != nil && *keepSeasons >= *item.SeasonCount {
			return false, "keep_seasons must be less than the show's season count"
		}
		return true, ""
	default:
		return false, "Vote must be 'delete' or 'trim'"
	}
}

// ValidateCommunityVote checks a community vote value. Community votes can
// only be 'keep'.
func ValidateCommunityVote(vote string) (bool, string) {
	if vote != models.VoteKeep {
		return false, "Community vote must be 'keep'"
	}
	return true, ""
}

// ValidateRoundName checks a review round name.
func ValidateRoundName(name string) (bool, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, "Round name is required"
	}
	if len(name) > 200 {
		return false, "Round name must be 200 characters or less"
	}
	return true, ""
}

// ValidateReviewAction checks an admin review action value.
func ValidateReviewAction(action string) (bool, string) {
	switch action {
	case models.ActionRemove, models.ActionKeep, models.ActionSkip:
		return true, ""
	default:
		return false, "Action must be 'remove', 'keep', or 'skip'"
	}
}
