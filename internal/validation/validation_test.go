package validation

import (
	"strings"
	"testing"

	"shelflife/internal/models"
)

func intPtr(n int) *int { return &n }

func TestValidateSelfVote(t *testing.T) {
	show := &models.MediaItem{MediaType: models.MediaTypeTV, SeasonCount: intPtr(5)}
	movie := &models.MediaItem{MediaType: models.MediaTypeMovie}

	tests := []struct {
		name        string
		vote        string
		keepSeasons *int
		item        *models.MediaItem
		want        bool
	}{
		{"delete movie", models.VoteDelete, nil, movie, true},
		{"delete show", models.VoteDelete, nil, show, true},
		{"delete with keep_seasons", models.VoteDelete, intPtr(2), movie, false},
		{"trim show", models.VoteTrim, intPtr(2), show, true},
		{"trim keeps all seasons", models.VoteTrim, intPtr(5), show, false},
		{"trim beyond season count", models.VoteTrim, intPtr(9), show, false},
		{"trim zero seasons", models.VoteTrim, intPtr(0), show, false},
		{"trim negative", models.VoteTrim, intPtr(-1), show, false},
		{"trim without keep_seasons", models.VoteTrim, nil, show, false},
		{"trim a movie", models.VoteTrim, intPtr(1), movie, false},
		{"unknown vote", "purge", nil, movie, false},
		{"empty vote", "", nil, movie, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, msg := ValidateSelfVote(tt.vote, tt.keepSeasons, tt.item)
			if got != tt.want {
				t.Errorf("ValidateSelfVote(%q, %v) = %v (%q), want %v", tt.vote, tt.keepSeasons, got, msg, tt.want)
			}
			if !got && msg == "" {
				t.Error("rejection should carry a message")
			}
		})
	}
}

func TestValidateSelfVote_TrimWithUnknownSeasonCount(t *testing.T) {
	// A show whose season count has not synced yet: the lower bound still
	// applies, the upper bound cannot.
	show := &models.MediaItem{MediaType: models.MediaTypeTV}

	if ok, msg := ValidateSelfVote(models.VoteTrim, intPtr(3), show); !ok {
		t.Errorf("trim without known season count rejected: %q", msg)
	}
	if ok, _ := ValidateSelfVote(models.VoteTrim, intPtr(0), show); ok {
		t.Error("keep_seasons of 0 accepted")
	}
}

func TestValidateCommunityVote(t *testing.T) {
	if ok, _ := ValidateCommunityVote(models.VoteKeep); !ok {
		t.Error("keep vote rejected")
	}
	for _, vote := range []string{models.VoteDelete, models.VoteTrim, "remove", ""} {
		if ok, _ := ValidateCommunityVote(vote); ok {
			t.Errorf("ValidateCommunityVote(%q) accepted", vote)
		}
	}
}

func TestValidateRoundName(t *testing.T) {
	if ok, _ := ValidateRoundName("Spring Cleaning 2026"); !ok {
		t.Error("valid name rejected")
	}
	if ok, _ := ValidateRoundName(""); ok {
		t.Error("empty name accepted")
	}
	if ok, _ := ValidateRoundName("   "); ok {
		t.Error("whitespace-only name accepted")
	}
	if ok, _ := ValidateRoundName(strings.Repeat("x", 201)); ok {
		t.Error("overlong name accepted")
	}
}

func TestValidateReviewAction(t *testing.T) {
	for _, action := range []string{models.ActionRemove, models.ActionKeep, models.ActionSkip} {
		if ok, _ := ValidateReviewAction(action); !ok {
			t.Errorf("ValidateReviewAction(%q) rejected", action)
		}
	}
	for _, action := range []string{"delete", "", "REMOVE"} {
		if ok, _ := ValidateReviewAction(action); ok {
			t.Errorf("ValidateReviewAction(%q) accepted", action)
		}
	}
}
