package nominations

import (
	"testing"

	"github.com/google/uuid"

	"shelflife/internal/db"
	"shelflife/internal/models"
)

func makeItem(id uuid.UUID, requester string) models.MediaItem {
	return models.MediaItem{
		ID:                  id,
		MediaType:           models.MediaTypeTV,
		Title:               "Some Show",
		Status:              models.StatusAvailable,
		RequestedByPlexID:   &requester,
		RequestedByUsername: "user-" + requester,
	}
}

func TestResolve_SelfVoteBeatsProxy(t *testing.T) {
	itemID := uuid.New()
	item := makeItem(itemID, "member-1")
	keep := 2

	rows := []db.NominationVote{
		{Item: item, VoterPlexID: "admin-1", VoterIsAdmin: true, Vote: models.VoteTrim, KeepSeasons: &keep},
		{Item: item, VoterPlexID: "member-1", Vote: models.VoteDelete},
	}

	candidates := Resolve(rows, "viewer")
	if len(candidates) != 1 {
		t.Fatalf("Resolve() returned %d candidates, want 1", len(candidates))
	}

	c := candidates[0]
	if c.NominatedBy != "member-1" {
		t.Errorf("NominatedBy = %q, want member-1 (self-vote wins over proxy)", c.NominatedBy)
	}
	if c.NominationType != models.VoteDelete {
		t.Errorf("NominationType = %q, want %q", c.NominationType, models.VoteDelete)
	}
	if c.KeepSeasons != nil {
		t.Errorf("KeepSeasons = %v, want nil for delete nomination", c.KeepSeasons)
	}
}

func TestResolve_TrimOutranksDeleteAmongProxies(t *testing.T) {
	itemID := uuid.New()
	item := makeItem(itemID, "member-1")
	keep := 3

	rows := []db.NominationVote{
		{Item: item, VoterPlexID: "admin-2", VoterIsAdmin: true, Vote: models.VoteDelete},
		{Item: item, VoterPlexID: "admin-1", VoterIsAdmin: true, Vote: models.VoteTrim, KeepSeasons: &keep},
	}

	candidates := Resolve(rows, "viewer")
	if len(candidates) != 1 {
		t.Fatalf("Resolve() returned %d candidates, want 1", len(candidates))
	}

	c := candidates[0]
	if c.NominationType != models.VoteTrim {
		t.Errorf("NominationType = %q, want %q", c.NominationType, models.VoteTrim)
	}
	if c.KeepSeasons == nil || *c.KeepSeasons != 3 {
		t.Errorf("KeepSeasons = %v, want 3", c.KeepSeasons)
	}
	if c.NominatedBy != "admin-1" {
		t.Errorf("NominatedBy = %q, want admin-1", c.NominatedBy)
	}
}

func TestResolve_LowestVoterIDBreaksTies(t *testing.T) {
	itemID := uuid.New()
	item := makeItem(itemID, "member-1")

	rows := []db.NominationVote{
		{Item: item, VoterPlexID: "admin-9", VoterIsAdmin: true, Vote: models.VoteDelete},
		{Item: item, VoterPlexID: "admin-2", VoterIsAdmin: true, Vote: models.VoteDelete},
		{Item: item, VoterPlexID: "admin-5", VoterIsAdmin: true, Vote: models.VoteDelete},
	}

	candidates := Resolve(rows, "viewer")
	if len(candidates) != 1 {
		t.Fatalf("Resolve() returned %d candidates, want 1", len(candidates))
	}
	if got := candidates[0].NominatedBy; got != "admin-2" {
		t.Errorf("NominatedBy = %q, want admin-2", got)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	itemID := uuid.New()
	item := makeItem(itemID, "member-1")
	keep := 1

	rows := []db.NominationVote{
		{Item: item, VoterPlexID: "member-1", Vote: models.VoteTrim, KeepSeasons: &keep},
		{Item: item, VoterPlexID: "admin-1", VoterIsAdmin: true, Vote: models.VoteDelete},
		{Item: item, VoterPlexID: "admin-2", VoterIsAdmin: true, Vote: models.VoteTrim, KeepSeasons: &keep},
	}

	first := Resolve(rows, "viewer")

	// Reversing input order must not change the winner.
	reversed := []db.NominationVote{rows[2], rows[1], rows[0]}
	second := Resolve(reversed, "viewer")

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("Resolve() candidate counts = %d, %d, want 1, 1", len(first), len(second))
	}
	if first[0].NominatedBy != second[0].NominatedBy || first[0].NominationType != second[0].NominationType {
		t.Errorf("Resolve() order-dependent: %+v vs %+v", first[0], second[0])
	}
}

func TestResolve_ViewerFlags(t *testing.T) {
	myItemID := uuid.New()
	otherItemID := uuid.New()
	myItem := makeItem(myItemID, "member-1")
	otherItem := makeItem(otherItemID, "member-2")

	rows := []db.NominationVote{
		{Item: myItem, VoterPlexID: "member-1", Vote: models.VoteDelete},
		{Item: otherItem, VoterPlexID: "member-2", Vote: models.VoteDelete},
	}

	candidates := Resolve(rows, "member-1")
	if len(candidates) != 2 {
		t.Fatalf("Resolve() returned %d candidates, want 2", len(candidates))
	}

	byItem := make(map[uuid.UUID]Candidate)
	for _, c := range candidates {
		byItem[c.Item.ID] = c
	}

	mine := byItem[myItemID]
	if !mine.IsRequester || !mine.IsNominator {
		t.Errorf("own item flags = requester:%v nominator:%v, want both true", mine.IsRequester, mine.IsNominator)
	}
	theirs := byItem[otherItemID]
	if theirs.IsRequester || theirs.IsNominator {
		t.Errorf("other item flags = requester:%v nominator:%v, want both false", theirs.IsRequester, theirs.IsNominator)
	}
}

func TestCanCommunityVote(t *testing.T) {
	itemID := uuid.New()
	item := makeItem(itemID, "member-1")

	rows := []db.NominationVote{
		{Item: item, VoterPlexID: "member-1", Vote: models.VoteDelete},
	}

	if !CanCommunityVote(rows, "member-2") {
		t.Error("non-requester should be able to keep-vote a candidate")
	}
	if CanCommunityVote(rows, "member-1") {
		t.Error("requester must not keep-vote their own item")
	}
	if CanCommunityVote(nil, "member-2") {
		t.Error("non-candidates must not accept keep votes")
	}
}

func TestResolve_UnknownVoteDefaultsToDelete(t *testing.T) {
	itemID := uuid.New()
	item := makeItem(itemID, "member-1")

	rows := []db.NominationVote{
		{Item: item, VoterPlexID: "member-1", Vote: "bogus"},
	}

	candidates := Resolve(rows, "viewer")
	if len(candidates) != 1 {
		t.Fatalf("Resolve() returned %d candidates, want 1", len(candidates))
	}
	if candidates[0].NominationType != models.VoteDelete {
		t.Errorf("NominationType = %q, want %q", candidates[0].NominationType, models.VoteDelete)
	}
}
