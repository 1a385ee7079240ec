package db

import (
	"context"
	"errors"
	"testing"

	"shelflife/internal/models"
)

func TestUpsertSelfVote_ReplacesVote(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	item := createTestMediaItem(t, db, 3001, models.MediaTypeTV, "Long Show", "member-1")

	vote := &models.SelfVote{
		MediaItemID: item.ID,
		UserPlexID:  "member-1",
		Vote:        models.VoteDelete,
	}
	if err := db.UpsertSelfVote(ctx, vote); err != nil {
		t.Fatalf("UpsertSelfVote() error = %v", err)
	}

	keep := 2
	revised := &models.SelfVote{
		MediaItemID: item.ID,
		UserPlexID:  "member-1",
		Vote:        models.VoteTrim,
		KeepSeasons: &keep,
	}
	if err := db.UpsertSelfVote(ctx, revised); err != nil {
		t.Fatalf("UpsertSelfVote() replace error = %v", err)
	}

	got, err := db.GetSelfVote(ctx, item.ID, "member-1")
	if err != nil {
		t.Fatalf("GetSelfVote() error = %v", err)
	}
	if got.Vote != models.VoteTrim {
		t.Errorf("Vote = %q, want %q", got.Vote, models.VoteTrim)
	}
	if got.KeepSeasons == nil || *got.KeepSeasons != 2 {
		t.Errorf("KeepSeasons = %v, want 2", got.KeepSeasons)
	}
}

func TestDeleteSelfVote(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	item := createTestMediaItem(t, db, 3002, models.MediaTypeMovie, "Meh Movie", "member-1")

	vote := &models.SelfVote{MediaItemID: item.ID, UserPlexID: "member-1", Vote: models.VoteDelete}
	if err := db.UpsertSelfVote(ctx, vote); err != nil {
		t.Fatalf("UpsertSelfVote() error = %v", err)
	}

	if err := db.DeleteSelfVote(ctx, item.ID, "member-1"); err != nil {
		t.Fatalf("DeleteSelfVote() error = %v", err)
	}

	_, err := db.GetSelfVote(ctx, item.ID, "member-1")
	if !errors.Is(err, ErrVoteNotFound) {
		t.Errorf("GetSelfVote() after delete error = %v, want ErrVoteNotFound", err)
	}

	err = db.DeleteSelfVote(ctx, item.ID, "member-1")
	if !errors.Is(err, ErrVoteNotFound) {
		t.Errorf("second DeleteSelfVote() error = %v, want ErrVoteNotFound", err)
	}
}

func TestCommunityVotes(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	item := createTestMediaItem(t, db, 3003, models.MediaTypeMovie, "Beloved Movie", "member-1")

	for _, plexID := range []string{"member-2", "member-3"} {
		vote := &models.CommunityVote{MediaItemID: item.ID, UserPlexID: plexID, Vote: models.VoteKeep}
		if err := db.UpsertCommunityVote(ctx, vote); err != nil {
			t.Fatalf("UpsertCommunityVote(%s) error = %v", plexID, err)
		}
	}

	// Re-voting is idempotent.
	again := &models.CommunityVote{MediaItemID: item.ID, UserPlexID: "member-2", Vote: models.VoteKeep}
	if err := db.UpsertCommunityVote(ctx, again); err != nil {
		t.Fatalf("UpsertCommunityVote() repeat error = %v", err)
	}

	voters, err := db.ListCommunityVoters(ctx, item.ID)
	if err != nil {
		t.Fatalf("ListCommunityVoters() error = %v", err)
	}
	if len(voters) != 2 {
		t.Errorf("ListCommunityVoters() returned %d voters, want 2", len(voters))
	}

	if err := db.DeleteCommunityVote(ctx, item.ID, "member-3"); err != nil {
		t.Fatalf("DeleteCommunityVote() error = %v", err)
	}
	err = db.DeleteCommunityVote(ctx, item.ID, "member-3")
	if !errors.Is(err, ErrVoteNotFound) {
		t.Errorf("second DeleteCommunityVote() error = %v, want ErrVoteNotFound", err)
	}
}

func TestListNominationVotes_QualifyingRules(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	for _, u := range []struct {
		plexID  string
		isAdmin bool
	}{
		{"member-1", false},
		{"member-2", false},
		{"admin-1", true},
	} {
		user := &models.User{PlexID: u.plexID, Username: u.plexID, IsAdmin: u.isAdmin}
		if err := db.UpsertUser(ctx, user); err != nil {
			t.Fatalf("UpsertUser() error = %v", err)
		}
	}

	selfNominated := createTestMediaItem(t, db, 3004, models.MediaTypeMovie, "Self Nominated", "member-1")
	proxyNominated := createTestMediaItem(t, db, 3005, models.MediaTypeMovie, "Proxy Nominated", "member-2")
	removed := createTestMediaItem(t, db, 3006, models.MediaTypeMovie, "Removed Item", "member-1")

	votes := []*models.SelfVote{
		{MediaItemID: selfNominated.ID, UserPlexID: "member-1", Vote: models.VoteDelete},
		{MediaItemID: proxyNominated.ID, UserPlexID: "admin-1", Vote: models.VoteDelete},
		{MediaItemID: removed.ID, UserPlexID: "member-1", Vote: models.VoteDelete},
		// Vote by a non-requester non-admin must not qualify.
		{MediaItemID: selfNominated.ID, UserPlexID: "member-2", Vote: models.VoteDelete},
	}
	for _, v := range votes {
		if err := db.UpsertSelfVote(ctx, v); err != nil {
			t.Fatalf("UpsertSelfVote() error = %v", err)
		}
	}

	if err := db.ClaimRemoved(ctx, removed.ID); err != nil {
		t.Fatalf("ClaimRemoved() error = %v", err)
	}

	keep := &models.CommunityVote{MediaItemID: selfNominated.ID, UserPlexID: "member-2", Vote: models.VoteKeep}
	if err := db.UpsertCommunityVote(ctx, keep); err != nil {
		t.Fatalf("UpsertCommunityVote() error = %v", err)
	}

	rows, err := db.ListNominationVotes(ctx)
	if err != nil {
		t.Fatalf("ListNominationVotes() error = %v", err)
	}

	byItem := make(map[int64][]NominationVote)
	for _, row := range rows {
		byItem[row.Item.OverseerrRequestID] = append(byItem[row.Item.OverseerrRequestID], row)
	}

	if len(byItem[3004]) != 1 {
		t.Errorf("self-nominated item qualifying votes = %d, want 1", len(byItem[3004]))
	}
	if len(byItem[3005]) != 1 {
		t.Errorf("proxy-nominated item qualifying votes = %d, want 1", len(byItem[3005]))
	}
	if len(byItem[3006]) != 0 {
		t.Errorf("removed item qualifying votes = %d, want 0", len(byItem[3006]))
	}

	if got := byItem[3004][0].KeepVotes; got != 1 {
		t.Errorf("KeepVotes = %d, want 1", got)
	}
	if !byItem[3005][0].VoterIsAdmin {
		t.Error("proxy vote should carry VoterIsAdmin")
	}
}
