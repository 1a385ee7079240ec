package sync

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"shelflife/internal/models"
	"shelflife/internal/services/overseerr"
	"shelflife/internal/services/tautulli"
)

type fakeSyncStore struct {
	items          []*models.MediaItem
	upsertFailIDs  map[int64]bool
	statusUpdates  []int64
	staleCalls     [][]int64
	staleRemoved   int64
	localCount     int
	users          []*models.User
	startedLogs    []string
	finishedStatus []string
	finishedErrs   []*string
}

func (s *fakeSyncStore) UpsertMediaItem(ctx context.Context, item *models.MediaItem) error {
	if s.upsertFailIDs[item.OverseerrRequestID] {
		return errors.New("connection reset")
	}
	copied := *item
	s.items = append(s.items, &copied)
	return nil
}

func (s *fakeSyncStore) UpdateMediaItemStatus(ctx context.Context, requestID int64, status string, seasonCount *int) error {
	s.statusUpdates = append(s.statusUpdates, requestID)
	return nil
}

func (s *fakeSyncStore) MarkStaleRemoved(ctx context.Context, presentIDs []int64) (int64, error) {
	s.staleCalls = append(s.staleCalls, presentIDs)
	return s.staleRemoved, nil
}

func (s *fakeSyncStore) CountNonRemovedItems(ctx context.Context) (int, error) {
	return s.localCount, nil
}

func (s *fakeSyncStore) UpsertUser(ctx context.Context, user *models.User) error {
	copied := *user
	s.users = append(s.users, &copied)
	return nil
}

func (s *fakeSyncStore) StartSyncLog(ctx context.Context, syncType string) (*models.SyncLog, error) {
	s.startedLogs = append(s.startedLogs, syncType)
	return &models.SyncLog{ID: uuid.New(), SyncType: syncType, Status: models.SyncRunning}, nil
}

func (s *fakeSyncStore) FinishSyncLog(ctx context.Context, id uuid.UUID, status string, itemsSynced, usersSynced int, syncErr *string) error {
	s.finishedStatus = append(s.finishedStatus, status)
	s.finishedErrs = append(s.finishedErrs, syncErr)
	return nil
}

type fakeRequestSource struct {
	requests   []overseerr.Request
	listErr    error
	details    map[int64]*overseerr.MediaDetails
	detailsErr error
	hold       chan struct{}
}

func (f *fakeRequestSource) GetAllRequests(ctx context.Context) ([]overseerr.Request, error) {
	if f.hold != nil {
		<-f.hold
	}
	return f.requests, f.listErr
}

func (f *fakeRequestSource) GetMediaDetails(ctx context.Context, tmdbID int64, mediaType string) (*overseerr.MediaDetails, error) {
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	if d, ok := f.details[tmdbID]; ok {
		return d, nil
	}
	return nil, errors.New("not found")
}

type fakeUserSource struct {
	users []tautulli.User
	err   error
}

func (f *fakeUserSource) GetUsers(ctx context.Context) ([]tautulli.User, error) {
	return f.users, f.err
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func movieRequest(id, tmdbID int64, plexID int64) overseerr.Request {
	return overseerr.Request{
		ID:        id,
		CreatedAt: time.Now(),
		Media: overseerr.Media{
			ID:        id * 10,
			MediaType: models.MediaTypeMovie,
			TmdbID:    &tmdbID,
			Status:    5,
		},
		RequestedBy: &overseerr.RequestedBy{PlexID: plexID, PlexUsername: "someone"},
	}
}

func TestFullSync(t *testing.T) {
	store := &fakeSyncStore{staleRemoved: 1}
	requests := &fakeRequestSource{
		requests: []overseerr.Request{movieRequest(1, 100, 7)},
		details: map[int64]*overseerr.MediaDetails{
			100: {Title: "Known Movie", PosterPath: "/p.jpg"},
		},
	}
	users := &fakeUserSource{users: []tautulli.User{
		{UserID: 7, Username: "someone", IsActive: 1},
		{UserID: 8, Username: "ghost", IsActive: 0},
	}}

	r := NewReconciler(store, requests, users, []string{"7"}, testLogger())
	result, err := r.FullSync(context.Background())
	if err != nil {
		t.Fatalf("FullSync() error = %v", err)
	}

	if result.ItemsSynced != 1 {
		t.Errorf("ItemsSynced = %d, want 1", result.ItemsSynced)
	}
	if result.ItemsRemoved != 1 {
		t.Errorf("ItemsRemoved = %d, want 1", result.ItemsRemoved)
	}
	if result.UsersSynced != 1 {
		t.Errorf("UsersSynced = %d, want 1 (inactive users skipped)", result.UsersSynced)
	}

	if len(store.items) != 1 {
		t.Fatalf("upserted items = %d, want 1", len(store.items))
	}
	item := store.items[0]
	if item.Title != "Known Movie" {
		t.Errorf("Title = %q, want %q", item.Title, "Known Movie")
	}
	if item.Status != models.StatusAvailable {
		t.Errorf("Status = %q, want %q", item.Status, models.StatusAvailable)
	}
	if item.RequestedByPlexID == nil || *item.RequestedByPlexID != "7" {
		t.Errorf("RequestedByPlexID = %v, want 7", item.RequestedByPlexID)
	}

	if len(store.users) != 1 || !store.users[0].IsAdmin {
		t.Errorf("synced users = %+v, want one admin", store.users)
	}

	if len(store.staleCalls) != 1 {
		t.Fatalf("stale reconciliation calls = %d, want 1", len(store.staleCalls))
	}
	if len(store.finishedStatus) != 1 || store.finishedStatus[0] != models.SyncCompleted {
		t.Errorf("finished statuses = %v, want [completed]", store.finishedStatus)
	}
}

func TestFullSync_DetailFailureUsesFallbackTitle(t *testing.T) {
	store := &fakeSyncStore{}
	requests := &fakeRequestSource{
		requests:   []overseerr.Request{movieRequest(9, 100, 7)},
		detailsErr: errors.New("metadata down"),
	}

	r := NewReconciler(store, requests, nil, nil, testLogger())
	result, err := r.FullSync(context.Background())
	if err != nil {
		t.Fatalf("FullSync() error = %v", err)
	}

	if result.ItemsSynced != 1 {
		t.Errorf("ItemsSynced = %d, want 1 (detail failure must not drop the item)", result.ItemsSynced)
	}
	if len(store.items) != 1 {
		t.Fatalf("upserted items = %d, want 1", len(store.items))
	}
	if !strings.Contains(store.items[0].Title, "Unknown Title") {
		t.Errorf("Title = %q, want fallback placeholder", store.items[0].Title)
	}
}

func TestFullSync_UpsertFailureStaysPresent(t *testing.T) {
	store := &fakeSyncStore{upsertFailIDs: map[int64]bool{2: true}}
	requests := &fakeRequestSource{
		requests: []overseerr.Request{movieRequest(1, 100, 7), movieRequest(2, 101, 8)},
		details: map[int64]*overseerr.MediaDetails{
			100: {Title: "Kept"},
			101: {Title: "Flaky Write"},
		},
	}

	r := NewReconciler(store, requests, nil, nil, testLogger())
	result, err := r.FullSync(context.Background())
	if err != nil {
		t.Fatalf("FullSync() error = %v", err)
	}

	if result.ItemsSynced != 1 {
		t.Errorf("ItemsSynced = %d, want 1", result.ItemsSynced)
	}
	if len(store.staleCalls) != 1 {
		t.Fatalf("stale reconciliation calls = %d, want 1", len(store.staleCalls))
	}

	// A request whose write failed is still present upstream and must not
	// be eligible for the removed transition.
	present := store.staleCalls[0]
	if len(present) != 2 || present[0] != 1 || present[1] != 2 {
		t.Errorf("presentIDs = %v, want [1 2]", present)
	}
}

func TestFullSync_AllUpsertsFailDoesNotMassRemove(t *testing.T) {
	store := &fakeSyncStore{upsertFailIDs: map[int64]bool{1: true, 2: true}}
	requests := &fakeRequestSource{
		requests: []overseerr.Request{movieRequest(1, 100, 7), movieRequest(2, 101, 8)},
	}

	r := NewReconciler(store, requests, nil, nil, testLogger())
	result, err := r.FullSync(context.Background())
	if err != nil {
		t.Fatalf("FullSync() error = %v", err)
	}

	if result.ItemsSynced != 0 {
		t.Errorf("ItemsSynced = %d, want 0", result.ItemsSynced)
	}
	if len(store.staleCalls) != 1 {
		t.Fatalf("stale reconciliation calls = %d, want 1", len(store.staleCalls))
	}
	if got := store.staleCalls[0]; len(got) != 2 {
		t.Errorf("presentIDs = %v, want both fetched request ids", got)
	}
	if result.ItemsRemoved != 0 {
		t.Errorf("ItemsRemoved = %d, want 0", result.ItemsRemoved)
	}
}

func TestFullSync_EmptyFetchGuard(t *testing.T) {
	store := &fakeSyncStore{localCount: 12}
	requests := &fakeRequestSource{requests: nil}

	r := NewReconciler(store, requests, nil, nil, testLogger())
	result, err := r.FullSync(context.Background())
	if err != nil {
		t.Fatalf("FullSync() error = %v", err)
	}

	if len(store.staleCalls) != 0 {
		t.Error("empty fetch with local items must not run stale reconciliation")
	}
	if result.ItemsRemoved != 0 {
		t.Errorf("ItemsRemoved = %d, want 0", result.ItemsRemoved)
	}
}

func TestFullSync_EmptyFetchEmptyLocal(t *testing.T) {
	store := &fakeSyncStore{localCount: 0}
	requests := &fakeRequestSource{requests: nil}

	r := NewReconciler(store, requests, nil, nil, testLogger())
	if _, err := r.FullSync(context.Background()); err != nil {
		t.Fatalf("FullSync() error = %v", err)
	}

	// Nothing tracked, nothing to guard; still no stale call needed.
	if len(store.staleCalls) != 0 {
		t.Error("no stale reconciliation expected with an empty library")
	}
}

func TestFullSync_FetchFailureFinalizesLog(t *testing.T) {
	store := &fakeSyncStore{}
	requests := &fakeRequestSource{listErr: errors.New("overseerr down")}

	r := NewReconciler(store, requests, nil, nil, testLogger())
	_, err := r.FullSync(context.Background())
	if err == nil {
		t.Fatal("FullSync() expected error")
	}

	if len(store.finishedStatus) != 1 || store.finishedStatus[0] != models.SyncFailed {
		t.Errorf("finished statuses = %v, want [failed]", store.finishedStatus)
	}
	if store.finishedErrs[0] == nil {
		t.Error("failed log should carry the error message")
	}
}

func TestFullSync_SharedInProgressGuard(t *testing.T) {
	store := &fakeSyncStore{}
	hold := make(chan struct{})
	requests := &fakeRequestSource{hold: hold}

	r := NewReconciler(store, requests, nil, nil, testLogger())

	done := make(chan error, 1)
	go func() {
		_, err := r.FullSync(context.Background())
		done <- err
	}()

	// Wait for the first sync to take the slot.
	for !r.InProgress() {
		time.Sleep(time.Millisecond)
	}

	if _, err := r.FullSync(context.Background()); !errors.Is(err, ErrSyncInProgress) {
		t.Errorf("concurrent FullSync() error = %v, want ErrSyncInProgress", err)
	}
	if _, err := r.PartialSync(context.Background()); !errors.Is(err, ErrSyncInProgress) {
		t.Errorf("concurrent PartialSync() error = %v, want ErrSyncInProgress", err)
	}

	close(hold)
	if err := <-done; err != nil {
		t.Fatalf("first FullSync() error = %v", err)
	}

	if r.InProgress() {
		t.Error("InProgress() should be false after the sync completes")
	}
}

func TestPartialSync(t *testing.T) {
	store := &fakeSyncStore{}
	requests := &fakeRequestSource{
		requests: []overseerr.Request{movieRequest(1, 100, 7), movieRequest(2, 101, 8)},
	}

	r := NewReconciler(store, requests, nil, nil, testLogger())
	result, err := r.PartialSync(context.Background())
	if err != nil {
		t.Fatalf("PartialSync() error = %v", err)
	}

	if result.ItemsSynced != 2 {
		t.Errorf("ItemsSynced = %d, want 2", result.ItemsSynced)
	}
	if len(store.items) != 0 {
		t.Error("partial sync must not insert new items")
	}
	if len(store.staleCalls) != 0 {
		t.Error("partial sync must not reconcile stale items")
	}
	if len(store.statusUpdates) != 2 {
		t.Errorf("status updates = %d, want 2", len(store.statusUpdates))
	}
}
