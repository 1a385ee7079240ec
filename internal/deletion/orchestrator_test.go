package deletion

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"shelflife/internal/db"
	"shelflife/internal/models"
	"shelflife/internal/services/radarr"
	"shelflife/internal/services/sonarr"
)

type fakeStore struct {
	claimed   map[uuid.UUID]bool
	claimErr  error
	logs      []*models.DeletionLog
	insertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{claimed: make(map[uuid.UUID]bool)}
}

func (s *fakeStore) ClaimRemoved(ctx context.Context, id uuid.UUID) error {
	if s.claimErr != nil {
		return s.claimErr
	}
	if s.claimed[id] {
		return db.ErrAlreadyRemoved
	}
	s.claimed[id] = true
	return nil
}

func (s *fakeStore) InsertDeletionLog(ctx context.Context, entry *models.DeletionLog) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.logs = append(s.logs, entry)
	return nil
}

type fakeSonarr struct {
	series    *sonarr.Series
	lookupErr error
	deleteErr error
	deletes   []int64
}

func (f *fakeSonarr) LookupByTvdbID(ctx context.Context, tvdbID int64) (*sonarr.Series, error) {
	return f.series, f.lookupErr
}

func (f *fakeSonarr) DeleteSeries(ctx context.Context, seriesID int64, deleteFiles bool) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes = append(f.deletes, seriesID)
	return nil
}

type fakeRadarr struct {
	movie     *radarr.Movie
	lookupErr error
	deleteErr error
	deletes   []int64
}

func (f *fakeRadarr) LookupByTmdbID(ctx context.Context, tmdbID int64) (*radarr.Movie, error) {
	return f.movie, f.lookupErr
}

func (f *fakeRadarr) DeleteMovie(ctx context.Context, movieID int64, deleteFiles bool) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes = append(f.deletes, movieID)
	return nil
}

type fakeOverseerr struct {
	deleteErr error
	deletes   []int64
}

func (f *fakeOverseerr) DeleteMediaRequest(ctx context.Context, requestID int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes = append(f.deletes, requestID)
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func tvItem() *models.MediaItem {
	tvdbID := int64(70001)
	return &models.MediaItem{
		ID:                 uuid.New(),
		OverseerrRequestID: 42,
		MediaType:          models.MediaTypeTV,
		Title:              "Stale Show",
		TvdbID:             &tvdbID,
		Status:             models.StatusAvailable,
	}
}

func movieItem() *models.MediaItem {
	tmdbID := int64(50001)
	return &models.MediaItem{
		ID:                 uuid.New(),
		OverseerrRequestID: 43,
		MediaType:          models.MediaTypeMovie,
		Title:              "Stale Movie",
		TmdbID:             &tmdbID,
		Status:             models.StatusAvailable,
	}
}

func TestExecute_TVFullSuccess(t *testing.T) {
	store := newFakeStore()
	son := &fakeSonarr{series: &sonarr.Series{ID: 7, Title: "Stale Show"}}
	ovr := &fakeOverseerr{}
	o := NewOrchestrator(store, son, &fakeRadarr{}, ovr, testLogger())

	item := tvItem()
	result, err := o.Execute(context.Background(), item, nil, "admin-1", true)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.Sonarr.Success == nil || !*result.Sonarr.Success {
		t.Error("Sonarr outcome should be success")
	}
	if result.Radarr.Attempted {
		t.Error("Radarr must be skipped for a TV item")
	}
	if result.Overseerr.Success == nil || !*result.Overseerr.Success {
		t.Error("Overseerr outcome should be success")
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %v, want none", result.Errors)
	}
	if len(son.deletes) != 1 || son.deletes[0] != 7 {
		t.Errorf("sonarr deletes = %v, want [7]", son.deletes)
	}
	if len(ovr.deletes) != 1 || ovr.deletes[0] != 42 {
		t.Errorf("overseerr deletes = %v, want [42]", ovr.deletes)
	}
	if len(store.logs) != 1 {
		t.Fatalf("deletion logs = %d, want exactly 1", len(store.logs))
	}
}

func TestExecute_SecondCallLosesClaim(t *testing.T) {
	store := newFakeStore()
	son := &fakeSonarr{series: &sonarr.Series{ID: 7}}
	o := NewOrchestrator(store, son, &fakeRadarr{}, &fakeOverseerr{}, testLogger())

	item := tvItem()
	if _, err := o.Execute(context.Background(), item, nil, "admin-1", false); err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}

	_, err := o.Execute(context.Background(), item, nil, "admin-2", false)
	if !errors.Is(err, ErrAlreadyRemoved) {
		t.Fatalf("second Execute() error = %v, want ErrAlreadyRemoved", err)
	}

	// The losing call must not touch services or write audit rows.
	if len(son.deletes) != 1 {
		t.Errorf("sonarr deletes = %d, want 1", len(son.deletes))
	}
	if len(store.logs) != 1 {
		t.Errorf("deletion logs = %d, want 1", len(store.logs))
	}
}

func TestExecute_LookupMissCountsAsSuccess(t *testing.T) {
	store := newFakeStore()
	son := &fakeSonarr{series: nil}
	o := NewOrchestrator(store, son, &fakeRadarr{}, &fakeOverseerr{}, testLogger())

	result, err := o.Execute(context.Background(), tvItem(), nil, "admin-1", false)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Sonarr.Success == nil || !*result.Sonarr.Success {
		t.Error("lookup miss should count as success, series already gone")
	}
	if len(son.deletes) != 0 {
		t.Errorf("sonarr deletes = %v, want none", son.deletes)
	}
}

func TestExecute_PartialFailureIsIndependent(t *testing.T) {
	store := newFakeStore()
	son := &fakeSonarr{lookupErr: errors.New("sonarr down")}
	ovr := &fakeOverseerr{}
	o := NewOrchestrator(store, son, &fakeRadarr{}, ovr, testLogger())

	result, err := o.Execute(context.Background(), tvItem(), nil, "admin-1", false)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.Sonarr.Success == nil || *result.Sonarr.Success {
		t.Error("Sonarr outcome should be failure")
	}
	if result.Overseerr.Success == nil || !*result.Overseerr.Success {
		t.Error("Overseerr must still be attempted after a Sonarr failure")
	}
	if len(result.Errors) != 1 {
		t.Errorf("Errors = %v, want exactly one", result.Errors)
	}
	if len(store.logs) != 1 {
		t.Fatalf("deletion logs = %d, want 1", len(store.logs))
	}
	if store.logs[0].Errors == nil {
		t.Error("audit row should carry the joined errors")
	}
}

func TestExecute_NilClientsAreSkipped(t *testing.T) {
	store := newFakeStore()
	ovr := &fakeOverseerr{}
	o := NewOrchestrator(store, nil, nil, ovr, testLogger())

	result, err := o.Execute(context.Background(), movieItem(), nil, "admin-1", false)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Radarr.Attempted {
		t.Error("Radarr attempt with nil client should be skipped")
	}
	if result.Radarr.Success != nil {
		t.Error("skipped outcome must carry nil Success")
	}
	if result.Overseerr.Success == nil || !*result.Overseerr.Success {
		t.Error("Overseerr should still succeed")
	}
}

func TestExecute_MovieSuccess(t *testing.T) {
	store := newFakeStore()
	rad := &fakeRadarr{movie: &radarr.Movie{ID: 11, Title: "Stale Movie"}}
	o := NewOrchestrator(store, &fakeSonarr{}, rad, &fakeOverseerr{}, testLogger())

	result, err := o.Execute(context.Background(), movieItem(), nil, "admin-1", true)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Radarr.Success == nil || !*result.Radarr.Success {
		t.Error("Radarr outcome should be success")
	}
	if result.Sonarr.Attempted {
		t.Error("Sonarr must be skipped for a movie item")
	}
	if len(rad.deletes) != 1 || rad.deletes[0] != 11 {
		t.Errorf("radarr deletes = %v, want [11]", rad.deletes)
	}
}
