// Package deletion executes an approved removal across the external
// services that hold a copy of the item: Sonarr for series, Radarr for
// movies, Overseerr for the originating request. Attempts are best-effort
// and independent; the local claim is authoritative regardless of how the
// external calls fare.
package deletion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"shelflife/internal/db"
	"shelflife/internal/models"
	"shelflife/internal/services/radarr"
	"shelflife/internal/services/sonarr"
)

// ErrAlreadyRemoved is returned when the claim step loses the race: the
// item was already removed, no external call was made and no audit row was
// written.
var ErrAlreadyRemoved = errors.New("media item already removed")

// SeriesService is the Sonarr-shaped collaborator.
type SeriesService interface {
	LookupByTvdbID(ctx context.Context, tvdbID int64) (*sonarr.Series, error)
	DeleteSeries(ctx context.Context, seriesID int64, deleteFiles bool) error
}

// MovieService is the Radarr-shaped collaborator.
type MovieService interface {
	LookupByTmdbID(ctx context.Context, tmdbID int64) (*radarr.Movie, error)
	DeleteMovie(ctx context.Context, movieID int64, deleteFiles bool) error
}

// RequestService is the Overseerr-shaped collaborator.
type RequestService interface {
	DeleteMediaRequest(ctx context.Context, requestID int64) error
}

// Store is the persistence surface the orchestrator needs: the conditional
// claim and the append-only audit write.
type Store interface {
	ClaimRemoved(ctx context.Context, id uuid.UUID) error
	InsertDeletionLog(ctx context.Context, entry *models.DeletionLog) error
}

// Outcome is the tri-state result of one service attempt. Success is nil
// when the service was skipped (not configured or not applicable to the
// item), otherwise the attempted outcome.
type Outcome struct {
	Attempted bool   `json:"attempted"`
	Success   *bool  `json:"success"`
	Error     string `json:"error,omitempty"`
}

func skipped() Outcome { return Outcome{} }

func succeeded() Outcome {
	b := true
	return Outcome{Attempted: true, Success: &b}
}

func failed(err error) Outcome {
	b := false
	return Outcome{Attempted: true, Success: &b, Error: err.Error()}
}

// Result is the full per-service outcome of one deletion. There is no
// aggregate success flag: callers inspect each service and Errors to render
// partial failure.
type Result struct {
	MediaItemID uuid.UUID `json:"media_item_id"`
	Sonarr      Outcome   `json:"sonarr"`
	Radarr      Outcome   `json:"radarr"`
	Overseerr   Outcome   `json:"overseerr"`
	Errors      []string  `json:"errors"`
}

// Orchestrator coordinates a deletion across the configured services.
// Clients are injected at construction; a nil client means the service is
// not configured and its attempts are skipped.
type Orchestrator struct {
	store     Store
	sonarr    SeriesService
	radarr    MovieService
	overseerr RequestService
	logger    *logrus.Logger
}

// NewOrchestrator creates a deletion orchestrator.
func NewOrchestrator(store Store, series SeriesService, movies MovieService, requests RequestService, logger *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		store:     store,
		sonarr:    series,
		radarr:    movies,
		overseerr: requests,
		logger:    logger,
	}
}

// Execute claims the item and fires the per-service deletions.
//
// The claim must complete before any external call: a conditional update to
// status=removed whose zero-row result means another caller got there
// first, in which case Execute aborts with ErrAlreadyRemoved, touching
// nothing upstream and writing no audit row. Once claimed, each service is
// attempted independently; one failure never short-circuits the others, and
// exactly one audit row is written after all three resolve.
func (o *Orchestrator) Execute(ctx context.Context, item *models.MediaItem, roundID *uuid.UUID, adminPlexID string, deleteFiles bool) (*Result, error) {
	if err := o.store.ClaimRemoved(ctx, item.ID); err != nil {
		if errors.Is(err, db.ErrAlreadyRemoved) {
			o.logger.WithField("media_item_id", item.ID).Warn("Deletion skipped: item already removed")
			return nil, ErrAlreadyRemoved
		}
		return nil, fmt.Errorf("failed to claim media item: %w", err)
	}

	result := &Result{MediaItemID: item.ID}
	result.Sonarr = o.deleteSeries(ctx, item, deleteFiles)
	result.Radarr = o.deleteMovie(ctx, item, deleteFiles)
	result.Overseerr = o.deleteRequest(ctx, item)

	for _, attempt := range []struct {
		service string
		outcome Outcome
	}{
		{"sonarr", result.Sonarr},
		{"radarr", result.Radarr},
		{"overseerr", result.Overseerr},
	} {
		if attempt.outcome.Error != "" {
			result.Errors = append(result.Errors, attempt.service+": "+attempt.outcome.Error)
		}
	}

	entry := &models.DeletionLog{
		MediaItemID:      item.ID,
		RoundID:          roundID,
		DeletedBy:        adminPlexID,
		DeleteFiles:      deleteFiles,
		SonarrSuccess:    result.Sonarr.Success,
		RadarrSuccess:    result.Radarr.Success,
		OverseerrSuccess: result.Overseerr.Success,
	}
	if len(result.Errors) > 0 {
		joined := strings.Join(result.Errors, "; ")
		entry.Errors = &joined
	}
	if err := o.store.InsertDeletionLog(ctx, entry); err != nil {
		// The claim already happened; surface the audit failure but keep
		// the per-service outcomes for the caller.
		o.logger.WithError(err).Error("Failed to write deletion log")
		return result, fmt.Errorf("failed to write deletion log: %w", err)
	}

	o.logger.WithFields(logrus.Fields{
		"media_item_id": item.ID,
		"title":         item.Title,
		"errors":        len(result.Errors),
	}).Info("Deletion executed")

	return result, nil
}

// deleteSeries attempts the Sonarr deletion for a TV item. An upstream
// lookup miss counts as success: the series is already gone.
func (o *Orchestrator) deleteSeries(ctx context.Context, item *models.MediaItem, deleteFiles bool) Outcome {
	if item.MediaType != models.MediaTypeTV || o.sonarr == nil || item.TvdbID == nil {
		return skipped()
	}

	series, err := o.sonarr.LookupByTvdbID(ctx, *item.TvdbID)
	if err != nil {
		o.logger.WithError(err).WithField("tvdb_id", *item.TvdbID).Error("Sonarr lookup failed")
		return failed(err)
	}
	if series == nil {
		return succeeded()
	}

	if err := o.sonarr.DeleteSeries(ctx, series.ID, deleteFiles); err != nil {
		o.logger.WithError(err).WithField("series_id", series.ID).Error("Sonarr delete failed")
		return failed(err)
	}
	return succeeded()
}

// deleteMovie attempts the Radarr deletion for a movie item.
func (o *Orchestrator) deleteMovie(ctx context.Context, item *models.MediaItem, deleteFiles bool) Outcome {
	if item.MediaType != models.MediaTypeMovie || o.radarr == nil || item.TmdbID == nil {
		return skipped()
	}

	movie, err := o.radarr.LookupByTmdbID(ctx, *item.TmdbID)
	if err != nil {
		o.logger.WithError(err).WithField("tmdb_id", *item.TmdbID).Error("Radarr lookup failed")
		return failed(err)
	}
	if movie == nil {
		return succeeded()
	}

	if err := o.radarr.DeleteMovie(ctx, movie.ID, deleteFiles); err != nil {
		o.logger.WithError(err).WithField("movie_id", movie.ID).Error("Radarr delete failed")
		return failed(err)
	}
	return succeeded()
}

// deleteRequest attempts the Overseerr request deletion for any media kind.
func (o *Orchestrator) deleteRequest(ctx context.Context, item *models.MediaItem) Outcome {
	if o.overseerr == nil || item.OverseerrRequestID == 0 {
		return skipped()
	}

	if err := o.overseerr.DeleteMediaRequest(ctx, item.OverseerrRequestID); err != nil {
		o.logger.WithError(err).WithField("request_id", item.OverseerrRequestID).Error("Overseerr delete failed")
		return failed(err)
	}
	return succeeded()
}
