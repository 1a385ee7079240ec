// Package sync mirrors the Overseerr request listing into the local media
// item table and reconciles stale entries: items that vanished upstream are
// transitioned to removed, the same terminal status the deletion flow
// claims, under the same conditional-write rule.
package sync

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"shelflife/internal/models"
	"shelflife/internal/services/overseerr"
	"shelflife/internal/services/tautulli"
)

// ErrSyncInProgress is returned when a sync is requested while another one
// is still running. Scheduled and manual triggers share the same guard.
var ErrSyncInProgress = errors.New("a sync is already in progress")

// RequestSource is the Overseerr-shaped collaborator.
type RequestSource interface {
	GetAllRequests(ctx context.Context) ([]overseerr.Request, error)
	GetMediaDetails(ctx context.Context, tmdbID int64, mediaType string) (*overseerr.MediaDetails, error)
}

// UserSource is the Tautulli-shaped collaborator.
type UserSource interface {
	GetUsers(ctx context.Context) ([]tautulli.User, error)
}

// Store is the persistence surface the reconciler needs.
type Store interface {
	UpsertMediaItem(ctx context.Context, item *models.MediaItem) error
	UpdateMediaItemStatus(ctx context.Context, requestID int64, status string, seasonCount *int) error
	MarkStaleRemoved(ctx context.Context, presentIDs []int64) (int64, error)
	CountNonRemovedItems(ctx context.Context) (int, error)
	UpsertUser(ctx context.Context, user *models.User) error
	StartSyncLog(ctx context.Context, syncType string) (*models.SyncLog, error)
	FinishSyncLog(ctx context.Context, id uuid.UUID, status string, itemsSynced, usersSynced int, syncErr *string) error
}

// Result summarizes one sync run.
type Result struct {
	SyncType     string `json:"sync_type"`
	ItemsSynced  int    `json:"items_synced"`
	UsersSynced  int    `json:"users_synced"`
	ItemsRemoved int64  `json:"items_removed"`
}

// Reconciler runs full and partial syncs against the request system.
type Reconciler struct {
	store        Store
	requests     RequestSource
	users        UserSource
	adminPlexIDs map[string]bool
	logger       *logrus.Logger
	inFlight     atomic.Bool
}

// NewReconciler creates a sync reconciler. The users source may be nil when
// Tautulli is not configured; user sync is then skipped.
func NewReconciler(store Store, requests RequestSource, users UserSource, adminPlexIDs []string, logger *logrus.Logger) *Reconciler {
	admins := make(map[string]bool, len(adminPlexIDs))
	for _, id := range adminPlexIDs {
		admins[id] = true
	}
	return &Reconciler{
		store:        store,
		requests:     requests,
		users:        users,
		adminPlexIDs: admins,
		logger:       logger,
	}
}

// InProgress reports whether a sync is currently running.
func (r *Reconciler) InProgress() bool {
	return r.inFlight.Load()
}

// FullSync mirrors the complete request listing, marks stale items removed
// and refreshes the user table. Only one sync runs at a time across both
// the scheduler and manual triggers.
func (r *Reconciler) FullSync(ctx context.Context) (*Result, error) {
	if !r.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer r.inFlight.Store(false)

	entry, err := r.store.StartSyncLog(ctx, models.SyncFull)
	if err != nil {
		return nil, fmt.Errorf("failed to start sync log: %w", err)
	}

	result, err := r.fullSync(ctx)
	if err != nil {
		msg := err.Error()
		if logErr := r.store.FinishSyncLog(ctx, entry.ID, models.SyncFailed, 0, 0, &msg); logErr != nil {
			r.logger.WithError(logErr).Error("Failed to finalize sync log")
		}
		return nil, err
	}

	if err := r.store.FinishSyncLog(ctx, entry.ID, models.SyncCompleted, result.ItemsSynced, result.UsersSynced, nil); err != nil {
		r.logger.WithError(err).Error("Failed to finalize sync log")
	}
	return result, nil
}

func (r *Reconciler) fullSync(ctx context.Context) (*Result, error) {
	requests, err := r.requests.GetAllRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch requests: %w", err)
	}

	result := &Result{SyncType: models.SyncFull}
	presentIDs := make([]int64, 0, len(requests))

	for _, req := range requests {
		item := r.itemFromRequest(ctx, req)
		if item == nil {
			continue
		}
		// Present upstream regardless of whether the upsert succeeds. A
		// transient write failure must not let stale reconciliation mark a
		// still-requested item removed.
		presentIDs = append(presentIDs, req.ID)
		if err := r.store.UpsertMediaItem(ctx, item); err != nil {
			r.logger.WithError(err).WithField("request_id", req.ID).Warn("Failed to upsert media item, skipping")
			continue
		}
		result.ItemsSynced++
	}

	removed, err := r.reconcileStale(ctx, len(requests), presentIDs)
	if err != nil {
		return nil, err
	}
	result.ItemsRemoved = removed

	result.UsersSynced = r.syncUsers(ctx)

	r.logger.WithFields(logrus.Fields{
		"items":   result.ItemsSynced,
		"removed": result.ItemsRemoved,
		"users":   result.UsersSynced,
	}).Info("Full sync completed")
	return result, nil
}

// reconcileStale marks vanished items removed. An empty fetched set while
// non-removed items exist locally is treated as a transient upstream
// failure, not a mass deletion: nothing is transitioned and a warning is
// logged.
func (r *Reconciler) reconcileStale(ctx context.Context, fetched int, presentIDs []int64) (int64, error) {
	if fetched == 0 {
		local, err := r.store.CountNonRemovedItems(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to count local items: %w", err)
		}
		if local > 0 {
			r.logger.WithField("local_items", local).Warn(
				"Upstream returned zero requests while local items exist; skipping stale reconciliation")
			return 0, nil
		}
		return 0, nil
	}

	removed, err := r.store.MarkStaleRemoved(ctx, presentIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to mark stale items: %w", err)
	}
	if removed > 0 {
		r.logger.WithField("count", removed).Info("Marked stale items removed")
	}
	return removed, nil
}

// itemFromRequest converts an Overseerr request into a local media item,
// falling back to a placeholder title when the detail lookup fails so a
// single bad title never aborts a whole sync.
func (r *Reconciler) itemFromRequest(ctx context.Context, req overseerr.Request) *models.MediaItem {
	mediaType := req.Media.MediaType
	if mediaType != models.MediaTypeMovie && mediaType != models.MediaTypeTV {
		r.logger.WithFields(logrus.Fields{
			"request_id": req.ID,
			"media_type": mediaType,
		}).Warn("Skipping request with unsupported media type")
		return nil
	}

	item := &models.MediaItem{
		OverseerrRequestID: req.ID,
		OverseerrMediaID:   req.Media.ID,
		TmdbID:             req.Media.TmdbID,
		TvdbID:             req.Media.TvdbID,
		RatingKey:          req.Media.RatingKey,
		MediaType:          mediaType,
		Status:             overseerr.StatusFromCode(req.Media.Status),
		RequestedAt:        &req.CreatedAt,
	}

	if req.RequestedBy != nil {
		plexID := strconv.FormatInt(req.RequestedBy.PlexID, 10)
		item.RequestedByPlexID = &plexID
		item.RequestedByUsername = req.RequestedBy.PlexUsername
	}

	item.Title = fmt.Sprintf("Unknown Title (request %d)", req.ID)
	if req.Media.TmdbID != nil {
		details, err := r.requests.GetMediaDetails(ctx, *req.Media.TmdbID, mediaType)
		if err != nil {
			r.logger.WithError(err).WithField("request_id", req.ID).Warn("Detail lookup failed, using fallback title")
		} else {
			item.Title = details.DisplayTitle()
			item.PosterPath = details.PosterPath
			if mediaType == models.MediaTypeTV && details.NumberOfSeasons > 0 {
				seasons := details.NumberOfSeasons
				item.SeasonCount = &seasons
			}
		}
	}

	return item
}

// syncUsers refreshes the local user table from Tautulli. Failures are
// logged and swallowed; user sync is best-effort.
func (r *Reconciler) syncUsers(ctx context.Context) int {
	if r.users == nil {
		return 0
	}

	users, err := r.users.GetUsers(ctx)
	if err != nil {
		r.logger.WithError(err).Warn("Failed to fetch Tautulli users")
		return 0
	}

	synced := 0
	for _, u := range users {
		if u.IsActive == 0 {
			continue
		}
		plexID := strconv.FormatInt(u.UserID, 10)
		user := &models.User{
			PlexID:   plexID,
			Username: u.Username,
			Email:    u.Email,
			Thumb:    u.Thumb,
			IsAdmin:  r.adminPlexIDs[plexID],
		}
		if err := r.store.UpsertUser(ctx, user); err != nil {
			r.logger.WithError(err).WithField("plex_id", plexID).Warn("Failed to upsert user")
			continue
		}
		synced++
	}
	return synced
}

// PartialSync refreshes status and season counts for already-tracked items
// without inserting new ones or reconciling stale entries.
func (r *Reconciler) PartialSync(ctx context.Context) (*Result, error) {
	if !r.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer r.inFlight.Store(false)

	entry, err := r.store.StartSyncLog(ctx, models.SyncPartial)
	if err != nil {
		return nil, fmt.Errorf("failed to start sync log: %w", err)
	}

	requests, err := r.requests.GetAllRequests(ctx)
	if err != nil {
		msg := err.Error()
		if logErr := r.store.FinishSyncLog(ctx, entry.ID, models.SyncFailed, 0, 0, &msg); logErr != nil {
			r.logger.WithError(logErr).Error("Failed to finalize sync log")
		}
		return nil, fmt.Errorf("failed to fetch requests: %w", err)
	}

	result := &Result{SyncType: models.SyncPartial}
	for _, req := range requests {
		status := overseerr.StatusFromCode(req.Media.Status)
		err := r.store.UpdateMediaItemStatus(ctx, req.ID, status, nil)
		if err != nil {
			// Unknown items are expected in a partial sync.
			continue
		}
		result.ItemsSynced++
	}

	if err := r.store.FinishSyncLog(ctx, entry.ID, models.SyncCompleted, result.ItemsSynced, 0, nil); err != nil {
		r.logger.WithError(err).Error("Failed to finalize sync log")
	}

	r.logger.WithField("items", result.ItemsSynced).Info("Partial sync completed")
	return result, nil
}
