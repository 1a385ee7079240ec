package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"shelflife/internal/db"
	"shelflife/internal/models"
	"shelflife/internal/services/tautulli"
)

// MediaHandler serves the personal request listing and watch history.
type MediaHandler struct {
	db       *db.DB
	tautulli *tautulli.Client
	logger   *logrus.Logger
}

// NewMediaHandler creates a new media handler. The Tautulli client may be
// nil; watch history is then unavailable.
func NewMediaHandler(database *db.DB, tautulliClient *tautulli.Client, logger *logrus.Logger) *MediaHandler {
	return &MediaHandler{db: database, tautulli: tautulliClient, logger: logger}
}

// personalItem pairs an item with the caller's current self-vote, if any.
type personalItem struct {
	Item models.MediaItem `json:"item"`
	Vote *models.SelfVote `json:"vote"`
}

// ListMine returns the caller's own non-removed requests with their votes.
func (h *MediaHandler) ListMine(c fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	items, err := h.db.ListMediaItemsByRequester(c.Context(), user.PlexID)
	if err != nil {
		return err
	}

	out := make([]personalItem, 0, len(items))
	for _, item := range items {
		entry := personalItem{Item: item}
		vote, err := h.db.GetSelfVote(c.Context(), item.ID, user.PlexID)
		if err == nil {
			entry.Vote = vote
		} else if !errors.Is(err, db.ErrVoteNotFound) {
			return err
		}
		out = append(out, entry)
	}
	return jsonSuccess(c, out)
}

// History returns Plex watch history for one item, proxied from Tautulli.
func (h *MediaHandler) History(c fiber.Ctx) error {
	if h.tautulli == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "watch history is not configured")
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid media item id")
	}

	item, err := h.db.GetMediaItemByID(c.Context(), itemID)
	if err != nil {
		if errors.Is(err, db.ErrMediaItemNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "media item not found")
		}
		return err
	}

	if item.RatingKey == nil {
		return jsonSuccess(c, []tautulli.HistoryRecord{})
	}

	records, err := h.tautulli.GetHistory(c.Context(), *item.RatingKey)
	if err != nil {
		h.logger.WithError(err).WithField("media_item_id", itemID).Warn("Tautulli history lookup failed")
		return fiber.NewError(fiber.StatusBadGateway, "failed to fetch watch history")
	}
	return jsonSuccess(c, records)
}
