package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"shelflife/internal/db"
	"shelflife/internal/deletion"
	"shelflife/internal/models"
)

// DeletionHandler drives the multi-service deletion flow. Admin only.
type DeletionHandler struct {
	db           *db.DB
	orchestrator *deletion.Orchestrator
	logger       *logrus.Logger
}

// NewDeletionHandler creates a new deletion handler.
func NewDeletionHandler(database *db.DB, orchestrator *deletion.Orchestrator, logger *logrus.Logger) *DeletionHandler {
	return &DeletionHandler{db: database, orchestrator: orchestrator, logger: logger}
}

type deleteRequest struct {
	DeleteFiles bool `json:"delete_files"`
}

// Execute runs the deletion flow for one item. The item must carry a
// 'remove' decision in the active round. A 207 is returned when some
// services failed so the caller can render partial failure.
func (h *DeletionHandler) Execute(c fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid media item id")
	}

	var req deleteRequest
	if err := c.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	item, err := h.db.GetMediaItemByID(c.Context(), itemID)
	if err != nil {
		if errors.Is(err, db.ErrMediaItemNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "media item not found")
		}
		return err
	}

	round, err := h.db.GetActiveRound(c.Context())
	if err != nil {
		if errors.Is(err, db.ErrNoActiveRound) {
			return fiber.NewError(fiber.StatusConflict, "no active round")
		}
		return err
	}

	action, err := h.db.GetReviewAction(c.Context(), round.ID, itemID)
	if err != nil {
		if errors.Is(err, db.ErrActionNotFound) {
			return fiber.NewError(fiber.StatusConflict, "item has no review action in the active round")
		}
		return err
	}
	if action.Action != models.ActionRemove {
		return fiber.NewError(fiber.StatusConflict, "item is not marked for removal")
	}

	result, err := h.orchestrator.Execute(c.Context(), item, &round.ID, user.PlexID, req.DeleteFiles)
	if err != nil {
		if errors.Is(err, deletion.ErrAlreadyRemoved) {
			return fiber.NewError(fiber.StatusConflict, "media item has already been removed")
		}
		return err
	}

	status := fiber.StatusOK
	if len(result.Errors) > 0 {
		status = fiber.StatusMultiStatus
	}

	h.logger.WithFields(logrus.Fields{
		"media_item_id": itemID,
		"round_id":      round.ID,
		"errors":        len(result.Errors),
	}).Info("Deletion executed")
	return c.Status(status).JSON(fiber.Map{
		"status": "ok",
		"data":   result,
	})
}
