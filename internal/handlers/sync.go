package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"shelflife/internal/db"
	syncer "shelflife/internal/sync"
)

// SyncHandler exposes manual sync triggers and sync status. Admin only.
type SyncHandler struct {
	db         *db.DB
	reconciler *syncer.Reconciler
	logger     *logrus.Logger
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(database *db.DB, reconciler *syncer.Reconciler, logger *logrus.Logger) *SyncHandler {
	return &SyncHandler{db: database, reconciler: reconciler, logger: logger}
}

// TriggerFull runs a full sync inline. Manual triggers share the single
// in-progress slot with the scheduler.
func (h *SyncHandler) TriggerFull(c fiber.Ctx) error {
	result, err := h.reconciler.FullSync(c.Context())
	if err != nil {
		if errors.Is(err, syncer.ErrSyncInProgress) {
			return fiber.NewError(fiber.StatusConflict, "a sync is already in progress")
		}
		return err
	}
	return jsonSuccess(c, result)
}

// TriggerPartial runs a partial status refresh inline.
func (h *SyncHandler) TriggerPartial(c fiber.Ctx) error {
	result, err := h.reconciler.PartialSync(c.Context())
	if err != nil {
		if errors.Is(err, syncer.ErrSyncInProgress) {
			return fiber.NewError(fiber.StatusConflict, "a sync is already in progress")
		}
		return err
	}
	return jsonSuccess(c, result)
}

// Status returns whether a sync is running plus the latest completed run.
func (h *SyncHandler) Status(c fiber.Ctx) error {
	latest, err := h.db.GetLatestSyncLog(c.Context())
	if err != nil {
		return err
	}
	return jsonSuccess(c, fiber.Map{
		"in_progress": h.reconciler.InProgress(),
		"latest":      latest,
	})
}
