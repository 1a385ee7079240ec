package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"shelflife/internal/db"
	"shelflife/internal/models"
	"shelflife/internal/validation"
)

// RoundHandler handles review round lifecycle, per-user completion flags
// and admin review actions.
type RoundHandler struct {
	db     *db.DB
	logger *logrus.Logger
}

// NewRoundHandler creates a new round handler.
func NewRoundHandler(database *db.DB, logger *logrus.Logger) *RoundHandler {
	return &RoundHandler{db: database, logger: logger}
}

type createRoundRequest struct {
	Name    string     `json:"name"`
	EndDate *time.Time `json:"end_date"`
}

// Create opens a new review round. At most one round is active; a second
// create reports a conflict.
func (h *RoundHandler) Create(c fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req createRoundRequest
	if err := c.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if valid, msg := validation.ValidateRoundName(req.Name); !valid {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	round := &models.ReviewRound{
		Name:      req.Name,
		EndDate:   req.EndDate,
		CreatedBy: user.PlexID,
	}
	if err := h.db.CreateRound(c.Context(), round); err != nil {
		if errors.Is(err, db.ErrActiveRoundExists) {
			return fiber.NewError(fiber.StatusConflict, "a round is already active")
		}
		return err
	}

	h.logger.WithFields(logrus.Fields{
		"round_id": round.ID,
		"name":     round.Name,
	}).Info("Review round opened")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "ok",
		"data":   round,
	})
}

// List returns all rounds, newest first.
func (h *RoundHandler) List(c fiber.Ctx) error {
	rounds, err := h.db.ListRounds(c.Context())
	if err != nil {
		return err
	}
	return jsonSuccess(c, rounds)
}

// GetActive returns the active round, or 404 when none is open.
func (h *RoundHandler) GetActive(c fiber.Ctx) error {
	round, err := h.db.GetActiveRound(c.Context())
	if err != nil {
		if errors.Is(err, db.ErrNoActiveRound) {
			return fiber.NewError(fiber.StatusNotFound, "no active round")
		}
		return err
	}
	return jsonSuccess(c, round)
}

// Get returns one round by id.
func (h *RoundHandler) Get(c fiber.Ctx) error {
	roundID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid round id")
	}

	round, err := h.db.GetRoundByID(c.Context(), roundID)
	if err != nil {
		if errors.Is(err, db.ErrRoundNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "round not found")
		}
		return err
	}
	return jsonSuccess(c, round)
}

type updateRoundRequest struct {
	Name         *string    `json:"name"`
	EndDate      *time.Time `json:"end_date"`
	ClearEndDate bool       `json:"clear_end_date"`
}

// Update edits a round's name or end date.
func (h *RoundHandler) Update(c fiber.Ctx) error {
	roundID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid round id")
	}

	var req updateRoundRequest
	if err := c.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Name == nil && req.EndDate == nil && !req.ClearEndDate {
		return fiber.NewError(fiber.StatusBadRequest, "nothing to update")
	}
	if req.Name != nil {
		if valid, msg := validation.ValidateRoundName(*req.Name); !valid {
			return fiber.NewError(fiber.StatusBadRequest, msg)
		}
	}

	round, err := h.db.UpdateRound(c.Context(), roundID, req.Name, req.EndDate, req.ClearEndDate)
	if err != nil {
		if errors.Is(err, db.ErrRoundNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "round not found")
		}
		return err
	}
	return jsonSuccess(c, round)
}

// Close transitions an active round to closed and returns the final
// completion summary. Closing an already-closed round is a conflict.
func (h *RoundHandler) Close(c fiber.Ctx) error {
	roundID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid round id")
	}

	round, err := h.db.CloseRound(c.Context(), roundID)
	if err != nil {
		if errors.Is(err, db.ErrRoundNotFound) {
			// Distinguish unknown rounds from already-closed ones.
			if _, getErr := h.db.GetRoundByID(c.Context(), roundID); getErr == nil {
				return fiber.NewError(fiber.StatusConflict, "round is already closed")
			}
			return fiber.NewError(fiber.StatusNotFound, "round not found")
		}
		return err
	}

	summary, err := h.db.GetCompletionSummary(c.Context(), roundID)
	if err != nil {
		return err
	}

	h.logger.WithField("round_id", roundID).Info("Review round closed")
	return jsonSuccess(c, fiber.Map{
		"round":   round,
		"summary": summary,
	})
}

// GetMyStatus returns the caller's completion flags for a round. A user
// with no recorded flags on an existing round reads as both incomplete;
// an unknown round is a 404, never zero flags.
func (h *RoundHandler) GetMyStatus(c fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	roundID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid round id")
	}

	if _, err := h.db.GetRoundByID(c.Context(), roundID); err != nil {
		if errors.Is(err, db.ErrRoundNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "round not found")
		}
		return err
	}

	status, err := h.db.GetReviewStatus(c.Context(), roundID, user.PlexID)
	if err != nil {
		return err
	}
	return jsonSuccess(c, status)
}

// requireActiveRound loads the round and rejects flag or action writes
// against closed rounds.
func (h *RoundHandler) requireActiveRound(c fiber.Ctx) (uuid.UUID, error) {
	roundID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid round id")
	}

	round, err := h.db.GetRoundByID(c.Context(), roundID)
	if err != nil {
		if errors.Is(err, db.ErrRoundNotFound) {
			return uuid.Nil, fiber.NewError(fiber.StatusNotFound, "round not found")
		}
		return uuid.Nil, err
	}
	if round.Status != models.RoundActive {
		return uuid.Nil, fiber.NewError(fiber.StatusConflict, "round is closed")
	}
	return roundID, nil
}

// ToggleNominations flips the caller's nominations-complete flag.
func (h *RoundHandler) ToggleNominations(c fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	roundID, err := h.requireActiveRound(c)
	if err != nil {
		return err
	}

	status, err := h.db.ToggleNominationsComplete(c.Context(), roundID, user.PlexID)
	if err != nil {
		return err
	}
	return jsonSuccess(c, status)
}

// ToggleVoting flips the caller's voting-complete flag.
func (h *RoundHandler) ToggleVoting(c fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	roundID, err := h.requireActiveRound(c)
	if err != nil {
		return err
	}

	status, err := h.db.ToggleVotingComplete(c.Context(), roundID, user.PlexID)
	if err != nil {
		return err
	}
	return jsonSuccess(c, status)
}

// GetSummary returns the round's aggregate completion counts. Admin only.
func (h *RoundHandler) GetSummary(c fiber.Ctx) error {
	roundID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid round id")
	}

	if _, err := h.db.GetRoundByID(c.Context(), roundID); err != nil {
		if errors.Is(err, db.ErrRoundNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "round not found")
		}
		return err
	}

	summary, err := h.db.GetCompletionSummary(c.Context(), roundID)
	if err != nil {
		return err
	}
	return jsonSuccess(c, summary)
}

type reviewActionRequest struct {
	MediaItemID uuid.UUID `json:"media_item_id"`
	Action      string    `json:"action"`
}

// PutAction records an admin decision for one item in a round. Re-recording
// replaces the previous decision and re-stamps the actor.
func (h *RoundHandler) PutAction(c fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	roundID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid round id")
	}

	var req reviewActionRequest
	if err := c.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if valid, msg := validation.ValidateReviewAction(req.Action); !valid {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	if _, err := h.db.GetMediaItemByID(c.Context(), req.MediaItemID); err != nil {
		if errors.Is(err, db.ErrMediaItemNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "media item not found")
		}
		return err
	}

	action := &models.ReviewAction{
		RoundID:     roundID,
		MediaItemID: req.MediaItemID,
		Action:      req.Action,
		ActionBy:    user.PlexID,
	}
	if err := h.db.UpsertReviewAction(c.Context(), action); err != nil {
		if errors.Is(err, db.ErrRoundNotFound) {
			// Covers both unknown rounds and closed ones; the insert is
			// gated on round status in a single statement.
			return fiber.NewError(fiber.StatusConflict, "round is not active")
		}
		return err
	}

	h.logger.WithFields(logrus.Fields{
		"round_id":      roundID,
		"media_item_id": req.MediaItemID,
		"action":        req.Action,
	}).Info("Review action recorded")
	return jsonSuccess(c, action)
}

// ListActions returns all recorded actions for a round. Admin only.
func (h *RoundHandler) ListActions(c fiber.Ctx) error {
	roundID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid round id")
	}

	actions, err := h.db.ListReviewActions(c.Context(), roundID)
	if err != nil {
		return err
	}
	return jsonSuccess(c, actions)
}
