package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"shelflife/internal/db"
	"shelflife/internal/models"
	"shelflife/internal/nominations"
)

// CandidateHandler serves the resolved nomination view.
type CandidateHandler struct {
	db *db.DB
}

// NewCandidateHandler creates a new candidate handler.
func NewCandidateHandler(database *db.DB) *CandidateHandler {
	return &CandidateHandler{db: database}
}

// List returns all current candidates, resolved from the qualifying votes.
// The IsNominator and IsRequester flags are relative to the caller.
func (h *CandidateHandler) List(c fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	rows, err := h.db.ListNominationVotes(c.Context())
	if err != nil {
		return err
	}

	candidates := nominations.Resolve(rows, user.PlexID)
	return jsonSuccess(c, candidates)
}

// Get returns one candidate with its keep voters.
func (h *CandidateHandler) Get(c fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid media item id")
	}

	rows, err := h.db.ListNominationVotesForItem(c.Context(), itemID)
	if err != nil {
		return err
	}
	if !nominations.IsCandidate(rows) {
		return fiber.NewError(fiber.StatusNotFound, "candidate not found")
	}

	candidates := nominations.Resolve(rows, user.PlexID)

	voters, err := h.db.ListCommunityVoters(c.Context(), itemID)
	if err != nil {
		return err
	}

	return jsonSuccess(c, fiber.Map{
		"candidate":   candidates[0],
		"keep_voters": voters,
	})
}

// History returns the deletion audit trail for one item. Admin only.
func (h *CandidateHandler) History(c fiber.Ctx) error {
	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid media item id")
	}

	if _, err := h.db.GetMediaItemByID(c.Context(), itemID); err != nil {
		if errors.Is(err, db.ErrMediaItemNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "media item not found")
		}
		return err
	}

	logs, err := h.db.ListDeletionLogsForItem(c.Context(), itemID)
	if err != nil {
		return err
	}
	return jsonSuccess(c, logs)
}
