package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"shelflife/internal/db"
	"shelflife/internal/models"
	"shelflife/internal/nominations"
	"shelflife/internal/validation"
)

// VoteHandler handles self-votes and community keep votes.
type VoteHandler struct {
	db     *db.DB
	logger *logrus.Logger
}

// NewVoteHandler creates a new vote handler.
func NewVoteHandler(database *db.DB, logger *logrus.Logger) *VoteHandler {
	return &VoteHandler{db: database, logger: logger}
}

type selfVoteRequest struct {
	Vote        string `json:"vote"`
	KeepSeasons *int   `json:"keep_seasons"`
}

// loadVotableItem fetches the item and checks the acting user may self-vote
// on it. Items the user cannot act on read as not found, so the response
// does not reveal other members' requests.
func (h *VoteHandler) loadVotableItem(c fiber.Ctx, user *models.User) (*models.MediaItem, error) {
	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid media item id")
	}

	item, err := h.db.GetMediaItemByID(c.Context(), itemID)
	if err != nil {
		if errors.Is(err, db.ErrMediaItemNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "media item not found")
		}
		return nil, err
	}

	if item.Status == models.StatusRemoved {
		return nil, fiber.NewError(fiber.StatusConflict, "media item has been removed")
	}

	if !user.IsAdmin && !item.IsRequestedBy(user.PlexID) {
		return nil, fiber.NewError(fiber.StatusNotFound, "media item not found")
	}

	return item, nil
}

// PutSelfVote records or replaces the acting user's self-vote on an item.
// Admins may vote on any item as a proxy for absent requesters.
func (h *VoteHandler) PutSelfVote(c fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	item, err := h.loadVotableItem(c, user)
	if err != nil {
		return err
	}

	var req selfVoteRequest
	if err := c.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if valid, msg := validation.ValidateSelfVote(req.Vote, req.KeepSeasons, item); !valid {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	vote := &models.SelfVote{
		MediaItemID: item.ID,
		UserPlexID:  user.PlexID,
		Vote:        req.Vote,
		KeepSeasons: req.KeepSeasons,
	}
	if req.Vote != models.VoteTrim {
		vote.KeepSeasons = nil
	}

	if err := h.db.UpsertSelfVote(c.Context(), vote); err != nil {
		return err
	}

	h.logger.WithFields(logrus.Fields{
		"media_item_id": item.ID,
		"plex_id":       user.PlexID,
		"vote":          req.Vote,
	}).Info("Self-vote recorded")
	return jsonSuccess(c, vote)
}

// DeleteSelfVote retracts the acting user's self-vote on an item.
func (h *VoteHandler) DeleteSelfVote(c fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	item, err := h.loadVotableItem(c, user)
	if err != nil {
		return err
	}

	if err := h.db.DeleteSelfVote(c.Context(), item.ID, user.PlexID); err != nil {
		if errors.Is(err, db.ErrVoteNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "vote not found")
		}
		return err
	}

	return jsonSuccess(c, fiber.Map{"deleted": true})
}

type communityVoteRequest struct {
	Vote string `json:"vote"`
}

// PutKeepVote records a community keep vote on a nominated item. Only items
// that currently resolve as candidates accept keep votes, and the item's
// own requester cannot keep-vote it.
func (h *VoteHandler) PutKeepVote(c fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid media item id")
	}

	var req communityVoteRequest
	if err := c.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if valid, msg := validation.ValidateCommunityVote(req.Vote); !valid {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	rows, err := h.db.ListNominationVotesForItem(c.Context(), itemID)
	if err != nil {
		return err
	}
	if !nominations.CanCommunityVote(rows, user.PlexID) {
		// Non-candidates and own requests read the same as unknown ids.
		return fiber.NewError(fiber.StatusNotFound, "candidate not found")
	}

	vote := &models.CommunityVote{
		MediaItemID: itemID,
		UserPlexID:  user.PlexID,
		Vote:        models.VoteKeep,
	}
	if err := h.db.UpsertCommunityVote(c.Context(), vote); err != nil {
		return err
	}

	h.logger.WithFields(logrus.Fields{
		"media_item_id": itemID,
		"plex_id":       user.PlexID,
	}).Info("Keep vote recorded")
	return jsonSuccess(c, vote)
}

// DeleteKeepVote retracts the acting user's keep vote.
func (h *VoteHandler) DeleteKeepVote(c fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid media item id")
	}

	if err := h.db.DeleteCommunityVote(c.Context(), itemID, user.PlexID); err != nil {
		if errors.Is(err, db.ErrVoteNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "vote not found")
		}
		return err
	}

	return jsonSuccess(c, fiber.Map{"deleted": true})
}
