package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"shelflife/internal/db"
	"shelflife/internal/models"
)

// UserHandler handles admin user management.
type UserHandler struct {
	db     *db.DB
	logger *logrus.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(database *db.DB, logger *logrus.Logger) *UserHandler {
	return &UserHandler{db: database, logger: logger}
}

// List returns all known users. Admin only.
func (h *UserHandler) List(c fiber.Ctx) error {
	users, err := h.db.ListUsers(c.Context())
	if err != nil {
		return err
	}
	return jsonSuccess(c, users)
}

type setAdminRequest struct {
	IsAdmin bool `json:"is_admin"`
}

// SetAdmin grants or revokes another user's admin flag. Admins cannot
// revoke their own flag, so the system always keeps at least one admin.
func (h *UserHandler) SetAdmin(c fiber.Ctx) error {
	actor := c.Locals("user").(*models.User)
	plexID := c.Params("plexID")

	var req setAdminRequest
	if err := c.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if plexID == actor.PlexID && !req.IsAdmin {
		return fiber.NewError(fiber.StatusBadRequest, "cannot revoke your own admin access")
	}

	if err := h.db.SetUserAdmin(c.Context(), plexID, req.IsAdmin); err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	h.logger.WithFields(logrus.Fields{
		"plex_id":  plexID,
		"is_admin": req.IsAdmin,
		"actor":    actor.PlexID,
	}).Info("Admin flag updated")
	return jsonSuccess(c, fiber.Map{"plex_id": plexID, "is_admin": req.IsAdmin})
}
