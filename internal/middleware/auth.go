package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"shelflife/internal/db"
	"shelflife/internal/models"
)

// AuthMiddleware handles user authentication via sessions.
type AuthMiddleware struct {
	store *session.Store
	db    *db.DB
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(store *session.Store, db *db.DB) *AuthMiddleware {
	return &AuthMiddleware{store: store, db: db}
}

// RequireAuth ensures the caller is authenticated, returning 401 JSON if not.
func (m *AuthMiddleware) RequireAuth(c fiber.Ctx) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Authentication required")
	}

	plexID := sess.Get("user_plex_id")
	if plexID == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Authentication required")
	}

	user, err := m.db.GetUserByPlexID(c.Context(), plexID.(string))
	if err != nil {
		sess.Destroy()
		return fiber.NewError(fiber.StatusUnauthorized, "Authentication required")
	}

	c.Locals("user", user)
	return c.Next()
}

// RequireAdmin ensures the caller is an authenticated admin. It must run
// after RequireAuth.
func (m *AuthMiddleware) RequireAdmin(c fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok || !user.IsAdmin {
		return fiber.NewError(fiber.StatusForbidden, "Admin access required")
	}
	return c.Next()
}
