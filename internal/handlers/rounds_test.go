package handlers

import (
	"io"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"shelflife/internal/db"
	"shelflife/internal/models"
	"shelflife/internal/testutil"
)

func skipIfNoTestDB(t *testing.T) {
	t.Helper()
	if os.Getenv("TEST_DATABASE_URL") == "" && os.Getenv("RUN_INTEGRATION_TESTS") == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}
}

func testRoundApp(t *testing.T, database *db.DB, user *models.User) *fiber.App {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	handler := NewRoundHandler(database, logger)

	app := fiber.New()
	app.Use(func(c fiber.Ctx) error {
		c.Locals("user", user)
		return c.Next()
	})
	app.Get("/api/v1/rounds/:id/status", handler.GetMyStatus)
	return app
}

func TestGetMyStatus_UnknownRoundIsNotFound(t *testing.T) {
	skipIfNoTestDB(t)
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	user := testutil.CreateTestUser(t, database, "plex-1", false)
	app := testRoundApp(t, database, user)

	req := httptest.NewRequest("GET", "/api/v1/rounds/"+uuid.NewString()+"/status", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("status = %d, want %d for a round id that does not exist", resp.StatusCode, fiber.StatusNotFound)
	}
}

func TestGetMyStatus_ExistingRoundNoFlagsReadsIncomplete(t *testing.T) {
	skipIfNoTestDB(t)
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	admin := testutil.CreateTestUser(t, database, "plex-admin", true)
	user := testutil.CreateTestUser(t, database, "plex-2", false)
	round := testutil.CreateTestRound(t, database, "Spring cleanup", admin.PlexID)
	app := testRoundApp(t, database, user)

	req := httptest.NewRequest("GET", "/api/v1/rounds/"+round.ID.String()+"/status", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
}
