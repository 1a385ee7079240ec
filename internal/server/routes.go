package server

import (
	"context"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"shelflife/internal/db"
	"shelflife/internal/deletion"
	"shelflife/internal/handlers"
	"shelflife/internal/middleware"
	"shelflife/internal/services/tautulli"
	syncer "shelflife/internal/sync"
)

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(
	ctx context.Context,
	database *db.DB,
	orchestrator *deletion.Orchestrator,
	reconciler *syncer.Reconciler,
	tautulliClient *tautulli.Client,
	logger *logrus.Logger,
) error {
	authMiddleware := middleware.NewAuthMiddleware(s.Store, database)

	voteHandler := handlers.NewVoteHandler(database, logger)
	candidateHandler := handlers.NewCandidateHandler(database)
	mediaHandler := handlers.NewMediaHandler(database, tautulliClient, logger)
	roundHandler := handlers.NewRoundHandler(database, logger)
	deletionHandler := handlers.NewDeletionHandler(database, orchestrator, logger)
	syncHandler := handlers.NewSyncHandler(database, reconciler, logger)
	userHandler := handlers.NewUserHandler(database, logger)
	healthHandler := handlers.NewHealthHandler(database)

	authHandler, err := handlers.NewAuthHandler(ctx, s.Cfg, database, logger)
	if err != nil {
		return err
	}

	s.App.Get("/auth/login", authHandler.Login)
	s.App.Get("/auth/callback", authHandler.Callback)
	s.App.Get("/auth/logout", authHandler.Logout)

	// Probes and metrics are unauthenticated.
	s.App.Get("/healthz", healthHandler.Live)
	s.App.Get("/readyz", healthHandler.Ready)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := s.App.Group("/api/v1", authMiddleware.RequireAuth)

	api.Get("/me", authHandler.Me)

	// Personal requests and votes
	api.Get("/media", mediaHandler.ListMine)
	api.Get("/media/:id/history", mediaHandler.History)
	api.Put("/media/:id/vote", voteHandler.PutSelfVote)
	api.Delete("/media/:id/vote", voteHandler.DeleteSelfVote)

	// Candidates and community votes
	api.Get("/candidates", candidateHandler.List)
	api.Get("/candidates/:id", candidateHandler.Get)
	api.Put("/candidates/:id/keep", voteHandler.PutKeepVote)
	api.Delete("/candidates/:id/keep", voteHandler.DeleteKeepVote)

	// Review rounds
	api.Get("/rounds", roundHandler.List)
	api.Get("/rounds/active", roundHandler.GetActive)
	api.Get("/rounds/:id", roundHandler.Get)
	api.Get("/rounds/:id/status", roundHandler.GetMyStatus)
	api.Post("/rounds/:id/nominations-complete", roundHandler.ToggleNominations)
	api.Post("/rounds/:id/voting-complete", roundHandler.ToggleVoting)

	// Admin routes
	requireAdmin := authMiddleware.RequireAdmin
	api.Post("/rounds", requireAdmin, roundHandler.Create)
	api.Put("/rounds/:id", requireAdmin, roundHandler.Update)
	api.Post("/rounds/:id/close", requireAdmin, roundHandler.Close)
	api.Get("/rounds/:id/summary", requireAdmin, roundHandler.GetSummary)
	api.Put("/rounds/:id/actions", requireAdmin, roundHandler.PutAction)
	api.Get("/rounds/:id/actions", requireAdmin, roundHandler.ListActions)
	api.Post("/media/:id/delete", requireAdmin, deletionHandler.Execute)
	api.Get("/media/:id/deletions", requireAdmin, candidateHandler.History)
	api.Post("/sync/full", requireAdmin, syncHandler.TriggerFull)
	api.Post("/sync/partial", requireAdmin, syncHandler.TriggerPartial)
	api.Get("/sync/status", requireAdmin, syncHandler.Status)
	api.Get("/users", requireAdmin, userHandler.List)
	api.Put("/users/:plexID/admin", requireAdmin, userHandler.SetAdmin)

	return nil
}
