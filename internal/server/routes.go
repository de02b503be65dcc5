package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playperu/townsquare/internal/handler/health"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Townsquare API", "/openapi.json", "/docs"))
	r.Mount("/healthz", health.NewHandler(logger, deps.Checks).Routes())
	r.Get("/ws", handleTownSocket(logger, deps.Registry, deps.Hub))

	r.Route("/towns", func(r chi.Router) {
		r.Get("/", handleListTowns(deps.Registry))
		r.Post("/", handleCreateTown(logger, deps.Registry, deps.DefaultMap))
		r.Patch("/{townID}", handleUpdateTown(deps.Registry))
		r.Delete("/{townID}", handleDeleteTown(deps.Registry))
		r.Post("/{townID}/conversationArea", handleCreateArea(deps.Registry, addConversationArea))
		r.Post("/{townID}/viewingArea", handleCreateArea(deps.Registry, addViewingArea))

		// {townID} resolved by townMiddleware.
		r.Route("/{townID}/simonSaysArea/{areaID}", func(r chi.Router) {
			r.Use(townMiddleware(deps.Registry))
			r.Get("/leaderboard", handleLeaderboard(logger, deps.Leaderboard))
		})
	})

	if deps.SPADir != "" {
		if info, err := os.Stat(deps.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", deps.SPADir)
			r.NotFound(handleSPA(os.DirFS(deps.SPADir)))
		}
	}
}
