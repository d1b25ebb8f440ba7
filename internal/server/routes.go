package server

import (
	"database/sql"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/festapp/telao/internal/game"
)

// Deps carries everything the route tree needs.
type Deps struct {
	Engine  *game.Engine
	Hub     *Hub
	DB      *sql.DB
	Uploads *UploadDir
	SPADir  string
}

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Telao API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, deps.DB))

	// Every viewer (TV, remote, admin) hangs off this socket.
	r.Get("/ws", deps.Hub.ServeWS())

	r.Route("/api", func(r chi.Router) {
		r.Get("/questions", handleListQuestions(deps.Engine))
		r.Get("/questions/all", handleListAllQuestions(deps.Engine))
		r.Post("/questions", handleReplaceQuestions(deps.Engine, deps.Hub))

		r.Get("/state", handleGameState(deps.Engine))
		r.Post("/state/reset", handleResetState(deps.Engine, deps.Hub))

		r.Post("/upload", handleUpload(logger, deps.Uploads))
		r.Get("/audio/list", handleListAudio(logger, deps.Uploads))
		r.Delete("/audio/{filename}", handleDeleteAudio(logger, deps.Uploads))

		r.Post("/import", handleImport(logger, deps.Engine, deps.Hub))
		r.Get("/export", handleExport(logger, deps.Engine))

		r.Get("/qr/{view}", handleQR(logger))
	})

	// Uploaded media, referenced by audio tracks in the snapshot.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(deps.Uploads.Dir()))))

	if deps.SPADir != "" {
		if info, err := os.Stat(deps.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", deps.SPADir)
			r.NotFound(handleSPA(deps.SPADir))
		}
	}
}
