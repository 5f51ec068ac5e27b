package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/storyweft/personae/internal/api"
	"github.com/storyweft/personae/internal/api/handlers"
	"github.com/storyweft/personae/internal/api/middleware"
)

type RouterConfig struct {
	RunHandler     *handlers.RunHandler
	ProfileHandler *handlers.ProfileHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/runs", func(r chi.Router) {
		r.Post("/", cfg.RunHandler.Create)
		r.Get("/", cfg.RunHandler.List)
		r.Get("/{id}", cfg.RunHandler.Get)
		r.Get("/{id}/chunks", cfg.RunHandler.ListChunks)
	})

	r.Get("/chunks/{id}/profiles", cfg.ProfileHandler.ListByChunk)
	r.Get("/profiles", cfg.ProfileHandler.ListByName)

	return r
}
