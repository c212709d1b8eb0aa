package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docsbot-io/docsbot/internal/api/handlers"
	"github.com/docsbot-io/docsbot/internal/api/middleware"
	"github.com/docsbot-io/docsbot/internal/slack"
)

type RouterConfig struct {
	QueryHandler   *handlers.QueryHandler
	HealthHandler  *handlers.HealthHandler
	SourcesHandler *handlers.SourcesHandler
	Dispatcher     *slack.Dispatcher
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", cfg.HealthHandler.Check)
	r.Get("/sources", cfg.SourcesHandler.List)
	r.Post("/query", cfg.QueryHandler.Ask)

	if cfg.Dispatcher != nil {
		r.Post("/slack/events", cfg.Dispatcher.HandleEvent)
	}

	return r
}
