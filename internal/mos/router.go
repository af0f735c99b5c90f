package mos

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rubuy74/market-ops/internal/api"
	apiMiddleware "github.com/rubuy74/market-ops/internal/api/middleware"
)

// Handler returns the HTTP routes of the service.
func (a *Application) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace(a.logger))

	eventsHandler := api.NewEventsHandler(a.marketService)
	r.Get(api.EventsPath, eventsHandler.ListEvents)

	r.Method(http.MethodGet, "/health", api.NewHealthHandler(a.db.PingContext))

	return r
}
