package rhs

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rubuy74/market-ops/internal/api"
	apiMiddleware "github.com/rubuy74/market-ops/internal/api/middleware"
)

// StreamPath serves the websocket feed of status transitions.
const StreamPath = api.MarketChangePath + "/stream"

// Handler returns the HTTP routes of the service.
func (a *Application) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace(a.logger))

	changeHandler := api.NewMarketChangeHandler(a.requestService)
	eventsHandler := api.NewEventsHandler(a.requestService)

	r.HandleFunc(api.MarketChangePath, changeHandler.Submit)
	// registered ahead of /{id} so "stream" is never parsed as a request ID
	r.Get(StreamPath, a.hub.ServeHTTP)
	r.Get(api.MarketChangePath+"/{id}", changeHandler.GetStatus)
	r.Get(api.EventsPath, eventsHandler.ListEvents)

	r.Method(http.MethodGet, "/health", api.NewHealthHandler())

	return r
}
