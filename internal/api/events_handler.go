package api

import (
	"context"
	"net/http"

	"github.com/rubuy74/market-ops/internal/api/shared"
	"github.com/rubuy74/market-ops/internal/domain"
)

// EventsPath lists events on both services.
const EventsPath = "/api/v1/events"

// EventLister is the listing half of either service.
type EventLister interface {
	ListEvents(ctx context.Context) ([]domain.Event, error)
}

// EventsHandler serves GET /api/v1/events.
type EventsHandler struct {
	lister EventLister
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(lister EventLister) *EventsHandler {
	return &EventsHandler{lister: lister}
}

// ListEvents handles GET /api/v1/events.
func (h *EventsHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	evts, err := h.lister.ListEvents(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	if evts == nil {
		evts = []domain.Event{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, EventsResponse{
		Status: SuccessStatus,
		Events: evts,
	})
}
