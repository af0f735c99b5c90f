package api

import (
	"github.com/rubuy74/market-ops/internal/domain"
)

// SelectionRequest is one selection in a market change body.
type SelectionRequest struct {
	ID   string  `json:"id" validate:"required"`
	Name string  `json:"name"`
	Odd  float64 `json:"odd"`
}

// EventRequest is the event a market change refers to.
type EventRequest struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name"`
	Date string `json:"date"`
}

// MarketChangeRequest is the body of POST, PUT and DELETE /api/v1/market-change.
// Tags cover what every operation needs; operation-specific rules are
// checked by domain.MarketChange.Validate.
type MarketChangeRequest struct {
	MarketID   string             `json:"marketId" validate:"required"`
	MarketName string             `json:"marketName"`
	Event      EventRequest       `json:"event"`
	Selections []SelectionRequest `json:"selections" validate:"omitempty,unique=ID,dive"`
}

// Validate checks the parts of the body that do not depend on the
// operation. A date, when present, must use dd/MM/yyyy.
func (r MarketChangeRequest) Validate() error {
	if r.Event.Date == "" {
		return nil
	}
	_, err := domain.EventInfo{Date: r.Event.Date}.ParsedDate()
	return err
}

// ToDomain converts the request body into a domain.MarketChange.
func (r MarketChangeRequest) ToDomain() domain.MarketChange {
	selections := make([]domain.Selection, 0, len(r.Selections))
	for _, s := range r.Selections {
		selections = append(selections, domain.Selection{ID: s.ID, Name: s.Name, Odd: s.Odd})
	}
	return domain.MarketChange{
		MarketID:   r.MarketID,
		MarketName: r.MarketName,
		Event: domain.EventInfo{
			ID:   r.Event.ID,
			Name: r.Event.Name,
			Date: r.Event.Date,
		},
		Selections: selections,
	}
}

// SubmitResponse is returned when a market change is accepted.
type SubmitResponse struct {
	RequestID string               `json:"requestId"`
	Status    domain.RequestStatus `json:"status"`
}

// RequestStatusResponse reports the state of a market change request.
type RequestStatusResponse struct {
	RequestID string               `json:"requestId"`
	Operation domain.Operation     `json:"operation"`
	Status    domain.RequestStatus `json:"status"`
	Message   string               `json:"message"`
}

// EventsResponse lists events with their markets and selections.
type EventsResponse struct {
	Status string         `json:"status"`
	Events []domain.Event `json:"events"`
}

// SuccessStatus is the status field of a successful listing.
const SuccessStatus = "SUCCESS"

func requestToStatusResponse(req *domain.MarketRequest) RequestStatusResponse {
	return RequestStatusResponse{
		RequestID: req.ID.String(),
		Operation: req.Operation,
		Status:    req.Status,
		Message:   req.Message,
	}
}
