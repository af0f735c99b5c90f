package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RequestStatus is the processing state of a submitted market change.
type RequestStatus string

// Possible request status values.
const (
	RequestStatusPending RequestStatus = "PENDING"
	RequestStatusSuccess RequestStatus = "SUCCESS"
	RequestStatusFailed  RequestStatus = "FAILED"
)

// Valid reports whether s is a known status.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusSuccess, RequestStatusFailed:
		return true
	default:
		return false
	}
}

// Terminal reports whether s is a final status.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusSuccess || s == RequestStatusFailed
}

// PendingMessage is the message carried by a request until MOS answers.
const PendingMessage = "Request is being processed"

// MarketRequest tracks one market change a client submitted to RHS.
type MarketRequest struct {
	ID        uuid.UUID     `json:"requestId"`
	Operation Operation     `json:"operation"`
	MarketID  string        `json:"marketId"`
	EventID   string        `json:"eventId"`
	Status    RequestStatus `json:"status"`
	Message   string        `json:"message"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// NewMarketRequest creates a pending request for the given change after
// validating it against the operation.
func NewMarketRequest(op Operation, change MarketChange) (*MarketRequest, error) {
	if err := change.Validate(op); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &MarketRequest{
		ID:        uuid.New(),
		Operation: op,
		MarketID:  change.MarketID,
		EventID:   change.Event.ID,
		Status:    RequestStatusPending,
		Message:   PendingMessage,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Complete moves a pending request into a terminal status.
// Terminal requests never change again.
func (r *MarketRequest) Complete(status RequestStatus, message string) error {
	if !status.Terminal() {
		return fmt.Errorf("%w: %q is not terminal", ErrInvalidRequestStatus, status)
	}
	if r.Status.Terminal() {
		return ErrRequestCompleted
	}

	r.Status = status
	r.Message = message
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// ProcessedRequest records the outcome MOS produced for a request, so a
// redelivered command is answered without being applied twice.
type ProcessedRequest struct {
	RequestID   uuid.UUID
	Operation   Operation
	MarketID    string
	Status      RequestStatus
	Message     string
	ProcessedAt time.Time
}
