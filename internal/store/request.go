package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/rubuy74/market-ops/internal/domain"
)

// RequestStore keeps the market requests RHS has accepted.
type RequestStore interface {
	// Create saves a new pending request.
	// Returns ErrRequestExists if the ID is already taken.
	Create(ctx context.Context, req *domain.MarketRequest) error

	// GetByID retrieves a request by its ID.
	// Returns ErrRequestNotFound if the request does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MarketRequest, error)

	// Complete moves a request into a terminal status and returns the
	// updated request. Returns ErrRequestNotFound for an unknown ID and
	// domain.ErrRequestCompleted if the request is already terminal.
	Complete(ctx context.Context, id uuid.UUID, status domain.RequestStatus, message string) (*domain.MarketRequest, error)
}
