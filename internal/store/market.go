package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rubuy74/market-ops/internal/domain"
)

// EventStore defines the interface for event and market persistence.
type EventStore interface {
	// UpsertEvent creates the event or refreshes its name and date.
	// Reports whether the event was created by this call.
	UpsertEvent(ctx context.Context, event domain.EventInfo) (created bool, err error)

	// GetMarket retrieves a market with its selections.
	// Returns ErrMarketNotFound if the market does not exist.
	GetMarket(ctx context.Context, marketID string) (*domain.Market, error)

	// CreateMarket inserts a market and its selections.
	// Returns ErrMarketExists if the market ID is already taken.
	CreateMarket(ctx context.Context, market domain.Market) error

	// ReplaceMarket overwrites the name and selections of an existing market.
	// Returns ErrMarketNotFound if the market does not exist.
	ReplaceMarket(ctx context.Context, market domain.Market) error

	// DeleteMarket removes a market and its selections.
	// Returns ErrMarketNotFound if the market does not exist.
	DeleteMarket(ctx context.Context, marketID string) error

	// ListEvents returns every event with its markets and selections,
	// ordered by event ID, market ID and selection position.
	ListEvents(ctx context.Context) ([]domain.Event, error)

	// WithTx returns a new EventStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) EventStore
}

// ProcessedRequestStore records the outcome MOS produced for each request.
type ProcessedRequestStore interface {
	// Get returns the recorded outcome of a request.
	// Returns ErrProcessedRequestNotFound if the request was never processed.
	Get(ctx context.Context, requestID uuid.UUID) (*domain.ProcessedRequest, error)

	// Save records the outcome of a request.
	// Returns ErrDuplicate if an outcome is already recorded.
	Save(ctx context.Context, p *domain.ProcessedRequest) error

	// WithTx returns a new ProcessedRequestStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ProcessedRequestStore
}
