package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rubuy74/market-ops/internal/domain"
)

// ErrInvalidMessage is returned when a broker message cannot be decoded into
// a command or result.
var ErrInvalidMessage = errors.New("invalid message")

// MarketChangeCommand asks MOS to apply a market change.
type MarketChangeCommand struct {
	// ID is a unique identifier for this message
	ID uuid.UUID `json:"id"`

	// RequestID links the command to the request tracked by RHS
	RequestID uuid.UUID `json:"requestId"`

	Operation domain.Operation    `json:"operation"`
	Payload   domain.MarketChange `json:"payload"`
	CreatedAt time.Time           `json:"createdAt"`
}

// NewMarketChangeCommand builds the command for a freshly submitted request.
func NewMarketChangeCommand(req *domain.MarketRequest, change domain.MarketChange) *MarketChangeCommand {
	return &MarketChangeCommand{
		ID:        uuid.New(),
		RequestID: req.ID,
		Operation: req.Operation,
		Payload:   change,
		CreatedAt: time.Now().UTC(),
	}
}

// Key partitions commands by market so changes to one market stay ordered.
func (c *MarketChangeCommand) Key() []byte {
	return []byte(c.Payload.MarketID)
}

// MarketChangeResult reports what MOS did with a command.
type MarketChangeResult struct {
	ID          uuid.UUID            `json:"id"`
	RequestID   uuid.UUID            `json:"requestId"`
	Operation   domain.Operation     `json:"operation"`
	MarketID    string               `json:"marketId"`
	Status      domain.RequestStatus `json:"status"`
	Message     string               `json:"message"`
	ProcessedAt time.Time            `json:"processedAt"`
}

// NewMarketChangeResult builds the result message for a processed request.
func NewMarketChangeResult(p *domain.ProcessedRequest) *MarketChangeResult {
	return &MarketChangeResult{
		ID:          uuid.New(),
		RequestID:   p.RequestID,
		Operation:   p.Operation,
		MarketID:    p.MarketID,
		Status:      p.Status,
		Message:     p.Message,
		ProcessedAt: p.ProcessedAt,
	}
}

// Key partitions results by request.
func (r *MarketChangeResult) Key() []byte {
	return []byte(r.RequestID.String())
}

// DecodeCommand validates data against the command schema and decodes it.
func DecodeCommand(data []byte) (*MarketChangeCommand, error) {
	if err := validateCommand(data); err != nil {
		return nil, err
	}

	var cmd MarketChangeCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return &cmd, nil
}

// DecodeResult decodes a result message and checks its required fields.
func DecodeResult(data []byte) (*MarketChangeResult, error) {
	var res MarketChangeResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if res.RequestID == uuid.Nil {
		return nil, fmt.Errorf("%w: requestId is required", ErrInvalidMessage)
	}
	if !res.Status.Terminal() {
		return nil, fmt.Errorf("%w: status %q is not terminal", ErrInvalidMessage, res.Status)
	}
	return &res, nil
}

// RecoverRequest extracts whatever request identity a message still carries,
// so a command that cannot be processed can still be answered.
func RecoverRequest(data []byte) (requestID uuid.UUID, op domain.Operation, marketID string, ok bool) {
	var partial struct {
		RequestID uuid.UUID        `json:"requestId"`
		Operation domain.Operation `json:"operation"`
		Payload   struct {
			MarketID string `json:"marketId"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(data, &partial); err != nil || partial.RequestID == uuid.Nil {
		return uuid.Nil, "", "", false
	}
	return partial.RequestID, partial.Operation, partial.Payload.MarketID, true
}

// CommandPublisher publishes commands for MOS.
type CommandPublisher interface {
	PublishCommand(ctx context.Context, cmd *MarketChangeCommand) error
}

// ResultPublisher publishes results for RHS.
type ResultPublisher interface {
	PublishResult(ctx context.Context, res *MarketChangeResult) error
}
