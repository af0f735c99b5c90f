package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rubuy74/market-ops/internal/domain"
	"github.com/rubuy74/market-ops/internal/events"
	"github.com/rubuy74/market-ops/internal/platform/logger"
	"github.com/rubuy74/market-ops/internal/store"
)

const (
	// InternalErrorMessage is reported for commands MOS gave up on.
	InternalErrorMessage = "Internal error processing request"

	// InvalidChangeMessage prefixes the outcome of a change that fails
	// domain validation.
	InvalidChangeMessage = "Invalid market change"
)

// MarketService provides the MOS use cases.
type MarketService interface {
	// Apply processes a command exactly once per request ID and publishes the
	// outcome. Domain failures such as a duplicate market produce a FAILED
	// result, not an error. A returned error means nothing was committed and
	// the command may be retried.
	Apply(ctx context.Context, cmd *events.MarketChangeCommand) (*events.MarketChangeResult, error)

	// Reject answers a request MOS gave up on. An outcome already committed
	// for the request is republished; otherwise a FAILED outcome is recorded
	// and published.
	Reject(ctx context.Context, p domain.ProcessedRequest) error

	// ListEvents returns every event with its markets and selections.
	ListEvents(ctx context.Context) ([]domain.Event, error)
}

type marketServiceImpl struct {
	db        *sql.DB
	events    store.EventStore
	processed store.ProcessedRequestStore
	publisher events.ResultPublisher
	logger    *slog.Logger
}

// NewMarketService creates a new MarketService.
// It returns an error if any of the required dependencies are nil.
func NewMarketService(
	db *sql.DB,
	eventStore store.EventStore,
	processed store.ProcessedRequestStore,
	publisher events.ResultPublisher,
	logger *slog.Logger,
) (MarketService, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: db cannot be nil", domain.ErrValidation)
	}
	if eventStore == nil {
		return nil, fmt.Errorf("%w: event store cannot be nil", domain.ErrValidation)
	}
	if processed == nil {
		return nil, fmt.Errorf("%w: processed request store cannot be nil", domain.ErrValidation)
	}
	if publisher == nil {
		return nil, fmt.Errorf("%w: publisher cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &marketServiceImpl{
		db:        db,
		events:    eventStore,
		processed: processed,
		publisher: publisher,
		logger:    logger.With(slog.String("component", "market_service")),
	}, nil
}

// Apply implements MarketService.Apply
func (s *marketServiceImpl) Apply(ctx context.Context, cmd *events.MarketChangeCommand) (*events.MarketChangeResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("request_id", cmd.RequestID.String()),
		slog.String("operation", string(cmd.Operation)),
		slog.String("market_id", cmd.Payload.MarketID))

	var outcome *domain.ProcessedRequest
	replayed := false

	err := store.RunInTransaction(ctx, s.db, store.CommandTxOptions, func(ctx context.Context, tx *sql.Tx) error {
		txEvents := s.events.WithTx(tx)
		txProcessed := s.processed.WithTx(tx)

		prior, err := txProcessed.Get(ctx, cmd.RequestID)
		if err == nil {
			outcome = prior
			replayed = true
			return nil
		}
		if !errors.Is(err, store.ErrProcessedRequestNotFound) {
			return err
		}

		status, message, err := s.apply(ctx, txEvents, cmd)
		if err != nil {
			return err
		}

		outcome = &domain.ProcessedRequest{
			RequestID:   cmd.RequestID,
			Operation:   cmd.Operation,
			MarketID:    cmd.Payload.MarketID,
			Status:      status,
			Message:     message,
			ProcessedAt: time.Now().UTC(),
		}
		return txProcessed.Save(ctx, outcome)
	})
	if err != nil {
		log.Error("failed to apply command", slog.String("error", err.Error()))
		return nil, NewServiceError("market", "apply", err)
	}

	if replayed {
		log.Info("command already processed, republishing stored result")
	} else {
		log.Info("command applied",
			slog.String("status", string(outcome.Status)),
			slog.String("message", outcome.Message))
	}

	res := events.NewMarketChangeResult(outcome)
	if err := s.publisher.PublishResult(ctx, res); err != nil {
		log.Error("failed to publish result", slog.String("error", err.Error()))
		return nil, NewServiceError("market", "apply", err)
	}
	return res, nil
}

// apply performs the change and reports its outcome. Domain failures are
// returned as a FAILED status; only unexpected errors are returned as err.
func (s *marketServiceImpl) apply(
	ctx context.Context,
	evts store.EventStore,
	cmd *events.MarketChangeCommand,
) (domain.RequestStatus, string, error) {
	change := cmd.Payload
	if err := change.Validate(cmd.Operation); err != nil {
		if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrInvalidOperation) {
			return domain.RequestStatusFailed, fmt.Sprintf("%s: %v", InvalidChangeMessage, err), nil
		}
		return "", "", err
	}

	var (
		message string
		err     error
	)

	switch cmd.Operation {
	case domain.OperationAdd:
		message, err = s.addMarket(ctx, evts, change)
	case domain.OperationUpdate:
		message, err = s.updateMarket(ctx, evts, change)
	case domain.OperationDelete:
		message, err = s.deleteMarket(ctx, evts, change)
	default:
		return domain.RequestStatusFailed, fmt.Sprintf("Unsupported operation %s", cmd.Operation), nil
	}

	switch {
	case err == nil:
		return domain.RequestStatusSuccess, message, nil
	case errors.Is(err, domain.ErrMarketExists):
		return domain.RequestStatusFailed,
			fmt.Sprintf("Market %s already exists", change.MarketID), nil
	case errors.Is(err, domain.ErrMarketNotFound):
		return domain.RequestStatusFailed,
			fmt.Sprintf("Market %s not found for event %s", change.MarketID, change.Event.ID), nil
	default:
		return "", "", err
	}
}

func (s *marketServiceImpl) addMarket(ctx context.Context, evts store.EventStore, change domain.MarketChange) (string, error) {
	_, err := evts.GetMarket(ctx, change.MarketID)
	if err == nil {
		return "", domain.ErrMarketExists
	}
	if !errors.Is(err, store.ErrMarketNotFound) {
		return "", err
	}

	created, err := evts.UpsertEvent(ctx, change.Event)
	if err != nil {
		return "", err
	}

	if err := evts.CreateMarket(ctx, change.Market()); err != nil {
		if errors.Is(err, store.ErrMarketExists) {
			return "", domain.ErrMarketExists
		}
		return "", err
	}

	if created {
		return fmt.Sprintf("Created new event %s with market %s", change.Event.ID, change.MarketID), nil
	}
	return fmt.Sprintf("Added market %s to event %s", change.MarketID, change.Event.ID), nil
}

func (s *marketServiceImpl) updateMarket(ctx context.Context, evts store.EventStore, change domain.MarketChange) (string, error) {
	if err := s.requireMarket(ctx, evts, change); err != nil {
		return "", err
	}

	if _, err := evts.UpsertEvent(ctx, change.Event); err != nil {
		return "", err
	}
	if err := evts.ReplaceMarket(ctx, change.Market()); err != nil {
		if errors.Is(err, store.ErrMarketNotFound) {
			return "", domain.ErrMarketNotFound
		}
		return "", err
	}

	return fmt.Sprintf("Updated market %s of event %s", change.MarketID, change.Event.ID), nil
}

func (s *marketServiceImpl) deleteMarket(ctx context.Context, evts store.EventStore, change domain.MarketChange) (string, error) {
	if err := s.requireMarket(ctx, evts, change); err != nil {
		return "", err
	}

	if err := evts.DeleteMarket(ctx, change.MarketID); err != nil {
		if errors.Is(err, store.ErrMarketNotFound) {
			return "", domain.ErrMarketNotFound
		}
		return "", err
	}

	return fmt.Sprintf("Deleted market %s from event %s", change.MarketID, change.Event.ID), nil
}

// requireMarket checks that the market exists and belongs to the change's event.
func (s *marketServiceImpl) requireMarket(ctx context.Context, evts store.EventStore, change domain.MarketChange) error {
	market, err := evts.GetMarket(ctx, change.MarketID)
	if err != nil {
		if errors.Is(err, store.ErrMarketNotFound) {
			return domain.ErrMarketNotFound
		}
		return err
	}
	if market.EventID != change.Event.ID {
		return domain.ErrMarketNotFound
	}
	return nil
}

// Reject implements MarketService.Reject
func (s *marketServiceImpl) Reject(ctx context.Context, p domain.ProcessedRequest) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("request_id", p.RequestID.String()))

	outcome, err := s.settle(ctx, p)
	if err != nil {
		log.Warn("could not settle rejected request, publishing failure without a record",
			slog.String("error", err.Error()))
	}

	if err := s.publisher.PublishResult(ctx, events.NewMarketChangeResult(outcome)); err != nil {
		log.Error("failed to publish rejection", slog.String("error", err.Error()))
		return NewServiceError("market", "reject", err)
	}

	if outcome.Status == domain.RequestStatusFailed {
		log.Warn("request rejected", slog.String("message", outcome.Message))
	} else {
		log.Info("republished stored result for rejected request",
			slog.String("status", string(outcome.Status)))
	}
	return nil
}

// settle returns the outcome to report for a request MOS gave up on. A
// committed outcome always wins. Otherwise a FAILED outcome is recorded so a
// later redelivery cannot apply the change. The returned outcome is usable
// even when err is not nil.
func (s *marketServiceImpl) settle(ctx context.Context, p domain.ProcessedRequest) (*domain.ProcessedRequest, error) {
	p.Status = domain.RequestStatusFailed
	if p.Message == "" {
		p.Message = InternalErrorMessage
	}
	if p.ProcessedAt.IsZero() {
		p.ProcessedAt = time.Now().UTC()
	}

	prior, err := s.processed.Get(ctx, p.RequestID)
	if err == nil {
		return prior, nil
	}
	if !errors.Is(err, store.ErrProcessedRequestNotFound) {
		return &p, err
	}

	if err := s.processed.Save(ctx, &p); err != nil {
		if !errors.Is(err, store.ErrDuplicate) {
			return &p, err
		}
		// committed concurrently
		prior, err := s.processed.Get(ctx, p.RequestID)
		if err != nil {
			return &p, err
		}
		return prior, nil
	}
	return &p, nil
}

// ListEvents implements MarketService.ListEvents
func (s *marketServiceImpl) ListEvents(ctx context.Context) ([]domain.Event, error) {
	evts, err := s.events.ListEvents(ctx)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list events",
			slog.String("error", err.Error()))
		return nil, NewServiceError("market", "list_events", err)
	}
	return evts, nil
}
