package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rubuy74/market-ops/internal/domain"
	"github.com/rubuy74/market-ops/internal/events"
	"github.com/rubuy74/market-ops/internal/platform/logger"
	"github.com/rubuy74/market-ops/internal/store"
)

// DispatchFailedMessage is recorded on a request whose command never reached the broker.
const DispatchFailedMessage = "Failed to dispatch request"

// EventLister reads the event listing owned by MOS.
type EventLister interface {
	ListEvents(ctx context.Context) ([]domain.Event, error)
}

// StatusNotifier is told about every status a request goes through.
type StatusNotifier interface {
	Notify(req domain.MarketRequest)
}

// RequestService provides the RHS use cases.
type RequestService interface {
	// Submit validates a change, stores a pending request and dispatches the
	// command to MOS. A dispatch failure marks the request FAILED and returns
	// an error wrapping ErrDispatchFailed together with the request.
	Submit(ctx context.Context, op domain.Operation, change domain.MarketChange) (*domain.MarketRequest, error)

	// GetRequest returns the current state of a request.
	GetRequest(ctx context.Context, id uuid.UUID) (*domain.MarketRequest, error)

	// RecordResult applies a result published by MOS. Results for unknown or
	// already completed requests are ignored.
	RecordResult(ctx context.Context, res *events.MarketChangeResult) error

	// ListEvents returns the event listing served by MOS.
	ListEvents(ctx context.Context) ([]domain.Event, error)
}

type requestServiceImpl struct {
	requests  store.RequestStore
	publisher events.CommandPublisher
	lister    EventLister
	notifier  StatusNotifier
	logger    *slog.Logger
}

// NewRequestService creates a new RequestService.
// It returns an error if any of the required dependencies are nil. notifier is optional.
func NewRequestService(
	requests store.RequestStore,
	publisher events.CommandPublisher,
	lister EventLister,
	notifier StatusNotifier,
	logger *slog.Logger,
) (RequestService, error) {
	if requests == nil {
		return nil, fmt.Errorf("%w: requests store cannot be nil", domain.ErrValidation)
	}
	if publisher == nil {
		return nil, fmt.Errorf("%w: publisher cannot be nil", domain.ErrValidation)
	}
	if lister == nil {
		return nil, fmt.Errorf("%w: event lister cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &requestServiceImpl{
		requests:  requests,
		publisher: publisher,
		lister:    lister,
		notifier:  notifier,
		logger:    logger.With(slog.String("component", "request_service")),
	}, nil
}

// Submit implements RequestService.Submit
func (s *requestServiceImpl) Submit(
	ctx context.Context,
	op domain.Operation,
	change domain.MarketChange,
) (*domain.MarketRequest, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	req, err := domain.NewMarketRequest(op, change)
	if err != nil {
		log.Debug("rejected market change",
			slog.String("operation", string(op)),
			slog.String("error", err.Error()))
		return nil, err
	}

	if err := s.requests.Create(ctx, req); err != nil {
		log.Error("failed to store request",
			slog.String("request_id", req.ID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("request", "submit", err)
	}
	s.notify(*req)

	log = log.With(
		slog.String("request_id", req.ID.String()),
		slog.String("operation", string(op)),
		slog.String("market_id", change.MarketID))

	cmd := events.NewMarketChangeCommand(req, change)
	if err := s.publisher.PublishCommand(ctx, cmd); err != nil {
		log.Error("failed to dispatch command", slog.String("error", err.Error()))

		failed, completeErr := s.requests.Complete(ctx, req.ID, domain.RequestStatusFailed, DispatchFailedMessage)
		if completeErr != nil {
			log.Error("failed to mark request as failed", slog.String("error", completeErr.Error()))
			failed = req
		} else {
			s.notify(*failed)
		}
		return failed, NewServiceError("request", "submit", fmt.Errorf("%w: %v", ErrDispatchFailed, err))
	}

	log.Info("request accepted")
	return req, nil
}

// GetRequest implements RequestService.GetRequest
func (s *requestServiceImpl) GetRequest(ctx context.Context, id uuid.UUID) (*domain.MarketRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrRequestNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load request",
			slog.String("request_id", id.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("request", "get_request", err)
	}
	return req, nil
}

// RecordResult implements RequestService.RecordResult
func (s *requestServiceImpl) RecordResult(ctx context.Context, res *events.MarketChangeResult) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("request_id", res.RequestID.String()),
		slog.String("status", string(res.Status)))

	req, err := s.requests.Complete(ctx, res.RequestID, res.Status, res.Message)
	switch {
	case err == nil:
		log.Info("request completed", slog.String("message", res.Message))
		s.notify(*req)
		return nil
	case errors.Is(err, store.ErrRequestNotFound):
		log.Warn("result for unknown request dropped")
		return nil
	case errors.Is(err, domain.ErrRequestCompleted):
		log.Debug("result for completed request ignored")
		return nil
	default:
		log.Error("failed to record result", slog.String("error", err.Error()))
		return NewServiceError("request", "record_result", err)
	}
}

// ListEvents implements RequestService.ListEvents
func (s *requestServiceImpl) ListEvents(ctx context.Context) ([]domain.Event, error) {
	evts, err := s.lister.ListEvents(ctx)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list events",
			slog.String("error", err.Error()))
		return nil, NewServiceError("request", "list_events", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err))
	}
	return evts, nil
}

func (s *requestServiceImpl) notify(req domain.MarketRequest) {
	if s.notifier != nil {
		s.notifier.Notify(req)
	}
}
