// Package memstore provides an in-memory store.RequestStore used by RHS.
// Requests live only as long as the process.
package memstore

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/rubuy74/market-ops/internal/domain"
	"github.com/rubuy74/market-ops/internal/platform/logger"
	"github.com/rubuy74/market-ops/internal/store"
)

// RequestStore implements store.RequestStore with a map guarded by a RWMutex.
type RequestStore struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]domain.MarketRequest
	logger   *slog.Logger
}

var _ store.RequestStore = (*RequestStore)(nil)

// NewRequestStore creates an empty RequestStore.
func NewRequestStore(logger *slog.Logger) *RequestStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RequestStore{
		requests: make(map[uuid.UUID]domain.MarketRequest),
		logger:   logger.With(slog.String("component", "request_store")),
	}
}

// Create implements store.RequestStore.Create
func (s *RequestStore) Create(ctx context.Context, req *domain.MarketRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.requests[req.ID]; ok {
		return store.ErrRequestExists
	}
	s.requests[req.ID] = *req

	logger.FromContextOrDefault(ctx, s.logger).Debug("request stored",
		slog.String("request_id", req.ID.String()),
		slog.String("operation", string(req.Operation)))
	return nil
}

// GetByID implements store.RequestStore.GetByID
func (s *RequestStore) GetByID(_ context.Context, id uuid.UUID) (*domain.MarketRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, store.ErrRequestNotFound
	}
	return &req, nil
}

// Complete implements store.RequestStore.Complete
func (s *RequestStore) Complete(
	ctx context.Context,
	id uuid.UUID,
	status domain.RequestStatus,
	message string,
) (*domain.MarketRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, store.ErrRequestNotFound
	}
	if err := req.Complete(status, message); err != nil {
		return nil, err
	}
	s.requests[id] = req

	logger.FromContextOrDefault(ctx, s.logger).Debug("request completed",
		slog.String("request_id", id.String()),
		slog.String("status", string(status)))
	return &req, nil
}
