package service

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rubuy74/market-ops/internal/domain"
	"github.com/rubuy74/market-ops/internal/events"
	"github.com/rubuy74/market-ops/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockRequestStore mocks the store.RequestStore interface
type MockRequestStore struct {
	mock.Mock
}

func (m *MockRequestStore) Create(ctx context.Context, req *domain.MarketRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockRequestStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.MarketRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MarketRequest), args.Error(1)
}

func (m *MockRequestStore) Complete(
	ctx context.Context,
	id uuid.UUID,
	status domain.RequestStatus,
	message string,
) (*domain.MarketRequest, error) {
	args := m.Called(ctx, id, status, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MarketRequest), args.Error(1)
}

// MockCommandPublisher mocks the events.CommandPublisher interface
type MockCommandPublisher struct {
	mock.Mock
}

func (m *MockCommandPublisher) PublishCommand(ctx context.Context, cmd *events.MarketChangeCommand) error {
	args := m.Called(ctx, cmd)
	return args.Error(0)
}

// MockResultPublisher mocks the events.ResultPublisher interface
type MockResultPublisher struct {
	mock.Mock
}

func (m *MockResultPublisher) PublishResult(ctx context.Context, res *events.MarketChangeResult) error {
	args := m.Called(ctx, res)
	return args.Error(0)
}

// MockEventLister mocks the EventLister interface
type MockEventLister struct {
	mock.Mock
}

func (m *MockEventLister) ListEvents(ctx context.Context) ([]domain.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Event), args.Error(1)
}

// recordingNotifier collects every notified request status.
type recordingNotifier struct {
	statuses []domain.RequestStatus
}

func (n *recordingNotifier) Notify(req domain.MarketRequest) {
	n.statuses = append(n.statuses, req.Status)
}

// MockEventStore mocks the store.EventStore interface
type MockEventStore struct {
	mock.Mock
}

func (m *MockEventStore) UpsertEvent(ctx context.Context, event domain.EventInfo) (bool, error) {
	args := m.Called(ctx, event)
	return args.Bool(0), args.Error(1)
}

func (m *MockEventStore) GetMarket(ctx context.Context, marketID string) (*domain.Market, error) {
	args := m.Called(ctx, marketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Market), args.Error(1)
}

func (m *MockEventStore) CreateMarket(ctx context.Context, market domain.Market) error {
	args := m.Called(ctx, market)
	return args.Error(0)
}

func (m *MockEventStore) ReplaceMarket(ctx context.Context, market domain.Market) error {
	args := m.Called(ctx, market)
	return args.Error(0)
}

func (m *MockEventStore) DeleteMarket(ctx context.Context, marketID string) error {
	args := m.Called(ctx, marketID)
	return args.Error(0)
}

func (m *MockEventStore) ListEvents(ctx context.Context) ([]domain.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Event), args.Error(1)
}

func (m *MockEventStore) WithTx(_ *sql.Tx) store.EventStore {
	return m
}

// MockProcessedRequestStore mocks the store.ProcessedRequestStore interface
type MockProcessedRequestStore struct {
	mock.Mock
}

func (m *MockProcessedRequestStore) Get(ctx context.Context, requestID uuid.UUID) (*domain.ProcessedRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProcessedRequest), args.Error(1)
}

func (m *MockProcessedRequestStore) Save(ctx context.Context, p *domain.ProcessedRequest) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProcessedRequestStore) WithTx(_ *sql.Tx) store.ProcessedRequestStore {
	return m
}
