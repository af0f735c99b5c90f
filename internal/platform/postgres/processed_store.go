package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rubuy74/market-ops/internal/domain"
	"github.com/rubuy74/market-ops/internal/platform/logger"
	"github.com/rubuy74/market-ops/internal/store"
)

// PostgresProcessedRequestStore implements store.ProcessedRequestStore.
type PostgresProcessedRequestStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProcessedRequestStore creates a new PostgreSQL implementation of
// the ProcessedRequestStore interface. If logger is nil, a default logger will be used.
func NewPostgresProcessedRequestStore(db store.DBTX, logger *slog.Logger) *PostgresProcessedRequestStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresProcessedRequestStore{
		db:     db,
		logger: logger.With(slog.String("component", "processed_request_store")),
	}
}

var _ store.ProcessedRequestStore = (*PostgresProcessedRequestStore)(nil)

// WithTx implements store.ProcessedRequestStore.WithTx
func (s *PostgresProcessedRequestStore) WithTx(tx *sql.Tx) store.ProcessedRequestStore {
	return &PostgresProcessedRequestStore{
		db:     tx,
		logger: s.logger,
	}
}

// Get implements store.ProcessedRequestStore.Get
func (s *PostgresProcessedRequestStore) Get(ctx context.Context, requestID uuid.UUID) (*domain.ProcessedRequest, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var p domain.ProcessedRequest
	var operation, status string
	err := s.db.QueryRowContext(ctx, `
		SELECT request_id, operation, market_id, status, message, processed_at
		FROM processed_requests
		WHERE request_id = $1
	`, requestID).Scan(&p.RequestID, &operation, &p.MarketID, &status, &p.Message, &p.ProcessedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProcessedRequestNotFound
		}
		log.Error("failed to get processed request",
			slog.String("error", err.Error()),
			slog.String("request_id", requestID.String()))
		return nil, store.NewStoreError("processed_request", "get", "query failed", MapError(err))
	}

	p.Operation = domain.Operation(operation)
	p.Status = domain.RequestStatus(status)
	return &p, nil
}

// Save implements store.ProcessedRequestStore.Save
func (s *PostgresProcessedRequestStore) Save(ctx context.Context, p *domain.ProcessedRequest) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO processed_requests (request_id, operation, market_id, status, message, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.RequestID, string(p.Operation), p.MarketID, string(p.Status), p.Message, p.ProcessedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("processed request already recorded",
				slog.String("request_id", p.RequestID.String()))
			return store.NewStoreError("processed_request", "save", "duplicate request", store.ErrDuplicate)
		}
		log.Error("failed to save processed request",
			slog.String("error", err.Error()),
			slog.String("request_id", p.RequestID.String()))
		return store.NewStoreError("processed_request", "save", "insert failed", MapError(err))
	}

	log.Debug("processed request saved",
		slog.String("request_id", p.RequestID.String()),
		slog.String("status", string(p.Status)))
	return nil
}
