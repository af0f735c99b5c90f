package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rubuy74/market-ops/internal/domain"
	"github.com/rubuy74/market-ops/internal/platform/logger"
	"github.com/rubuy74/market-ops/internal/store"
)

// PostgresEventStore implements the store.EventStore interface
// using a PostgreSQL database as the storage backend.
type PostgresEventStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresEventStore creates a new PostgreSQL implementation of the EventStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresEventStore(db store.DBTX, logger *slog.Logger) *PostgresEventStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresEventStore{
		db:     db,
		logger: logger.With(slog.String("component", "event_store")),
	}
}

// Ensure PostgresEventStore implements store.EventStore interface
var _ store.EventStore = (*PostgresEventStore)(nil)

// WithTx implements store.EventStore.WithTx
func (s *PostgresEventStore) WithTx(tx *sql.Tx) store.EventStore {
	return &PostgresEventStore{
		db:     tx,
		logger: s.logger,
	}
}

// UpsertEvent implements store.EventStore.UpsertEvent
func (s *PostgresEventStore) UpsertEvent(ctx context.Context, event domain.EventInfo) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	date, err := event.ParsedDate()
	if err != nil {
		return false, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	// xmax is zero only for freshly inserted rows.
	query := `
		INSERT INTO events (id, name, event_date)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, event_date = EXCLUDED.event_date, updated_at = NOW()
		RETURNING (xmax = 0) AS created
	`

	var created bool
	if err := s.db.QueryRowContext(ctx, query, event.ID, event.Name, date).Scan(&created); err != nil {
		log.Error("failed to upsert event",
			slog.String("error", err.Error()),
			slog.String("event_id", event.ID))
		return false, store.NewStoreError("event", "upsert", "query failed", MapError(err))
	}

	log.Debug("event upserted",
		slog.String("event_id", event.ID),
		slog.Bool("created", created))
	return created, nil
}

// GetMarket implements store.EventStore.GetMarket
func (s *PostgresEventStore) GetMarket(ctx context.Context, marketID string) (*domain.Market, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var market domain.Market
	err := s.db.QueryRowContext(ctx,
		`SELECT id, event_id, name FROM markets WHERE id = $1`,
		marketID,
	).Scan(&market.ID, &market.EventID, &market.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("market not found", slog.String("market_id", marketID))
			return nil, store.ErrMarketNotFound
		}
		log.Error("failed to get market",
			slog.String("error", err.Error()),
			slog.String("market_id", marketID))
		return nil, store.NewStoreError("market", "get", "query failed", MapError(err))
	}

	selections, err := s.getSelections(ctx, marketID)
	if err != nil {
		return nil, err
	}
	market.Selections = selections
	return &market, nil
}

func (s *PostgresEventStore) getSelections(ctx context.Context, marketID string) ([]domain.Selection, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, odd FROM selections WHERE market_id = $1 ORDER BY position`,
		marketID,
	)
	if err != nil {
		log.Error("failed to query selections",
			slog.String("error", err.Error()),
			slog.String("market_id", marketID))
		return nil, store.NewStoreError("selection", "list", "query failed", MapError(err))
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	selections := []domain.Selection{}
	for rows.Next() {
		var sel domain.Selection
		if err := rows.Scan(&sel.ID, &sel.Name, &sel.Odd); err != nil {
			return nil, store.NewStoreError("selection", "list", "scan failed", err)
		}
		selections = append(selections, sel)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("selection", "list", "iteration failed", err)
	}
	return selections, nil
}

// CreateMarket implements store.EventStore.CreateMarket
func (s *PostgresEventStore) CreateMarket(ctx context.Context, market domain.Market) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO markets (id, event_id, name) VALUES ($1, $2, $3)`,
		market.ID, market.EventID, market.Name,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("market already exists", slog.String("market_id", market.ID))
			return store.ErrMarketExists
		}
		if IsForeignKeyViolation(err) {
			log.Warn("market references unknown event",
				slog.String("market_id", market.ID),
				slog.String("event_id", market.EventID))
			return store.ErrEventNotFound
		}
		log.Error("failed to create market",
			slog.String("error", err.Error()),
			slog.String("market_id", market.ID))
		return store.NewStoreError("market", "create", "insert failed", MapError(err))
	}

	if err := s.insertSelections(ctx, market); err != nil {
		return err
	}

	log.Info("market created",
		slog.String("market_id", market.ID),
		slog.String("event_id", market.EventID),
		slog.Int("selections", len(market.Selections)))
	return nil
}

// ReplaceMarket implements store.EventStore.ReplaceMarket
func (s *PostgresEventStore) ReplaceMarket(ctx context.Context, market domain.Market) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`UPDATE markets SET name = $2, updated_at = $3 WHERE id = $1`,
		market.ID, market.Name, time.Now().UTC(),
	)
	if err != nil {
		log.Error("failed to update market",
			slog.String("error", err.Error()),
			slog.String("market_id", market.ID))
		return store.NewStoreError("market", "update", "update failed", MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrMarketNotFound); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM selections WHERE market_id = $1`, market.ID); err != nil {
		log.Error("failed to clear selections",
			slog.String("error", err.Error()),
			slog.String("market_id", market.ID))
		return store.NewStoreError("selection", "delete", "delete failed", MapError(err))
	}

	if err := s.insertSelections(ctx, market); err != nil {
		return err
	}

	log.Info("market replaced",
		slog.String("market_id", market.ID),
		slog.Int("selections", len(market.Selections)))
	return nil
}

func (s *PostgresEventStore) insertSelections(ctx context.Context, market domain.Market) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	for i, sel := range market.Selections {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO selections (market_id, id, name, odd, position) VALUES ($1, $2, $3, $4, $5)`,
			market.ID, sel.ID, sel.Name, sel.Odd, i,
		)
		if err != nil {
			log.Error("failed to insert selection",
				slog.String("error", err.Error()),
				slog.String("market_id", market.ID),
				slog.String("selection_id", sel.ID))
			return store.NewStoreError("selection", "create", "insert failed", MapError(err))
		}
	}
	return nil
}

// DeleteMarket implements store.EventStore.DeleteMarket
func (s *PostgresEventStore) DeleteMarket(ctx context.Context, marketID string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM markets WHERE id = $1`, marketID)
	if err != nil {
		log.Error("failed to delete market",
			slog.String("error", err.Error()),
			slog.String("market_id", marketID))
		return store.NewStoreError("market", "delete", "delete failed", MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrMarketNotFound); err != nil {
		return err
	}

	log.Info("market deleted", slog.String("market_id", marketID))
	return nil
}

// ListEvents implements store.EventStore.ListEvents
func (s *PostgresEventStore) ListEvents(ctx context.Context) ([]domain.Event, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT e.id, e.name, e.event_date, m.id, m.name, s.id, s.name, s.odd
		FROM events e
		LEFT JOIN markets m ON m.event_id = e.id
		LEFT JOIN selections s ON s.market_id = m.id
		ORDER BY e.id, m.id, s.position
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to query events", slog.String("error", err.Error()))
		return nil, store.NewStoreError("event", "list", "query failed", MapError(err))
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	events := []domain.Event{}
	for rows.Next() {
		var (
			eventID, eventName   string
			eventDate            time.Time
			marketID, marketName sql.NullString
			selectionID, selName sql.NullString
			selectionOdd         sql.NullFloat64
		)
		if err := rows.Scan(
			&eventID, &eventName, &eventDate,
			&marketID, &marketName,
			&selectionID, &selName, &selectionOdd,
		); err != nil {
			return nil, store.NewStoreError("event", "list", "scan failed", err)
		}

		if len(events) == 0 || events[len(events)-1].ID != eventID {
			events = append(events, domain.Event{
				ID:      eventID,
				Name:    eventName,
				Date:    eventDate.Format(domain.EventDateLayout),
				Markets: []domain.Market{},
			})
		}
		event := &events[len(events)-1]

		if !marketID.Valid {
			continue
		}
		if len(event.Markets) == 0 || event.Markets[len(event.Markets)-1].ID != marketID.String {
			event.Markets = append(event.Markets, domain.Market{
				ID:         marketID.String,
				Name:       marketName.String,
				EventID:    eventID,
				Selections: []domain.Selection{},
			})
		}
		market := &event.Markets[len(event.Markets)-1]

		if selectionID.Valid {
			market.Selections = append(market.Selections, domain.Selection{
				ID:   selectionID.String,
				Name: selName.String,
				Odd:  selectionOdd.Float64,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("event", "list", "iteration failed", err)
	}

	log.Debug("listed events", slog.Int("count", len(events)))
	return events, nil
}
