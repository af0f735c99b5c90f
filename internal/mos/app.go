package mos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rubuy74/market-ops/internal/config"
	"github.com/rubuy74/market-ops/internal/domain"
	"github.com/rubuy74/market-ops/internal/events"
	"github.com/rubuy74/market-ops/internal/platform/kafka"
	"github.com/rubuy74/market-ops/internal/platform/postgres"
	"github.com/rubuy74/market-ops/internal/service"
	segkafka "github.com/segmentio/kafka-go"
)

// InvalidCommandMessage is reported for commands that fail schema validation.
const InvalidCommandMessage = "Invalid market change command"

// Application holds the shared dependencies of the market operations service
// and releases them on Close.
type Application struct {
	config *config.MOSConfig
	logger *slog.Logger
	db     *sql.DB

	producer      *kafka.Producer
	marketService service.MarketService
	consumer      *kafka.Consumer
}

// New wires the service from its configuration. It opens the database pool,
// applies pending migrations when database.auto_migrate is set, and creates
// the Kafka topics when kafka.ensure_topics is set.
func New(ctx context.Context, cfg *config.MOSConfig, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("mos: config cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.Open(ctx, cfg.Database.URL,
		cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime)
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db, postgres.MigrateUp, logger); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	if cfg.Kafka.EnsureTopics {
		if err := kafka.EnsureTopics(ctx, cfg.Kafka.Brokers, cfg.Kafka.CommandTopic, cfg.Kafka.ResultTopic); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to ensure kafka topics: %w", err)
		}
	}

	app := &Application{
		config:   cfg,
		logger:   logger,
		db:       db,
		producer: kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.CommandTopic, cfg.Kafka.ResultTopic, logger),
	}

	app.marketService, err = service.NewMarketService(
		db,
		postgres.NewPostgresEventStore(db, logger),
		postgres.NewPostgresProcessedRequestStore(db, logger),
		app.producer,
		logger,
	)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to create market service: %w", err)
	}

	app.consumer = kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:      cfg.Kafka.Brokers,
		Topic:        cfg.Kafka.CommandTopic,
		GroupID:      cfg.Kafka.GroupID,
		MaxAttempts:  cfg.Consumer.MaxAttempts,
		RetryBackoff: cfg.Consumer.RetryBackoff,
	}, app.handleCommand, app.rejectCommand, logger)

	logger.Info("market operations service initialized",
		slog.Any("brokers", cfg.Kafka.Brokers),
		slog.Int("max_attempts", cfg.Consumer.MaxAttempts))
	return app, nil
}

// handleCommand applies one message from the command topic. Messages that
// fail validation are never retried.
func (a *Application) handleCommand(ctx context.Context, msg segkafka.Message) error {
	cmd, err := events.DecodeCommand(msg.Value)
	if err != nil {
		return kafka.Permanent(err)
	}
	_, err = a.marketService.Apply(ctx, cmd)
	return err
}

// rejectCommand answers a command the consumer gave up on, provided the
// message still names the request it belongs to.
func (a *Application) rejectCommand(ctx context.Context, msg segkafka.Message, cause error) {
	requestID, op, marketID, ok := events.RecoverRequest(msg.Value)
	if !ok {
		a.logger.Warn("dropping message without a request ID",
			slog.Int64("offset", msg.Offset),
			slog.String("error", cause.Error()))
		return
	}

	message := service.InternalErrorMessage
	if errors.Is(cause, events.ErrInvalidMessage) {
		message = InvalidCommandMessage
	}

	err := a.marketService.Reject(ctx, domain.ProcessedRequest{
		RequestID: requestID,
		Operation: op,
		MarketID:  marketID,
		Message:   message,
	})
	if err != nil {
		a.logger.Error("failed to reject command",
			slog.String("request_id", requestID.String()),
			slog.String("error", err.Error()))
	}
}

// Close releases the producer and the database pool.
func (a *Application) Close() error {
	var errs []error
	if err := a.producer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close producer: %w", err))
	}
	if err := a.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database: %w", err))
	}
	err := errors.Join(errs...)
	if err != nil {
		a.logger.Error("cleanup failed", slog.String("error", err.Error()))
	}
	return err
}
