package rhs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rubuy74/market-ops/internal/api"
	"github.com/rubuy74/market-ops/internal/config"
	"github.com/rubuy74/market-ops/internal/events"
	"github.com/rubuy74/market-ops/internal/platform/kafka"
	"github.com/rubuy74/market-ops/internal/platform/memstore"
	"github.com/rubuy74/market-ops/internal/platform/mosclient"
	"github.com/rubuy74/market-ops/internal/service"
	segkafka "github.com/segmentio/kafka-go"
)

// Application holds the shared dependencies of the request handling service
// and releases them on Close.
type Application struct {
	config *config.RHSConfig
	logger *slog.Logger

	requests *memstore.RequestStore
	producer *kafka.Producer
	mos      *mosclient.Client
	hub      *api.StatusHub

	requestService service.RequestService
	consumer       *kafka.Consumer
}

// New wires the service from its configuration. When kafka.ensure_topics is
// set, the command and result topics are created if missing.
func New(ctx context.Context, cfg *config.RHSConfig, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("rhs: config cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Kafka.EnsureTopics {
		if err := kafka.EnsureTopics(ctx, cfg.Kafka.Brokers, cfg.Kafka.CommandTopic, cfg.Kafka.ResultTopic); err != nil {
			return nil, fmt.Errorf("failed to ensure kafka topics: %w", err)
		}
	}

	app := &Application{
		config:   cfg,
		logger:   logger,
		requests: memstore.NewRequestStore(logger),
		producer: kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.CommandTopic, cfg.Kafka.ResultTopic, logger),
		mos:      mosclient.New(cfg.MOS.BaseURL, cfg.MOS.Timeout, logger),
		hub:      api.NewStatusHub(logger),
	}

	svc, err := service.NewRequestService(app.requests, app.producer, app.mos, app.hub, logger)
	if err != nil {
		_ = app.producer.Close()
		return nil, fmt.Errorf("failed to create request service: %w", err)
	}
	app.requestService = svc

	app.consumer = kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:     cfg.Kafka.Brokers,
		Topic:       cfg.Kafka.ResultTopic,
		GroupID:     cfg.Kafka.GroupID,
		MaxAttempts: 1,
	}, app.handleResult, nil, logger)

	logger.Info("request handling service initialized",
		slog.Any("brokers", cfg.Kafka.Brokers),
		slog.String("mos_base_url", cfg.MOS.BaseURL))
	return app, nil
}

// handleResult records one message from the result topic. Undecodable
// messages are never retried.
func (a *Application) handleResult(ctx context.Context, msg segkafka.Message) error {
	res, err := events.DecodeResult(msg.Value)
	if err != nil {
		return kafka.Permanent(err)
	}
	return a.requestService.RecordResult(ctx, res)
}

// Close releases the producer and disconnects stream clients.
func (a *Application) Close() error {
	a.hub.Close()
	if err := a.producer.Close(); err != nil {
		a.logger.Error("failed to close producer", slog.String("error", err.Error()))
		return err
	}
	return nil
}
