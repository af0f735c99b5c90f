package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rubuy74/market-ops/internal/platform/logger"
	"github.com/segmentio/kafka-go"
)

// Handler processes one message. A returned error triggers a retry unless
// it is marked with Permanent.
type Handler func(ctx context.Context, msg kafka.Message) error

// FailureHandler is called once a message exhausted its attempts or failed
// permanently. The message is committed afterwards.
type FailureHandler func(ctx context.Context, msg kafka.Message, err error)

// messageReader is the subset of *kafka.Reader the Consumer needs.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ConsumerConfig describes the subscription and retry policy of a Consumer.
type ConsumerConfig struct {
	Brokers      []string
	Topic        string
	GroupID      string
	MaxAttempts  int
	RetryBackoff time.Duration
}

// Consumer reads a topic as part of a consumer group.
type Consumer struct {
	reader      messageReader
	topic       string
	handler     Handler
	onFailure   FailureHandler
	maxAttempts int
	backoff     time.Duration
	logger      *slog.Logger
}

// NewConsumer creates a Consumer that starts from the earliest offset when
// its group has no committed position yet. onFailure may be nil.
func NewConsumer(cfg ConsumerConfig, handler Handler, onFailure FailureHandler, logger *slog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6, // 10MB
		MaxWait:     500 * time.Millisecond,
	})
	return newConsumer(r, cfg, handler, onFailure, logger)
}

func newConsumer(r messageReader, cfg ConsumerConfig, handler Handler, onFailure FailureHandler, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Consumer{
		reader:      r,
		topic:       cfg.Topic,
		handler:     handler,
		onFailure:   onFailure,
		maxAttempts: maxAttempts,
		backoff:     cfg.RetryBackoff,
		logger: logger.With(
			slog.String("component", "kafka_consumer"),
			slog.String("topic", cfg.Topic),
		),
	}
}

// Run consumes messages until ctx is cancelled. It returns nil on
// cancellation and an error if the reader fails.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("consumer started")
	defer func() {
		if err := c.reader.Close(); err != nil {
			c.logger.Error("failed to close reader", slog.String("error", err.Error()))
		}
		c.logger.Info("consumer stopped")
	}()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("failed to fetch message", slog.String("error", err.Error()))
			return fmt.Errorf("failed to fetch message from %s: %w", c.topic, err)
		}

		if !c.process(ctx, msg) {
			return nil
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("failed to commit message",
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()))
		}
	}
}

// process runs the handler with retries. It reports false when ctx was
// cancelled before the message was settled.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) bool {
	log := c.logger.With(
		slog.Int("partition", msg.Partition),
		slog.Int64("offset", msg.Offset),
		slog.String("key", string(msg.Key)),
	)
	msgCtx := logger.WithLogger(ctx, log)

	var err error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		err = c.handler(msgCtx, msg)
		if err == nil {
			return true
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			log.Warn("message failed permanently", slog.String("error", err.Error()))
			break
		}

		log.Warn("message handling failed",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", c.maxAttempts),
			slog.String("error", err.Error()))

		if attempt == c.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(c.backoff * time.Duration(attempt)):
		}
	}

	if ctx.Err() != nil {
		return false
	}

	log.Error("giving up on message", slog.String("error", err.Error()))
	if c.onFailure != nil {
		c.onFailure(msgCtx, msg, err)
	}
	return true
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err so the Consumer reports it without retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}
