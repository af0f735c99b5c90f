package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rubuy74/market-ops/internal/events"
	"github.com/rubuy74/market-ops/internal/platform/logger"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafka.Writer the Producer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes market change commands and results.
type Producer struct {
	writer       messageWriter
	commandTopic string
	resultTopic  string
	logger       *slog.Logger
}

var (
	_ events.CommandPublisher = (*Producer)(nil)
	_ events.ResultPublisher  = (*Producer)(nil)
)

// NewProducer creates a Producer writing to the given brokers.
// The topic is chosen per message, so one writer serves both topics.
func NewProducer(brokers []string, commandTopic, resultTopic string, logger *slog.Logger) *Producer {
	if logger == nil {
		logger = slog.Default()
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return newProducer(w, commandTopic, resultTopic, logger)
}

func newProducer(w messageWriter, commandTopic, resultTopic string, logger *slog.Logger) *Producer {
	return &Producer{
		writer:       w,
		commandTopic: commandTopic,
		resultTopic:  resultTopic,
		logger:       logger.With(slog.String("component", "kafka_producer")),
	}
}

// PublishCommand implements events.CommandPublisher.
func (p *Producer) PublishCommand(ctx context.Context, cmd *events.MarketChangeCommand) error {
	return p.publish(ctx, p.commandTopic, cmd.Key(), cmd,
		slog.String("request_id", cmd.RequestID.String()),
		slog.String("operation", string(cmd.Operation)))
}

// PublishResult implements events.ResultPublisher.
func (p *Producer) PublishResult(ctx context.Context, res *events.MarketChangeResult) error {
	return p.publish(ctx, p.resultTopic, res.Key(), res,
		slog.String("request_id", res.RequestID.String()),
		slog.String("status", string(res.Status)))
}

func (p *Producer) publish(ctx context.Context, topic string, key []byte, v any, attrs ...any) error {
	log := logger.FromContextOrDefault(ctx, p.logger)

	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message for %s: %w", topic, err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   key,
		Value: value,
	})
	if err != nil {
		log.Error("failed to write message",
			append(attrs, slog.String("topic", topic), slog.String("error", err.Error()))...)
		return fmt.Errorf("failed to write message to %s: %w", topic, err)
	}

	log.Debug("message written",
		append(attrs, slog.String("topic", topic), slog.String("key", string(key)))...)
	return nil
}

// Close flushes pending writes and releases the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
