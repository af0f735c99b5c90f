package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rubuy74/market-ops/internal/domain"
	"github.com/rubuy74/market-ops/internal/events"
	"github.com/rubuy74/market-ops/internal/platform/logger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestProducerPublishCommand(t *testing.T) {
	w := &fakeWriter{}
	log, _ := logger.NewTestLogger(t)
	p := newProducer(w, "market-changes", "market-change-results", log)

	cmd := &events.MarketChangeCommand{
		ID:        uuid.New(),
		RequestID: uuid.New(),
		Operation: domain.OperationAdd,
		Payload:   domain.MarketChange{MarketID: "1231231"},
	}
	require.NoError(t, p.PublishCommand(context.Background(), cmd))

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "market-changes", msg.Topic)
	assert.Equal(t, "1231231", string(msg.Key))

	var decoded events.MarketChangeCommand
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, cmd.RequestID, decoded.RequestID)
}

func TestProducerPublishResult(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "market-changes", "market-change-results", logger.New(io.Discard, "error"))

	res := &events.MarketChangeResult{
		ID:        uuid.New(),
		RequestID: uuid.New(),
		Status:    domain.RequestStatusSuccess,
	}
	require.NoError(t, p.PublishResult(context.Background(), res))

	require.Len(t, w.messages, 1)
	assert.Equal(t, "market-change-results", w.messages[0].Topic)
	assert.Equal(t, res.RequestID.String(), string(w.messages[0].Key))
}

func TestProducerWriteFailure(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unavailable")}
	log, buf := logger.NewTestLogger(t)
	p := newProducer(w, "market-changes", "market-change-results", log)

	err := p.PublishCommand(context.Background(), &events.MarketChangeCommand{RequestID: uuid.New()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "market-changes")
	logger.AssertLogContains(t, buf, "failed to write message")

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}
