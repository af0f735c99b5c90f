//go:build e2e

package e2e

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rubuy74/market-ops/internal/config"
	"github.com/rubuy74/market-ops/internal/mos"
	"github.com/rubuy74/market-ops/internal/platform/kafka"
	"github.com/rubuy74/market-ops/internal/platform/logger"
	pgstore "github.com/rubuy74/market-ops/internal/platform/postgres"
	"github.com/rubuy74/market-ops/internal/rhs"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	kafkaImage    = "confluentinc/confluent-local:7.5.0"
	postgresImage = "postgres:13.4"

	commandTopic = "market-changes"
	resultTopic  = "market-change-results"
)

// harness is one running pair of services backed by fresh containers.
type harness struct {
	rhsURL  string
	mosURL  string
	brokers []string
	db      *sql.DB
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	kafkaC, err := tckafka.Run(ctx, kafkaImage, tckafka.WithClusterID("market-ops-e2e"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kafkaC.Terminate(context.Background()) })

	brokers, err := kafkaC.Brokers(ctx)
	require.NoError(t, err)

	pgC, err := tcpostgres.Run(ctx, postgresImage,
		tcpostgres.WithDatabase("postgres"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(context.Background()) })

	dbURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	log := testLogger()
	suffix := uuid.NewString()[:8]
	kafkaCfg := func(group string) config.KafkaConfig {
		return config.KafkaConfig{
			Brokers:      brokers,
			CommandTopic: commandTopic,
			ResultTopic:  resultTopic,
			GroupID:      group + "-" + suffix,
			EnsureTopics: true,
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	stopped := make(chan error, 2)

	mosLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	mosApp, err := mos.New(ctx, &config.MOSConfig{
		Server: config.ServerConfig{Port: 3000, LogLevel: "info"},
		Database: config.DatabaseConfig{
			URL:             dbURL,
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: time.Minute,
			AutoMigrate:     true,
		},
		Kafka:    kafkaCfg("mos"),
		Consumer: config.ConsumerConfig{MaxAttempts: 3, RetryBackoff: 100 * time.Millisecond},
	}, log.With(slog.String("service", "mos")))
	require.NoError(t, err)
	go func() { stopped <- mosApp.RunListener(runCtx, mosLn) }()

	mosURL := "http://" + mosLn.Addr().String()

	rhsLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	rhsApp, err := rhs.New(ctx, &config.RHSConfig{
		Server: config.ServerConfig{Port: 8080, LogLevel: "info"},
		Kafka:  kafkaCfg("rhs"),
		MOS:    config.MOSClientConfig{BaseURL: mosURL, Timeout: 5 * time.Second},
	}, log.With(slog.String("service", "rhs")))
	require.NoError(t, err)
	go func() { stopped <- rhsApp.RunListener(runCtx, rhsLn) }()

	t.Cleanup(func() {
		cancel()
		for i := 0; i < 2; i++ {
			select {
			case err := <-stopped:
				if err != nil && !errors.Is(err, context.Canceled) {
					t.Logf("service stopped with error: %v", err)
				}
			case <-time.After(15 * time.Second):
				t.Log("service did not stop in time")
			}
		}
	})

	db, err := pgstore.Open(ctx, dbURL, 2, 1, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &harness{
		rhsURL:  "http://" + rhsLn.Addr().String(),
		mosURL:  mosURL,
		brokers: brokers,
		db:      db,
	}
}

// newProducer publishes straight to the broker, bypassing RHS.
func (h *harness) newProducer(t *testing.T) *kafka.Producer {
	t.Helper()
	p := kafka.NewProducer(h.brokers, commandTopic, resultTopic, testLogger())
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func (h *harness) processedCount(t *testing.T, requestID string) int {
	t.Helper()
	var n int
	err := h.db.QueryRow(`SELECT count(*) FROM processed_requests WHERE request_id = $1`, requestID).Scan(&n)
	require.NoError(t, err)
	return n
}

func testLogger() *slog.Logger {
	if os.Getenv("E2E_VERBOSE") != "" {
		return logger.New(os.Stderr, "debug")
	}
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
