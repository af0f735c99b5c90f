package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rubuy74/market-ops/internal/domain"
	"github.com/rubuy74/market-ops/internal/platform/logger"
	"github.com/rubuy74/market-ops/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockEventStore(t *testing.T) (*PostgresEventStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresEventStore(db, nil), mock
}

func testMarket() domain.Market {
	return domain.Market{
		ID:      "1231231",
		Name:    "Winner",
		EventID: "987654321",
		Selections: []domain.Selection{
			{ID: "1", Name: "Home", Odd: 1.5},
			{ID: "2", Name: "Away", Odd: 2.75},
		},
	}
}

func TestUpsertEvent(t *testing.T) {
	event := domain.EventInfo{ID: "987654321", Name: "Benfica - Porto", Date: "20/05/2025"}

	t.Run("reports creation", func(t *testing.T) {
		s, mock := newMockEventStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO events")).
			WithArgs(event.ID, event.Name, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)).
			WillReturnRows(sqlmock.NewRows([]string{"created"}).AddRow(true))

		created, err := s.UpsertEvent(context.Background(), event)
		require.NoError(t, err)
		assert.True(t, created)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports existing event", func(t *testing.T) {
		s, mock := newMockEventStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO events")).
			WillReturnRows(sqlmock.NewRows([]string{"created"}).AddRow(false))

		created, err := s.UpsertEvent(context.Background(), event)
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("rejects bad date", func(t *testing.T) {
		s, _ := newMockEventStore(t)
		_, err := s.UpsertEvent(context.Background(), domain.EventInfo{ID: "1", Name: "x", Date: "2025-05-20"})
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})

	t.Run("wraps query failure", func(t *testing.T) {
		s, mock := newMockEventStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO events")).
			WillReturnError(errors.New("connection reset"))

		_, err := s.UpsertEvent(context.Background(), event)
		var storeErr *store.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "upsert", storeErr.Operation)
	})
}

func TestCreateMarket(t *testing.T) {
	t.Run("inserts market and selections in order", func(t *testing.T) {
		s, mock := newMockEventStore(t)
		m := testMarket()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO markets")).
			WithArgs(m.ID, m.EventID, m.Name).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO selections")).
			WithArgs(m.ID, "1", "Home", 1.5, 0).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO selections")).
			WithArgs(m.ID, "2", "Away", 2.75, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.CreateMarket(context.Background(), m))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps unique violation", func(t *testing.T) {
		s, mock := newMockEventStore(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO markets")).
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})

		err := s.CreateMarket(context.Background(), testMarket())
		assert.ErrorIs(t, err, store.ErrMarketExists)
	})

	t.Run("maps foreign key violation", func(t *testing.T) {
		s, mock := newMockEventStore(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO markets")).
			WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode})

		err := s.CreateMarket(context.Background(), testMarket())
		assert.ErrorIs(t, err, store.ErrEventNotFound)
	})

	t.Run("fails on selection insert", func(t *testing.T) {
		s, mock := newMockEventStore(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO markets")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO selections")).
			WillReturnError(&pgconn.PgError{Code: checkViolationCode, ConstraintName: "selections_odd_check"})

		log, buf := logger.NewTestLogger(t)
		ctx := logger.WithLogger(context.Background(), log.With(slog.String("trace_id", "trace-1")))

		err := s.CreateMarket(ctx, testMarket())
		assert.ErrorIs(t, err, store.ErrInvalidEntity)

		entries, err := buf.GetLogEntries()
		require.NoError(t, err)
		require.NotEmpty(t, entries)
		last := entries[len(entries)-1]
		assert.Equal(t, "failed to insert selection", last["msg"])
		assert.Equal(t, "trace-1", last["trace_id"])
	})
}

func TestReplaceMarket(t *testing.T) {
	t.Run("replaces selections", func(t *testing.T) {
		s, mock := newMockEventStore(t)
		m := testMarket()
		m.Selections = m.Selections[:1]
		mock.ExpectExec(regexp.QuoteMeta("UPDATE markets")).
			WithArgs(m.ID, m.Name, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM selections")).
			WithArgs(m.ID).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO selections")).
			WithArgs(m.ID, "1", "Home", 1.5, 0).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.ReplaceMarket(context.Background(), m))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing market", func(t *testing.T) {
		s, mock := newMockEventStore(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE markets")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := s.ReplaceMarket(context.Background(), testMarket())
		assert.ErrorIs(t, err, store.ErrMarketNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteMarket(t *testing.T) {
	t.Run("deletes", func(t *testing.T) {
		s, mock := newMockEventStore(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM markets")).
			WithArgs("1231231").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.DeleteMarket(context.Background(), "1231231"))
	})

	t.Run("missing market", func(t *testing.T) {
		s, mock := newMockEventStore(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM markets")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := s.DeleteMarket(context.Background(), "1231231")
		assert.ErrorIs(t, err, store.ErrMarketNotFound)
	})
}

func TestGetMarket(t *testing.T) {
	t.Run("returns market with selections", func(t *testing.T) {
		s, mock := newMockEventStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, event_id, name FROM markets")).
			WithArgs("1231231").
			WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "name"}).
				AddRow("1231231", "987654321", "Winner"))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, odd FROM selections")).
			WithArgs("1231231").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "odd"}).
				AddRow("1", "Home", 1.5).
				AddRow("2", "Away", 2.75))

		m, err := s.GetMarket(context.Background(), "1231231")
		require.NoError(t, err)
		assert.Equal(t, testMarket(), *m)
	})

	t.Run("missing market", func(t *testing.T) {
		s, mock := newMockEventStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, event_id, name FROM markets")).
			WillReturnError(sql.ErrNoRows)

		_, err := s.GetMarket(context.Background(), "404")
		assert.ErrorIs(t, err, store.ErrMarketNotFound)
	})
}

func TestListEvents(t *testing.T) {
	columns := []string{"id", "name", "event_date", "market_id", "market_name", "sel_id", "sel_name", "odd"}
	date := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)

	t.Run("groups rows", func(t *testing.T) {
		s, mock := newMockEventStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM events e")).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("1", "Event one", date, "10", "Winner", "a", "Home", 1.5).
				AddRow("1", "Event one", date, "10", "Winner", "b", "Away", 3.0).
				AddRow("1", "Event one", date, "11", "Goals", nil, nil, nil).
				AddRow("2", "Event two", date, nil, nil, nil, nil, nil))

		events, err := s.ListEvents(context.Background())
		require.NoError(t, err)
		require.Len(t, events, 2)

		assert.Equal(t, "20/05/2025", events[0].Date)
		require.Len(t, events[0].Markets, 2)
		assert.Equal(t, []domain.Selection{
			{ID: "a", Name: "Home", Odd: 1.5},
			{ID: "b", Name: "Away", Odd: 3.0},
		}, events[0].Markets[0].Selections)
		assert.NotNil(t, events[0].Markets[1].Selections)
		assert.Empty(t, events[0].Markets[1].Selections)

		assert.NotNil(t, events[1].Markets)
		assert.Empty(t, events[1].Markets)
	})

	t.Run("empty table yields empty slice", func(t *testing.T) {
		s, mock := newMockEventStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM events e")).
			WillReturnRows(sqlmock.NewRows(columns))

		events, err := s.ListEvents(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, events)
		assert.Empty(t, events)
	})
}
