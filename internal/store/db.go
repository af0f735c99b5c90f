package store

import (
	"context"
	"database/sql"
)

// DBTX is the query surface the PostgreSQL stores run on. *sql.DB and
// *sql.Tx both satisfy it, so a store bound with WithTx joins the caller's
// transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxBeginner opens transactions. *sql.DB satisfies it.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// CommandTxOptions is used for applying one market change command: the
// processed_requests lookup and the market writes read one snapshot, and a
// concurrent writer makes the commit fail instead of interleaving.
var CommandTxOptions = &sql.TxOptions{Isolation: sql.LevelRepeatableRead}
