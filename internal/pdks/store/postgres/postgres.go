// Package postgres implements the pdks stores on PostgreSQL through
// pgx. It targets the hosted database the terminal fleet already writes
// to, so the schema is created with IF NOT EXISTS and never dropped.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/xerrors"
)

// Querier is the subset of *pgxpool.Pool the stores use.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Connect opens a pool and verifies it with a ping.
func Connect(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, xerrors.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, xerrors.Errorf("ping database: %w", err)
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS raw_punches (
	id            BIGSERIAL PRIMARY KEY,
	user_id       BIGINT    NOT NULL,
	display_name  TEXT,
	punched_at    TIMESTAMP NOT NULL,
	device_uid    INTEGER,
	status_code   INTEGER,
	verify_method INTEGER,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (user_id, punched_at)
);
CREATE INDEX IF NOT EXISTS idx_raw_punches_time ON raw_punches (punched_at);

CREATE TABLE IF NOT EXISTS workday_records (
	id           BIGSERIAL PRIMARY KEY,
	user_id      BIGINT    NOT NULL,
	workday_date DATE      NOT NULL,
	entry_time   TIMESTAMP NOT NULL,
	exit_time    TIMESTAMP,
	admin_locked BOOLEAN   NOT NULL DEFAULT false,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (user_id, workday_date)
);
CREATE INDEX IF NOT EXISTS idx_workday_records_entry ON workday_records (entry_time DESC);

CREATE TABLE IF NOT EXISTS personnel (
	user_id    BIGINT  PRIMARY KEY,
	first_name TEXT    NOT NULL,
	last_name  TEXT    NOT NULL DEFAULT '',
	hire_date  DATE    NOT NULL,
	active     BOOLEAN NOT NULL DEFAULT true,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// EnsureSchema creates the tables the stores need if they are missing.
func EnsureSchema(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, schema); err != nil {
		return xerrors.Errorf("error creating pdks tables: %w", err)
	}
	return nil
}

// uniqueViolation is SQLSTATE unique_violation.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
