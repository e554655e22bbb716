package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Querier is an interface satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// Ensure interfaces are satisfied.
var (
	_ Querier    = (*sql.DB)(nil)
	_ Querier    = (*sql.Tx)(nil)
	_ rowScanner = (*sql.Row)(nil)
	_ rowScanner = (*sql.Rows)(nil)
)

const schema = `
CREATE TABLE IF NOT EXISTS transits (
	id                    TEXT PRIMARY KEY,
	client_id             TEXT NOT NULL,
	driver_id             TEXT,
	from_address_id       TEXT NOT NULL,
	to_address_id         TEXT NOT NULL,
	car_class             TEXT NOT NULL,
	status                TEXT NOT NULL,
	date_time             TIMESTAMPTZ NOT NULL,
	date_time_offset      INTEGER NOT NULL DEFAULT 0,
	distance_km           DOUBLE PRECISION NOT NULL CHECK (distance_km >= 0),
	estimated_price_cents BIGINT,
	price_cents           BIGINT,
	created_at            TIMESTAMPTZ NOT NULL,
	completed_at          TIMESTAMPTZ,
	cancelled_at          TIMESTAMPTZ,
	cancel_reason         TEXT
);

ALTER TABLE transits ADD COLUMN IF NOT EXISTS date_time_offset INTEGER NOT NULL DEFAULT 0;

CREATE INDEX IF NOT EXISTS idx_transits_driver_date ON transits (driver_id, date_time DESC);
`

// Migrate creates the tables used by the repositories if they are missing.
func Migrate(ctx context.Context, q Querier) error {
	if _, err := q.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
