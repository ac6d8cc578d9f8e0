package store

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	tb "github.com/transitcore/tripbased"
	"github.com/transitcore/tripbased/transfer"
)

// Postgres is the multi-process counterpart to SQLite: the same
// one-row-per-service-day schema, shared across routers and builders that
// don't live in the same process.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens connStr and ensures the transfer_map table exists. If
// clearDB is true the table is dropped and recreated first — intended for
// tests only.
func NewPostgres(connStr string, clearDB bool) (*Postgres, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("store: opening postgres connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("store: pinging postgres: %w", err)
	}

	if clearDB {
		if _, err := db.Exec(`DROP TABLE IF EXISTS transfer_map;`); err != nil {
			return nil, fmt.Errorf("store: dropping transfer_map table: %w", err)
		}
	}

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS transfer_map (
    service_day TEXT NOT NULL PRIMARY KEY,
    data BYTEA NOT NULL
);`)
	if err != nil {
		return nil, fmt.Errorf("store: creating transfer_map table: %w", err)
	}

	return &Postgres{db: db}, nil
}

func (s *Postgres) Close() error { return s.db.Close() }

// Get returns an empty map, not an error, for a service day with no prepared
// transfers (spec.md §4.3): ErrNotFound is reserved for actual backend
// failures.
func (s *Postgres) Get(ctx context.Context, day tb.ServiceDay) (*transfer.Map, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM transfer_map WHERE service_day = $1`, day.String()).Scan(&data)
	if err == sql.ErrNoRows {
		return transfer.FromAll(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: reading transfer map for %s: %w", day, err)
	}
	m, err := decodeMap(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("store: decoding transfer map for %s: %w", day, err)
	}
	return m, nil
}

func (s *Postgres) Put(ctx context.Context, day tb.ServiceDay, m *transfer.Map) error {
	var buf bytes.Buffer
	if err := encodeMap(&buf, m); err != nil {
		return fmt.Errorf("store: encoding transfer map for %s: %w", day, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO transfer_map (service_day, data) VALUES ($1, $2)
ON CONFLICT (service_day) DO UPDATE SET data = EXCLUDED.data`, day.String(), buf.Bytes())
	if err != nil {
		return fmt.Errorf("store: writing transfer map for %s: %w", day, err)
	}
	return tx.Commit()
}
