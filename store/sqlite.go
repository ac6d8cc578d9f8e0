package store

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	tb "github.com/transitcore/tripbased"
	"github.com/transitcore/tripbased/transfer"
)

// SQLiteConfig mirrors tidbyt.dev/gtfs's storage.SQLiteConfig: an in-memory
// database unless OnDisk is set, in which case Directory names where the
// file lives.
type SQLiteConfig struct {
	OnDisk    bool
	Directory string
}

// SQLite persists one row per service day, each holding that day's whole
// TransferMap as an opaque blob in the wire format of codec.go. A day is
// replaced atomically with INSERT OR REPLACE inside a single transaction,
// so Get never observes a partially-written day.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(cfg ...SQLiteConfig) (*SQLite, error) {
	onDisk, directory := false, ""
	if len(cfg) > 0 {
		onDisk, directory = cfg[0].OnDisk, cfg[0].Directory
	}

	source := ":memory:"
	if onDisk {
		source = directory + "/transfers.db"
	}

	db, err := sql.Open("sqlite3", source)
	if err != nil {
		return nil, fmt.Errorf("store: opening sqlite database: %w", err)
	}

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS transfer_map (
    service_day TEXT NOT NULL PRIMARY KEY,
    data BLOB NOT NULL
);`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: creating transfer_map table: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

// Get returns an empty map, not an error, for a service day with no prepared
// transfers (spec.md §4.3): ErrNotFound is reserved for actual backend
// failures.
func (s *SQLite) Get(ctx context.Context, day tb.ServiceDay) (*transfer.Map, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM transfer_map WHERE service_day = ?`, day.String()).Scan(&data)
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

func (s *SQLite) Put(ctx context.Context, day tb.ServiceDay, m *transfer.Map) error {
	var buf bytes.Buffer
	if err := encodeMap(&buf, m); err != nil {
		return fmt.Errorf("store: encoding transfer map for %s: %w", day, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO transfer_map (service_day, data) VALUES (?, ?)`, day.String(), buf.Bytes()); err != nil {
		return fmt.Errorf("store: writing transfer map for %s: %w", day, err)
	}
	return tx.Commit()
}
