// Package postgres persists the monitor snapshot in a single-row table.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Krause140/eudr-monitor-24-7/internal/monitor"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// snapshotID keys the single state row; saves upsert it wholesale.
const snapshotID = "monitor"

// Config controls the Postgres connection pool used for the snapshot row.
type Config struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Store writes the serialized monitor state into Postgres. Expected schema:
//
//	CREATE TABLE monitor_state (
//	    id         TEXT PRIMARY KEY,
//	    snapshot   JSONB NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL
//	);
type Store struct {
	pool  pool
	table string
}

// New creates a Postgres-backed snapshot store using the provided config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("snapshot.postgres.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "monitor_state"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: p, table: table}, nil
}

// NewWithPool constructs a store from an existing pool (primarily for
// testing).
func NewWithPool(p pool, table string) (*Store, error) {
	if p == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "monitor_state"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Store{pool: p, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Load reads the snapshot row. A missing row yields (zero, false, nil); a
// corrupt payload yields (zero, false, err) so the caller can log it and
// start fresh.
func (s *Store) Load(ctx context.Context) (monitor.Snapshot, bool, error) {
	query := fmt.Sprintf(`SELECT snapshot FROM %s WHERE id = $1`, s.table)
	var data []byte
	if err := s.pool.QueryRow(ctx, query, snapshotID).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return monitor.Snapshot{}, false, nil
		}
		return monitor.Snapshot{}, false, fmt.Errorf("read snapshot row: %w", err)
	}
	var snap monitor.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return monitor.Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, true, nil
}

// Save upserts the full serialized state into the snapshot row.
func (s *Store) Save(ctx context.Context, snap monitor.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	query := fmt.Sprintf(`
INSERT INTO %s (id, snapshot, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (id) DO UPDATE
SET snapshot = EXCLUDED.snapshot, updated_at = EXCLUDED.updated_at`, s.table)
	if _, err := s.pool.Exec(ctx, query, snapshotID, data); err != nil {
		return fmt.Errorf("write snapshot row: %w", err)
	}
	return nil
}
