// Package postgres persists repository snapshots to a PostgreSQL state
// table through the pgx database/sql driver.
package postgres

import (
	"archrepo/pkg/domain"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

// Compile-time contract assertion.
var _ domain.SnapshotSlot = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/archrepo?sslmode=disable"
	// DefaultSlot is the bucket used when no slot name is configured.
	DefaultSlot = "repository"
)

// SQLSTATE codes reported as ErrStorageQuotaExceeded.
var quotaStates = map[string]struct{}{
	"53100": {}, // disk_full
	"53200": {}, // out_of_memory
	"54000": {}, // program_limit_exceeded
}

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store keeps one JSONB snapshot payload per bucket.
type Store struct {
	db     *sql.DB
	mu     sync.Mutex
	bucket string
}

// NewStore opens a Postgres-backed slot using dsn (falls back to defaultDSN)
// and ensures the state table exists.
func NewStore(ctx context.Context, dsn, slot string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	if slot == "" {
		slot = DefaultSlot
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := ensureStateTable(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, bucket: slot}, nil
}

func ensureStateTable(ctx context.Context, db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure state table: %w", err)
	}
	return nil
}

// Load implements domain.SnapshotSlot.
func (s *Store) Load(ctx context.Context) ([]byte, bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT bucket, payload FROM state WHERE bucket = $1`, s.bucket)
	if err != nil {
		return nil, false, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return nil, false, fmt.Errorf("scan state: %w", err)
		}
		if bucket == s.bucket && len(payload) > 0 {
			return payload, true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate state: %w", err)
	}
	return nil, false, nil
}

// Save implements domain.SnapshotSlot.
func (s *Store) Save(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES($1,$2) ON CONFLICT(bucket) DO UPDATE SET payload=EXCLUDED.payload`, s.bucket, data); err != nil {
		return fmt.Errorf("upsert %s: %w", s.bucket, mapError(err))
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", mapError(err))
	}
	committed = true
	return nil
}

// Clear implements domain.SnapshotSlot.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM state WHERE bucket = $1`, s.bucket); err != nil {
		return fmt.Errorf("delete %s: %w", s.bucket, err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if _, ok := quotaStates[pgErr.Code]; ok {
			return fmt.Errorf("%w: %v", domain.ErrStorageQuotaExceeded, err)
		}
	}
	return err
}

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
