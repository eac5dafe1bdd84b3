// Package sqlite persists repository snapshots to an embedded SQLite file.
package sqlite

import (
	"archrepo/pkg/domain"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	msqlite "modernc.org/sqlite" // pure go sqlite driver
	sqlite3 "modernc.org/sqlite/lib"
)

// Compile-time contract assertion.
var _ domain.SnapshotSlot = (*Store)(nil)

const (
	defaultPath = "archrepo.db"
	// DefaultSlot is the bucket used when no slot name is configured.
	DefaultSlot = "repository"
)

// Store keeps one snapshot payload per bucket in a single state table.
type Store struct {
	db     *sql.DB
	mu     sync.Mutex
	path   string
	bucket string
}

// NewStore opens (creating if needed) the SQLite file at path and binds the
// store to the bucket named slot.
func NewStore(path, slot string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if slot == "" {
		slot = DefaultSlot
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &Store{db: db, path: path, bucket: slot}, nil
}

// Load implements domain.SnapshotSlot.
func (s *Store) Load(ctx context.Context) ([]byte, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE bucket = ?`, s.bucket).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select %s: %w", s.bucket, err)
	}
	return payload, true, nil
}

// Save implements domain.SnapshotSlot.
func (s *Store) Save(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, s.bucket, data); err != nil {
		return fmt.Errorf("upsert %s: %w", s.bucket, mapError(err))
	}
	return nil
}

// Clear implements domain.SnapshotSlot.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM state WHERE bucket = ?`, s.bucket); err != nil {
		return fmt.Errorf("delete %s: %w", s.bucket, err)
	}
	return nil
}

// Buckets lists the slot names present in the database.
func (s *Store) Buckets(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT bucket FROM state ORDER BY bucket`)
	if err != nil {
		return nil, fmt.Errorf("select buckets: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []string
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// Bucket returns the slot name this store reads and writes.
func (s *Store) Bucket() string { return s.bucket }

// mapError surfaces a full database or disk as ErrStorageQuotaExceeded.
func mapError(err error) error {
	var se *msqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_FULL {
		return fmt.Errorf("%w: %v", domain.ErrStorageQuotaExceeded, err)
	}
	return err
}
