// Package blobslot stores the repository snapshot as a single object in a
// blob store (filesystem, memory or S3).
package blobslot

import (
	"archrepo/internal/blob"
	"archrepo/pkg/domain"
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"sync"
)

// Compile-time contract assertion.
var _ domain.SnapshotSlot = (*Store)(nil)

// KeyPrefix namespaces snapshot objects inside the blob store.
const KeyPrefix = "snapshots/"

// Store maps one slot name to the object snapshots/<name>.json.
type Store struct {
	mu    sync.Mutex
	blobs blob.Store
	key   string
}

// New binds slot name to an object in blobs.
func New(blobs blob.Store, name string) (*Store, error) {
	if blobs == nil {
		return nil, fmt.Errorf("blob store required")
	}
	if name == "" {
		name = "repository"
	}
	return &Store{blobs: blobs, key: path.Join(KeyPrefix, name+".json")}, nil
}

// Key returns the object key holding the snapshot.
func (s *Store) Key() string { return s.key }

// stagingKey holds a snapshot that was written but not yet moved into place.
func (s *Store) stagingKey() string { return s.key + ".next" }

// Load implements domain.SnapshotSlot. When the main object is missing, a
// staged snapshot left by an interrupted Save is returned instead.
func (s *Store) Load(ctx context.Context) ([]byte, bool, error) {
	for _, key := range []string{s.key, s.stagingKey()} {
		data, err := blob.ReadAll(ctx, s.blobs, key)
		if errors.Is(err, blob.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, false, fmt.Errorf("read %s: %w", key, err)
		}
		return data, true, nil
	}
	return nil, false, nil
}

// Save implements domain.SnapshotSlot. Blob stores are create-only, so the
// snapshot is staged first and the previous object is only removed once the
// new bytes are durable. A failed Save never leaves the slot empty.
func (s *Store) Save(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	staging := s.stagingKey()
	if _, err := s.blobs.Delete(ctx, staging); err != nil {
		return fmt.Errorf("replace %s: %w", staging, err)
	}
	if err := s.put(ctx, staging, data); err != nil {
		return err
	}
	if _, err := s.blobs.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("replace %s: %w", s.key, err)
	}
	if err := s.put(ctx, s.key, data); err != nil {
		return err
	}
	if _, err := s.blobs.Delete(ctx, staging); err != nil {
		return fmt.Errorf("delete %s: %w", staging, err)
	}
	return nil
}

func (s *Store) put(ctx context.Context, key string, data []byte) error {
	if _, err := s.blobs.Put(ctx, key, bytes.NewReader(data), blob.PutOptions{ContentType: "application/json"}); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Clear implements domain.SnapshotSlot.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range []string{s.key, s.stagingKey()} {
		if _, err := s.blobs.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}
