// Package memory provides an in-memory snapshot slot used for tests and
// ephemeral sessions.
package memory

import (
	"archrepo/pkg/domain"
	"context"
	"fmt"
	"sync"
)

// Compile-time contract assertion.
var _ domain.SnapshotSlot = (*Store)(nil)

// Store keeps named slot payloads in process memory. A positive quota caps
// the total bytes held across all slots.
type Store struct {
	mu    sync.RWMutex
	slots map[string][]byte
	quota int
	saves int
}

// NewStore returns an unbounded in-memory store.
func NewStore() *Store {
	return &Store{slots: make(map[string][]byte)}
}

// NewStoreWithQuota returns a store refusing writes that would exceed quota
// bytes in total.
func NewStoreWithQuota(quota int) *Store {
	s := NewStore()
	s.quota = quota
	return s
}

// Slot returns the slot called name.
func (s *Store) Slot(name string) *Slot {
	return &Slot{store: s, name: name}
}

// Saves returns the number of successful writes across all slots.
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func (s *Store) load(name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.slots[name]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

func (s *Store) save(name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quota > 0 {
		used := len(data)
		for k, v := range s.slots {
			if k != name {
				used += len(v)
			}
		}
		if used > s.quota {
			return fmt.Errorf("save %s (%d bytes, quota %d): %w", name, len(data), s.quota, domain.ErrStorageQuotaExceeded)
		}
	}
	s.slots[name] = append([]byte(nil), data...)
	s.saves++
	return nil
}

func (s *Store) clear(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, name)
}

// Slot is one named entry of a Store.
type Slot struct {
	store *Store
	name  string
}

// Name returns the slot name.
func (sl *Slot) Name() string { return sl.name }

// Load implements domain.SnapshotSlot.
func (sl *Slot) Load(ctx context.Context) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	data, ok := sl.store.load(sl.name)
	return data, ok, nil
}

// Save implements domain.SnapshotSlot.
func (sl *Slot) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return sl.store.save(sl.name, data)
}

// Clear implements domain.SnapshotSlot.
func (sl *Slot) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sl.store.clear(sl.name)
	return nil
}

var _ domain.SnapshotSlot = (*Slot)(nil)

// DefaultSlotName names the slot the Store's own Load, Save and Clear use.
const DefaultSlotName = "repository"

// Load implements domain.SnapshotSlot on DefaultSlotName.
func (s *Store) Load(ctx context.Context) ([]byte, bool, error) {
	return s.Slot(DefaultSlotName).Load(ctx)
}

// Save implements domain.SnapshotSlot on DefaultSlotName.
func (s *Store) Save(ctx context.Context, data []byte) error {
	return s.Slot(DefaultSlotName).Save(ctx, data)
}

// Clear implements domain.SnapshotSlot on DefaultSlotName.
func (s *Store) Clear(ctx context.Context) error {
	return s.Slot(DefaultSlotName).Clear(ctx)
}
