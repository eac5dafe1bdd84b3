package domain

import "context"

// SnapshotSlot is a single named persistence slot holding the latest
// serialized repository snapshot. Backends surface exhausted storage as
// ErrStorageQuotaExceeded.
type SnapshotSlot interface {
	// Load returns the stored payload and true, or false when the slot is
	// empty.
	Load(ctx context.Context) ([]byte, bool, error)
	// Save replaces the slot content.
	Save(ctx context.Context, data []byte) error
	// Clear empties the slot. Clearing an empty slot is not an error.
	Clear(ctx context.Context) error
}
