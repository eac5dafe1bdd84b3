// Package blob re-exports core blob abstractions and selects a backend from
// configuration.
package blob

import (
	"archrepo/internal/blob/core"
	"context"
)

type (
	// Driver identifies a blob backend driver.
	Driver = core.Driver
	// PutOptions configures a blob write.
	PutOptions = core.PutOptions
	// Info describes stored blob metadata.
	Info = core.Info
	// Store is the interface for blob storage backends.
	Store = core.Store
)

const (
	// DriverFilesystem is the local filesystem driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3-compatible driver.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-memory driver.
	DriverMemory = core.DriverMemory
)

var (
	// ErrNotFound reports a missing key.
	ErrNotFound = core.ErrNotFound
	// ErrExists reports a Put against an existing key.
	ErrExists = core.ErrExists
)

// ReadAll fetches the full content stored at key.
func ReadAll(ctx context.Context, s Store, key string) ([]byte, error) {
	return core.ReadAll(ctx, s, key)
}
