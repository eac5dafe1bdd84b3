package blob

import (
	"archrepo/internal/infra/blob/fs"
	memorystore "archrepo/internal/infra/blob/memory"
	infraS3 "archrepo/internal/infra/blob/s3"
	"context"
	"fmt"
)

// S3Config re-exports the S3 backend configuration.
type S3Config = infraS3.Config

// Options selects and configures a blob backend.
type Options struct {
	Driver Driver // fs|s3|memory (default fs)
	FSRoot string // directory root when Driver is fs
	S3     S3Config
}

// Open constructs the blob store described by opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	driver := opts.Driver
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		return NewFilesystem(opts.FSRoot)
	case DriverS3:
		return NewS3(ctx, opts.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}

// NewFilesystem constructs a filesystem-backed store rooted at root.
func NewFilesystem(root string) (Store, error) {
	return fs.New(root)
}

// NewMemory returns an in-memory store.
func NewMemory() Store { return memorystore.New() }

// NewS3 constructs an S3-backed store.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) {
	return infraS3.New(ctx, cfg)
}

// NewMockS3ForTests exposes the fake-transport S3 store for cross-package
// tests.
func NewMockS3ForTests() Store { return infraS3.NewMockForTests() }
