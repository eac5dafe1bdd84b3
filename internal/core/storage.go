package core

import (
	"archrepo/internal/blob"
	"archrepo/internal/infra/persistence/blobslot"
	"archrepo/internal/infra/persistence/memory"
	"archrepo/internal/infra/persistence/postgres"
	"archrepo/internal/infra/persistence/sqlite"
	"archrepo/pkg/domain"
	"context"
	"fmt"
)

// StorageDriver identifies a concrete snapshot slot implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
	StorageBlob     StorageDriver = "blob"     // object in a blob store (fs, memory, s3)
)

// StorageOptions selects the persistence slot. Driver defaults to sqlite.
type StorageOptions struct {
	Driver      StorageDriver
	SlotName    string
	SQLitePath  string
	PostgresDSN string
	Blob        blob.Options
}

// OpenSlot opens the slot described by opts. The returned close function
// releases the backend and is never nil.
func OpenSlot(ctx context.Context, opts StorageOptions) (domain.SnapshotSlot, func() error, error) {
	noop := func() error { return nil }
	driver := opts.Driver
	if driver == "" {
		driver = StorageSQLite
	}
	switch driver {
	case StorageMemory:
		return memory.NewStore().Slot(slotName(opts.SlotName)), noop, nil
	case StorageSQLite:
		store, err := sqlite.NewStore(opts.SQLitePath, opts.SlotName)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	case StoragePostgres:
		if opts.PostgresDSN == "" {
			return nil, noop, fmt.Errorf("postgres driver requires a DSN")
		}
		store, err := postgres.NewStore(ctx, opts.PostgresDSN, opts.SlotName)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	case StorageBlob:
		blobs, err := blob.Open(ctx, opts.Blob)
		if err != nil {
			return nil, noop, err
		}
		slot, err := blobslot.New(blobs, opts.SlotName)
		if err != nil {
			return nil, noop, err
		}
		return slot, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage driver %s", driver)
	}
}

func slotName(name string) string {
	if name == "" {
		return memory.DefaultSlotName
	}
	return name
}
