package cli

import (
	"archrepo/internal/blob"
	"archrepo/internal/core"
	"context"
	"fmt"
)

func (a *app) blobOptions() blob.Options {
	b := a.cfg.Storage.Blob
	return blob.Options{
		Driver: blob.Driver(b.Driver),
		FSRoot: b.FSRoot,
		S3: blob.S3Config{
			Region:          b.S3.Region,
			Bucket:          b.S3.Bucket,
			Prefix:          b.S3.Prefix,
			Endpoint:        b.S3.Endpoint,
			AccessKeyID:     b.S3.AccessKeyID,
			SecretAccessKey: b.S3.SecretAccessKey,
			PathStyle:       b.S3.PathStyle,
		},
	}
}

func (a *app) storageOptions() core.StorageOptions {
	s := a.cfg.Storage
	return core.StorageOptions{
		Driver:      core.StorageDriver(s.Driver),
		SlotName:    s.SlotName,
		SQLitePath:  s.SQLitePath,
		PostgresDSN: s.PostgresDSN,
		Blob:        a.blobOptions(),
	}
}

func (a *app) auditLog(ctx context.Context) (core.AuditLog, error) {
	switch a.cfg.Audit.Driver {
	case "memory":
		return core.NewMemoryAuditLog(), nil
	case "blob":
		store, err := blob.Open(ctx, a.blobOptions())
		if err != nil {
			return nil, fmt.Errorf("open audit store: %w", err)
		}
		return core.NewBlobAuditLog(store, a.cfg.Audit.Prefix), nil
	}
	return nil, nil
}

// openSession builds a session. With persist set it is bound to the
// configured slot and audit log; the returned close function is never nil.
func (a *app) openSession(ctx context.Context, persist bool) (*core.Session, func() error, error) {
	opts := core.SessionOptions{
		Logger:  a.logger,
		Metrics: a.metrics,
	}
	closeFn := func() error { return nil }
	if persist {
		slot, closer, err := core.OpenSlot(ctx, a.storageOptions())
		if err != nil {
			return nil, closeFn, fmt.Errorf("open storage: %w", err)
		}
		audit, err := a.auditLog(ctx)
		if err != nil {
			_ = closer()
			return nil, closeFn, err
		}
		opts.Slot, opts.AuditLog, closeFn = slot, audit, closer
	}
	return core.NewSession(opts), closeFn, nil
}
