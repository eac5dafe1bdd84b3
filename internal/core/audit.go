package core

import (
	"archrepo/internal/blob"
	"archrepo/pkg/domain"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"sync"
	"time"
)

// GovernanceLogEntry records one gate decision that blocked or warned on a
// save.
type GovernanceLogEntry struct {
	ID                string                   `json:"id"`
	Type              string                   `json:"type"`
	GovernanceMode    domain.GovernanceMode    `json:"governanceMode"`
	RepositoryName    string                   `json:"repositoryName"`
	ArchitectureScope domain.ArchitectureScope `json:"architectureScope"`
	Summary           GovernanceDebtSummary    `json:"summary"`
	Highlights        []string                 `json:"highlights"`
	RecordedAt        time.Time                `json:"recordedAt"`
}

// AuditLog receives governance log entries.
type AuditLog interface {
	Append(ctx context.Context, entry GovernanceLogEntry) error
}

type discardAuditLog struct{}

func (discardAuditLog) Append(context.Context, GovernanceLogEntry) error { return nil }

// MemoryAuditLog keeps entries in process memory.
type MemoryAuditLog struct {
	mu      sync.Mutex
	entries []GovernanceLogEntry
}

// NewMemoryAuditLog returns an empty in-memory log.
func NewMemoryAuditLog() *MemoryAuditLog { return &MemoryAuditLog{} }

// Append implements AuditLog.
func (l *MemoryAuditLog) Append(_ context.Context, entry GovernanceLogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

// Entries returns a copy of the recorded entries in append order.
func (l *MemoryAuditLog) Entries() []GovernanceLogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]GovernanceLogEntry(nil), l.entries...)
}

// CountType returns how many entries have type kind.
func (l *MemoryAuditLog) CountType(kind string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.Type == kind {
			n++
		}
	}
	return n
}

// DefaultAuditPrefix namespaces audit objects inside a blob store.
const DefaultAuditPrefix = "audit/"

// BlobAuditLog writes each entry as its own JSON object under prefix. Keys
// sort chronologically.
type BlobAuditLog struct {
	store  blob.Store
	prefix string
}

// NewBlobAuditLog returns a log writing into store under prefix.
func NewBlobAuditLog(store blob.Store, prefix string) *BlobAuditLog {
	if prefix == "" {
		prefix = DefaultAuditPrefix
	}
	return &BlobAuditLog{store: store, prefix: prefix}
}

// Append implements AuditLog.
func (l *BlobAuditLog) Append(ctx context.Context, entry GovernanceLogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode audit entry: %w", err)
	}
	key := path.Join(l.prefix, entry.RecordedAt.UTC().Format("20060102T150405.000000000Z")+"-"+entry.ID+".json")
	_, err = l.store.Put(ctx, key, bytes.NewReader(data), blob.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"type": entry.Type, "mode": string(entry.GovernanceMode)},
	})
	if err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}
	return nil
}

// Entries reads back every entry in key order.
func (l *BlobAuditLog) Entries(ctx context.Context) ([]GovernanceLogEntry, error) {
	infos, err := l.store.List(ctx, l.prefix)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	out := make([]GovernanceLogEntry, 0, len(infos))
	for _, info := range infos {
		data, err := blob.ReadAll(ctx, l.store, info.Key)
		if err != nil {
			return nil, err
		}
		var entry GovernanceLogEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return nil, fmt.Errorf("decode %s: %w", info.Key, err)
		}
		out = append(out, entry)
	}
	return out, nil
}
