package core

import (
	"archrepo/internal/blob"
	"archrepo/pkg/domain"
	"context"
	"strings"
	"testing"
	"time"
)

func TestBlobAuditLogRoundTrip(t *testing.T) {
	ctx := context.Background()
	fsStore, err := blob.NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("fs: %v", err)
	}
	for _, store := range []blob.Store{fsStore, blob.NewMemory(), blob.NewMockS3ForTests()} {
		t.Run(string(store.Driver()), func(t *testing.T) {
			log := NewBlobAuditLog(store, "")
			base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
			for i, kind := range []string{LogSaveWarned, LogSaveBlocked} {
				entry := GovernanceLogEntry{
					ID:             "e" + string(rune('1'+i)),
					Type:           kind,
					GovernanceMode: domain.GovernanceStrict,
					RepositoryName: "Core Estate",
					Summary:        GovernanceDebtSummary{MandatoryFindingCount: i + 1, Total: i + 1},
					Highlights:     []string{"app-1 is missing ownerRole"},
					RecordedAt:     base.Add(time.Duration(i) * time.Second),
				}
				if err := log.Append(ctx, entry); err != nil {
					t.Fatalf("append: %v", err)
				}
			}
			infos, err := store.List(ctx, DefaultAuditPrefix)
			if err != nil || len(infos) != 2 {
				t.Fatalf("expected one object per entry, got %d (%v)", len(infos), err)
			}
			for _, info := range infos {
				if !strings.HasPrefix(info.Key, "audit/20260201T1200") || !strings.HasSuffix(info.Key, ".json") {
					t.Fatalf("unexpected key %s", info.Key)
				}
			}
			entries, err := log.Entries(ctx)
			if err != nil {
				t.Fatalf("entries: %v", err)
			}
			if len(entries) != 2 || entries[0].Type != LogSaveWarned || entries[1].Summary.Total != 2 {
				t.Fatalf("unexpected entries %+v", entries)
			}
			if !entries[1].RecordedAt.Equal(base.Add(time.Second)) {
				t.Fatalf("recordedAt not preserved: %v", entries[1].RecordedAt)
			}
		})
	}
}

func TestSessionWritesBlobAudit(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemory()
	log := NewBlobAuditLog(store, "governance/")
	s := newTestSession(t, nil, log)
	app := governedObject("app-1", domain.ObjectApplication)
	delete(app.Attributes, "owningUnit")
	model := domain.Model{Metadata: testMetadata(domain.GovernanceStrict, domain.ScopeEnterprise), Objects: []domain.Object{app}}
	if err := s.LoadSnapshot(ctx, mustSnapshot(t, model)); err != nil {
		t.Fatalf("load: %v", err)
	}
	entries, err := log.Entries(ctx)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one entry, got %d (%v)", len(entries), err)
	}
	if entries[0].Type != LogSaveBlocked || !entries[0].RecordedAt.Equal(testClock) {
		t.Fatalf("unexpected entry %+v", entries[0])
	}
}
