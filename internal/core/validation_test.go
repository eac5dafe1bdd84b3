package core

import (
	"archrepo/pkg/domain"
	"context"
	"errors"
	"testing"
	"time"
)

func validationStore(t *testing.T, els ...domain.Element) *ElementStore {
	t.Helper()
	store := NewElementStore()
	for _, el := range els {
		if err := store.AddElement(el.Collection(), el); err != nil {
			t.Fatalf("seed %s: %v", el.Base().ID, err)
		}
	}
	return store
}

func governedElement(c domain.Collection, id string) domain.Element {
	el := domain.NewElement(c, id)
	b := el.Base()
	b.Name = id
	b.OwnerRole = "Architect"
	b.OwnerName = "Sam Lee"
	b.OwningUnit = "IT"
	b.LifecycleStatus = domain.LifecycleActive
	b.ApprovalStatus = domain.ApprovalDraft
	b.ReviewCycleMonths = 12
	return el
}

func fieldsOf(res domain.ScanResult) map[string]int {
	out := make(map[string]int)
	for _, f := range res.Findings {
		out[f.Field]++
	}
	return out
}

func TestMandatoryAttributeScanner(t *testing.T) {
	ctx := context.Background()
	clean := governedElement(domain.CollectionApplication, "app-1")

	bare := domain.NewElement(domain.CollectionTechnology, "tech-1")
	bare.Base().LifecycleStatus = domain.LifecycleRetired
	bare.Base().ApprovalStatus = "Pending"

	dated := governedElement(domain.CollectionProject, "prj-1")
	dated.Base().LifecycleStartDate = "2026-05-01"
	dated.Base().LifecycleEndDate = "2026-01-01"
	dated.Base().LastReviewedAt = "yesterday"
	dated.Base().ReviewCycleMonths = -1

	app := governedElement(domain.CollectionApplication, "app-2").(*domain.Application)
	app.Criticality = "Extreme"

	view := ValidationView{Elements: validationStore(t, clean, bare, dated, app), Coverage: domain.CoverageAsIs}
	res, err := NewMandatoryAttributeScanner().Scan(ctx, view)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	for _, f := range res.Findings {
		if f.SubjectID == "app-1" {
			t.Fatalf("clean element must not produce findings: %+v", f)
		}
		if f.Severity != domain.SeverityError {
			t.Fatalf("mandatory findings are errors: %+v", f)
		}
	}
	fields := fieldsOf(res)
	for _, field := range []string{"name", "ownerRole", "ownerName", "owningUnit", "approvalStatus", "lifecycleEndDate", "lastReviewedAt", "reviewCycleMonths", "criticality"} {
		if fields[field] == 0 {
			t.Fatalf("expected a %s finding, got %v", field, fields)
		}
	}
	if fields["lifecycleStartDate"] != 0 {
		t.Fatalf("As-Is coverage does not require start dates")
	}

	res, _ = NewMandatoryAttributeScanner().Scan(ctx, ValidationView{Elements: validationStore(t, governedElement(domain.CollectionApplication, "a")), Coverage: domain.CoverageToBe})
	if fieldsOf(res)["lifecycleStartDate"] != 1 {
		t.Fatalf("To-Be coverage requires lifecycleStartDate")
	}
}

func TestRelationshipScanner(t *testing.T) {
	ctx := context.Background()
	retired := governedElement(domain.CollectionApplication, "app-old")
	retired.Base().LifecycleEndDate = "2025-01-01"
	store := validationStore(t,
		governedElement(domain.CollectionApplication, "app-1"),
		governedElement(domain.CollectionApplication, "app-2"),
		governedElement(domain.CollectionTechnology, "tech-1"),
		retired,
	)
	rels := []domain.TypedRelationship{
		{ID: "r0", Type: RelDependsOn, SourceElementID: "app-1", TargetElementID: "app-2", DependencyStrength: DependencyHard},
		{ID: "r1", Type: RelDependsOn, SourceElementID: "app-1", TargetElementID: "app-2"},
		{ID: "r2", Type: RelDependsOn, SourceElementID: "app-2", TargetElementID: "app-1", DependencyStrength: "Critical"},
		{ID: "r3", Type: RelHostedOn, SourceElementID: "app-1", TargetElementID: "ghost"},
		{ID: "r4", Type: "OWNS", SourceElementID: "app-1", TargetElementID: "tech-1"},
		{ID: "r5", Type: RelHostedOn, SourceElementID: "tech-1", TargetElementID: "app-1"},
		{ID: "r6", Type: RelIntegratesWith, SourceElementID: "app-1", TargetElementID: "app-old"},
	}
	res, err := NewRelationshipScanner(nil).Scan(ctx, ValidationView{
		Elements:      store,
		Relationships: rels,
		AsOf:          time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	bySubject := make(map[string][]domain.Finding)
	for _, f := range res.Findings {
		bySubject[f.SubjectID] = append(bySubject[f.SubjectID], f)
	}
	if len(bySubject["r0"]) != 0 {
		t.Fatalf("valid relationship flagged: %+v", bySubject["r0"])
	}
	// r1 lacks strength and duplicates r0
	if len(bySubject["r1"]) != 2 || bySubject["r1"][0].Severity != domain.SeverityWarning {
		t.Fatalf("unexpected r1 findings %+v", bySubject["r1"])
	}
	for _, id := range []string{"r2", "r3", "r4", "r5"} {
		if len(bySubject[id]) != 1 || bySubject[id][0].Severity != domain.SeverityError {
			t.Fatalf("expected one error on %s, got %+v", id, bySubject[id])
		}
	}
	if len(bySubject["r6"]) != 1 || bySubject["r6"][0].Field != "target" {
		t.Fatalf("expected retired-target warning, got %+v", bySubject["r6"])
	}
}

func TestValidationEngineRunsScannersInOrder(t *testing.T) {
	engine := NewDefaultValidationEngine()
	bare := governedElement(domain.CollectionApplication, "a")
	b := bare.Base()
	b.Name, b.OwnerRole, b.OwnerName, b.OwningUnit = "", "", "", ""
	results, err := engine.Run(context.Background(), ValidationView{
		Elements:      validationStore(t, bare),
		Relationships: []domain.TypedRelationship{{Type: "OWNS", SourceElementID: "a", TargetElementID: "a"}},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 2 || results[0].Scanner != ScanMandatoryAttributes || results[1].Scanner != ScanRelationships {
		t.Fatalf("unexpected results %+v", results)
	}
	combined := Combined(results)
	if combined.Count(domain.SeverityError) != 5 {
		t.Fatalf("expected 4 mandatory errors and one relationship error, got %d", combined.Count(domain.SeverityError))
	}
}

func TestValidationEngineHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDefaultValidationEngine().Run(ctx, ValidationView{Elements: NewElementStore()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}
