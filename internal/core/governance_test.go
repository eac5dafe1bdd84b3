package core

import (
	"archrepo/pkg/domain"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestCollectionForCollapsesCapabilities(t *testing.T) {
	for _, typ := range []domain.ObjectType{domain.ObjectCapabilityCategory, domain.ObjectCapability, domain.ObjectSubCapability} {
		if c, ok := CollectionFor(typ); !ok || c != domain.CollectionCapability {
			t.Fatalf("%s should map to Capability, got %s", typ, c)
		}
	}
	if _, ok := CollectionFor("Server"); ok {
		t.Fatalf("unmapped types report false")
	}
}

func TestProjectElementDefaults(t *testing.T) {
	obj := domain.Object{ID: "sub-1", Type: domain.ObjectSubCapability, Attributes: domain.Attributes{
		"name":              domain.String(" Billing "),
		"reviewCycleMonths": domain.String("six"),
	}}
	el := ProjectElement(obj, domain.CollectionCapability)
	base := el.Base()
	if base.Name != "Billing" || base.LifecycleStatus != DefaultLifecycleStatus || base.ApprovalStatus != DefaultApprovalStatus {
		t.Fatalf("unexpected projection %+v", base)
	}
	if base.ReviewCycleMonths != -1 {
		t.Fatalf("unparseable review cycle must be flagged, got %d", base.ReviewCycleMonths)
	}
	if capability := el.(*domain.Capability); capability.Level != string(domain.ObjectSubCapability) {
		t.Fatalf("level should record the original kind, got %s", capability.Level)
	}
	if ProjectElement(obj, "Server") != nil {
		t.Fatalf("undeclared collection projects to nil")
	}
}

func TestProjectRelationshipStrengthOnlyForDependsOn(t *testing.T) {
	attrs := domain.Attributes{domain.AttrDependencyStrength: domain.String(DependencySoft)}
	if got := ProjectRelationship(domain.Relationship{FromID: "a", ToID: "b", Type: RelDependsOn, Attributes: attrs}); got.DependencyStrength != DependencySoft {
		t.Fatalf("DEPENDS_ON carries strength")
	}
	if got := ProjectRelationship(domain.Relationship{FromID: "a", ToID: "b", Type: RelIntegratesWith, Attributes: attrs}); got.DependencyStrength != "" {
		t.Fatalf("only DEPENDS_ON carries strength")
	}
}

func TestBuildDebt(t *testing.T) {
	missingOwner := governedObject("app-2", domain.ObjectApplication)
	delete(missingOwner.Attributes, "ownerRole")
	deleted := governedObject("app-3", domain.ObjectApplication)
	delete(deleted.Attributes, "name")
	deleted.Attributes[domain.AttrDeleted] = domain.Bool(true)

	model := domain.Model{
		Metadata: testMetadata(domain.GovernanceStrict, domain.ScopeEnterprise),
		Objects: []domain.Object{
			governedObject("app-1", domain.ObjectApplication),
			missingOwner,
			deleted,
			governedObject("tech-1", domain.ObjectTechnology),
			governedObject("srv-1", "Server"),
		},
		Relationships: []domain.Relationship{
			{FromID: "app-1", ToID: "tech-1", Type: RelDependsOn},
			{FromID: "app-1", ToID: "tech-1", Type: RelHostedOn},
			{FromID: "app-1", ToID: "app-2", Type: RelIntegratesWith},
			{FromID: "app-1", ToID: "app-3", Type: RelIntegratesWith},
		},
	}
	debt := BuildDebt(model, testClock, DebtOptions{})
	s := debt.Summary
	if s.MandatoryFindingCount != 2 {
		t.Fatalf("expected ownerRole finding plus unmapped type, got %+v", debt.Mandatory.Findings)
	}
	if s.InvalidRelationshipInsertCount != 1 || s.RelationshipErrorCount != 0 || s.RelationshipWarningCount != 0 {
		t.Fatalf("unexpected relationship counts %+v", s)
	}
	var mismatch *domain.EndpointTypeMismatchError
	if !errors.As(debt.InvalidRelationshipInserts[0].Err, &mismatch) {
		t.Fatalf("expected endpoint mismatch, got %v", debt.InvalidRelationshipInserts[0].Err)
	}
	if s.Total != 3 || s.LifecycleTagMissingCount != 0 {
		t.Fatalf("unexpected total %+v", s)
	}
	if len(debt.ElementsByType(domain.CollectionApplication)) != 2 {
		t.Fatalf("deleted objects are not projected")
	}
	if len(debt.TypedRelationships()) != 2 {
		t.Fatalf("expected two stored relationships, got %d", len(debt.TypedRelationships()))
	}
	highlights := debt.Highlights(2)
	if len(highlights) != 2 || !strings.Contains(strings.Join(highlights, "\n"), "ownerRole") {
		t.Fatalf("unexpected highlights %v", highlights)
	}
	if debt.Summary.Fingerprint() != (DebtFingerprint{2, 0, 0, 1, 0}) {
		t.Fatalf("unexpected fingerprint %v", debt.Summary.Fingerprint())
	}
}

func TestBuildDebtLifecycleTags(t *testing.T) {
	tagged := governedObject("app-1", domain.ObjectApplication)
	tagged.Attributes[domain.AttrLifecycleState] = domain.String(string(domain.CoverageToBe))
	tagged.Attributes["lifecycleStartDate"] = domain.String("2026-01-01")
	untagged := governedObject("app-2", domain.ObjectApplication)
	untagged.Attributes["lifecycleStartDate"] = domain.String("2026-01-01")

	model := domain.Model{Objects: []domain.Object{tagged, untagged}}
	debt := BuildDebt(model, testClock, DebtOptions{LifecycleCoverage: domain.CoverageBoth})
	if debt.Summary.LifecycleTagMissingCount != 1 || debt.LifecycleTagMissing[0] != "app-2" {
		t.Fatalf("expected app-2 untagged, got %v", debt.LifecycleTagMissing)
	}
	if debt.Summary.Total != 1 {
		t.Fatalf("unexpected total %+v", debt.Summary)
	}
	if BuildDebt(model, testClock, DebtOptions{LifecycleCoverage: domain.CoverageToBe}).Summary.Total != 0 {
		t.Fatalf("lifecycle tags are only required for Both coverage")
	}
}

func TestBuildDebtContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := BuildDebtContext(ctx, domain.Model{}, testClock, DebtOptions{}); err == nil {
		t.Fatalf("expected cancellation error")
	}
}
