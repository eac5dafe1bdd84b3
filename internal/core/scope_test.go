package core

import (
	"archrepo/pkg/domain"
	"errors"
	"strings"
	"testing"
)

func TestScopePolicyTable(t *testing.T) {
	writable := map[domain.ArchitectureScope][]domain.ObjectType{
		domain.ScopeProgramme:    {domain.ObjectProgramme, domain.ObjectProject},
		domain.ScopeBusinessUnit: {domain.ObjectCapabilityCategory, domain.ObjectCapability, domain.ObjectSubCapability, domain.ObjectBusinessProcess, domain.ObjectApplication},
		domain.ScopeDomain:       {domain.ObjectApplication, domain.ObjectTechnology},
		domain.ScopeEnterprise:   domain.ObjectTypes(),
	}
	for scope, allowed := range writable {
		set := make(map[domain.ObjectType]bool, len(allowed))
		for _, typ := range allowed {
			set[typ] = true
		}
		for _, typ := range domain.ObjectTypes() {
			if got := IsWritable(scope, typ); got != set[typ] {
				t.Fatalf("%s/%s: expected writable=%v", scope, typ, set[typ])
			}
			reason, readOnly := ReadOnlyReason(scope, typ)
			if readOnly == set[typ] {
				t.Fatalf("%s/%s: reason disagrees with IsWritable", scope, typ)
			}
			if readOnly && !strings.Contains(reason, string(typ)) {
				t.Fatalf("%s/%s: reason must name the type: %q", scope, typ, reason)
			}
		}
	}
}

func TestCheckScope(t *testing.T) {
	before := domain.Model{Objects: []domain.Object{
		governedObject("tech-1", domain.ObjectTechnology),
		governedObject("app-1", domain.ObjectApplication),
	}}

	edited := before.Clone()
	edited.Objects[0].Attributes["version"] = domain.String("2")
	err := CheckScope(domain.ScopeBusinessUnit, before, edited)
	var violation *domain.ScopeViolationError
	if !errors.As(err, &violation) || len(violation.Types) != 1 || violation.Types[0] != domain.ObjectTechnology {
		t.Fatalf("expected Technology violation, got %v", err)
	}

	retyped := before.Clone()
	retyped.Objects[1].Type = domain.ObjectTechnology
	if err := CheckScope(domain.ScopeBusinessUnit, before, retyped); err == nil {
		t.Fatalf("changing an Application into Technology touches Technology")
	}

	removed := before.Clone()
	removed.Objects = removed.Objects[1:]
	if err := CheckScope(domain.ScopeBusinessUnit, before, removed); err == nil {
		t.Fatalf("removing Technology must be rejected")
	}

	appOnly := before.Clone()
	appOnly.Objects[1].Attributes["vendor"] = domain.String("Acme")
	appOnly.Relationships = append(appOnly.Relationships, domain.Relationship{FromID: "app-1", ToID: "tech-1", Type: RelHostedOn})
	if err := CheckScope(domain.ScopeBusinessUnit, before, appOnly); err != nil {
		t.Fatalf("Application edits are allowed: %v", err)
	}
	if got := TouchedTypes(before, before.Clone()); len(got) != 0 {
		t.Fatalf("identical models touch nothing, got %v", got)
	}
}
