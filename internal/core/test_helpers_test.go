package core

import (
	"archrepo/pkg/domain"
	"testing"
	"time"
)

var testClock = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testClock }

func testMetadata(mode domain.GovernanceMode, scope domain.ArchitectureScope) domain.Metadata {
	return domain.Metadata{
		RepositoryName:     "Core Estate",
		OrganizationName:   "Acme",
		ArchitectureScope:  scope,
		ReferenceFramework: domain.FrameworkTOGAF,
		GovernanceMode:     mode,
		LifecycleCoverage:  domain.CoverageAsIs,
		TimeHorizon:        domain.HorizonCurrent,
		CreatedAt:          "2026-01-01T00:00:00Z",
	}
}

// governedObject returns an object carrying every mandatory attribute.
func governedObject(id string, t domain.ObjectType) domain.Object {
	return domain.Object{ID: id, Type: t, Attributes: domain.Attributes{
		"name":       domain.String(id),
		"ownerRole":  domain.String("Architect"),
		"ownerName":  domain.String("Sam Lee"),
		"owningUnit": domain.String("IT"),
	}}
}

func mustSnapshot(t *testing.T, m domain.Model) []byte {
	t.Helper()
	data, err := domain.EncodeSnapshot(m, testClock)
	if err != nil {
		t.Fatalf("encode snapshot: %v", err)
	}
	return data
}

func mustCanonical(t *testing.T, m domain.Model) string {
	t.Helper()
	data, err := domain.Canonical(m)
	if err != nil {
		t.Fatalf("canonical: %v", err)
	}
	return string(data)
}
