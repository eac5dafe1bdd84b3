package core

import (
	"archrepo/pkg/domain"
	"testing"
)

func TestStorageSemanticsDeclaresAllTypes(t *testing.T) {
	table := StorageSemantics()
	want := []string{RelDecomposesTo, RelRealizedBy, RelSupports, RelDependsOn, RelIntegratesWith, RelHostedOn, RelDelivers, RelComposedOf, RelImpacts}
	got := table.Types()
	if len(got) != len(want) {
		t.Fatalf("expected %d types, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("type %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestSemanticsAllows(t *testing.T) {
	table := StorageSemantics()
	cases := []struct {
		typ            string
		source, target domain.Collection
		want           bool
	}{
		{RelDependsOn, domain.CollectionApplication, domain.CollectionApplication, true},
		{RelDependsOn, domain.CollectionApplication, domain.CollectionTechnology, false},
		{RelHostedOn, domain.CollectionApplication, domain.CollectionTechnology, true},
		{RelRealizedBy, domain.CollectionCapability, domain.CollectionBusinessProcess, true},
		{RelDelivers, domain.CollectionProject, domain.CollectionTechnology, true},
		{RelComposedOf, domain.CollectionProject, domain.CollectionProgramme, false},
		{"OWNS", domain.CollectionApplication, domain.CollectionApplication, false},
	}
	for _, tc := range cases {
		if got := table.Allows(tc.typ, tc.source, tc.target); got != tc.want {
			t.Fatalf("%s %s->%s: expected %v", tc.typ, tc.source, tc.target, tc.want)
		}
	}
}

func TestEndpointRuleIsCopied(t *testing.T) {
	rule, ok := StorageSemantics().EndpointRule(RelDelivers)
	if !ok {
		t.Fatalf("expected DELIVERS rule")
	}
	rule.AllowedFrom[0] = domain.CollectionTechnology
	again, _ := StorageSemantics().EndpointRule(RelDelivers)
	if again.AllowedFrom[0] != domain.CollectionProgramme {
		t.Fatalf("rule table must not be mutable through lookups")
	}
}

func TestParseSemanticsYAMLRejectsBadTables(t *testing.T) {
	bad := map[string]string{
		"duplicate": "relationships:\n  - {type: A, from: [Application], to: [Application]}\n  - {type: A, from: [Application], to: [Application]}\n",
		"unknown":   "relationships:\n  - {type: A, from: [Server], to: [Application]}\n",
		"empty":     "relationships:\n  - {type: A, from: [], to: [Application]}\n",
		"untyped":   "relationships:\n  - {from: [Application], to: [Application]}\n",
		"syntax":    "relationships: [",
	}
	for name, doc := range bad {
		if _, err := ParseSemanticsYAML([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	table, err := ParseSemanticsYAML([]byte("relationships:\n  - {type: OWNS, from: [Application], to: [Technology]}\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !table.Allows("OWNS", domain.CollectionApplication, domain.CollectionTechnology) || table.IsKnownType(RelDependsOn) {
		t.Fatalf("custom table must be independent of the storage table")
	}
}
