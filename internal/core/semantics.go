package core

import (
	"archrepo/pkg/domain"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Relationship types declared by the storage-time semantics table.
const (
	RelDecomposesTo   = "DECOMPOSES_TO"
	RelRealizedBy     = "REALIZED_BY"
	RelSupports       = "SUPPORTS"
	RelDependsOn      = "DEPENDS_ON"
	RelIntegratesWith = "INTEGRATES_WITH"
	RelHostedOn       = "HOSTED_ON"
	RelDelivers       = "DELIVERS"
	RelComposedOf     = "COMPOSED_OF"
	RelImpacts        = "IMPACTS"
)

//go:embed semantics_storage.yaml
var storageSemanticsYAML []byte

// EndpointRule lists the element collections allowed at each end of a
// relationship type.
type EndpointRule struct {
	Type        string              `yaml:"type"`
	AllowedFrom []domain.Collection `yaml:"from"`
	AllowedTo   []domain.Collection `yaml:"to"`
}

// AllowsSource reports whether c may appear as the source.
func (r EndpointRule) AllowsSource(c domain.Collection) bool {
	return containsCollection(r.AllowedFrom, c)
}

// AllowsTarget reports whether c may appear as the target.
func (r EndpointRule) AllowsTarget(c domain.Collection) bool {
	return containsCollection(r.AllowedTo, c)
}

func (r EndpointRule) clone() EndpointRule {
	cp := r
	cp.AllowedFrom = append([]domain.Collection(nil), r.AllowedFrom...)
	cp.AllowedTo = append([]domain.Collection(nil), r.AllowedTo...)
	return cp
}

func containsCollection(values []domain.Collection, c domain.Collection) bool {
	for _, v := range values {
		if v == c {
			return true
		}
	}
	return false
}

// SemanticsTable is an immutable set of endpoint rules. Several tables may
// coexist; each checker consults exactly one.
type SemanticsTable struct {
	rules map[string]EndpointRule
	order []string
}

// NewSemanticsTable validates rules and builds a table from them.
func NewSemanticsTable(rules []EndpointRule) (*SemanticsTable, error) {
	t := &SemanticsTable{rules: make(map[string]EndpointRule, len(rules))}
	for _, rule := range rules {
		if rule.Type == "" {
			return nil, fmt.Errorf("semantics: rule without type")
		}
		if _, dup := t.rules[rule.Type]; dup {
			return nil, fmt.Errorf("semantics: duplicate rule %s", rule.Type)
		}
		if len(rule.AllowedFrom) == 0 || len(rule.AllowedTo) == 0 {
			return nil, fmt.Errorf("semantics: rule %s needs source and target types", rule.Type)
		}
		for _, c := range append(append([]domain.Collection(nil), rule.AllowedFrom...), rule.AllowedTo...) {
			if !c.Valid() {
				return nil, fmt.Errorf("semantics: rule %s references unknown element type %s", rule.Type, c)
			}
		}
		t.rules[rule.Type] = rule.clone()
		t.order = append(t.order, rule.Type)
	}
	return t, nil
}

// ParseSemanticsYAML decodes a `relationships:` rule document.
func ParseSemanticsYAML(data []byte) (*SemanticsTable, error) {
	var doc struct {
		Relationships []EndpointRule `yaml:"relationships"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("semantics: decode: %w", err)
	}
	return NewSemanticsTable(doc.Relationships)
}

var storageSemantics = mustParseSemantics(storageSemanticsYAML)

func mustParseSemantics(data []byte) *SemanticsTable {
	t, err := ParseSemanticsYAML(data)
	if err != nil {
		panic(err)
	}
	return t
}

// StorageSemantics returns the process-wide storage-time rule table.
func StorageSemantics() *SemanticsTable { return storageSemantics }

// EndpointRule returns the rule for relationship type typ.
func (t *SemanticsTable) EndpointRule(typ string) (EndpointRule, bool) {
	rule, ok := t.rules[typ]
	if !ok {
		return EndpointRule{}, false
	}
	return rule.clone(), true
}

// IsKnownType reports whether typ has a rule.
func (t *SemanticsTable) IsKnownType(typ string) bool {
	_, ok := t.rules[typ]
	return ok
}

// Types lists the declared relationship types in declaration order.
func (t *SemanticsTable) Types() []string {
	return append([]string(nil), t.order...)
}

// Allows reports whether typ permits source -> target.
func (t *SemanticsTable) Allows(typ string, source, target domain.Collection) bool {
	rule, ok := t.rules[typ]
	return ok && rule.AllowsSource(source) && rule.AllowsTarget(target)
}
