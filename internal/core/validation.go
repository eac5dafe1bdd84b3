package core

import (
	"archrepo/pkg/domain"
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Scanner names.
const (
	ScanMandatoryAttributes = "mandatory_attributes"
	ScanRelationships       = "relationship_semantics"
)

// ValidationView is the read-only input to a validation pass. Relationships
// are given as a plain slice so stores built without RelationshipStore can
// still be checked.
type ValidationView struct {
	Elements      *ElementStore
	Relationships []domain.TypedRelationship
	Coverage      domain.LifecycleCoverage
	AsOf          time.Time
}

// Scanner is a stateless, read-only validation pass.
type Scanner interface {
	Name() string
	Scan(ctx context.Context, view ValidationView) (domain.ScanResult, error)
}

// ScannerResult pairs a scanner with its findings.
type ScannerResult struct {
	Scanner string
	Result  domain.ScanResult
}

// ValidationEngine runs registered scanners. Scanners do not mutate the view
// so they run concurrently.
type ValidationEngine struct {
	scanners []Scanner
}

// NewValidationEngine constructs an engine with no scanners.
func NewValidationEngine() *ValidationEngine {
	return &ValidationEngine{}
}

// NewDefaultValidationEngine registers the mandatory-attribute and
// relationship scanners against the storage semantics table.
func NewDefaultValidationEngine() *ValidationEngine {
	engine := NewValidationEngine()
	engine.Register(NewMandatoryAttributeScanner())
	engine.Register(NewRelationshipScanner(StorageSemantics()))
	return engine
}

// Register appends a scanner.
func (e *ValidationEngine) Register(s Scanner) {
	e.scanners = append(e.scanners, s)
}

// Run executes every scanner and returns results in registration order.
func (e *ValidationEngine) Run(ctx context.Context, view ValidationView) ([]ScannerResult, error) {
	results := make([]ScannerResult, len(e.scanners))
	g, gctx := errgroup.WithContext(ctx)
	for i, scanner := range e.scanners {
		g.Go(func() error {
			res, err := scanner.Scan(gctx, view)
			if err != nil {
				return fmt.Errorf("%s: %w", scanner.Name(), err)
			}
			results[i] = ScannerResult{Scanner: scanner.Name(), Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Combined merges scanner results in order.
func Combined(results []ScannerResult) domain.ScanResult {
	var out domain.ScanResult
	for _, r := range results {
		out.Merge(r.Result)
	}
	return out
}

// NewMandatoryAttributeScanner checks governed attributes on every element.
func NewMandatoryAttributeScanner() Scanner { return mandatoryAttributeScanner{} }

type mandatoryAttributeScanner struct{}

func (mandatoryAttributeScanner) Name() string { return ScanMandatoryAttributes }

func (mandatoryAttributeScanner) Scan(ctx context.Context, view ValidationView) (domain.ScanResult, error) {
	var res domain.ScanResult
	if view.Elements == nil {
		return res, nil
	}
	view.Elements.each(func(el domain.Element) {
		checkMandatory(&res, el, view.Coverage)
	})
	return res, ctx.Err()
}

var applicationCriticality = map[string]struct{}{"High": {}, "Medium": {}, "Low": {}}

func checkMandatory(res *domain.ScanResult, el domain.Element, coverage domain.LifecycleCoverage) {
	base := el.Base()
	fail := func(field, message string) {
		res.Add(domain.Finding{
			Rule:      ScanMandatoryAttributes,
			SubjectID: base.ID,
			Field:     field,
			Message:   message,
			Severity:  domain.SeverityError,
		})
	}
	label := fmt.Sprintf("%s %s", base.ElementType, base.ID)

	required := []struct {
		field string
		value string
	}{
		{"name", base.Name},
		{"ownerRole", base.OwnerRole},
		{"ownerName", base.OwnerName},
		{"owningUnit", base.OwningUnit},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			fail(r.field, fmt.Sprintf("%s is missing %s", label, r.field))
		}
	}
	if !base.LifecycleStatus.Valid() {
		fail("lifecycleStatus", fmt.Sprintf("%s has unsupported lifecycleStatus %q", label, base.LifecycleStatus))
	}
	if !base.ApprovalStatus.Valid() {
		fail("approvalStatus", fmt.Sprintf("%s has unsupported approvalStatus %q", label, base.ApprovalStatus))
	}

	start, startOK := parseDate(base.LifecycleStartDate)
	end, endOK := parseDate(base.LifecycleEndDate)
	switch {
	case base.LifecycleStartDate == "":
		if coverage == domain.CoverageToBe || coverage == domain.CoverageBoth {
			fail("lifecycleStartDate", fmt.Sprintf("%s is missing lifecycleStartDate required by %s coverage", label, coverage))
		}
	case !startOK:
		fail("lifecycleStartDate", fmt.Sprintf("%s has malformed lifecycleStartDate %q", label, base.LifecycleStartDate))
	}
	switch {
	case base.LifecycleEndDate == "":
		if base.LifecycleStatus == domain.LifecycleRetired {
			fail("lifecycleEndDate", fmt.Sprintf("%s is Retired but has no lifecycleEndDate", label))
		}
	case !endOK:
		fail("lifecycleEndDate", fmt.Sprintf("%s has malformed lifecycleEndDate %q", label, base.LifecycleEndDate))
	}
	if startOK && endOK && end.Before(start) {
		fail("lifecycleEndDate", fmt.Sprintf("%s ends before it starts", label))
	}
	if base.LastReviewedAt != "" {
		if _, ok := parseDate(base.LastReviewedAt); !ok {
			fail("lastReviewedAt", fmt.Sprintf("%s has malformed lastReviewedAt %q", label, base.LastReviewedAt))
		}
	}
	if base.ReviewCycleMonths < 0 {
		fail("reviewCycleMonths", fmt.Sprintf("%s has invalid reviewCycleMonths", label))
	}
	if app, ok := el.(*domain.Application); ok && app.Criticality != "" {
		if _, known := applicationCriticality[app.Criticality]; !known {
			fail("criticality", fmt.Sprintf("%s has unsupported criticality %q", label, app.Criticality))
		}
	}
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Dependency strength classifications accepted on DEPENDS_ON.
const (
	DependencyHard = "Hard"
	DependencySoft = "Soft"
)

// NewRelationshipScanner re-validates relationships against table and checks
// relationship-specific attribute and state constraints.
func NewRelationshipScanner(table *SemanticsTable) Scanner {
	if table == nil {
		table = StorageSemantics()
	}
	return relationshipScanner{table: table}
}

type relationshipScanner struct {
	table *SemanticsTable
}

func (relationshipScanner) Name() string { return ScanRelationships }

func (s relationshipScanner) Scan(ctx context.Context, view ValidationView) (domain.ScanResult, error) {
	var res domain.ScanResult
	seen := make(map[string]string, len(view.Relationships))
	for i, rel := range view.Relationships {
		subject := rel.ID
		if subject == "" {
			subject = fmt.Sprintf("rel_%d", i)
		}
		add := func(sev domain.Severity, field, message string) {
			res.Add(domain.Finding{Rule: ScanRelationships, SubjectID: subject, Field: field, Message: message, Severity: sev})
		}

		source, sourceOK := lookupElement(view.Elements, rel.SourceElementID)
		target, targetOK := lookupElement(view.Elements, rel.TargetElementID)
		if !sourceOK || !targetOK {
			missing := rel.SourceElementID
			if sourceOK {
				missing = rel.TargetElementID
			}
			add(domain.SeverityError, "endpoint", fmt.Sprintf("%s %s references unknown element %s", rel.Type, subject, missing))
			continue
		}
		rule, known := s.table.EndpointRule(rel.Type)
		if !known {
			add(domain.SeverityError, "type", fmt.Sprintf("%s uses unknown relationship type %s", subject, rel.Type))
			continue
		}
		if !rule.AllowsSource(source.Collection()) || !rule.AllowsTarget(target.Collection()) {
			add(domain.SeverityError, "endpoint", fmt.Sprintf("%s does not allow %s -> %s (%s)", rel.Type, source.Collection(), target.Collection(), subject))
		}

		if rel.Type == RelDependsOn {
			switch rel.DependencyStrength {
			case "":
				add(domain.SeverityWarning, domain.AttrDependencyStrength, fmt.Sprintf("%s %s has no dependencyStrength classification", rel.Type, subject))
			case DependencyHard, DependencySoft:
			default:
				add(domain.SeverityError, domain.AttrDependencyStrength, fmt.Sprintf("%s %s has unsupported dependencyStrength %q", rel.Type, subject, rel.DependencyStrength))
			}
		}

		if retiredAsOf(target.Base(), view.AsOf) && !retiredAsOf(source.Base(), view.AsOf) {
			add(domain.SeverityWarning, "target", fmt.Sprintf("%s %s targets retired element %s", rel.Type, subject, rel.TargetElementID))
		}

		key := rel.Type + "\x00" + rel.SourceElementID + "\x00" + rel.TargetElementID
		if first, dup := seen[key]; dup {
			add(domain.SeverityWarning, "duplicate", fmt.Sprintf("%s duplicates %s", subject, first))
		} else {
			seen[key] = subject
		}
	}
	return res, ctx.Err()
}

func lookupElement(store *ElementStore, id string) (domain.Element, bool) {
	if store == nil {
		return nil, false
	}
	el, ok := store.index[id]
	return el, ok
}

func retiredAsOf(base *domain.ElementBase, asOf time.Time) bool {
	if base.LifecycleStatus == domain.LifecycleRetired {
		return true
	}
	if asOf.IsZero() {
		return false
	}
	end, ok := parseDate(base.LifecycleEndDate)
	return ok && end.Before(asOf)
}
