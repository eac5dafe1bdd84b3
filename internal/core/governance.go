package core

import (
	"archrepo/pkg/domain"
	"context"
	"fmt"
	"time"
)

// Projection defaults for governed fields left unset on a generic object.
const (
	DefaultLifecycleStatus   = domain.LifecycleActive
	DefaultApprovalStatus    = domain.ApprovalDraft
	DefaultReviewCycleMonths = 12
)

// ScanTypedInsert names findings raised for objects that could not be
// projected into a typed collection.
const ScanTypedInsert = "typed_insert"

var objectCollections = map[domain.ObjectType]domain.Collection{
	domain.ObjectCapabilityCategory: domain.CollectionCapability,
	domain.ObjectCapability:         domain.CollectionCapability,
	domain.ObjectSubCapability:      domain.CollectionCapability,
	domain.ObjectBusinessProcess:    domain.CollectionBusinessProcess,
	domain.ObjectApplication:        domain.CollectionApplication,
	domain.ObjectTechnology:         domain.CollectionTechnology,
	domain.ObjectProgramme:          domain.CollectionProgramme,
	domain.ObjectProject:            domain.CollectionProject,
}

// CollectionFor maps a loosely-typed object type to its strict collection.
// Unmapped types pass through unchanged and report false.
func CollectionFor(t domain.ObjectType) (domain.Collection, bool) {
	c, ok := objectCollections[t]
	if !ok {
		return domain.Collection(t), false
	}
	return c, true
}

// DebtOptions tunes a debt computation.
type DebtOptions struct {
	// LifecycleCoverage overrides the model metadata when set.
	LifecycleCoverage domain.LifecycleCoverage
	// Semantics overrides the storage table when set.
	Semantics *SemanticsTable
}

// InvalidRelationshipInsert records a relationship the typed store refused.
type InvalidRelationshipInsert struct {
	Type   string `json:"type"`
	FromID string `json:"fromId"`
	ToID   string `json:"toId"`
	Err    error  `json:"-"`
	Reason string `json:"error"`
}

// DebtFingerprint is the ordered tuple of summary counts used to
// deduplicate notifications.
type DebtFingerprint [5]int

// GovernanceDebtSummary aggregates debt counts. Total is their sum.
type GovernanceDebtSummary struct {
	MandatoryFindingCount          int `json:"mandatoryFindingCount"`
	RelationshipErrorCount         int `json:"relationshipErrorCount"`
	RelationshipWarningCount       int `json:"relationshipWarningCount"`
	InvalidRelationshipInsertCount int `json:"invalidRelationshipInsertCount"`
	LifecycleTagMissingCount       int `json:"lifecycleTagMissingCount"`
	Total                          int `json:"total"`
}

// Fingerprint returns the ordered count tuple.
func (s GovernanceDebtSummary) Fingerprint() DebtFingerprint {
	return DebtFingerprint{
		s.MandatoryFindingCount,
		s.RelationshipErrorCount,
		s.RelationshipWarningCount,
		s.InvalidRelationshipInsertCount,
		s.LifecycleTagMissingCount,
	}
}

// GovernanceDebt is the summary plus drill-down detail for one model state.
type GovernanceDebt struct {
	AsOf                       time.Time                   `json:"asOf"`
	Summary                    GovernanceDebtSummary       `json:"summary"`
	Mandatory                  domain.ScanResult           `json:"mandatory"`
	Relationships              domain.ScanResult           `json:"relationships"`
	InvalidRelationshipInserts []InvalidRelationshipInsert `json:"invalidRelationshipInserts"`
	LifecycleTagMissing        []string                    `json:"lifecycleTagMissing"`

	elements      *ElementStore
	relationships *RelationshipStore
}

// ElementsByType returns the typed projection of collection c.
func (d GovernanceDebt) ElementsByType(c domain.Collection) []domain.Element {
	if d.elements == nil {
		return nil
	}
	return d.elements.ElementsByType(c)
}

// TypedRelationships returns the relationships accepted by the typed store.
func (d GovernanceDebt) TypedRelationships() []domain.TypedRelationship {
	if d.relationships == nil {
		return nil
	}
	return d.relationships.Relationships()
}

// Highlights returns up to limit human-readable lines, errors first.
func (d GovernanceDebt) Highlights(limit int) []string {
	var out []string
	push := func(s string) bool {
		if len(out) >= limit {
			return false
		}
		out = append(out, s)
		return true
	}
	for _, f := range d.Mandatory.Findings {
		if !push(f.Message) {
			return out
		}
	}
	for _, f := range d.Relationships.Findings {
		if f.Severity == domain.SeverityError && !push(f.Message) {
			return out
		}
	}
	for _, inv := range d.InvalidRelationshipInserts {
		if !push(inv.Reason) {
			return out
		}
	}
	for _, id := range d.LifecycleTagMissing {
		if !push(fmt.Sprintf("%s has no %s tag", id, domain.AttrLifecycleState)) {
			return out
		}
	}
	for _, f := range d.Relationships.Findings {
		if f.Severity == domain.SeverityWarning && !push(f.Message) {
			return out
		}
	}
	return out
}

// BuildDebt projects model into typed stores, validates them and reduces the
// results. It does not modify model.
func BuildDebt(model domain.Model, asOf time.Time, opts DebtOptions) GovernanceDebt {
	debt, err := BuildDebtContext(context.Background(), model, asOf, opts)
	if err != nil {
		// Built-in scanners only fail on context cancellation.
		panic(fmt.Errorf("governance: build debt: %w", err))
	}
	return debt
}

// BuildDebtContext is BuildDebt with cancellation.
func BuildDebtContext(ctx context.Context, model domain.Model, asOf time.Time, opts DebtOptions) (GovernanceDebt, error) {
	coverage := opts.LifecycleCoverage
	if coverage == "" {
		coverage = model.Metadata.LifecycleCoverage
	}
	semantics := opts.Semantics
	if semantics == nil {
		semantics = StorageSemantics()
	}

	debt := GovernanceDebt{AsOf: asOf}
	elements := NewElementStore()
	var insertFailures domain.ScanResult

	for _, obj := range model.Objects {
		if obj.Deleted() {
			continue
		}
		if coverage == domain.CoverageBoth && !hasLifecycleTag(obj) {
			debt.LifecycleTagMissing = append(debt.LifecycleTagMissing, obj.ID)
		}
		collection, mapped := CollectionFor(obj.Type)
		var err error
		if !mapped {
			err = &domain.ElementTypeMismatchError{ID: obj.ID, Expected: collection, Actual: "no typed collection"}
		} else {
			err = elements.AddElement(collection, ProjectElement(obj, collection))
		}
		if err != nil {
			insertFailures.Add(domain.Finding{
				Rule:      ScanTypedInsert,
				SubjectID: obj.ID,
				Field:     "type",
				Message:   err.Error(),
				Severity:  domain.SeverityError,
			})
		}
	}

	relationships := NewRelationshipStore(elements, semantics)
	for _, rel := range model.Relationships {
		if _, ok := elements.CollectionOf(rel.FromID); !ok {
			continue
		}
		if _, ok := elements.CollectionOf(rel.ToID); !ok {
			continue
		}
		if _, err := relationships.AddRelationship(ProjectRelationship(rel)); err != nil {
			debt.InvalidRelationshipInserts = append(debt.InvalidRelationshipInserts, InvalidRelationshipInsert{
				Type:   rel.Type,
				FromID: rel.FromID,
				ToID:   rel.ToID,
				Err:    err,
				Reason: err.Error(),
			})
		}
	}

	engine := NewValidationEngine()
	engine.Register(NewMandatoryAttributeScanner())
	engine.Register(NewRelationshipScanner(semantics))
	results, err := engine.Run(ctx, ValidationView{
		Elements:      elements,
		Relationships: relationships.Relationships(),
		Coverage:      coverage,
		AsOf:          asOf,
	})
	if err != nil {
		return GovernanceDebt{}, err
	}
	debt.Mandatory.Merge(insertFailures)
	for _, r := range results {
		switch r.Scanner {
		case ScanMandatoryAttributes:
			debt.Mandatory.Merge(r.Result)
		case ScanRelationships:
			debt.Relationships.Merge(r.Result)
		}
	}

	s := &debt.Summary
	s.MandatoryFindingCount = len(debt.Mandatory.Findings)
	s.RelationshipErrorCount = debt.Relationships.Count(domain.SeverityError)
	s.RelationshipWarningCount = debt.Relationships.Count(domain.SeverityWarning)
	s.InvalidRelationshipInsertCount = len(debt.InvalidRelationshipInserts)
	s.LifecycleTagMissingCount = len(debt.LifecycleTagMissing)
	s.Total = s.MandatoryFindingCount + s.RelationshipErrorCount + s.RelationshipWarningCount +
		s.InvalidRelationshipInsertCount + s.LifecycleTagMissingCount

	debt.elements = elements
	debt.relationships = relationships
	return debt, nil
}

func hasLifecycleTag(obj domain.Object) bool {
	switch obj.Attributes.Text(domain.AttrLifecycleState) {
	case string(domain.CoverageAsIs), string(domain.CoverageToBe):
		return true
	}
	return false
}

// ProjectElement converts a generic object into the strict record for
// collection, filling unset governed fields with their defaults. It returns
// nil when collection is not declared.
func ProjectElement(obj domain.Object, collection domain.Collection) domain.Element {
	el := domain.NewElement(collection, obj.ID)
	if el == nil {
		return nil
	}
	attrs := obj.Attributes
	base := el.Base()
	base.Name = attrs.Text("name")
	base.Description = attrs.Text("description")
	base.LifecycleStatus = domain.LifecycleStatus(textOr(attrs, "lifecycleStatus", string(DefaultLifecycleStatus)))
	base.LifecycleStartDate = attrs.Text("lifecycleStartDate")
	base.LifecycleEndDate = attrs.Text("lifecycleEndDate")
	base.OwnerRole = attrs.Text("ownerRole")
	base.OwnerName = attrs.Text("ownerName")
	base.OwningUnit = attrs.Text("owningUnit")
	base.ApprovalStatus = domain.ApprovalStatus(textOr(attrs, "approvalStatus", string(DefaultApprovalStatus)))
	base.LastReviewedAt = attrs.Text("lastReviewedAt")
	base.ReviewCycleMonths = DefaultReviewCycleMonths
	if v := attrs.Get("reviewCycleMonths"); !v.IsBlank() {
		if months, ok := v.AsInt(); ok {
			base.ReviewCycleMonths = months
		} else {
			base.ReviewCycleMonths = -1
		}
	}
	base.CreatedAt = attrs.Text("createdAt")
	base.CreatedBy = attrs.Text("createdBy")
	base.LastModifiedAt = attrs.Text("lastModifiedAt")
	base.LastModifiedBy = attrs.Text("lastModifiedBy")

	switch typed := el.(type) {
	case *domain.Capability:
		typed.Level = textOr(attrs, "level", string(obj.Type))
		typed.StrategicImportance = attrs.Text("strategicImportance")
	case *domain.BusinessProcess:
		typed.ProcessOwner = attrs.Text("processOwner")
		typed.Frequency = attrs.Text("frequency")
	case *domain.Application:
		typed.Criticality = attrs.Text("criticality")
		typed.HostingModel = attrs.Text("hostingModel")
		typed.Vendor = attrs.Text("vendor")
	case *domain.Technology:
		typed.Category = attrs.Text("category")
		typed.Vendor = attrs.Text("vendor")
		typed.Version = attrs.Text("version")
	case *domain.Programme:
		typed.Sponsor = attrs.Text("sponsor")
		typed.Budget = attrs.Text("budget")
	case *domain.Project:
		typed.ProgrammeID = attrs.Text("programmeId")
		typed.DeliveryStatus = attrs.Text("deliveryStatus")
	}
	return el
}

// ProjectRelationship converts a generic relationship into a typed record.
// Only DEPENDS_ON carries dependencyStrength.
func ProjectRelationship(rel domain.Relationship) domain.TypedRelationship {
	out := domain.TypedRelationship{
		Type:            rel.Type,
		SourceElementID: rel.FromID,
		TargetElementID: rel.ToID,
		Attributes:      rel.Attributes.Clone(),
	}
	if rel.Type == RelDependsOn {
		out.DependencyStrength = rel.Attributes.Text(domain.AttrDependencyStrength)
	}
	return out
}

func textOr(attrs domain.Attributes, key, fallback string) string {
	if v := attrs.Text(key); v != "" {
		return v
	}
	return fallback
}
