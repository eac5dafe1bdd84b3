package domain

// Collection identifies a strict typed element collection. The set is closed:
// every switch over Collection covers all of Collections().
type Collection string

// Typed element collections.
const (
	CollectionCapability      Collection = "Capability"
	CollectionBusinessProcess Collection = "BusinessProcess"
	CollectionApplication     Collection = "Application"
	CollectionTechnology      Collection = "Technology"
	CollectionProgramme       Collection = "Programme"
	CollectionProject         Collection = "Project"
)

// Collections lists every typed collection in display order.
func Collections() []Collection {
	return []Collection{
		CollectionCapability,
		CollectionBusinessProcess,
		CollectionApplication,
		CollectionTechnology,
		CollectionProgramme,
		CollectionProject,
	}
}

// Valid reports whether c names a declared collection.
func (c Collection) Valid() bool {
	switch c {
	case CollectionCapability, CollectionBusinessProcess, CollectionApplication,
		CollectionTechnology, CollectionProgramme, CollectionProject:
		return true
	}
	return false
}

// Layer returns the architecture layer elements of c belong to.
func (c Collection) Layer() Layer {
	switch c {
	case CollectionCapability, CollectionBusinessProcess:
		return LayerBusiness
	case CollectionApplication:
		return LayerApplication
	case CollectionTechnology:
		return LayerTechnology
	case CollectionProgramme, CollectionProject:
		return LayerImplementation
	}
	return ""
}

// Layer is an architecture layer.
type Layer string

// Architecture layers.
const (
	LayerBusiness       Layer = "Business"
	LayerApplication    Layer = "Application"
	LayerTechnology     Layer = "Technology"
	LayerImplementation Layer = "Implementation & Migration"
)

// LifecycleStatus is the lifecycle state of an element.
type LifecycleStatus string

// Lifecycle states.
const (
	LifecyclePlanned    LifecycleStatus = "Planned"
	LifecycleActive     LifecycleStatus = "Active"
	LifecycleDeprecated LifecycleStatus = "Deprecated"
	LifecycleRetired    LifecycleStatus = "Retired"
)

// Valid reports whether s is a declared lifecycle state.
func (s LifecycleStatus) Valid() bool {
	switch s {
	case LifecyclePlanned, LifecycleActive, LifecycleDeprecated, LifecycleRetired:
		return true
	}
	return false
}

// ApprovalStatus is the governance approval state of an element.
type ApprovalStatus string

// Approval states.
const (
	ApprovalDraft     ApprovalStatus = "Draft"
	ApprovalSubmitted ApprovalStatus = "Submitted"
	ApprovalApproved  ApprovalStatus = "Approved"
	ApprovalRejected  ApprovalStatus = "Rejected"
)

// Valid reports whether s is a declared approval state.
func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalDraft, ApprovalSubmitted, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// ElementBase carries the governed attributes shared by all typed elements.
type ElementBase struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	ElementType        Collection      `json:"elementType"`
	Layer              Layer           `json:"layer"`
	LifecycleStatus    LifecycleStatus `json:"lifecycleStatus"`
	LifecycleStartDate string          `json:"lifecycleStartDate"`
	LifecycleEndDate   string          `json:"lifecycleEndDate"`
	OwnerRole          string          `json:"ownerRole"`
	OwnerName          string          `json:"ownerName"`
	OwningUnit         string          `json:"owningUnit"`
	ApprovalStatus     ApprovalStatus  `json:"approvalStatus"`
	LastReviewedAt     string          `json:"lastReviewedAt"`
	ReviewCycleMonths  int             `json:"reviewCycleMonths"`
	CreatedAt          string          `json:"createdAt"`
	CreatedBy          string          `json:"createdBy"`
	LastModifiedAt     string          `json:"lastModifiedAt"`
	LastModifiedBy     string          `json:"lastModifiedBy"`
}

// Element is implemented by the typed element records. It is sealed; only
// this package declares implementations.
type Element interface {
	Base() *ElementBase
	Collection() Collection
	clone() Element
}

// CloneElement returns an independent copy of e.
func CloneElement(e Element) Element {
	if e == nil {
		return nil
	}
	return e.clone()
}

// NewElement returns an empty record for collection c with its identity
// fields set, or nil when c is not declared.
func NewElement(c Collection, id string) Element {
	var el Element
	switch c {
	case CollectionCapability:
		el = &Capability{}
	case CollectionBusinessProcess:
		el = &BusinessProcess{}
	case CollectionApplication:
		el = &Application{}
	case CollectionTechnology:
		el = &Technology{}
	case CollectionProgramme:
		el = &Programme{}
	case CollectionProject:
		el = &Project{}
	default:
		return nil
	}
	base := el.Base()
	base.ID = id
	base.ElementType = c
	base.Layer = c.Layer()
	return el
}

// Capability is a business capability. Capability categories and
// sub-capabilities collapse into this record with Level recording the kind.
type Capability struct {
	ElementBase
	Level               string `json:"level"`
	StrategicImportance string `json:"strategicImportance"`
}

func (c *Capability) Base() *ElementBase     { return &c.ElementBase }
func (c *Capability) Collection() Collection { return CollectionCapability }
func (c *Capability) clone() Element         { cp := *c; return &cp }

// BusinessProcess is an operational business process.
type BusinessProcess struct {
	ElementBase
	ProcessOwner string `json:"processOwner"`
	Frequency    string `json:"frequency"`
}

func (p *BusinessProcess) Base() *ElementBase     { return &p.ElementBase }
func (p *BusinessProcess) Collection() Collection { return CollectionBusinessProcess }
func (p *BusinessProcess) clone() Element         { cp := *p; return &cp }

// Application is a deployed application component.
type Application struct {
	ElementBase
	Criticality  string `json:"criticality"`
	HostingModel string `json:"hostingModel"`
	Vendor       string `json:"vendor"`
}

func (a *Application) Base() *ElementBase     { return &a.ElementBase }
func (a *Application) Collection() Collection { return CollectionApplication }
func (a *Application) clone() Element         { cp := *a; return &cp }

// Technology is an infrastructure or platform component.
type Technology struct {
	ElementBase
	Category string `json:"category"`
	Vendor   string `json:"vendor"`
	Version  string `json:"version"`
}

func (t *Technology) Base() *ElementBase     { return &t.ElementBase }
func (t *Technology) Collection() Collection { return CollectionTechnology }
func (t *Technology) clone() Element         { cp := *t; return &cp }

// Programme groups projects delivering architecture change.
type Programme struct {
	ElementBase
	Sponsor string `json:"sponsor"`
	Budget  string `json:"budget"`
}

func (p *Programme) Base() *ElementBase     { return &p.ElementBase }
func (p *Programme) Collection() Collection { return CollectionProgramme }
func (p *Programme) clone() Element         { cp := *p; return &cp }

// Project is a unit of delivery inside a programme.
type Project struct {
	ElementBase
	ProgrammeID    string `json:"programmeId"`
	DeliveryStatus string `json:"deliveryStatus"`
}

func (p *Project) Base() *ElementBase     { return &p.ElementBase }
func (p *Project) Collection() Collection { return CollectionProject }
func (p *Project) clone() Element         { cp := *p; return &cp }

// TypedRelationship is a relationship accepted into the typed relationship store.
type TypedRelationship struct {
	ID                 string     `json:"id"`
	Type               string     `json:"relationshipType"`
	SourceElementID    string     `json:"sourceElementId"`
	TargetElementID    string     `json:"targetElementId"`
	DependencyStrength string     `json:"dependencyStrength,omitempty"`
	Attributes         Attributes `json:"attributes,omitempty"`
}

// Clone returns a deep copy.
func (r TypedRelationship) Clone() TypedRelationship {
	cp := r
	cp.Attributes = r.Attributes.Clone()
	return cp
}
