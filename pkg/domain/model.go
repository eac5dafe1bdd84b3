// Package domain defines the architecture repository model: loosely-typed
// objects and relationships as exchanged with editors and importers, the
// strict typed element records the governance core evaluates, and the
// findings and errors produced along the way.
package domain

import "strings"

// ObjectType identifies the loosely-typed kind carried by an imported or
// edited object. Values outside the declared set are tolerated on load.
type ObjectType string

// Object types understood by the repository.
const (
	ObjectCapabilityCategory ObjectType = "CapabilityCategory"
	ObjectCapability         ObjectType = "Capability"
	ObjectSubCapability      ObjectType = "SubCapability"
	ObjectBusinessProcess    ObjectType = "BusinessProcess"
	ObjectApplication        ObjectType = "Application"
	ObjectTechnology         ObjectType = "Technology"
	ObjectProgramme          ObjectType = "Programme"
	ObjectProject            ObjectType = "Project"
)

// ObjectTypes lists every declared object type.
func ObjectTypes() []ObjectType {
	return []ObjectType{
		ObjectCapabilityCategory,
		ObjectCapability,
		ObjectSubCapability,
		ObjectBusinessProcess,
		ObjectApplication,
		ObjectTechnology,
		ObjectProgramme,
		ObjectProject,
	}
}

// Layer returns the architecture layer of the object type, or "" when the
// type is not declared.
func (t ObjectType) Layer() Layer {
	switch t {
	case ObjectCapabilityCategory, ObjectCapability, ObjectSubCapability, ObjectBusinessProcess:
		return LayerBusiness
	case ObjectApplication:
		return LayerApplication
	case ObjectTechnology:
		return LayerTechnology
	case ObjectProgramme, ObjectProject:
		return LayerImplementation
	}
	return ""
}

// Reserved attribute keys.
const (
	AttrDeleted            = "_deleted"
	AttrLifecycleState     = "lifecycleState"
	AttrDependencyStrength = "dependencyStrength"
)

// Attributes holds loosely-typed attribute values keyed by name.
type Attributes map[string]Value

// Get returns the value stored under key, or null.
func (a Attributes) Get(key string) Value {
	if a == nil {
		return Null()
	}
	return a[key]
}

// Text returns the trimmed text rendering of key.
func (a Attributes) Text(key string) string {
	return strings.TrimSpace(a.Get(key).Text())
}

// Clone returns a deep copy.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v.Clone()
	}
	return out
}

// Equal reports deep equality, treating nil and empty as equal.
func (a Attributes) Equal(other Attributes) bool {
	if len(a) != len(other) {
		return false
	}
	for k, v := range a {
		o, ok := other[k]
		if !ok || !v.Equal(o) {
			return false
		}
	}
	return true
}

// Object is a generic architecture element before typed projection.
type Object struct {
	ID         string     `json:"id"`
	Type       ObjectType `json:"type"`
	Attributes Attributes `json:"attributes"`
}

// Deleted reports whether the object carries the soft-delete flag.
func (o Object) Deleted() bool {
	b, ok := o.Attributes.Get(AttrDeleted).AsBool()
	return ok && b
}

// Clone returns a deep copy.
func (o Object) Clone() Object {
	cp := o
	cp.Attributes = o.Attributes.Clone()
	return cp
}

// Relationship is a generic directed edge between two objects.
type Relationship struct {
	FromID     string     `json:"fromId"`
	ToID       string     `json:"toId"`
	Type       string     `json:"type"`
	Attributes Attributes `json:"attributes"`
}

// Clone returns a deep copy.
func (r Relationship) Clone() Relationship {
	cp := r
	cp.Attributes = r.Attributes.Clone()
	return cp
}

// Model is the live repository content owned by a session.
type Model struct {
	Metadata      Metadata       `json:"metadata"`
	Objects       []Object       `json:"objects"`
	Relationships []Relationship `json:"relationships"`
}

// Clone returns a deep copy so callers never alias session state.
func (m Model) Clone() Model {
	cp := Model{Metadata: m.Metadata}
	if m.Objects != nil {
		cp.Objects = make([]Object, len(m.Objects))
		for i, o := range m.Objects {
			cp.Objects[i] = o.Clone()
		}
	}
	if m.Relationships != nil {
		cp.Relationships = make([]Relationship, len(m.Relationships))
		for i, r := range m.Relationships {
			cp.Relationships[i] = r.Clone()
		}
	}
	return cp
}

// FindObject returns the index of the object with id, or -1.
func (m Model) FindObject(id string) int {
	for i, o := range m.Objects {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// CheckRecords verifies the structural fields a snapshot must carry: every
// object has a unique, non-blank id and a non-blank type, and every
// relationship names both endpoints and a type. Snapshot decoding and the
// session edit boundary share it so a saved snapshot always reloads.
func (m Model) CheckRecords() error {
	seen := make(map[string]struct{}, len(m.Objects))
	for i, obj := range m.Objects {
		if strings.TrimSpace(obj.ID) == "" {
			return &InvalidRecordError{Kind: "object", Index: i, Field: "id"}
		}
		if strings.TrimSpace(string(obj.Type)) == "" {
			return &InvalidRecordError{Kind: "object", Index: i, ID: obj.ID, Field: "type"}
		}
		if _, dup := seen[obj.ID]; dup {
			return &DuplicateIDError{ID: obj.ID}
		}
		seen[obj.ID] = struct{}{}
	}
	for i, rel := range m.Relationships {
		switch {
		case rel.FromID == "":
			return &InvalidRecordError{Kind: "relationship", Index: i, Field: "fromId"}
		case rel.ToID == "":
			return &InvalidRecordError{Kind: "relationship", Index: i, Field: "toId"}
		case rel.Type == "":
			return &InvalidRecordError{Kind: "relationship", Index: i, Field: "type"}
		}
	}
	return nil
}
