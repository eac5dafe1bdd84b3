package domain

import (
	"errors"
	"fmt"
	"strings"
)

// DuplicateIDError is returned when an element id is already present in any
// collection.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("element id %s already exists", e.ID)
}

// ElementTypeMismatchError is returned when an element does not belong to the
// collection it is inserted into.
type ElementTypeMismatchError struct {
	ID       string
	Expected Collection
	Actual   string
}

func (e *ElementTypeMismatchError) Error() string {
	return fmt.Sprintf("element %s: expected %s, got %s", e.ID, e.Expected, e.Actual)
}

// UnknownEndpointError is returned when a relationship references an element
// that is not in the element store.
type UnknownEndpointError struct {
	Type     string
	SourceID string
	TargetID string
	Missing  string
}

func (e *UnknownEndpointError) Error() string {
	return fmt.Sprintf("%s relationship %s -> %s references unknown element %s", e.Type, e.SourceID, e.TargetID, e.Missing)
}

// UnknownRelationshipTypeError is returned for relationship types absent from
// the semantics table.
type UnknownRelationshipTypeError struct {
	Type string
}

func (e *UnknownRelationshipTypeError) Error() string {
	return fmt.Sprintf("unknown relationship type %s", e.Type)
}

// EndpointTypeMismatchError is returned when the endpoint element types are
// not permitted for the relationship type.
type EndpointTypeMismatchError struct {
	Type       string
	SourceID   string
	TargetID   string
	SourceType Collection
	TargetType Collection
}

func (e *EndpointTypeMismatchError) Error() string {
	return fmt.Sprintf("%s does not allow %s (%s) -> %s (%s)", e.Type, e.SourceID, e.SourceType, e.TargetID, e.TargetType)
}

// InvalidMetadataError lists every metadata validation problem.
type InvalidMetadataError struct {
	Problems []string
}

func (e *InvalidMetadataError) Error() string {
	return "invalid repository metadata: " + strings.Join(e.Problems, "; ")
}

// MalformedSnapshotError is returned when a snapshot cannot be accepted. The
// prior in-memory state is never touched when this is returned.
type MalformedSnapshotError struct {
	Reason string
	Err    error
}

func (e *MalformedSnapshotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed snapshot: %s: %v", e.Reason, e.Err)
	}
	return "malformed snapshot: " + e.Reason
}

func (e *MalformedSnapshotError) Unwrap() error { return e.Err }

// InvalidRecordError reports an object or relationship missing a field every
// stored record needs.
type InvalidRecordError struct {
	Kind  string // object or relationship
	Index int
	ID    string
	Field string
}

func (e *InvalidRecordError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s has no %s", e.Kind, e.ID, e.Field)
	}
	return fmt.Sprintf("%s %d has no %s", e.Kind, e.Index, e.Field)
}

// ScopeViolationError reports a change touching element types that are read
// only under the active architecture scope.
type ScopeViolationError struct {
	Scope   ArchitectureScope
	Types   []ObjectType
	Message string
}

func (e *ScopeViolationError) Error() string {
	return e.Message
}

// ErrStorageQuotaExceeded marks persistence failures caused by exhausted
// storage. It is never fatal to the in-memory model.
var ErrStorageQuotaExceeded = errors.New("storage quota exceeded")
