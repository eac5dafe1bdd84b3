package core

import (
	"archrepo/pkg/domain"
	"strconv"
)

// RelationshipStore holds relationships validated against an element store
// and a semantics table.
type RelationshipStore struct {
	elements  *ElementStore
	semantics *SemanticsTable
	records   []domain.TypedRelationship
}

// NewRelationshipStore binds a relationship store to its element store. A
// nil table selects StorageSemantics().
func NewRelationshipStore(elements *ElementStore, semantics *SemanticsTable) *RelationshipStore {
	if semantics == nil {
		semantics = StorageSemantics()
	}
	return &RelationshipStore{elements: elements, semantics: semantics}
}

// AddRelationship validates rec and appends it. Checks run in order: both
// endpoints exist, the type is known, the endpoint types are allowed. The
// record id is assigned from its insertion index; rec.ID is ignored.
func (s *RelationshipStore) AddRelationship(rec domain.TypedRelationship) (string, error) {
	sourceType, ok := s.elements.CollectionOf(rec.SourceElementID)
	if !ok {
		return "", &domain.UnknownEndpointError{Type: rec.Type, SourceID: rec.SourceElementID, TargetID: rec.TargetElementID, Missing: rec.SourceElementID}
	}
	targetType, ok := s.elements.CollectionOf(rec.TargetElementID)
	if !ok {
		return "", &domain.UnknownEndpointError{Type: rec.Type, SourceID: rec.SourceElementID, TargetID: rec.TargetElementID, Missing: rec.TargetElementID}
	}
	rule, ok := s.semantics.EndpointRule(rec.Type)
	if !ok {
		return "", &domain.UnknownRelationshipTypeError{Type: rec.Type}
	}
	if !rule.AllowsSource(sourceType) || !rule.AllowsTarget(targetType) {
		return "", &domain.EndpointTypeMismatchError{
			Type:       rec.Type,
			SourceID:   rec.SourceElementID,
			TargetID:   rec.TargetElementID,
			SourceType: sourceType,
			TargetType: targetType,
		}
	}
	stored := rec.Clone()
	stored.ID = "rel_" + strconv.Itoa(len(s.records))
	s.records = append(s.records, stored)
	return stored.ID, nil
}

// Relationships returns copies of all records in insertion order.
func (s *RelationshipStore) Relationships() []domain.TypedRelationship {
	out := make([]domain.TypedRelationship, len(s.records))
	for i, r := range s.records {
		out[i] = r.Clone()
	}
	return out
}

// Len returns the number of stored relationships.
func (s *RelationshipStore) Len() int { return len(s.records) }

// Elements returns the element store endpoints are resolved against.
func (s *RelationshipStore) Elements() *ElementStore { return s.elements }
