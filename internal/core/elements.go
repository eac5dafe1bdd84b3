package core

import (
	"archrepo/pkg/domain"
	"fmt"
	"reflect"
)

// ElementStore holds typed elements in per-collection slices with a flat id
// index. Elements are copied on the way in and on the way out.
type ElementStore struct {
	collections map[domain.Collection][]domain.Element
	index       map[string]domain.Element
}

// NewElementStore returns an empty store.
func NewElementStore() *ElementStore {
	return &ElementStore{
		collections: make(map[domain.Collection][]domain.Element, len(domain.Collections())),
		index:       make(map[string]domain.Element),
	}
}

// AddElement inserts el into collection. It fails with DuplicateIDError when
// the id exists in any collection and with ElementTypeMismatchError when the
// record shape or elementType does not match the collection.
func (s *ElementStore) AddElement(collection domain.Collection, el domain.Element) error {
	if isNilElement(el) {
		return &domain.ElementTypeMismatchError{Expected: collection, Actual: "nil"}
	}
	base := el.Base()
	if _, exists := s.index[base.ID]; exists {
		return &domain.DuplicateIDError{ID: base.ID}
	}
	if !collection.Valid() {
		return &domain.ElementTypeMismatchError{ID: base.ID, Expected: collection, Actual: string(el.Collection())}
	}
	if el.Collection() != collection {
		return &domain.ElementTypeMismatchError{ID: base.ID, Expected: collection, Actual: fmt.Sprintf("%T", el)}
	}
	if base.ElementType != collection {
		return &domain.ElementTypeMismatchError{ID: base.ID, Expected: collection, Actual: string(base.ElementType)}
	}
	stored := domain.CloneElement(el)
	s.collections[collection] = append(s.collections[collection], stored)
	s.index[base.ID] = stored
	return nil
}

// isNilElement also catches typed nil pointers such as (*domain.Capability)(nil).
func isNilElement(el domain.Element) bool {
	if el == nil {
		return true
	}
	v := reflect.ValueOf(el)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// ElementsByType returns copies of the elements in collection in insertion order.
func (s *ElementStore) ElementsByType(collection domain.Collection) []domain.Element {
	items := s.collections[collection]
	out := make([]domain.Element, len(items))
	for i, el := range items {
		out[i] = domain.CloneElement(el)
	}
	return out
}

// ElementByID returns a copy of the element with id.
func (s *ElementStore) ElementByID(id string) (domain.Element, bool) {
	el, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return domain.CloneElement(el), true
}

// CollectionOf returns the collection id is stored in.
func (s *ElementStore) CollectionOf(id string) (domain.Collection, bool) {
	el, ok := s.index[id]
	if !ok {
		return "", false
	}
	return el.Collection(), true
}

// Len returns the number of stored elements.
func (s *ElementStore) Len() int { return len(s.index) }

// each visits every element in collection order then insertion order. The
// visited elements are shared and must not be mutated.
func (s *ElementStore) each(fn func(domain.Element)) {
	for _, c := range domain.Collections() {
		for _, el := range s.collections[c] {
			fn(el)
		}
	}
}
