package core

import (
	"archrepo/pkg/domain"
	"fmt"
)

// IsWritable reports whether elements of type t may be edited under scope.
//
//	Programme      only Programme and Project
//	Business Unit  Business and Application layers
//	Domain         Application and Technology layers
//	otherwise      everything
func IsWritable(scope domain.ArchitectureScope, t domain.ObjectType) bool {
	layer := t.Layer()
	switch scope {
	case domain.ScopeProgramme:
		return t == domain.ObjectProgramme || t == domain.ObjectProject
	case domain.ScopeBusinessUnit:
		return layer == domain.LayerBusiness || layer == domain.LayerApplication
	case domain.ScopeDomain:
		return layer == domain.LayerApplication || layer == domain.LayerTechnology
	}
	return true
}

// ReadOnlyReason explains why t is not writable under scope. It reports
// false when t is writable.
func ReadOnlyReason(scope domain.ArchitectureScope, t domain.ObjectType) (string, bool) {
	if IsWritable(scope, t) {
		return "", false
	}
	var allowed string
	switch scope {
	case domain.ScopeProgramme:
		allowed = "only Programme and Project elements can be edited"
	case domain.ScopeBusinessUnit:
		allowed = "only Business and Application layer elements can be edited"
	case domain.ScopeDomain:
		allowed = "only Application and Technology layer elements can be edited"
	}
	return fmt.Sprintf("%s elements are read-only in %s scope; %s.", t, scope, allowed), true
}

// TouchedTypes returns the object types of every element added, removed or
// changed between before and after. Both sides' types are reported when an
// element changes type.
func TouchedTypes(before, after domain.Model) []domain.ObjectType {
	var out []domain.ObjectType
	seen := make(map[domain.ObjectType]struct{})
	touch := func(t domain.ObjectType) {
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	prior := make(map[string]domain.Object, len(before.Objects))
	for _, o := range before.Objects {
		prior[o.ID] = o
	}
	current := make(map[string]struct{}, len(after.Objects))
	for _, o := range after.Objects {
		current[o.ID] = struct{}{}
		old, existed := prior[o.ID]
		switch {
		case !existed:
			touch(o.Type)
		case old.Type != o.Type:
			touch(old.Type)
			touch(o.Type)
		case !old.Attributes.Equal(o.Attributes):
			touch(o.Type)
		}
	}
	for _, o := range before.Objects {
		if _, ok := current[o.ID]; !ok {
			touch(o.Type)
		}
	}
	return out
}

// CheckScope returns a ScopeViolationError when the change from before to
// after touches a type that is read-only under scope.
func CheckScope(scope domain.ArchitectureScope, before, after domain.Model) error {
	var blocked []domain.ObjectType
	var message string
	for _, t := range TouchedTypes(before, after) {
		if reason, readOnly := ReadOnlyReason(scope, t); readOnly {
			if message == "" {
				message = reason
			}
			blocked = append(blocked, t)
		}
	}
	if len(blocked) == 0 {
		return nil
	}
	return &domain.ScopeViolationError{Scope: scope, Types: blocked, Message: message}
}
