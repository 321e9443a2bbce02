package annotation

import "sort"

// Validated is the capability required to export annotations. It is
// satisfied only by *Set, so anything accepting a Validated value is
// guaranteed to receive records that went through Parse.
type Validated interface {
	Entities() []*EntityAnnotation
	validated()
}

// Set is an ordered collection of validated annotations.
type Set struct {
	entities []*EntityAnnotation
	layout   Layout
}

func (s *Set) validated() {}

// Entities returns the annotations in source order.
func (s *Set) Entities() []*EntityAnnotation {
	if s == nil {
		return nil
	}
	return s.entities
}

// Len returns the number of annotations.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entities)
}

// Layout returns the layout the set was parsed with.
func (s *Set) Layout() Layout {
	return s.layout
}

// EntityTypes returns the distinct entity types in sorted order.
func (s *Set) EntityTypes() []string {
	seen := make(map[string]bool)
	var types []string
	for _, e := range s.Entities() {
		if !seen[e.EntityType] {
			seen[e.EntityType] = true
			types = append(types, e.EntityType)
		}
	}
	sort.Strings(types)
	return types
}

// DuplicateIDs returns ids carried by more than one record, in order of
// their first repetition.
func (s *Set) DuplicateIDs() []string {
	count := make(map[string]int)
	var dups []string
	for _, e := range s.Entities() {
		count[e.ID]++
		if count[e.ID] == 2 {
			dups = append(dups, e.ID)
		}
	}
	return dups
}

// ByID returns the first annotation with the given id.
func (s *Set) ByID(id string) (*EntityAnnotation, bool) {
	for _, e := range s.Entities() {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}
