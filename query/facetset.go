package query

import (
	"fmt"

	"github.com/gcbaptista/go-facet-query/internal/jsonutil"
)

// FacetSet maps facet names to specs in insertion order.
type FacetSet struct {
	names []string
	specs map[string]FacetSpec
}

// NewFacetSet returns an empty set.
func NewFacetSet() *FacetSet {
	return &FacetSet{specs: make(map[string]FacetSpec)}
}

// Set stores spec under name; an existing name keeps its position.
func (s *FacetSet) Set(name string, spec FacetSpec) {
	if s.specs == nil {
		s.specs = make(map[string]FacetSpec)
	}
	if _, exists := s.specs[name]; !exists {
		s.names = append(s.names, name)
	}
	s.specs[name] = spec
}

// Get returns the spec registered under name.
func (s *FacetSet) Get(name string) (FacetSpec, bool) {
	if s == nil {
		return nil, false
	}
	spec, ok := s.specs[name]
	return spec, ok
}

// Names returns facet names in order.
func (s *FacetSet) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.names...)
}

// Len returns the number of facets.
func (s *FacetSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Merge overlays other on s at the top level: names from other replace
// existing entries, new names are appended.
func (s *FacetSet) Merge(other *FacetSet) {
	if other == nil {
		return
	}
	for _, name := range other.names {
		s.Set(name, other.specs[name])
	}
}

func (s *FacetSet) MarshalJSON() ([]byte, error) {
	var obj jsonutil.Object
	if s != nil {
		for _, name := range s.names {
			obj.Add(name, s.specs[name])
		}
	}
	return obj.Bytes()
}

func (s *FacetSet) UnmarshalJSON(data []byte) error {
	members, err := jsonutil.Members(data)
	if err != nil {
		return err
	}
	*s = FacetSet{specs: make(map[string]FacetSpec, len(members))}
	for _, m := range members {
		spec, err := DecodeFacet(m.Key, m.Value)
		if err != nil {
			return err
		}
		s.Set(m.Key, spec)
	}
	return nil
}

// RawFacetSet wraps every member of a name→facet object as a *RawFacet so
// the bodies are re-emitted byte for byte.
func RawFacetSet(data []byte) (*FacetSet, error) {
	set := NewFacetSet()
	if jsonutil.IsNull(data) {
		return set, nil
	}
	members, err := jsonutil.Members(data)
	if err != nil {
		return nil, fmt.Errorf("decode facets: %w", err)
	}
	for _, m := range members {
		set.Set(m.Key, NewRawFacet(m.Key, m.Value))
	}
	return set, nil
}

// DecodeFacetSet reads a name→facet object such as extra_facets.
func DecodeFacetSet(data []byte) (*FacetSet, error) {
	if jsonutil.IsNull(data) {
		return NewFacetSet(), nil
	}
	set := NewFacetSet()
	if err := set.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("decode facets: %w", err)
	}
	return set, nil
}
