package domain

import (
	"fmt"
	"strings"
)

// Species is a resolved species name together with its simulator index.
// Location rows refer to species by Index.
type Species struct {
	Name  string
	Index int
}

// SpeciesSet is the ordered, unique list of species of a loaded simulation.
// It is built once and never mutated.
type SpeciesSet struct {
	items []Species
	index map[string]int
}

// NewSpeciesSet builds a SpeciesSet, dropping names equal to sentinel (case-insensitive).
// Names merely containing the sentinel, such as "empty_vesicle", are kept.
// Order is preserved. Duplicate names are rejected.
func NewSpeciesSet(sentinel string, species ...Species) (SpeciesSet, error) {
	set := SpeciesSet{index: make(map[string]int, len(species))}
	for _, sp := range species {
		if sentinel != "" && strings.EqualFold(sp.Name, sentinel) {
			continue
		}
		if sp.Name == "" {
			return SpeciesSet{}, fmt.Errorf("species at index %d has no name", sp.Index)
		}
		if _, dup := set.index[sp.Name]; dup {
			return SpeciesSet{}, fmt.Errorf("duplicate species %q", sp.Name)
		}
		set.index[sp.Name] = len(set.items)
		set.items = append(set.items, sp)
	}
	return set, nil
}

// Len returns the number of species.
func (s SpeciesSet) Len() int { return len(s.items) }

// Names returns a copy of the species names in index order.
func (s SpeciesSet) Names() []string {
	names := make([]string, len(s.items))
	for i, sp := range s.items {
		names[i] = sp.Name
	}
	return names
}

// All returns a copy of the resolved species.
func (s SpeciesSet) All() []Species {
	out := make([]Species, len(s.items))
	copy(out, s.items)
	return out
}

// Contains reports whether name is a member of the set.
func (s SpeciesSet) Contains(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Lookup returns the species for name.
func (s SpeciesSet) Lookup(name string) (Species, bool) {
	i, ok := s.index[name]
	if !ok {
		return Species{}, false
	}
	return s.items[i], true
}

// ByIndex returns the species with the given simulator index.
func (s SpeciesSet) ByIndex(index int) (Species, bool) {
	for _, sp := range s.items {
		if sp.Index == index {
			return sp, true
		}
	}
	return Species{}, false
}

// CheckKeys verifies that keys are exactly the members of the set.
// Unknown keys are reported before missing ones; missing keys in set order.
func (s SpeciesSet) CheckKeys(keys []string) error {
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if !s.Contains(k) {
			return &UnknownSpeciesError{Name: k}
		}
		seen[k] = true
	}
	for _, sp := range s.items {
		if !seen[sp.Name] {
			return &MissingSpeciesError{Name: sp.Name}
		}
	}
	return nil
}
