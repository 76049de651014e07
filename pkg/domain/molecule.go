package domain

// Tree is the nested-dictionary representation exchanged with the composition engine.
type Tree = map[string]any

// MoleculeState is the per-species record carried in the "molecules" port.
type MoleculeState struct {
	Count       int       `json:"count" yaml:"count" mapstructure:"count"`
	Coordinates []float64 `json:"coordinates" yaml:"coordinates" mapstructure:"coordinates"`
	MolType     string    `json:"mol_type,omitempty" yaml:"mol_type,omitempty" mapstructure:"mol_type"`
}

// Tree renders the record as a nested map.
func (m MoleculeState) Tree() Tree {
	coords := m.Coordinates
	if coords == nil {
		coords = []float64{}
	}
	t := Tree{
		FieldCount:       m.Count,
		FieldCoordinates: coords,
	}
	if m.MolType != "" {
		t[FieldMolType] = m.MolType
	}
	return t
}

// ProcessState is the typed form of a state tree.
type ProcessState struct {
	Molecules     map[string]MoleculeState `json:"molecules" mapstructure:"molecules"`
	SpeciesCounts map[string]int           `json:"species_counts,omitempty" mapstructure:"species_counts"`
	Reactions     map[string]float64       `json:"reactions,omitempty" mapstructure:"reactions"`
}

// Counts extracts the count of every species in the molecules port.
func (s ProcessState) Counts() map[string]int {
	out := make(map[string]int, len(s.Molecules))
	for name, m := range s.Molecules {
		out[name] = m.Count
	}
	return out
}

// Tree renders the state as a nested map, omitting empty optional ports.
func (s ProcessState) Tree() Tree {
	mols := make(Tree, len(s.Molecules))
	for name, m := range s.Molecules {
		mols[name] = m.Tree()
	}
	t := Tree{PortMolecules: mols}
	if s.SpeciesCounts != nil {
		counts := make(Tree, len(s.SpeciesCounts))
		for name, c := range s.SpeciesCounts {
			counts[name] = c
		}
		t[PortSpeciesCounts] = counts
	}
	if s.Reactions != nil {
		rates := make(Tree, len(s.Reactions))
		for name, k := range s.Reactions {
			rates[name] = k
		}
		t[PortReactions] = rates
	}
	return t
}
