package runtime

import (
	"fmt"
	"sort"

	"github.com/aretw0/brownian/pkg/config"
	"github.com/aretw0/brownian/pkg/domain"
	"github.com/aretw0/brownian/pkg/schema"
	"github.com/mitchellh/mapstructure"
)

// moleculeType is the per-species record. Only count is read back from an
// engine state, so coordinates and mol_type may be omitted there.
func moleculeType() schema.Type {
	return schema.Record(schema.Schema{
		domain.FieldCount:       schema.Int(),
		domain.FieldCoordinates: schema.Slice(schema.Float()),
		domain.FieldMolType:     schema.String(),
	}, domain.FieldCoordinates, domain.FieldMolType)
}

func buildSchema(species, reactions []string, f config.Features) schema.Schema {
	s := schema.Schema{
		domain.PortMolecules: schema.Keyed(species, moleculeType()),
	}
	if f.SpeciesCounts {
		s[domain.PortSpeciesCounts] = schema.Keyed(species, schema.Int())
	}
	if f.Reactions {
		s[domain.PortReactions] = schema.Keyed(reactions, schema.Float())
	}
	return s
}

func (a *Adapter) reactionNames() []string {
	names := make([]string, 0, len(a.reactions))
	for _, r := range a.reactions {
		names = append(names, r.Name)
	}
	return names
}

// decodeCounts extracts per-species counts from the molecules port of an engine state.
// The port's keys must be exactly the species set and every record must match
// moleculeType; counts are never coerced from fractions or strings.
func (a *Adapter) decodeCounts(state map[string]any) (map[string]int, error) {
	raw, ok := state[domain.PortMolecules]
	if !ok {
		return nil, fmt.Errorf("state has no %q port", domain.PortMolecules)
	}
	mols, ok := raw.(map[string]any)
	if !ok {
		return nil, &schema.ValidationError{Key: domain.PortMolecules, Reason: "expected map keyed by species", Value: raw}
	}

	keys := make([]string, 0, len(mols))
	for name := range mols {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	if err := a.species.CheckKeys(keys); err != nil {
		return nil, err
	}
	if err := schema.ValidateFields(a.schema, state, domain.PortMolecules); err != nil {
		return nil, err
	}

	var decoded map[string]domain.MoleculeState
	if err := mapstructure.Decode(mols, &decoded); err != nil {
		return nil, fmt.Errorf("port %q: %w", domain.PortMolecules, err)
	}

	counts := make(map[string]int, len(decoded))
	for name, m := range decoded {
		if m.Count < 0 {
			return nil, fmt.Errorf("species %s: %w", name, domain.ErrNegativeCount)
		}
		counts[name] = m.Count
	}
	return counts, nil
}

func (a *Adapter) initialState(counts map[string]int) domain.ProcessState {
	ps := domain.ProcessState{Molecules: make(map[string]domain.MoleculeState, len(counts))}
	for name, n := range counts {
		ps.Molecules[name] = domain.MoleculeState{Count: n, Coordinates: []float64{}}
	}
	if a.cfg.Features.SpeciesCounts {
		ps.SpeciesCounts = counts
	}
	if a.cfg.Features.Reactions {
		ps.Reactions = make(map[string]float64, len(a.reactions))
		for _, r := range a.reactions {
			ps.Reactions[r.Name] = r.Rate
		}
	}
	return ps
}

// updateState packages a harvest as an update. Rate constants never change, so
// the reactions port is left out.
func (a *Adapter) updateState(h *Harvest) domain.ProcessState {
	ps := domain.ProcessState{Molecules: make(map[string]domain.MoleculeState, len(h.Deltas))}
	for name, d := range h.Deltas {
		ps.Molecules[name] = domain.MoleculeState{Count: d, Coordinates: h.Coordinates[name]}
	}
	if a.cfg.Features.SpeciesCounts {
		ps.SpeciesCounts = h.Deltas
	}
	return ps
}
