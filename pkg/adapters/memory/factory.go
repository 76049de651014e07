package memory

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/aretw0/brownian/pkg/domain"
	"github.com/aretw0/brownian/pkg/model"
	"github.com/aretw0/brownian/pkg/ports"
)

// Factory loads models into reference simulators.
type Factory struct{}

// NewFactory returns the reference ports.SimulatorFactory.
func NewFactory() *Factory {
	return &Factory{}
}

var _ ports.SimulatorFactory = (*Factory)(nil)

// Load builds a simulator from a validated model.
// Bimolecular reactions are rejected; the reference simulator has no collision detection.
func (f *Factory) Load(m *model.Model, opts ports.LoadOptions) (ports.Simulator, error) {
	return Open(m, opts)
}

// Open is Load without the interface return, for callers that need the concrete type.
func Open(m *model.Model, opts ports.LoadOptions) (*Simulator, error) {
	if m == nil {
		return nil, fmt.Errorf("model must not be nil")
	}
	dt, ok := m.Scalar("time_step")
	if !ok || dt <= 0 {
		return nil, fmt.Errorf("model %s: time_step must be positive", m.Path)
	}
	start, _ := m.Scalar("time_start")

	low, high := m.Bounds()
	s := &Simulator{
		dim:     m.Dim(),
		low:     low,
		high:    high,
		species: append([]string{domain.DefaultSentinel}, m.Species()...),
		index:   map[string]int{},
		t:       start,
		dt:      dt,
		rng:     rand.New(rand.NewSource(seedFor(m, opts))),
		outputs: map[string][]domain.Row{},
	}
	for i, name := range s.species {
		s.index[name] = i
	}

	s.difc = make([]float64, len(s.species))
	for name, d := range m.Diffusion() {
		if idx, ok := s.index[name]; ok {
			s.difc[idx] = d
		}
	}

	rxns, err := m.Reactions()
	if err != nil {
		return nil, err
	}
	for _, r := range rxns {
		if r.Order() > 1 {
			return nil, fmt.Errorf("reaction %s: bimolecular reactions are not supported by the reference simulator", r.Name)
		}
		rr := reaction{name: r.Name, reactant: -1, rate: r.Rate}
		if r.Order() == 1 {
			rr.reactant = s.index[r.Reactants[0]]
		}
		for _, p := range r.Products {
			rr.products = append(rr.products, s.index[p])
		}
		s.reactions = append(s.reactions, rr)
	}

	for _, p := range m.Placements() {
		idx, ok := s.index[p.Species]
		if !ok {
			continue
		}
		for i := 0; i < p.Count; i++ {
			var pos [3]float64
			for a := 0; a < s.dim; a++ {
				if p.Position[a] != nil {
					pos[a] = *p.Position[a]
				} else {
					pos[a] = low[a] + s.rng.Float64()*(high[a]-low[a])
				}
			}
			s.add(idx, pos)
		}
	}
	return s, nil
}

// seedFor prefers the caller's seed, then the model's random_seed, then the clock.
func seedFor(m *model.Model, opts ports.LoadOptions) int64 {
	if opts.Seed != 0 {
		return opts.Seed
	}
	if v, ok := m.Scalar("random_seed"); ok {
		return int64(v)
	}
	return time.Now().UnixNano()
}
