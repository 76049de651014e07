package memory

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/aretw0/brownian/pkg/domain"
)

type molecule struct {
	species int
	pos     [3]float64
	serial  int64
}

type binding struct {
	trigger domain.Trigger
	cmd     command
}

// reaction is a zero- or first-order reaction resolved to species indices.
type reaction struct {
	name     string
	reactant int // -1 for zero-order
	products []int
	rate     float64
}

// Simulator is a reference implementation of ports.Simulator.
//
// Molecules diffuse as independent Brownian particles, displaced by
// sqrt(2*D*dt)*N(0,1) per axis and reflected at the box walls. Zero- and
// first-order reactions fire stochastically every step. Species index 0 is the
// "empty" sentinel, as in the native engine.
// Not safe for concurrent use.
type Simulator struct {
	dim       int
	low, high []float64
	species   []string
	index     map[string]int
	difc      []float64
	reactions []reaction

	mols   []molecule
	serial int64

	t, dt float64
	rng   *rand.Rand

	outputs  map[string][]domain.Row
	bindings []binding

	animate bool
	closed  bool
}

func (s *Simulator) check() error {
	if s.closed {
		return domain.ErrClosed
	}
	return nil
}

// SpeciesCount returns the number of species including the sentinel.
func (s *Simulator) SpeciesCount() (int, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	return len(s.species), nil
}

// SpeciesName returns the species at index i.
func (s *Simulator) SpeciesName(i int) (string, error) {
	if err := s.check(); err != nil {
		return "", err
	}
	if i < 0 || i >= len(s.species) {
		return "", fmt.Errorf("species index %d out of range [0,%d)", i, len(s.species))
	}
	return s.species[i], nil
}

// Boundaries returns copies of the box corners.
func (s *Simulator) Boundaries() ([]float64, []float64, error) {
	if err := s.check(); err != nil {
		return nil, nil, err
	}
	return append([]float64(nil), s.low...), append([]float64(nil), s.high...), nil
}

// TimeStep returns the model's time_step.
func (s *Simulator) TimeStep() float64 { return s.dt }

// Time returns the current simulation time.
func (s *Simulator) Time() float64 { return s.t }

// SetAnimate records the display flag. The reference simulator has no display.
func (s *Simulator) SetAnimate(on bool) error {
	if err := s.check(); err != nil {
		return err
	}
	s.animate = on
	return nil
}

// DeclareOutput creates an empty buffer. Declaring an existing buffer is a no-op.
func (s *Simulator) DeclareOutput(name string) error {
	if err := s.check(); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("output name must not be empty")
	}
	if _, ok := s.outputs[name]; !ok {
		s.outputs[name] = []domain.Row{}
	}
	return nil
}

// BindCommand registers a command to fire at trigger.
func (s *Simulator) BindCommand(raw string, trigger domain.Trigger) error {
	if err := s.check(); err != nil {
		return err
	}
	if !trigger.Valid() {
		return fmt.Errorf("unsupported command trigger %q", trigger)
	}
	cmd, err := s.parseCommand(raw)
	if err != nil {
		return err
	}
	s.bindings = append(s.bindings, binding{trigger: trigger, cmd: cmd})
	return nil
}

// RunCommand executes a command once, now.
func (s *Simulator) RunCommand(raw string) error {
	if err := s.check(); err != nil {
		return err
	}
	cmd, err := s.parseCommand(raw)
	if err != nil {
		return err
	}
	cmd.exec(s)
	return nil
}

// ClearSpecies removes every molecule of a species.
func (s *Simulator) ClearSpecies(name string) error {
	if err := s.check(); err != nil {
		return err
	}
	idx, err := s.lookup(name)
	if err != nil {
		return err
	}
	s.kill(idx)
	return nil
}

// AddSpeciesUniform places count molecules uniformly in [low, high].
func (s *Simulator) AddSpeciesUniform(name string, count int, low, high []float64) error {
	if err := s.check(); err != nil {
		return err
	}
	idx, err := s.lookup(name)
	if err != nil {
		return err
	}
	if count < 0 {
		return domain.ErrNegativeCount
	}
	if len(low) != s.dim || len(high) != s.dim {
		return fmt.Errorf("placement box has %d/%d axes, simulation has %d", len(low), len(high), s.dim)
	}
	for i := 0; i < count; i++ {
		var pos [3]float64
		for a := 0; a < s.dim; a++ {
			pos[a] = low[a] + s.rng.Float64()*(high[a]-low[a])
		}
		s.add(idx, pos)
	}
	return nil
}

// MoleculeCount returns the population of a species.
func (s *Simulator) MoleculeCount(name string) (int, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	idx, err := s.lookup(name)
	if err != nil {
		return 0, err
	}
	return s.count(idx), nil
}

// Run advances the simulation to stop with step dt.
// B bindings fire once before stepping, E bindings after every step, A bindings once at the end.
func (s *Simulator) Run(stop, dt float64) error {
	if err := s.check(); err != nil {
		return err
	}
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("time step must be positive, got %g", dt)
	}
	if math.IsNaN(stop) || math.IsInf(stop, 0) {
		return fmt.Errorf("stop time must be finite, got %g", stop)
	}
	s.fire(domain.TriggerBefore)
	// Tolerate accumulated rounding so stop lands on a step boundary.
	for s.t+dt/2 < stop {
		s.step(dt)
		s.t += dt
		s.fire(domain.TriggerEvery)
	}
	s.fire(domain.TriggerAfter)
	return nil
}

// ReadOutput returns the rows of a declared buffer.
func (s *Simulator) ReadOutput(name string, clear bool) ([]domain.Row, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	rows, ok := s.outputs[name]
	if !ok {
		return nil, fmt.Errorf("output %q was not declared", name)
	}
	out := make([]domain.Row, len(rows))
	copy(out, rows)
	if clear {
		s.outputs[name] = []domain.Row{}
	}
	return out, nil
}

// Close releases the simulation. Further calls fail with domain.ErrClosed.
func (s *Simulator) Close() error {
	s.closed = true
	s.mols = nil
	s.outputs = nil
	return nil
}

func (s *Simulator) lookup(name string) (int, error) {
	idx, ok := s.index[name]
	if !ok || idx == 0 {
		return 0, &domain.UnknownSpeciesError{Name: name}
	}
	return idx, nil
}

func (s *Simulator) add(species int, pos [3]float64) {
	s.serial++
	s.mols = append(s.mols, molecule{species: species, pos: pos, serial: s.serial})
}

func (s *Simulator) kill(species int) {
	kept := s.mols[:0]
	for _, m := range s.mols {
		if m.species != species {
			kept = append(kept, m)
		}
	}
	s.mols = kept
}

func (s *Simulator) count(species int) int {
	n := 0
	for _, m := range s.mols {
		if m.species == species {
			n++
		}
	}
	return n
}

func (s *Simulator) fire(trigger domain.Trigger) {
	for _, b := range s.bindings {
		if b.trigger == trigger {
			b.cmd.exec(s)
		}
	}
}

func (s *Simulator) step(dt float64) {
	for i := range s.mols {
		m := &s.mols[i]
		d := s.difc[m.species]
		if d == 0 {
			continue
		}
		sigma := math.Sqrt(2 * d * dt)
		for a := 0; a < s.dim; a++ {
			m.pos[a] = reflect(m.pos[a]+sigma*s.rng.NormFloat64(), s.low[a], s.high[a])
		}
	}
	s.react(dt)
}

func (s *Simulator) react(dt float64) {
	if len(s.reactions) == 0 {
		return
	}
	next := make([]molecule, 0, len(s.mols))
	for _, m := range s.mols {
		fired := false
		for _, r := range s.reactions {
			if r.reactant != m.species {
				continue
			}
			if s.rng.Float64() < 1-math.Exp(-r.rate*dt) {
				for _, p := range r.products {
					s.serial++
					next = append(next, molecule{species: p, pos: m.pos, serial: s.serial})
				}
				fired = true
				break
			}
		}
		if !fired {
			next = append(next, m)
		}
	}
	s.mols = next

	vol := 1.0
	for a := 0; a < s.dim; a++ {
		vol *= s.high[a] - s.low[a]
	}
	for _, r := range s.reactions {
		if r.reactant >= 0 {
			continue
		}
		n := poisson(s.rng, r.rate*vol*dt)
		for i := 0; i < n; i++ {
			var pos [3]float64
			for a := 0; a < s.dim; a++ {
				pos[a] = s.low[a] + s.rng.Float64()*(s.high[a]-s.low[a])
			}
			for _, p := range r.products {
				s.add(p, pos)
			}
		}
	}
}

// reflect folds x back into [lo, hi].
func reflect(x, lo, hi float64) float64 {
	width := hi - lo
	if width <= 0 {
		return lo
	}
	for x < lo || x > hi {
		if x < lo {
			x = 2*lo - x
		}
		if x > hi {
			x = 2*hi - x
		}
	}
	return x
}

// poisson draws from a Poisson distribution with mean lambda (Knuth).
func poisson(rng *rand.Rand, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	l := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= l {
			return k
		}
		k++
	}
}
