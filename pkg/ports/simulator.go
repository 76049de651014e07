package ports

import (
	"github.com/aretw0/brownian/pkg/domain"
	"github.com/aretw0/brownian/pkg/model"
)

// Simulator is a loaded particle simulation.
// Implementations are not safe for concurrent use; the adapter serialises access.
type Simulator interface {
	// SpeciesCount returns the number of species, including any sentinel entry.
	SpeciesCount() (int, error)
	// SpeciesName returns the name of the species at index i.
	SpeciesName(i int) (string, error)
	// Boundaries returns the low and high corner of the simulation box.
	Boundaries() (low, high []float64, err error)

	// TimeStep returns the simulator's own internal step.
	TimeStep() float64
	// Time returns the current simulation time.
	Time() float64

	// DeclareOutput creates an empty named output buffer.
	DeclareOutput(name string) error
	// BindCommand registers a recording command that fires at the given cadence.
	BindCommand(cmd string, trigger domain.Trigger) error
	// RunCommand executes a command immediately.
	RunCommand(cmd string) error

	// ClearSpecies removes every molecule of a species.
	ClearSpecies(name string) error
	// AddSpeciesUniform places count molecules uniformly inside [low, high].
	AddSpeciesUniform(name string, count int, low, high []float64) error
	// MoleculeCount returns the current population of a species.
	MoleculeCount(name string) (int, error)

	// Run advances the simulation until stop using step dt.
	Run(stop, dt float64) error
	// ReadOutput returns the rows of a buffer, emptying it when clear is set.
	ReadOutput(name string, clear bool) ([]domain.Row, error)

	// Close releases the simulation.
	Close() error
}

// Animator is implemented by simulators that can display their state.
type Animator interface {
	SetAnimate(on bool) error
}

// LoadOptions carries per-load settings for a SimulatorFactory.
type LoadOptions struct {
	// Seed fixes the random stream. Zero defers to the model's random_seed, then to the clock.
	Seed int64
}

// SimulatorFactory creates a Simulator from a validated model.
type SimulatorFactory interface {
	Load(m *model.Model, opts LoadOptions) (Simulator, error)
}

// SimulatorFactoryFunc adapts a function to SimulatorFactory.
type SimulatorFactoryFunc func(m *model.Model, opts LoadOptions) (Simulator, error)

// Load calls f.
func (f SimulatorFactoryFunc) Load(m *model.Model, opts LoadOptions) (Simulator, error) {
	return f(m, opts)
}
