package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/brownian/pkg/config"
	"github.com/aretw0/brownian/pkg/domain"
	"github.com/aretw0/brownian/pkg/model"
	"github.com/aretw0/brownian/pkg/ports"
	"github.com/aretw0/brownian/pkg/schema"
)

// Adapter owns one loaded simulation and exposes it through the process contract.
// Calls are serialised; a call that arrives while another is running fails with domain.ErrBusy.
type Adapter struct {
	name      string
	cfg       config.Config
	model     *model.Model
	sim       ports.Simulator
	species   domain.SpeciesSet
	simCount  int
	bounds    domain.Boundaries
	datasets  []domain.Dataset
	reactions []model.Reaction
	schema    schema.Schema

	logger *slog.Logger
	hooks  domain.LifecycleHooks
	cache  *model.Cache

	mu     sync.Mutex
	closed bool
}

var _ ports.Process = (*Adapter)(nil)

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *Adapter) {
		a.hooks = a.hooks.Merge(hooks)
	}
}

// WithName sets the process name carried by events and log lines.
func WithName(name string) Option {
	return func(a *Adapter) {
		a.name = name
	}
}

// WithModelCache loads the model through c, sharing it with other adapters.
func WithModelCache(c *model.Cache) Option {
	return func(a *Adapter) {
		a.cache = c
	}
}

// Open loads the configured model, resolves species and boundaries, and
// declares the output datasets.
func Open(cfg config.Config, factory ports.SimulatorFactory, opts ...Option) (*Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &Adapter{name: "smoldyn", cfg: cfg, datasets: domain.DefaultDatasets()}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	a.logger = a.logger.With("process", a.name)

	var loadOpts []model.Option
	if cfg.AllowWarnings {
		loadOpts = append(loadOpts, model.WithWarningsAllowed())
	}
	load := model.Load
	if a.cache != nil {
		load = a.cache.Load
	}
	m, err := load(cfg.ModelPath, loadOpts...)
	if err != nil {
		return nil, err
	}
	a.model = m

	sim, err := factory.Load(m, ports.LoadOptions{Seed: cfg.Seed})
	if err != nil {
		return nil, fmt.Errorf("failed to load simulator for %s: %w", m.Path, err)
	}
	a.sim = sim

	if err := a.init(); err != nil {
		_ = sim.Close()
		return nil, err
	}

	a.logger.Info("process ready",
		"model", m.Path,
		"species", a.species.Names(),
		"low", a.bounds.Low,
		"high", a.bounds.High,
		"dt", sim.TimeStep(),
	)
	return a, nil
}

func (a *Adapter) init() error {
	if a.cfg.Animate {
		if an, ok := a.sim.(ports.Animator); ok {
			if err := an.SetAnimate(true); err != nil {
				return fmt.Errorf("failed to enable animation: %w", err)
			}
		} else {
			a.logger.Warn("animation requested but the simulator cannot display")
		}
	}

	species, n, err := resolveSpecies(a.sim, a.cfg.Sentinel)
	if err != nil {
		return err
	}
	a.species, a.simCount = species, n

	bounds, err := resolveBoundaries(a.sim, a.cfg.Boundaries)
	if err != nil {
		return err
	}
	if a.cfg.Boundaries != nil {
		if _, high, err := a.sim.Boundaries(); err == nil && len(high) != bounds.Dim() {
			return &domain.BoundaryError{Reason: fmt.Sprintf("override has %d axes, simulation has %d", bounds.Dim(), len(high))}
		}
	}
	a.bounds = bounds

	for name := range a.cfg.SpeciesOverrides {
		if !a.species.Contains(name) {
			return &domain.UnknownSpeciesError{Name: name}
		}
	}

	if a.cfg.Features.Reactions {
		rxns, err := a.model.Reactions()
		if err != nil {
			return err
		}
		a.reactions = rxns
	}

	for _, ds := range a.datasets {
		if err := a.sim.DeclareOutput(ds.Name); err != nil {
			return fmt.Errorf("failed to declare output %s: %w", ds.Name, err)
		}
		if err := a.sim.BindCommand(ds.Command, ds.Trigger); err != nil {
			return fmt.Errorf("failed to bind %q: %w", ds.Command, err)
		}
	}

	a.schema = buildSchema(a.species.Names(), a.reactionNames(), a.cfg.Features)
	return nil
}

// Name returns the process name.
func (a *Adapter) Name() string { return a.name }

// Species returns the resolved species set.
func (a *Adapter) Species() domain.SpeciesSet { return a.species }

// Boundaries returns the validated placement box.
func (a *Adapter) Boundaries() domain.Boundaries { return a.bounds }

// Model returns the loaded model.
func (a *Adapter) Model() *model.Model { return a.model }

// Time returns the simulator's current time.
func (a *Adapter) Time() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return 0
	}
	return a.sim.Time()
}

// Schema returns the port schema.
func (a *Adapter) Schema() schema.Schema { return a.schema }

// InitialState reports the model's populations, with configured overrides applied.
func (a *Adapter) InitialState() (map[string]any, error) {
	if !a.mu.TryLock() {
		return nil, domain.ErrBusy
	}
	defer a.mu.Unlock()
	if a.closed {
		return nil, domain.ErrClosed
	}

	counts := make(map[string]int, a.species.Len())
	for _, name := range a.species.Names() {
		n, err := a.sim.MoleculeCount(name)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", name, err)
		}
		if override, ok := a.cfg.SpeciesOverrides[name]; ok {
			n = override
		}
		counts[name] = n
	}
	return a.initialState(counts).Tree(), nil
}

// Update runs one interval from the supplied state and returns the changes.
// Counts in the result are deltas; coordinates are the end-of-interval positions.
func (a *Adapter) Update(ctx context.Context, state map[string]any, interval float64) (map[string]any, error) {
	if !a.mu.TryLock() {
		return nil, domain.ErrBusy
	}
	defer a.mu.Unlock()
	if a.closed {
		return nil, domain.ErrClosed
	}

	counts, err := a.decodeCounts(state)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ev := &domain.IntervalEvent{
		EventBase: domain.EventBase{Timestamp: start, Type: domain.EventIntervalStart, Process: a.name},
		Interval:  interval,
		SimTime:   a.sim.Time(),
		Counts:    counts,
	}
	if a.hooks.OnIntervalStart != nil {
		a.hooks.OnIntervalStart(ctx, ev)
	}

	h, err := a.advance(ctx, counts, interval)

	end := &domain.IntervalEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventIntervalEnd, Process: a.name},
		Interval:  interval,
		SimTime:   a.sim.Time(),
		Duration:  time.Since(start),
		Err:       err,
	}
	if h != nil {
		end.Counts = h.Counts
		end.Deltas = h.Deltas
	}
	if a.hooks.OnIntervalEnd != nil {
		a.hooks.OnIntervalEnd(ctx, end)
	}

	if err != nil {
		a.logger.Error("interval failed", "interval", interval, "error", err)
		return nil, err
	}
	a.logger.Debug("interval complete",
		"interval", interval,
		"time", h.Time,
		"deltas", h.Deltas,
		"duration", end.Duration,
	)
	return a.updateState(h).Tree(), nil
}

// Close releases the simulator. Later calls fail with domain.ErrClosed.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	return a.sim.Close()
}
