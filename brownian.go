package brownian

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/brownian/internal/runtime"
	"github.com/aretw0/brownian/pkg/adapters/memory"
	"github.com/aretw0/brownian/pkg/config"
	"github.com/aretw0/brownian/pkg/domain"
	"github.com/aretw0/brownian/pkg/model"
	"github.com/aretw0/brownian/pkg/ports"
	"github.com/aretw0/brownian/pkg/registry"
	"github.com/aretw0/brownian/pkg/schema"
)

// ProcessName is the name Register uses.
const ProcessName = "smoldyn"

// Version is the library version, overridden at link time for releases.
var Version = "v0.1.0-dev"

// Process is the high-level entry point of the library.
// It wraps one loaded simulation behind the ports.Process contract.
type Process struct {
	adapter *runtime.Adapter
	factory ports.SimulatorFactory
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	cache   *model.Cache
	name    string
}

var _ ports.Process = (*Process)(nil)

// Option defines a functional option for configuring a Process.
type Option func(*Process)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(p *Process) {
		p.hooks = p.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Process) {
		p.logger = logger
	}
}

// WithSimulatorFactory injects the simulator backend, bypassing the reference simulator.
func WithSimulatorFactory(f ports.SimulatorFactory) Option {
	return func(p *Process) {
		p.factory = f
	}
}

// WithModelCache shares parsed model files across processes built with it.
func WithModelCache(c *model.Cache) Option {
	return func(p *Process) {
		p.cache = c
	}
}

// WithName overrides the process name used in events and logs (default: "smoldyn").
func WithName(name string) Option {
	return func(p *Process) {
		p.name = name
	}
}

// New loads the configured model and prepares it for driving.
func New(cfg config.Config, opts ...Option) (*Process, error) {
	p := &Process{name: ProcessName}
	for _, opt := range opts {
		opt(p)
	}
	if p.factory == nil {
		p.factory = memory.NewFactory()
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	a, err := runtime.Open(cfg, p.factory,
		runtime.WithLogger(p.logger),
		runtime.WithLifecycleHooks(p.hooks),
		runtime.WithName(p.name),
		runtime.WithModelCache(p.cache),
	)
	if err != nil {
		return nil, err
	}
	p.adapter = a
	return p, nil
}

// NewFromMap decodes an engine-supplied configuration map and calls New.
func NewFromMap(raw map[string]any, opts ...Option) (*Process, error) {
	cfg, err := config.Decode(raw)
	if err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

// Register adds the process constructor to reg under ProcessName.
// opts are applied to every process the registry builds.
func Register(reg *registry.Registry, opts ...Option) {
	reg.Register(ProcessName, func(raw map[string]any) (ports.Process, error) {
		return NewFromMap(raw, opts...)
	})
}

// Name returns the process name.
func (p *Process) Name() string { return p.name }

// Schema returns the port schema.
func (p *Process) Schema() schema.Schema { return p.adapter.Schema() }

// InitialState returns the starting state of every port.
func (p *Process) InitialState() (map[string]any, error) { return p.adapter.InitialState() }

// Update advances the simulation by interval from state and returns the changes.
func (p *Process) Update(ctx context.Context, state map[string]any, interval float64) (map[string]any, error) {
	return p.adapter.Update(ctx, state, interval)
}

// Redistribute re-seeds a species uniformly inside the process boundaries.
func (p *Process) Redistribute(ctx context.Context, species string, count int, kill bool) error {
	return p.adapter.Redistribute(ctx, species, count, kill)
}

// Species returns the resolved species names in simulator order.
func (p *Process) Species() []string { return p.adapter.Species().Names() }

// Boundaries returns the placement box.
func (p *Process) Boundaries() domain.Boundaries { return p.adapter.Boundaries() }

// Time returns the current simulation time.
func (p *Process) Time() float64 { return p.adapter.Time() }

// Close releases the simulation.
func (p *Process) Close() error { return p.adapter.Close() }
