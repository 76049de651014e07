package dsl

import (
	"fmt"
	"strings"

	"github.com/aretw0/brownian/pkg/ports"
	"github.com/aretw0/brownian/pkg/registry"
	"github.com/mitchellh/mapstructure"
)

// ProcessSpec describes a process entry and its wiring.
type ProcessSpec struct {
	// Path locates the entry; filled in by Processes.
	Path    []string
	Type    string
	Address string
	Config  map[string]any
	Inputs  map[string][]string
	Outputs map[string][]string
}

// processEntry is the stored form of a ProcessSpec.
type processEntry struct {
	Type    string         `mapstructure:"_type"`
	Address string         `mapstructure:"address"`
	Config  map[string]any `mapstructure:"config"`
	Wires   struct {
		Inputs  map[string][]string `mapstructure:"inputs"`
		Outputs map[string][]string `mapstructure:"outputs"`
	} `mapstructure:"wires"`
}

// Name returns the registry name from an address such as "local:smoldyn".
func (p ProcessSpec) Name() string {
	if i := strings.IndexByte(p.Address, ':'); i >= 0 {
		return p.Address[i+1:]
	}
	return p.Address
}

// ID joins the entry path with dots.
func (p ProcessSpec) ID() string { return strings.Join(p.Path, ".") }

func (p ProcessSpec) tree() map[string]any {
	kind := p.Type
	if kind == "" {
		kind = TypeProcess
	}
	cfg := p.Config
	if cfg == nil {
		cfg = map[string]any{}
	}
	return map[string]any{
		TypeKey:   kind,
		"address": p.Address,
		"config":  cfg,
		"wires": map[string]any{
			"inputs":  wires(p.Inputs),
			"outputs": wires(p.Outputs),
		},
	}
}

func wires(w map[string][]string) map[string]any {
	out := make(map[string]any, len(w))
	for port, target := range w {
		out[port] = append([]string(nil), target...)
	}
	return out
}

// Simulation configures a timed run of a model on a simulator.
type Simulation struct {
	SimulatorID string   `mapstructure:"simulator_id"`
	ModelID     string   `mapstructure:"model_id"`
	StartTime   float64  `mapstructure:"start_time"`
	EndTime     float64  `mapstructure:"end_time"`
	Points      int      `mapstructure:"number_of_points"`
	Observables []string `mapstructure:"observables"`
}

func (s Simulation) tree() map[string]any {
	obs := s.Observables
	if obs == nil {
		obs = []string{}
	}
	return map[string]any{
		"simulator_id":     s.SimulatorID,
		"model_id":         s.ModelID,
		"start_time":       s.StartTime,
		"end_time":         s.EndTime,
		"number_of_points": s.Points,
		"observables":      obs,
	}
}

// Interval returns the step between output points.
func (s Simulation) Interval() float64 {
	if s.Points <= 0 {
		return s.EndTime - s.StartTime
	}
	return (s.EndTime - s.StartTime) / float64(s.Points)
}

// Processes returns every process entry in the tree, ordered by path.
func (b *Builder) Processes() ([]ProcessSpec, error) {
	var out []ProcessSpec
	err := walk(b.tree, nil, func(path []string, m map[string]any) (bool, error) {
		if m[TypeKey] != TypeProcess {
			return true, nil
		}
		var entry processEntry
		if err := decode(m, &entry); err != nil {
			return false, fmt.Errorf("process %s: %w", strings.Join(path, "."), err)
		}
		out = append(out, ProcessSpec{
			Path:    path,
			Type:    entry.Type,
			Address: entry.Address,
			Config:  entry.Config,
			Inputs:  entry.Wires.Inputs,
			Outputs: entry.Wires.Outputs,
		})
		return false, nil
	})
	return out, err
}

// Simulations returns every simulation entry in the tree keyed by dotted path.
func (b *Builder) Simulations() (map[string]Simulation, error) {
	out := make(map[string]Simulation)
	err := walk(b.tree, nil, func(path []string, m map[string]any) (bool, error) {
		if m[TypeKey] != TypeSimulation {
			return true, nil
		}
		var sim Simulation
		if err := decode(m["config"], &sim); err != nil {
			return false, fmt.Errorf("simulation %s: %w", strings.Join(path, "."), err)
		}
		out[strings.Join(path, ".")] = sim
		return false, nil
	})
	return out, err
}

// Instantiate builds every process entry through reg, keyed by dotted path.
// Processes already built are closed if a later one fails.
func (b *Builder) Instantiate(reg *registry.Registry) (map[string]ports.Process, error) {
	specs, err := b.Processes()
	if err != nil {
		return nil, err
	}
	out := make(map[string]ports.Process, len(specs))
	for _, spec := range specs {
		proc, err := reg.New(spec.Name(), spec.Config)
		if err != nil {
			closeAll(out)
			return nil, fmt.Errorf("process %s: %w", spec.ID(), err)
		}
		out[spec.ID()] = proc
	}
	return out, nil
}

func closeAll(procs map[string]ports.Process) {
	for _, p := range procs {
		if c, ok := p.(interface{ Close() error }); ok {
			_ = c.Close()
		}
	}
}

func decode(in any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

// walk visits maps depth first in key order. fn returns whether to descend.
func walk(m map[string]any, path []string, fn func([]string, map[string]any) (bool, error)) error {
	for _, key := range sortedKeys(m) {
		child, ok := m[key].(map[string]any)
		if !ok {
			continue
		}
		p := append(append([]string(nil), path...), key)
		descend, err := fn(p, child)
		if err != nil {
			return err
		}
		if descend {
			if err := walk(child, p, fn); err != nil {
				return err
			}
		}
	}
	return nil
}
