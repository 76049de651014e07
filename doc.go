/*
Package brownian wraps a particle reaction-diffusion simulator as a process that a
pull-based composition engine can drive.

A process loads a simulation description, enumerates its species, and on every
Update re-seeds each species uniformly with the supplied count, runs the
simulator for the requested interval, and reports what changed.

# Contract

  - Schema: the ports the process reads and writes. The "molecules" port maps every
    species to {count, coordinates}.
  - InitialState: the populations declared by the model.
  - Update: counts in the returned state are deltas to be added by the engine;
    coordinates replace the previous positions.

# Usage

	reg := registry.NewRegistry()
	brownian.Register(reg)

	proc, err := reg.New("smoldyn", map[string]any{
	    "model_path": "models/redgreen.txt",
	    "seed":       42,
	})
	if err != nil {
	    log.Fatal(err)
	}

	state, _ := proc.InitialState()
	update, err := proc.Update(ctx, state, 10)

The reference simulator in pkg/adapters/memory backs processes by default. A
native binding can be injected with WithSimulatorFactory.
*/
package brownian
