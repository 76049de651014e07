package tests

import (
	"testing"

	"github.com/aretw0/brownian/pkg/domain"
	"github.com/aretw0/brownian/pkg/model"
	"github.com/aretw0/brownian/pkg/ports"
)

// SimulatorContractTest is a reusable test suite that verifies if an adapter complies with ports.Simulator.
// m must declare at least one species.
func SimulatorContractTest(t *testing.T, factory ports.SimulatorFactory, m *model.Model) {
	t.Helper()

	open := func(t *testing.T) ports.Simulator {
		t.Helper()
		sim, err := factory.Load(m, ports.LoadOptions{Seed: 7})
		if err != nil {
			t.Fatalf("unexpected error loading model: %v", err)
		}
		t.Cleanup(func() { _ = sim.Close() })
		return sim
	}

	t.Run("Species", func(t *testing.T) {
		sim := open(t)
		n, err := sim.SpeciesCount()
		if err != nil {
			t.Fatalf("unexpected error counting species: %v", err)
		}
		if n == 0 {
			t.Fatal("expected at least one species")
		}
		for i := 0; i < n; i++ {
			if _, err := sim.SpeciesName(i); err != nil {
				t.Errorf("species %d: %v", i, err)
			}
		}
		if _, err := sim.SpeciesName(n); err == nil {
			t.Error("expected error for out of range species index")
		}
	})

	t.Run("Boundaries", func(t *testing.T) {
		low, high, err := open(t).Boundaries()
		if err != nil {
			t.Fatalf("unexpected error reading boundaries: %v", err)
		}
		if len(low) == 0 || len(low) != len(high) {
			t.Fatalf("boundary dimensions mismatch: %v %v", low, high)
		}
	})

	t.Run("Population", func(t *testing.T) {
		sim := open(t)
		name := firstSpecies(t, m)
		low, high, _ := sim.Boundaries()

		if err := sim.ClearSpecies(name); err != nil {
			t.Fatalf("clear: %v", err)
		}
		if err := sim.AddSpeciesUniform(name, 17, low, high); err != nil {
			t.Fatalf("add: %v", err)
		}
		got, err := sim.MoleculeCount(name)
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if got != 17 {
			t.Errorf("expected 17 molecules, got %d", got)
		}
		if _, err := sim.MoleculeCount("no-such-species"); err == nil {
			t.Error("expected error counting an unknown species")
		}
	})

	t.Run("Output", func(t *testing.T) {
		sim := open(t)
		if err := sim.DeclareOutput("t"); err != nil {
			t.Fatalf("declare: %v", err)
		}
		if err := sim.BindCommand("executiontime t", domain.Trigger("X")); err == nil {
			t.Error("expected error for unsupported trigger")
		}
		if err := sim.BindCommand("executiontime t", domain.TriggerEvery); err != nil {
			t.Fatalf("bind: %v", err)
		}

		start := sim.Time()
		dt := sim.TimeStep()
		if err := sim.Run(start+5*dt, dt); err != nil {
			t.Fatalf("run: %v", err)
		}
		rows, err := sim.ReadOutput("t", true)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if len(rows) == 0 {
			t.Fatal("expected rows after run")
		}
		rows, _ = sim.ReadOutput("t", false)
		if len(rows) != 0 {
			t.Errorf("expected buffer to be cleared, got %d rows", len(rows))
		}
		if _, err := sim.ReadOutput("undeclared", false); err == nil {
			t.Error("expected error reading an undeclared buffer")
		}
	})
}

func firstSpecies(t *testing.T, m *model.Model) string {
	t.Helper()
	names := m.Species()
	if len(names) == 0 {
		t.Fatal("model declares no species")
	}
	return names[0]
}
