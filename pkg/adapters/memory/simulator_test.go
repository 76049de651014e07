package memory_test

import (
	"math"
	"strings"
	"testing"

	"github.com/aretw0/brownian/pkg/adapters/memory"
	"github.com/aretw0/brownian/pkg/domain"
	"github.com/aretw0/brownian/pkg/model"
	"github.com/aretw0/brownian/pkg/ports"
	"github.com/aretw0/brownian/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const boxModel = `dim 2
species red green
difc red 3
difc green 1
time_step 0.01
boundaries 0 0 10
boundaries 1 0 10
mol 250 red u u
mol 5 green 5 5
`

func parse(t *testing.T, src string) *model.Model {
	t.Helper()
	m, err := model.Parse("inline", strings.NewReader(src))
	require.NoError(t, err)
	return m
}

func open(t *testing.T, src string, seed int64) *memory.Simulator {
	t.Helper()
	sim, err := memory.Open(parse(t, src), ports.LoadOptions{Seed: seed})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sim.Close() })
	return sim
}

func TestSimulator_Contract(t *testing.T) {
	m, err := model.Load("../../model/testdata/redgreen.txt")
	require.NoError(t, err)
	tests.SimulatorContractTest(t, memory.NewFactory(), m)
}

func TestSimulator_SentinelAtZero(t *testing.T) {
	sim := open(t, boxModel, 1)

	n, err := sim.SpeciesCount()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	name, err := sim.SpeciesName(0)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSentinel, name)

	_, err = sim.MoleculeCount(domain.DefaultSentinel)
	assert.ErrorIs(t, err, domain.ErrUnknownSpecies)
}

func TestSimulator_InitialPlacement(t *testing.T) {
	sim := open(t, boxModel, 1)

	red, err := sim.MoleculeCount("red")
	require.NoError(t, err)
	assert.Equal(t, 250, red)

	require.NoError(t, sim.DeclareOutput("locs"))
	require.NoError(t, sim.RunCommand("listmols locs"))
	rows, err := sim.ReadOutput("locs", true)
	require.NoError(t, err)
	require.Len(t, rows, 255)

	for _, r := range rows {
		loc := domain.LocationRow(r)
		require.NoError(t, loc.CheckWidth())
		if loc.SpeciesIndex() == 2 {
			assert.Equal(t, []float64{5, 5}, loc.Position(2))
		}
	}
}

func TestSimulator_RunStaysInBox(t *testing.T) {
	sim := open(t, boxModel, 3)
	require.NoError(t, sim.DeclareOutput("locs"))
	require.NoError(t, sim.BindCommand("listmols locs", domain.TriggerAfter))

	require.NoError(t, sim.Run(1, sim.TimeStep()))
	assert.InDelta(t, 1.0, sim.Time(), 1e-9)

	rows, err := sim.ReadOutput("locs", true)
	require.NoError(t, err)
	require.Len(t, rows, 255)
	for _, r := range rows {
		for _, x := range domain.LocationRow(r).Position(2) {
			assert.GreaterOrEqual(t, x, 0.0)
			assert.LessOrEqual(t, x, 10.0)
		}
	}
}

func TestSimulator_Triggers(t *testing.T) {
	sim := open(t, boxModel, 1)
	for _, name := range []string{"before", "every", "after"} {
		require.NoError(t, sim.DeclareOutput(name))
	}
	require.NoError(t, sim.BindCommand("executiontime before", domain.TriggerBefore))
	require.NoError(t, sim.BindCommand("molcount every", domain.TriggerEvery))
	require.NoError(t, sim.BindCommand("executiontime after", domain.TriggerAfter))

	require.NoError(t, sim.Run(0.1, 0.01))

	before, _ := sim.ReadOutput("before", true)
	every, _ := sim.ReadOutput("every", true)
	after, _ := sim.ReadOutput("after", true)

	require.Len(t, before, 1)
	assert.Equal(t, 0.0, before[0][0])
	require.Len(t, every, 10)
	assert.Len(t, every[9], 3, "time plus one column per non-sentinel species")
	assert.Equal(t, []float64{250, 5}, []float64(every[9][1:]))
	require.Len(t, after, 1)
	assert.InDelta(t, 0.1, after[0][0], 1e-9)
}

func TestSimulator_Commands(t *testing.T) {
	sim := open(t, boxModel, 1)

	assert.Error(t, sim.RunCommand("molcount nowhere"), "undeclared output")
	assert.Error(t, sim.RunCommand("teleport red"), "unknown command")
	assert.Error(t, sim.RunCommand("killmol"), "missing argument")
	assert.ErrorIs(t, sim.RunCommand("killmol blue"), domain.ErrUnknownSpecies)

	require.NoError(t, sim.RunCommand("killmol red"))
	n, _ := sim.MoleculeCount("red")
	assert.Zero(t, n)

	require.NoError(t, sim.RunCommand("killmol all"))
	n, _ = sim.MoleculeCount("green")
	assert.Zero(t, n)
}

func TestSimulator_AddUniform(t *testing.T) {
	sim := open(t, boxModel, 1)
	require.NoError(t, sim.ClearSpecies("red"))

	require.NoError(t, sim.AddSpeciesUniform("red", 40, []float64{2, 2}, []float64{3, 3}))
	n, _ := sim.MoleculeCount("red")
	assert.Equal(t, 40, n)

	assert.ErrorIs(t, sim.AddSpeciesUniform("red", -1, []float64{0, 0}, []float64{1, 1}), domain.ErrNegativeCount)
	assert.Error(t, sim.AddSpeciesUniform("red", 1, []float64{0}, []float64{1}))
}

func TestSimulator_Deterministic(t *testing.T) {
	run := func() []domain.Row {
		sim := open(t, boxModel, 42)
		require.NoError(t, sim.DeclareOutput("locs"))
		require.NoError(t, sim.BindCommand("listmols locs", domain.TriggerAfter))
		require.NoError(t, sim.Run(0.5, sim.TimeStep()))
		rows, err := sim.ReadOutput("locs", true)
		require.NoError(t, err)
		return rows
	}
	assert.Equal(t, run(), run())
}

func TestSimulator_FirstOrderDecay(t *testing.T) {
	src := `dim 1
species a b
time_step 0.1
boundaries 0 0 1
mol 500 a u
reaction convert a -> b 100
`
	sim := open(t, src, 5)
	require.NoError(t, sim.Run(1, 0.1))

	a, _ := sim.MoleculeCount("a")
	b, _ := sim.MoleculeCount("b")
	assert.Zero(t, a, "rate*dt = 10 converts every molecule within ten steps")
	assert.Equal(t, 500, b)
}

func TestSimulator_RejectsBimolecular(t *testing.T) {
	m, err := model.Load("../../model/testdata/polymer.txt")
	require.NoError(t, err)

	_, err = memory.NewFactory().Load(m, ports.LoadOptions{})
	assert.ErrorContains(t, err, "bimolecular")
}

func TestSimulator_Closed(t *testing.T) {
	sim := open(t, boxModel, 1)
	require.NoError(t, sim.SetAnimate(true))
	require.NoError(t, sim.Close())

	_, err := sim.SpeciesCount()
	assert.ErrorIs(t, err, domain.ErrClosed)
	assert.ErrorIs(t, sim.Run(1, 0.1), domain.ErrClosed)
}

func TestSimulator_RunRejectsNonFinite(t *testing.T) {
	sim := open(t, boxModel, 1)
	assert.Error(t, sim.Run(math.Inf(1), 0.1))
	assert.Error(t, sim.Run(math.NaN(), 0.1))
	assert.Error(t, sim.Run(1, math.NaN()))
	assert.Zero(t, sim.Time())
}

func TestSimulator_Animator(t *testing.T) {
	var sim ports.Simulator = open(t, boxModel, 1)
	_, ok := sim.(ports.Animator)
	assert.True(t, ok)
}
