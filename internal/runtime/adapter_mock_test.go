package runtime

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/aretw0/brownian/pkg/config"
	"github.com/aretw0/brownian/pkg/domain"
	"github.com/aretw0/brownian/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const redGreenModel = "../../pkg/model/testdata/redgreen.txt"

func testConfig() config.Config {
	cfg := config.Default()
	cfg.ModelPath = redGreenModel
	return cfg
}

func molecules(counts map[string]int) map[string]any {
	mols := map[string]any{}
	for name, n := range counts {
		mols[name] = map[string]any{"count": n, "coordinates": []float64{}}
	}
	return map[string]any{domain.PortMolecules: mols}
}

func openMock(t *testing.T, sim *MockSimulator) *Adapter {
	t.Helper()
	a, err := Open(testConfig(), factoryFor(sim))
	require.NoError(t, err)
	return a
}

func expectInterval(sim *MockSimulator, counts []domain.Row, locs []domain.Row) {
	sim.On("Time").Return(0.0)
	sim.On("Run", mock.Anything, mock.Anything).Return(nil)
	expectOutputs(sim, counts, locs)
}

func expectOutputs(sim *MockSimulator, counts []domain.Row, locs []domain.Row) {
	sim.On("ClearSpecies", mock.Anything).Return(nil)
	sim.On("AddSpeciesUniform", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	sim.On("ReadOutput", domain.DatasetTime, true).Return([]domain.Row{{0.01}, {10}}, nil)
	sim.On("ReadOutput", domain.DatasetCounts, true).Return(counts, nil)
	sim.On("ReadOutput", domain.DatasetLocations, true).Return(locs, nil)
}

func TestOpen_DeclaresDatasets(t *testing.T) {
	sim := newRedGreenMock([]float64{0, 0}, []float64{10, 10})
	a := openMock(t, sim)

	assert.Equal(t, []string{"red", "green"}, a.Species().Names())
	sim.AssertCalled(t, "DeclareOutput", domain.DatasetCounts)
	sim.AssertCalled(t, "BindCommand", "molcount molecule_counts", domain.TriggerEvery)
	sim.AssertCalled(t, "BindCommand", "listmols molecule_locations", domain.TriggerAfter)
	sim.AssertCalled(t, "BindCommand", "executiontime time", domain.TriggerEvery)
}

func TestOpen_RejectsInvertedBoundaries(t *testing.T) {
	sim := newRedGreenMock([]float64{0, 0}, []float64{-1, 5})

	_, err := Open(testConfig(), factoryFor(sim))
	require.ErrorIs(t, err, domain.ErrInvalidBoundary)

	var be *domain.BoundaryError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 0, be.Axis)

	sim.AssertNotCalled(t, "AddSpeciesUniform", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	sim.AssertCalled(t, "Close")
}

func TestOpen_DuplicateSpecies(t *testing.T) {
	sim := new(MockSimulator)
	sim.On("SpeciesCount").Return(3, nil)
	sim.On("SpeciesName", 0).Return("empty", nil)
	sim.On("SpeciesName", 1).Return("red", nil)
	sim.On("SpeciesName", 2).Return("red", nil)
	sim.On("Close").Return(nil)

	_, err := Open(testConfig(), factoryFor(sim))
	assert.ErrorContains(t, err, "duplicate species")
}

func TestOpen_SentinelMustNamePlaceholder(t *testing.T) {
	sim := newRedGreenMock([]float64{0, 0}, []float64{10, 10})
	cfg := testConfig()
	cfg.Sentinel = "green"

	_, err := Open(cfg, factoryFor(sim))
	require.ErrorIs(t, err, domain.ErrConfiguration)

	var ce *domain.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "sentinel", ce.Field)
	sim.AssertCalled(t, "Close")
}

func TestOpen_SentinelCaseInsensitive(t *testing.T) {
	sim := newRedGreenMock([]float64{0, 0}, []float64{10, 10})
	cfg := testConfig()
	cfg.Sentinel = "EMPTY"

	a, err := Open(cfg, factoryFor(sim))
	require.NoError(t, err)
	assert.Equal(t, []string{"red", "green"}, a.Species().Names())
}

func TestUpdate_CountColumnsFollowSimulatorIndex(t *testing.T) {
	// A second sentinel-named species at index 2 leaves a gap in the set.
	sim := new(MockSimulator)
	sim.On("SpeciesCount").Return(4, nil)
	sim.On("SpeciesName", 0).Return("empty", nil)
	sim.On("SpeciesName", 1).Return("red", nil)
	sim.On("SpeciesName", 2).Return("Empty", nil)
	sim.On("SpeciesName", 3).Return("green", nil)
	sim.On("Boundaries").Return([]float64{0, 0}, []float64{10, 10}, nil)
	sim.On("TimeStep").Return(0.01)
	sim.On("DeclareOutput", mock.Anything).Return(nil)
	sim.On("BindCommand", mock.Anything, mock.Anything).Return(nil)
	sim.On("Close").Return(nil)
	expectInterval(sim, []domain.Row{{1, 7, 99, 4}}, []domain.Row{{1, 0, 1, 1}})
	a := openMock(t, sim)
	require.Equal(t, []string{"red", "green"}, a.Species().Names())

	update, err := a.Update(context.Background(), molecules(map[string]int{"red": 5, "green": 4}), 1)
	require.NoError(t, err)

	mols := update[domain.PortMolecules].(map[string]any)
	assert.Equal(t, 2, mols["red"].(map[string]any)["count"])
	assert.Equal(t, 0, mols["green"].(map[string]any)["count"])
}

func TestOpen_UnknownOverride(t *testing.T) {
	sim := newRedGreenMock([]float64{0, 0}, []float64{10, 10})
	cfg := testConfig()
	cfg.SpeciesOverrides = map[string]int{"blue": 3}

	_, err := Open(cfg, factoryFor(sim))
	assert.ErrorIs(t, err, domain.ErrUnknownSpecies)
}

func TestUpdate_Deltas(t *testing.T) {
	sim := newRedGreenMock([]float64{0, 0}, []float64{10, 10})
	expectInterval(sim,
		[]domain.Row{{0.01, 250, 5}, {10, 240, 7}},
		[]domain.Row{
			{1, 0, 1.5, 2.5, 0, 1},
			{2, 0, 3, 4, 0, 2},
			{1, 0, 5, 6, 0, 3},
		},
	)
	a := openMock(t, sim)

	update, err := a.Update(context.Background(), molecules(map[string]int{"red": 250, "green": 5}), 10)
	require.NoError(t, err)

	mols := update[domain.PortMolecules].(map[string]any)
	red := mols["red"].(map[string]any)
	green := mols["green"].(map[string]any)
	assert.Equal(t, -10, red["count"])
	assert.Equal(t, 2, green["count"])
	assert.Equal(t, []float64{1.5, 2.5, 5, 6}, red["coordinates"])
	assert.Equal(t, []float64{3, 4}, green["coordinates"])

	sim.AssertCalled(t, "ClearSpecies", "red")
	sim.AssertCalled(t, "AddSpeciesUniform", "red", 250, []float64{0, 0}, []float64{10, 10})
	sim.AssertCalled(t, "AddSpeciesUniform", "green", 5, []float64{0, 0}, []float64{10, 10})
	sim.AssertCalled(t, "Run", 10.0, 0.01)
	sim.AssertNumberOfCalls(t, "ReadOutput", 3)
}

func TestUpdate_EmptyOutput(t *testing.T) {
	sim := newRedGreenMock([]float64{0, 0}, []float64{10, 10})
	expectInterval(sim, []domain.Row{}, nil)
	a := openMock(t, sim)

	_, err := a.Update(context.Background(), molecules(map[string]int{"red": 1, "green": 1}), 1)
	require.ErrorIs(t, err, domain.ErrEmptyOutput)

	var eo *domain.EmptyOutputError
	require.ErrorAs(t, err, &eo)
	assert.Equal(t, domain.DatasetCounts, eo.Dataset)
}

func TestUpdate_EmptyLocations(t *testing.T) {
	t.Run("populated", func(t *testing.T) {
		sim := newRedGreenMock([]float64{0, 0}, []float64{10, 10})
		expectInterval(sim, []domain.Row{{1, 3, 0}}, nil)
		a := openMock(t, sim)

		_, err := a.Update(context.Background(), molecules(map[string]int{"red": 3, "green": 0}), 1)
		var eo *domain.EmptyOutputError
		require.ErrorAs(t, err, &eo)
		assert.Equal(t, domain.DatasetLocations, eo.Dataset)
	})

	t.Run("extinct", func(t *testing.T) {
		sim := newRedGreenMock([]float64{0, 0}, []float64{10, 10})
		expectInterval(sim, []domain.Row{{1, 0, 0}}, nil)
		a := openMock(t, sim)

		update, err := a.Update(context.Background(), molecules(map[string]int{"red": 0, "green": 0}), 1)
		require.NoError(t, err)
		red := update[domain.PortMolecules].(map[string]any)["red"].(map[string]any)
		assert.Equal(t, 0, red["count"])
		assert.Equal(t, []float64{}, red["coordinates"])
	})
}

func TestUpdate_CountRowWidth(t *testing.T) {
	sim := newRedGreenMock([]float64{0, 0}, []float64{10, 10})
	expectInterval(sim, []domain.Row{{1, 3}}, nil)
	a := openMock(t, sim)

	_, err := a.Update(context.Background(), molecules(map[string]int{"red": 3, "green": 0}), 1)
	assert.ErrorContains(t, err, "want 3")
}

func TestUpdate_StopIsRelative(t *testing.T) {
	sim := newRedGreenMock([]float64{0, 0}, []float64{10, 10})
	sim.On("Time").Return(30.0)
	sim.On("Run", 40.0, 0.01).Return(nil).Once()
	expectOutputs(sim, []domain.Row{{40, 0, 0}}, nil)
	a := openMock(t, sim)

	_, err := a.Update(context.Background(), molecules(map[string]int{"red": 0, "green": 0}), 10)
	require.NoError(t, err)
	sim.AssertCalled(t, "Run", 40.0, 0.01)
}

func TestUpdate_StateKeys(t *testing.T) {
	sim := newRedGreenMock([]float64{0, 0}, []float64{10, 10})
	a := openMock(t, sim)
	ctx := context.Background()

	_, err := a.Update(ctx, molecules(map[string]int{"red": 1, "green": 1, "blue": 1}), 1)
	var unknown *domain.UnknownSpeciesError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "blue", unknown.Name)

	_, err = a.Update(ctx, molecules(map[string]int{"red": 1}), 1)
	var missing *domain.MissingSpeciesError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "green", missing.Name)

	_, err = a.Update(ctx, map[string]any{}, 1)
	assert.Error(t, err)

	_, err = a.Update(ctx, molecules(map[string]int{"red": -1, "green": 0}), 1)
	assert.ErrorIs(t, err, domain.ErrNegativeCount)

	sim.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestUpdate_InvalidInterval(t *testing.T) {
	sim := newRedGreenMock([]float64{0, 0}, []float64{10, 10})
	sim.On("Time").Return(0.0)
	a := openMock(t, sim)

	_, err := a.Update(context.Background(), molecules(map[string]int{"red": 1, "green": 1}), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInterval)
	sim.AssertNotCalled(t, "AddSpeciesUniform", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_NonFiniteInterval(t *testing.T) {
	for _, interval := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		sim := newRedGreenMock([]float64{0, 0}, []float64{10, 10})
		sim.On("Time").Return(0.0)
		a := openMock(t, sim)

		_, err := a.Update(context.Background(), molecules(map[string]int{"red": 1, "green": 1}), interval)
		assert.ErrorIs(t, err, domain.ErrInvalidInterval, "interval %v", interval)
		sim.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
	}
}

func TestUpdate_RejectsNonIntegerCounts(t *testing.T) {
	sim := newRedGreenMock([]float64{0, 0}, []float64{10, 10})
	sim.On("Time").Return(0.0)
	a := openMock(t, sim)
	ctx := context.Background()

	fractional := map[string]any{domain.PortMolecules: map[string]any{
		"red":   map[string]any{"count": 2.7},
		"green": map[string]any{"count": 1},
	}}
	_, err := a.Update(ctx, fractional, 1)
	assert.ErrorIs(t, err, schema.ErrInvalid)

	quoted := map[string]any{domain.PortMolecules: map[string]any{
		"red":   map[string]any{"count": 1},
		"green": map[string]any{"count": "5"},
	}}
	_, err = a.Update(ctx, quoted, 1)
	assert.ErrorIs(t, err, schema.ErrInvalid)

	sim.AssertNotCalled(t, "AddSpeciesUniform", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	sim.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestUpdate_CancelledBeforeRun(t *testing.T) {
	sim := newRedGreenMock([]float64{0, 0}, []float64{10, 10})
	sim.On("ClearSpecies", mock.Anything).Return(nil)
	sim.On("AddSpeciesUniform", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	sim.On("Time").Return(0.0)
	a := openMock(t, sim)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.Update(ctx, molecules(map[string]int{"red": 1, "green": 1}), 1)
	assert.ErrorIs(t, err, context.Canceled)
	sim.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestUpdate_Busy(t *testing.T) {
	sim := newRedGreenMock([]float64{0, 0}, []float64{10, 10})
	started := make(chan struct{})
	release := make(chan struct{})
	sim.On("Time").Return(0.0)
	sim.On("Run", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(nil)
	expectOutputs(sim, []domain.Row{{1, 0, 0}}, nil)
	a := openMock(t, sim)

	state := molecules(map[string]int{"red": 0, "green": 0})
	done := make(chan error, 1)
	go func() {
		_, err := a.Update(context.Background(), state, 1)
		done <- err
	}()

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("first update never reached Run")
	}
	_, err := a.Update(context.Background(), state, 1)
	assert.ErrorIs(t, err, domain.ErrBusy)

	close(release)
	assert.NoError(t, <-done)
}

func TestClose(t *testing.T) {
	sim := newRedGreenMock([]float64{0, 0}, []float64{10, 10})
	a := openMock(t, sim)

	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
	sim.AssertNumberOfCalls(t, "Close", 1)

	_, err := a.InitialState()
	assert.ErrorIs(t, err, domain.ErrClosed)
	_, err = a.Update(context.Background(), molecules(map[string]int{"red": 0, "green": 0}), 1)
	assert.ErrorIs(t, err, domain.ErrClosed)
	assert.ErrorIs(t, a.Redistribute(context.Background(), "red", 1, true), domain.ErrClosed)
}

func TestRedistribute_Policy(t *testing.T) {
	sim := newRedGreenMock([]float64{0, 0}, []float64{10, 10})
	sim.On("ClearSpecies", "red").Return(nil)
	sim.On("AddSpeciesUniform", "red", 0, mock.Anything, mock.Anything).Return(nil)
	sim.On("AddSpeciesUniform", "red", 4, mock.Anything, mock.Anything).Return(nil)
	a := openMock(t, sim)
	ctx := context.Background()

	require.NoError(t, a.Redistribute(ctx, "red", 0, true), "zero after kill is valid")
	require.NoError(t, a.Redistribute(ctx, "red", 4, false))
	sim.AssertNumberOfCalls(t, "ClearSpecies", 1)

	assert.ErrorIs(t, a.Redistribute(ctx, "blue", 1, true), domain.ErrUnknownSpecies)
	assert.ErrorIs(t, a.Redistribute(ctx, "red", -2, true), domain.ErrNegativeCount)
}
