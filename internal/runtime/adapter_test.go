package runtime

import (
	"context"
	"sort"
	"testing"

	"github.com/aretw0/brownian/pkg/adapters/memory"
	"github.com/aretw0/brownian/pkg/domain"
	"github.com/aretw0/brownian/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T, seed int64, opts ...Option) *Adapter {
	t.Helper()
	cfg := testConfig()
	cfg.Seed = seed
	b, err := domain.NewBoundaries([]float64{0, 0}, []float64{10, 10})
	require.NoError(t, err)
	cfg.Boundaries = &b
	cfg.Features.SpeciesCounts = true

	a, err := Open(cfg, memory.NewFactory(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestScenario_RedGreen(t *testing.T) {
	run := func() map[string]any {
		a := openMemory(t, 2024)
		update, err := a.Update(context.Background(), molecules(map[string]int{"red": 250, "green": 5}), 10)
		require.NoError(t, err)
		return update
	}

	first := run()
	mols := first[domain.PortMolecules].(map[string]any)
	assert.Equal(t, []string{"green", "red"}, keys(mols))

	// Nothing reacts in this model, so populations are conserved.
	for _, name := range []string{"red", "green"} {
		assert.Equal(t, 0, mols[name].(map[string]any)[domain.FieldCount])
	}
	red := mols["red"].(map[string]any)[domain.FieldCoordinates].([]float64)
	assert.Len(t, red, 2*250)

	second := run()
	assert.Equal(t, first, second, "same seed must reproduce the interval")
}

func TestSchemaKeysMatchStates(t *testing.T) {
	a := openMemory(t, 1)
	species := []string{"green", "red"}

	desc, err := a.Schema().Describe()
	require.NoError(t, err)
	assert.Equal(t, species, keys(desc[domain.PortMolecules].(map[string]any)))
	assert.Equal(t, species, keys(desc[domain.PortSpeciesCounts].(map[string]any)))

	initial, err := a.InitialState()
	require.NoError(t, err)
	require.NoError(t, schema.Validate(a.Schema(), initial))
	assert.Equal(t, species, keys(initial[domain.PortMolecules].(map[string]any)))
	assert.Equal(t, 250, initial[domain.PortSpeciesCounts].(map[string]any)["red"])

	update, err := a.Update(context.Background(), initial, 0.5)
	require.NoError(t, err)
	require.NoError(t, schema.Validate(a.Schema(), update))
	assert.Equal(t, species, keys(update[domain.PortMolecules].(map[string]any)))
}

func TestRedistribute_CountAndBox(t *testing.T) {
	a := openMemory(t, 9)
	ctx := context.Background()

	require.NoError(t, a.Redistribute(ctx, "red", 40, true))
	require.NoError(t, a.Redistribute(ctx, "red", 40, true))

	initial, err := a.InitialState()
	require.NoError(t, err)
	red := initial[domain.PortMolecules].(map[string]any)["red"].(map[string]any)
	assert.Equal(t, 40, red[domain.FieldCount], "re-seeding with kill is idempotent on count")

	h, err := a.Advance(ctx, map[string]int{"red": 40, "green": 5}, 0.01)
	require.NoError(t, err)
	assert.Equal(t, 40, h.Counts["red"])
	assert.Equal(t, 0, h.Deltas["red"])
	coords := h.Coordinates["red"]
	require.Len(t, coords, 80)
	for _, x := range coords {
		assert.GreaterOrEqual(t, x, 0.0)
		assert.LessOrEqual(t, x, 10.0)
	}
}

func TestSpeciesOverrides(t *testing.T) {
	cfg := testConfig()
	cfg.Seed = 1
	cfg.SpeciesOverrides = map[string]int{"green": 50}

	a, err := Open(cfg, memory.NewFactory())
	require.NoError(t, err)
	defer a.Close()

	initial, err := a.InitialState()
	require.NoError(t, err)
	mols := initial[domain.PortMolecules].(map[string]any)
	assert.Equal(t, 50, mols["green"].(map[string]any)[domain.FieldCount])
	assert.Equal(t, 250, mols["red"].(map[string]any)[domain.FieldCount])
}

func TestHooks(t *testing.T) {
	var starts, ends, redistributions int
	var lastEnd *domain.IntervalEvent
	hooks := domain.LifecycleHooks{
		OnIntervalStart: func(context.Context, *domain.IntervalEvent) { starts++ },
		OnIntervalEnd: func(_ context.Context, ev *domain.IntervalEvent) {
			ends++
			lastEnd = ev
		},
		OnRedistribute: func(context.Context, *domain.RedistributeEvent) { redistributions++ },
	}
	a := openMemory(t, 3, WithLifecycleHooks(hooks), WithName("box"))

	_, err := a.Update(context.Background(), molecules(map[string]int{"red": 10, "green": 2}), 0.1)
	require.NoError(t, err)

	assert.Equal(t, 1, starts)
	assert.Equal(t, 1, ends)
	assert.Equal(t, 2, redistributions)
	require.NotNil(t, lastEnd)
	assert.Equal(t, "box", lastEnd.Process)
	assert.Equal(t, map[string]int{"red": 10, "green": 2}, lastEnd.Counts)
	assert.InDelta(t, 0.1, lastEnd.SimTime, 1e-9)
	assert.NoError(t, lastEnd.Err)
}

func TestReactionsFeature(t *testing.T) {
	cfg := testConfig()
	cfg.ModelPath = "testdata/decay.txt"
	cfg.Seed = 4
	cfg.Features.Reactions = true

	a, err := Open(cfg, memory.NewFactory())
	require.NoError(t, err)
	defer a.Close()

	initial, err := a.InitialState()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"decay": 0.5}, initial[domain.PortReactions])

	update, err := a.Update(context.Background(), initial, 1)
	require.NoError(t, err)
	_, has := update[domain.PortReactions]
	assert.False(t, has, "rate constants are not part of an update")

	delta := update[domain.PortMolecules].(map[string]any)["a"].(map[string]any)[domain.FieldCount].(int)
	assert.Less(t, delta, 0, "first-order decay only removes molecules")
}

func TestOpen_SpeciesNamedSentinel(t *testing.T) {
	cfg := testConfig()
	cfg.Sentinel = "green"

	_, err := Open(cfg, memory.NewFactory())
	require.ErrorIs(t, err, domain.ErrConfiguration)
	assert.ErrorContains(t, err, `"empty"`)
}
