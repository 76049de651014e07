package runner_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/brownian"
	"github.com/aretw0/brownian/pkg/adapters/memory"
	"github.com/aretw0/brownian/pkg/domain"
	"github.com/aretw0/brownian/pkg/runner"
	"github.com/aretw0/brownian/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decayProcess halves its count every interval and records the intervals it saw.
type decayProcess struct {
	intervals []float64
	failAt    int
}

func (p *decayProcess) Schema() schema.Schema {
	return schema.Schema{"count": schema.Int()}
}

func (p *decayProcess) InitialState() (map[string]any, error) {
	return map[string]any{"count": 64}, nil
}

func (p *decayProcess) Update(_ context.Context, state map[string]any, interval float64) (map[string]any, error) {
	p.intervals = append(p.intervals, interval)
	if p.failAt > 0 && len(p.intervals) == p.failAt {
		return nil, errors.New("native crash")
	}
	n := state["count"].(int)
	return map[string]any{"count": -n / 2}, nil
}

func TestRun_AccumulatesAndStores(t *testing.T) {
	store := memory.NewStore()
	r := runner.New(runner.WithStore(store), runner.WithRunID("decay"))
	p := &decayProcess{}

	res, err := r.Run(context.Background(), p, 3, 1)
	require.NoError(t, err)

	assert.True(t, res.Completed)
	assert.Equal(t, 3, res.Steps)
	assert.Equal(t, 8, res.State["count"])
	assert.Equal(t, []float64{1, 1, 1}, p.intervals)

	snaps, err := r.Results(context.Background())
	require.NoError(t, err)
	require.Len(t, snaps, 4, "initial state plus one per interval")
	assert.Equal(t, 64, snaps[0].State["count"])
	assert.Equal(t, 32, snaps[1].State["count"])
	assert.Equal(t, 3.0, snaps[3].Time)
}

func TestRun_ShortensLastInterval(t *testing.T) {
	p := &decayProcess{}
	res, err := runner.New().Run(context.Background(), p, 2.5, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 0.5}, p.intervals)
	assert.InDelta(t, 2.5, res.Time, 1e-12)
}

func TestRun_Errors(t *testing.T) {
	_, err := runner.New().Run(context.Background(), &decayProcess{}, 10, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInterval)

	res, err := runner.New().Run(context.Background(), &decayProcess{failAt: 2}, 10, 1)
	assert.ErrorContains(t, err, "native crash")
	assert.Equal(t, 1, res.Steps)
	assert.False(t, res.Completed)

	_, err = runner.New().Results(context.Background())
	assert.Error(t, err)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var seen int
	r := runner.New(runner.WithObserver(func(s *domain.Snapshot) {
		seen++
		if s.Step == 1 {
			cancel()
		}
	}))

	res, err := r.Run(ctx, &decayProcess{}, 10, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, res.Steps)
	assert.Equal(t, 2, seen)
}

func TestRun_Brownian(t *testing.T) {
	p, err := brownian.NewFromMap(map[string]any{
		"model_path": "../../models/decay.txt",
		"seed":       3,
	})
	require.NoError(t, err)
	defer p.Close()

	store := memory.NewStore()
	r := runner.New(runner.WithStore(store), runner.WithRunID("decay"))
	res, err := r.Run(context.Background(), p, 2, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Steps)

	snaps, err := store.Load(context.Background(), "decay")
	require.NoError(t, err)
	require.Len(t, snaps, 5)

	count := func(s *domain.Snapshot) int {
		return s.State["molecules"].(map[string]any)["A"].(map[string]any)["count"].(int)
	}
	assert.Equal(t, 500, count(snaps[0]))
	for i := 1; i < len(snaps); i++ {
		assert.LessOrEqual(t, count(snaps[i]), count(snaps[i-1]), "decay never adds molecules")
	}
	final := snaps[len(snaps)-1].State["molecules"].(map[string]any)["A"].(map[string]any)
	assert.Len(t, final["coordinates"], 3*count(snaps[len(snaps)-1]))
}
