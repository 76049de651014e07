package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/brownian/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	runID := "contract-run-" + time.Now().Format("20060102150405")

	snap := func(step int) *domain.Snapshot {
		return domain.NewSnapshot(runID, step, float64(step)*0.5, domain.Tree{
			domain.PortMolecules: map[string]any{
				"red": map[string]any{"count": 250 + step, "coordinates": []any{}},
			},
		})
	}

	t.Run("Append and Load", func(t *testing.T) {
		require.NoError(t, store.Append(ctx, runID, snap(0)))
		require.NoError(t, store.Append(ctx, runID, snap(1)))

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err)
		require.Len(t, loaded, 2)
		assert.Equal(t, 0, loaded[0].Step)
		assert.Equal(t, 1, loaded[1].Step)
		assert.Equal(t, 0.5, loaded[1].Time)

		mols, ok := loaded[1].State[domain.PortMolecules].(map[string]any)
		require.True(t, ok, "molecules port should survive persistence")
		red, ok := mols["red"].(map[string]any)
		require.True(t, ok)
		// JSON-backed stores return numbers as float64.
		assert.EqualValues(t, 251, red["count"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Append(ctx, runID, snap(2)))

		require.NoError(t, store.Delete(ctx, runID), "Delete should not return error")

		_, err := store.Load(ctx, runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound, "Load after Delete should return ErrRunNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		_ = store.Append(ctx, id1, snap(0))
		_ = store.Append(ctx, id2, snap(0))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		runs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, runs, id1)
		assert.Contains(t, runs, id2)
	})
}
