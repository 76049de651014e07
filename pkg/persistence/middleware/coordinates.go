package middleware

import (
	"context"

	"github.com/aretw0/brownian/pkg/domain"
	"github.com/aretw0/brownian/pkg/ports"
)

type dropCoordinates struct {
	ports.StateStore
}

// DropCoordinates stores snapshots without per-molecule coordinate vectors,
// keeping counts only. The caller's snapshot is not modified.
func DropCoordinates() Middleware {
	return func(next ports.StateStore) ports.StateStore {
		return &dropCoordinates{StateStore: next}
	}
}

func (m *dropCoordinates) Append(ctx context.Context, runID string, snap *domain.Snapshot) error {
	mols, ok := snap.State[domain.PortMolecules].(map[string]any)
	if !ok {
		return m.StateStore.Append(ctx, runID, snap)
	}

	stripped := make(map[string]any, len(mols))
	for name, v := range mols {
		rec, ok := v.(map[string]any)
		if !ok {
			stripped[name] = v
			continue
		}
		out := make(map[string]any, len(rec))
		for k, fv := range rec {
			if k != domain.FieldCoordinates {
				out[k] = fv
			}
		}
		stripped[name] = out
	}

	state := make(domain.Tree, len(snap.State))
	for k, v := range snap.State {
		state[k] = v
	}
	state[domain.PortMolecules] = stripped

	c := *snap
	c.State = state
	return m.StateStore.Append(ctx, runID, &c)
}
