package middleware

import (
	"context"

	"github.com/aretw0/brownian/pkg/domain"
	"github.com/aretw0/brownian/pkg/ports"
)

type sample struct {
	ports.StateStore
	every int
}

// Sample stores only snapshots whose step is a multiple of every.
// Step 0 is always stored. every <= 1 stores everything.
func Sample(every int) Middleware {
	return func(next ports.StateStore) ports.StateStore {
		if every <= 1 {
			return next
		}
		return &sample{StateStore: next, every: every}
	}
}

func (m *sample) Append(ctx context.Context, runID string, snap *domain.Snapshot) error {
	if snap.Step%m.every != 0 {
		return nil
	}
	return m.StateStore.Append(ctx, runID, snap)
}
