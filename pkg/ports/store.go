package ports

import (
	"context"

	"github.com/aretw0/brownian/pkg/domain"
)

// StateStore records the snapshots emitted by a driven run.
type StateStore interface {
	// Append adds a snapshot to the run's history.
	Append(ctx context.Context, runID string, snap *domain.Snapshot) error

	// Load returns the run's snapshots in emission order.
	// Returns domain.ErrRunNotFound if the run has no snapshots.
	Load(ctx context.Context, runID string) ([]*domain.Snapshot, error)

	// Delete removes every snapshot of a run.
	Delete(ctx context.Context, runID string) error

	// List returns the IDs of all stored runs.
	List(ctx context.Context) ([]string, error)
}
