package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/brownian/pkg/domain"
)

// Redistribute replaces the population of a species with count molecules
// placed uniformly inside the adapter's boundaries. With kill unset the new
// molecules are added to the existing ones.
func (a *Adapter) Redistribute(ctx context.Context, name string, count int, kill bool) error {
	if !a.mu.TryLock() {
		return domain.ErrBusy
	}
	defer a.mu.Unlock()
	if a.closed {
		return domain.ErrClosed
	}
	return a.redistribute(ctx, name, count, kill)
}

func (a *Adapter) redistribute(ctx context.Context, name string, count int, kill bool) error {
	if !a.species.Contains(name) {
		return &domain.UnknownSpeciesError{Name: name}
	}
	if count < 0 {
		return fmt.Errorf("species %s: %w", name, domain.ErrNegativeCount)
	}
	if kill {
		if err := a.sim.ClearSpecies(name); err != nil {
			return fmt.Errorf("failed to clear %s: %w", name, err)
		}
	}
	if err := a.sim.AddSpeciesUniform(name, count, a.bounds.Low, a.bounds.High); err != nil {
		return fmt.Errorf("failed to place %s: %w", name, err)
	}

	if a.hooks.OnRedistribute != nil {
		a.hooks.OnRedistribute(ctx, &domain.RedistributeEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRedistribute, Process: a.name},
			Species:   name,
			Count:     count,
			Killed:    kill,
		})
	}
	return nil
}
