package runtime

import (
	"fmt"
	"strings"

	"github.com/aretw0/brownian/pkg/domain"
	"github.com/aretw0/brownian/pkg/ports"
)

// resolveSpecies enumerates the simulator's species in index order.
// Index 0 is the simulator's placeholder and must carry the sentinel name; it
// never joins the set. Later names equal to the sentinel are dropped as well.
// The second result is the simulator's species count, placeholder included.
func resolveSpecies(sim ports.Simulator, sentinel string) (domain.SpeciesSet, int, error) {
	n, err := sim.SpeciesCount()
	if err != nil {
		return domain.SpeciesSet{}, 0, fmt.Errorf("failed to count species: %w", err)
	}
	all := make([]domain.Species, 0, n)
	for i := 0; i < n; i++ {
		name, err := sim.SpeciesName(i)
		if err != nil {
			return domain.SpeciesSet{}, 0, fmt.Errorf("failed to read species %d: %w", i, err)
		}
		if i == 0 {
			if !strings.EqualFold(name, sentinel) {
				return domain.SpeciesSet{}, 0, &domain.ConfigurationError{
					Field:  "sentinel",
					Reason: fmt.Sprintf("simulator reports %q at index 0, not %q", name, sentinel),
				}
			}
			continue
		}
		all = append(all, domain.Species{Name: name, Index: i})
	}
	set, err := domain.NewSpeciesSet(sentinel, all...)
	return set, n, err
}

// resolveBoundaries validates the configured override, or the simulator's own box.
func resolveBoundaries(sim ports.Simulator, override *domain.Boundaries) (domain.Boundaries, error) {
	if override != nil {
		return domain.NewBoundaries(override.Low, override.High)
	}
	low, high, err := sim.Boundaries()
	if err != nil {
		return domain.Boundaries{}, fmt.Errorf("failed to read boundaries: %w", err)
	}
	return domain.NewBoundaries(low, high)
}
