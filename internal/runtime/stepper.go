package runtime

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/aretw0/brownian/pkg/domain"
)

// Harvest is what one interval produced.
type Harvest struct {
	// Time is the simulation time recorded by the last time-series row.
	Time float64
	// Counts are the observed populations at the end of the interval.
	Counts map[string]int
	// Deltas are Counts minus the supplied counts.
	Deltas map[string]int
	// Locations are the end-of-interval molecule rows, unconverted.
	Locations []domain.Row
	// Coordinates are the flattened positions of each species' molecules.
	Coordinates map[string][]float64
}

// Advance redistributes every species with its supplied count, runs the
// simulator for interval and harvests the declared outputs.
func (a *Adapter) Advance(ctx context.Context, counts map[string]int, interval float64) (*Harvest, error) {
	if !a.mu.TryLock() {
		return nil, domain.ErrBusy
	}
	defer a.mu.Unlock()
	if a.closed {
		return nil, domain.ErrClosed
	}
	return a.advance(ctx, counts, interval)
}

func (a *Adapter) advance(ctx context.Context, counts map[string]int, interval float64) (*Harvest, error) {
	if interval <= 0 || math.IsNaN(interval) || math.IsInf(interval, 0) {
		return nil, fmt.Errorf("%w: got %g", domain.ErrInvalidInterval, interval)
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	if err := a.species.CheckKeys(names); err != nil {
		return nil, err
	}

	for _, name := range a.species.Names() {
		if err := a.redistribute(ctx, name, counts[name], a.cfg.Features.KillExisting); err != nil {
			return nil, err
		}
	}

	// The native run cannot be interrupted; honour cancellation before it starts.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stop := a.sim.Time() + interval
	if err := a.sim.Run(stop, a.sim.TimeStep()); err != nil {
		return nil, fmt.Errorf("simulation run to %g failed: %w", stop, err)
	}

	out, err := a.readOutputs()
	if err != nil {
		return nil, err
	}
	return a.harvest(out, counts)
}

// readOutputs drains every declared dataset exactly once.
func (a *Adapter) readOutputs() (map[string][]domain.Row, error) {
	out := make(map[string][]domain.Row, len(a.datasets))
	for _, ds := range a.datasets {
		rows, err := a.sim.ReadOutput(ds.Name, true)
		if err != nil {
			return nil, fmt.Errorf("failed to read output %s: %w", ds.Name, err)
		}
		out[ds.Name] = rows
	}
	return out, nil
}

func (a *Adapter) harvest(out map[string][]domain.Row, supplied map[string]int) (*Harvest, error) {
	for _, ds := range a.datasets {
		if ds.Kind == domain.KindTimeSeries && len(out[ds.Name]) == 0 {
			return nil, &domain.EmptyOutputError{Dataset: ds.Name}
		}
	}

	h := &Harvest{
		Counts:      make(map[string]int, a.species.Len()),
		Deltas:      make(map[string]int, a.species.Len()),
		Coordinates: make(map[string][]float64, a.species.Len()),
	}

	timeRows := out[domain.DatasetTime]
	last := timeRows[len(timeRows)-1]
	if len(last) == 0 {
		return nil, fmt.Errorf("output %s: last row is empty", domain.DatasetTime)
	}
	h.Time = last[0]

	countRows := out[domain.DatasetCounts]
	final := countRows[len(countRows)-1]
	// Column 0 is time and the placeholder is not counted, so species i sits in column i.
	if want := max(a.simCount, 1); len(final) != want {
		return nil, fmt.Errorf("output %s: row has %d fields, want %d", domain.DatasetCounts, len(final), want)
	}
	total := 0
	for _, sp := range a.species.All() {
		observed := int(final[sp.Index])
		h.Counts[sp.Name] = observed
		h.Deltas[sp.Name] = observed - supplied[sp.Name]
		h.Coordinates[sp.Name] = []float64{}
		total += observed
	}

	h.Locations = out[domain.DatasetLocations]
	if len(h.Locations) == 0 && total > 0 {
		return nil, &domain.EmptyOutputError{Dataset: domain.DatasetLocations}
	}
	dim := a.bounds.Dim()
	for _, r := range h.Locations {
		loc := domain.LocationRow(r)
		if err := loc.CheckWidth(); err != nil {
			return nil, fmt.Errorf("output %s: %w", domain.DatasetLocations, err)
		}
		sp, ok := a.species.ByIndex(loc.SpeciesIndex())
		if !ok {
			continue
		}
		h.Coordinates[sp.Name] = append(h.Coordinates[sp.Name], loc.Position(dim)...)
	}
	return h, nil
}
