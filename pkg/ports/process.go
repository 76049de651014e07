package ports

import (
	"context"

	"github.com/aretw0/brownian/pkg/schema"
)

// Process is the contract a composition engine drives.
//
// The engine calls Schema once to learn the ports, InitialState to seed its
// store, then Update repeatedly with the current state and a time interval.
// Update returns the changes produced over the interval; counts are deltas.
type Process interface {
	Schema() schema.Schema
	InitialState() (map[string]any, error)
	Update(ctx context.Context, state map[string]any, interval float64) (map[string]any, error)
}
