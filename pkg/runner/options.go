package runner

import (
	"log/slog"

	"github.com/aretw0/brownian/pkg/domain"
	"github.com/aretw0/brownian/pkg/ports"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithStore configures where emitted states are recorded.
func WithStore(store ports.StateStore) Option {
	return func(r *Runner) {
		r.Store = store
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithRunID sets the ID snapshots are stored under.
func WithRunID(id string) Option {
	return func(r *Runner) {
		r.RunID = id
	}
}

// WithObserver registers a callback invoked with every emitted snapshot.
func WithObserver(fn func(*domain.Snapshot)) Option {
	return func(r *Runner) {
		r.observers = append(r.observers, fn)
	}
}

// WithSignals stops the run between intervals on SIGINT or SIGTERM.
func WithSignals() Option {
	return func(r *Runner) {
		r.handleSignals = true
	}
}
