package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/brownian/pkg/domain"
	"github.com/aretw0/brownian/pkg/ports"
	"github.com/aretw0/brownian/pkg/schema"
)

// Runner drives one process and records every state it passes through.
type Runner struct {
	// Store receives a snapshot per emitted state. If nil, nothing is recorded.
	Store ports.StateStore

	// Logger is used for progress logging. If nil, a no-op logger is used.
	Logger *slog.Logger

	// RunID names the run in the store. Defaults to a timestamp.
	RunID string

	observers     []func(*domain.Snapshot)
	handleSignals bool
}

// Result summarises a completed (or interrupted) run.
type Result struct {
	RunID     string
	Steps     int
	Time      float64
	State     map[string]any
	Elapsed   time.Duration
	Completed bool
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.Logger == nil {
		r.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if r.RunID == "" {
		r.RunID = "run-" + time.Now().UTC().Format("20060102T150405.000")
	}
	return r
}

// Run advances proc for duration in steps of interval, starting from its initial state.
// The final step is shortened so the run ends exactly at duration.
func (r *Runner) Run(ctx context.Context, proc ports.Process, duration, interval float64) (*Result, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: got %g", domain.ErrInvalidInterval, interval)
	}
	if duration < 0 {
		return nil, fmt.Errorf("duration must not be negative, got %g", duration)
	}
	if r.handleSignals {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
	}

	state, err := proc.InitialState()
	if err != nil {
		return nil, fmt.Errorf("failed to read initial state: %w", err)
	}
	if err := schema.Validate(proc.Schema(), state); err != nil {
		return nil, fmt.Errorf("initial state does not match schema: %w", err)
	}

	res := &Result{RunID: r.RunID, State: state}
	start := time.Now()
	if err := r.emit(ctx, 0, 0, state); err != nil {
		return nil, err
	}

	t := 0.0
	for step := 1; duration-t > 1e-12; step++ {
		if err := ctx.Err(); err != nil {
			r.Logger.Warn("run interrupted", "run", r.RunID, "time", t)
			res.Elapsed = time.Since(start)
			return res, err
		}
		dt := math.Min(interval, duration-t)

		update, err := proc.Update(ctx, state, dt)
		if err != nil {
			res.Elapsed = time.Since(start)
			return res, fmt.Errorf("interval %d at t=%g: %w", step, t, err)
		}
		state = Apply(state, update)
		t += dt

		res.Steps = step
		res.Time = t
		res.State = state
		if err := r.emit(ctx, step, t, state); err != nil {
			return res, err
		}
		r.Logger.Debug("interval applied", "run", r.RunID, "step", step, "time", t)
	}

	res.Elapsed = time.Since(start)
	res.Completed = true
	r.Logger.Info("run complete", "run", r.RunID, "steps", res.Steps, "time", res.Time, "elapsed", res.Elapsed)
	return res, nil
}

// Results gathers the snapshots recorded for this run.
func (r *Runner) Results(ctx context.Context) ([]*domain.Snapshot, error) {
	if r.Store == nil {
		return nil, fmt.Errorf("runner has no store")
	}
	return r.Store.Load(ctx, r.RunID)
}

func (r *Runner) emit(ctx context.Context, step int, t float64, state map[string]any) error {
	snap := domain.NewSnapshot(r.RunID, step, t, copyValue(state).(map[string]any))
	for _, fn := range r.observers {
		fn(snap)
	}
	if r.Store == nil {
		return nil
	}
	if err := r.Store.Append(ctx, r.RunID, snap); err != nil {
		return fmt.Errorf("failed to record step %d: %w", step, err)
	}
	return nil
}
