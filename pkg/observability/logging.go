package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/brownian/pkg/domain"
)

// LogHooks returns lifecycle hooks that log every event to logger.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnIntervalStart: func(ctx context.Context, e *domain.IntervalEvent) {
			logger.DebugContext(ctx, string(e.Type),
				"process", e.Process,
				"interval", e.Interval,
				"sim_time", e.SimTime,
			)
		},
		OnIntervalEnd: func(ctx context.Context, e *domain.IntervalEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, string(e.Type),
					"process", e.Process,
					"interval", e.Interval,
					"err", e.Err,
				)
				return
			}
			logger.InfoContext(ctx, string(e.Type),
				"process", e.Process,
				"sim_time", e.SimTime,
				"deltas", e.Deltas,
				"duration", e.Duration,
			)
		},
		OnRedistribute: func(ctx context.Context, e *domain.RedistributeEvent) {
			logger.DebugContext(ctx, string(e.Type),
				"process", e.Process,
				"species", e.Species,
				"count", e.Count,
				"killed", e.Killed,
			)
		},
	}
}
