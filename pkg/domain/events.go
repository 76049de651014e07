package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventIntervalStart EventType = "interval_start"
	EventIntervalEnd   EventType = "interval_end"
	EventRedistribute  EventType = "redistribute"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Process   string    `json:"process"`
}

// IntervalEvent is emitted around every Update call.
type IntervalEvent struct {
	EventBase
	Interval float64        `json:"interval"`
	SimTime  float64        `json:"sim_time"`
	Counts   map[string]int `json:"counts,omitempty"`
	Deltas   map[string]int `json:"deltas,omitempty"`
	Duration time.Duration  `json:"duration,omitempty"`
	Err      error          `json:"-"`
}

// RedistributeEvent is emitted after a species population has been re-seeded.
type RedistributeEvent struct {
	EventBase
	Species string `json:"species"`
	Count   int    `json:"count"`
	Killed  bool   `json:"killed"`
}

// LifecycleHooks defines callbacks for adapter observability.
type LifecycleHooks struct {
	OnIntervalStart func(context.Context, *IntervalEvent)
	OnIntervalEnd   func(context.Context, *IntervalEvent)
	OnRedistribute  func(context.Context, *RedistributeEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnIntervalStart: chain(h.OnIntervalStart, other.OnIntervalStart),
		OnIntervalEnd:   chain(h.OnIntervalEnd, other.OnIntervalEnd),
		OnRedistribute:  chain(h.OnRedistribute, other.OnRedistribute),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
