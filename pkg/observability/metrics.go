package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/brownian/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "brownian"

// Outcome labels of brownian_intervals_total.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomeEmpty = "empty_output"
	OutcomeBusy  = "busy"
)

// Metrics bundles the Prometheus collectors of a process server.
type Metrics struct {
	gatherer prometheus.Gatherer

	Intervals        *prometheus.CounterVec
	IntervalDuration *prometheus.HistogramVec
	Molecules        *prometheus.GaugeVec
	SimTime          *prometheus.GaugeVec
	Redistributions  *prometheus.CounterVec
}

// NewMetrics registers the collectors against reg, defaulting to the global registry when nil.
// Registering twice on the same registry reuses the existing collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	intervals, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "intervals_total",
		Help:      "Intervals advanced, labeled by process and outcome.",
	}, []string{"process", "outcome"}))
	if err != nil {
		return nil, err
	}
	duration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "interval_duration_seconds",
		Help:      "Wall time spent advancing one interval.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	}, []string{"process"}))
	if err != nil {
		return nil, err
	}
	molecules, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "molecules",
		Help:      "Molecules of each species observed at the end of the last interval.",
	}, []string{"process", "species"}))
	if err != nil {
		return nil, err
	}
	simTime, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sim_time",
		Help:      "Simulation clock after the last interval.",
	}, []string{"process"}))
	if err != nil {
		return nil, err
	}
	redistributions, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "redistributions_total",
		Help:      "Species populations re-seeded uniformly in the box.",
	}, []string{"process", "species"}))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		gatherer:         gatherer,
		Intervals:        intervals,
		IntervalDuration: duration,
		Molecules:        molecules,
		SimTime:          simTime,
		Redistributions:  redistributions,
	}, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnIntervalEnd: func(_ context.Context, e *domain.IntervalEvent) {
			m.Intervals.WithLabelValues(e.Process, outcome(e.Err)).Inc()
			m.IntervalDuration.WithLabelValues(e.Process).Observe(e.Duration.Seconds())
			if e.Err != nil {
				return
			}
			m.SimTime.WithLabelValues(e.Process).Set(e.SimTime)
			for species, n := range e.Counts {
				m.Molecules.WithLabelValues(e.Process, species).Set(float64(n))
			}
		},
		OnRedistribute: func(_ context.Context, e *domain.RedistributeEvent) {
			m.Redistributions.WithLabelValues(e.Process, e.Species).Inc()
		},
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrEmptyOutput):
		return OutcomeEmpty
	case errors.Is(err, domain.ErrBusy):
		return OutcomeBusy
	}
	return OutcomeError
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
			return c, fmt.Errorf("collector already registered with incompatible type: %w", err)
		}
		return c, err
	}
	return c, nil
}
