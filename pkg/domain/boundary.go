package domain

import (
	"fmt"
	"math"
)

// Boundaries is the axis-aligned box molecules are confined to.
type Boundaries struct {
	Low  []float64 `json:"low" yaml:"low" mapstructure:"low"`
	High []float64 `json:"high" yaml:"high" mapstructure:"high"`
}

// NewBoundaries validates and copies low/high.
// Both vectors must be non-empty, of equal length, and satisfy low[i] <= high[i].
func NewBoundaries(low, high []float64) (Boundaries, error) {
	b := Boundaries{
		Low:  append([]float64(nil), low...),
		High: append([]float64(nil), high...),
	}
	if err := b.Validate(); err != nil {
		return Boundaries{}, err
	}
	return b, nil
}

// Validate checks the low <= high invariant on every axis.
func (b Boundaries) Validate() error {
	if len(b.Low) == 0 || len(b.High) == 0 {
		return &BoundaryError{Reason: "low and high must not be empty"}
	}
	if len(b.Low) != len(b.High) {
		return &BoundaryError{Reason: fmt.Sprintf("dimension mismatch: low has %d axes, high has %d", len(b.Low), len(b.High))}
	}
	for i := range b.Low {
		if !finite(b.Low[i]) || !finite(b.High[i]) {
			return &BoundaryError{Axis: i, Low: b.Low[i], High: b.High[i], Reason: fmt.Sprintf("axis %d bounds must be finite", i)}
		}
		if b.Low[i] > b.High[i] {
			return &BoundaryError{Axis: i, Low: b.Low[i], High: b.High[i]}
		}
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Dim returns the number of axes.
func (b Boundaries) Dim() int { return len(b.Low) }

// Contains reports whether point lies inside the box on its first Dim() axes.
func (b Boundaries) Contains(point []float64) bool {
	if len(point) < b.Dim() {
		return false
	}
	for i := range b.Low {
		if point[i] < b.Low[i] || point[i] > b.High[i] {
			return false
		}
	}
	return true
}
