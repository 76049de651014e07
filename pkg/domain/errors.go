package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration is returned when a required configuration parameter is missing or invalid.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrModelValidation is returned when a model description fails validation.
	ErrModelValidation = errors.New("model validation failed")

	// ErrUnknownSpecies is returned when a state references a species absent from the SpeciesSet.
	ErrUnknownSpecies = errors.New("unknown species")

	// ErrMissingSpecies is returned when a state omits a member of the SpeciesSet.
	ErrMissingSpecies = errors.New("missing species")

	// ErrEmptyOutput is returned when a declared output dataset produced no rows for an interval.
	ErrEmptyOutput = errors.New("empty output dataset")

	// ErrInvalidBoundary is returned when a boundary box violates low <= high.
	ErrInvalidBoundary = errors.New("invalid boundary")

	// ErrInvalidInterval is returned when an interval is not strictly positive.
	ErrInvalidInterval = errors.New("interval must be greater than zero")

	// ErrNegativeCount is returned when a molecule count is below zero.
	ErrNegativeCount = errors.New("molecule count must not be negative")

	// ErrBusy is returned when Update is invoked while another interval is in flight.
	ErrBusy = errors.New("process is already advancing an interval")

	// ErrClosed is returned when a closed process is used.
	ErrClosed = errors.New("process is closed")

	// ErrProcessNotFound is returned when a registry has no constructor for a name.
	ErrProcessNotFound = errors.New("process not found")

	// ErrRunNotFound is returned when a run ID cannot be found in the store.
	ErrRunNotFound = errors.New("run not found")
)

// ConfigurationError reports the configuration field that failed.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config field %q: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// ModelValidationError carries the validator's error and warning lists.
type ModelValidationError struct {
	Path     string
	Errors   []string
	Warnings []string
}

func (e *ModelValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "model %s: %d error(s), %d warning(s)", e.Path, len(e.Errors), len(e.Warnings))
	for _, msg := range e.Errors {
		b.WriteString("\n  error: " + msg)
	}
	for _, msg := range e.Warnings {
		b.WriteString("\n  warning: " + msg)
	}
	return b.String()
}

func (e *ModelValidationError) Unwrap() error { return ErrModelValidation }

// UnknownSpeciesError names the offending species.
type UnknownSpeciesError struct {
	Name string
}

func (e *UnknownSpeciesError) Error() string {
	return fmt.Sprintf("unknown species %q", e.Name)
}

func (e *UnknownSpeciesError) Unwrap() error { return ErrUnknownSpecies }

// MissingSpeciesError names the species absent from a state.
type MissingSpeciesError struct {
	Name string
}

func (e *MissingSpeciesError) Error() string {
	return fmt.Sprintf("state is missing species %q", e.Name)
}

func (e *MissingSpeciesError) Unwrap() error { return ErrMissingSpecies }

// EmptyOutputError names the dataset that produced zero rows.
type EmptyOutputError struct {
	Dataset string
}

func (e *EmptyOutputError) Error() string {
	return fmt.Sprintf("output dataset %q produced no rows; check its recording command", e.Dataset)
}

func (e *EmptyOutputError) Unwrap() error { return ErrEmptyOutput }

// BoundaryError reports the first axis where low > high.
type BoundaryError struct {
	Axis   int
	Low    float64
	High   float64
	Reason string
}

func (e *BoundaryError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("boundaries: %s", e.Reason)
	}
	return fmt.Sprintf("boundaries: axis %d has low %g > high %g", e.Axis, e.Low, e.High)
}

func (e *BoundaryError) Unwrap() error { return ErrInvalidBoundary }
