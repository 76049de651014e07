package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is matched by every validation failure, single or aggregated.
var ErrInvalid = errors.New("state does not match schema")

// ValidationError is one field that failed validation.
type ValidationError struct {
	Key    string
	Reason string
	// Value is the offending value, nil when the field is absent.
	Value any
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("field %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("field %q: %s (got %T)", e.Key, e.Reason, e.Value)
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// AggregateError collects the failures of one validation pass, in field order.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, err)
	}
	return b.String()
}

func (e *AggregateError) Unwrap() []error { return e.Errors }

// ValidationErrors returns the individual failures of an aggregated error,
// also when it is wrapped. Any other error yields nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
