package schema

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func moleculeSchema(species ...string) Schema {
	return Schema{
		"molecules": Keyed(species, Record(Schema{
			"count":       Int(),
			"coordinates": Slice(Float()),
		}, "coordinates")),
	}
}

func TestValidate_Success(t *testing.T) {
	data := map[string]any{
		"molecules": map[string]any{
			"red":   map[string]any{"count": 250},
			"green": map[string]any{"count": 5, "coordinates": []float64{0.1}},
		},
	}

	if err := Validate(moleculeSchema("red", "green"), data); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_EmptySchema(t *testing.T) {
	if err := Validate(nil, map[string]any{"anything": 1}); err != nil {
		t.Errorf("empty schema should accept anything: %v", err)
	}
}

func TestValidate_MissingPort(t *testing.T) {
	err := Validate(moleculeSchema("red"), map[string]any{})
	if err == nil {
		t.Fatal("Validate() should return error for missing port")
	}

	aggr, ok := err.(*AggregateError)
	if !ok {
		t.Fatalf("error should be *AggregateError, got %T", err)
	}
	ve, ok := aggr.Errors[0].(*ValidationError)
	if !ok || ve.Key != "molecules" || ve.Reason != "required" {
		t.Errorf("error = %v, want molecules required", aggr.Errors[0])
	}
}

func TestValidate_NestedMismatch(t *testing.T) {
	data := map[string]any{
		"molecules": map[string]any{
			"red": map[string]any{"count": "lots"},
		},
	}

	err := Validate(moleculeSchema("red"), data)
	if err == nil {
		t.Fatal("Validate() should reject a string count")
	}
	if !strings.Contains(err.Error(), `"molecules"`) || !strings.Contains(err.Error(), `"count"`) {
		t.Errorf("error should name the port and field: %v", err)
	}
}

func TestValidate_MultipleErrorsSorted(t *testing.T) {
	s := Schema{
		"time":    Float(),
		"animate": Bool(),
		"seed":    Int(),
	}

	err := Validate(s, map[string]any{"time": "x", "seed": 1.5})
	errs := ValidationErrors(err)
	if len(errs) != 3 {
		t.Fatalf("got %d errors, want 3", len(errs))
	}
	keys := []string{}
	for _, e := range errs {
		keys = append(keys, e.(*ValidationError).Key)
	}
	if strings.Join(keys, ",") != "animate,seed,time" {
		t.Errorf("error order = %v", keys)
	}
	if !strings.HasPrefix(err.Error(), "3 validation errors") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestValidateFields(t *testing.T) {
	s := Schema{"time": Float(), "seed": Int()}

	if err := ValidateFields(s, map[string]any{"time": 1.0}, "time"); err != nil {
		t.Errorf("ValidateFields() error = %v", err)
	}
	if err := ValidateFields(s, map[string]any{}, "time", "unknown"); len(ValidationErrors(err)) != 2 {
		t.Errorf("expected missing and undefined errors, got %v", err)
	}
	if err := ValidateFields(s, nil); err != nil {
		t.Errorf("no fields should validate: %v", err)
	}
}

func TestValidationErrorsNonAggregate(t *testing.T) {
	if ValidationErrors(nil) != nil {
		t.Error("nil error should yield nil")
	}
	if ValidationErrors(&ValidationError{Key: "x"}) != nil {
		t.Error("single error should yield nil")
	}
}

func TestValidationErrorsMatchErrInvalid(t *testing.T) {
	err := Validate(Schema{"count": Int()}, map[string]any{"count": 2.7})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("errors.Is(%v, ErrInvalid) = false", err)
	}

	wrapped := fmt.Errorf("port %q: %w", "molecules", err)
	if got := len(ValidationErrors(wrapped)); got != 1 {
		t.Errorf("wrapped aggregate yields %d errors, want 1", got)
	}
	if !errors.Is(&ValidationError{Key: "x", Reason: "required"}, ErrInvalid) {
		t.Error("single ValidationError should match ErrInvalid")
	}
}
