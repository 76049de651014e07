package schema

// Schema maps port or field names to their expected types.
// Example: {"molecules": Keyed(species, Record(...)), "time": Float()}
type Schema map[string]Type

// Validate checks every port of schema against data and returns all failures
// as an *AggregateError. An empty schema accepts anything.
func Validate(schema Schema, data map[string]any) error {
	var errs []error
	for _, name := range sortedKeys(schema) {
		if err := checkField(schema[name], name, data); err != nil {
			errs = append(errs, err)
		}
	}
	return aggregate(errs)
}

// ValidateFields checks only the named ports. Naming a port the schema does
// not declare is a failure.
func ValidateFields(schema Schema, data map[string]any, fields ...string) error {
	var errs []error
	for _, name := range fields {
		t, declared := schema[name]
		if !declared {
			errs = append(errs, &ValidationError{Key: name, Reason: "not defined in schema"})
			continue
		}
		if err := checkField(t, name, data); err != nil {
			errs = append(errs, err)
		}
	}
	return aggregate(errs)
}

func checkField(t Type, name string, data map[string]any) error {
	value, ok := data[name]
	if !ok {
		return &ValidationError{Key: name, Reason: "required"}
	}
	if err := t.Validate(value); err != nil {
		return &ValidationError{Key: name, Reason: err.Error(), Value: value}
	}
	return nil
}
