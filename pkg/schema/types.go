package schema

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Type defines the contract for field validation.
// Implementations determine how values are validated against a type.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "int").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// Describer is implemented by types whose engine-facing description is nested
// rather than a single type name.
type Describer interface {
	Describe() any
}

// Describe returns the engine-facing description of t: the type name for leaves,
// or a nested map for records and keyed maps.
func Describe(t Type) any {
	if d, ok := t.(Describer); ok {
		return d.Describe()
	}
	return t.Name()
}

// --- Built-in Type Implementations ---

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	_, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

// IntType validates integer values.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return nil
	case float64:
		// Accept floats that are whole numbers (from JSON unmarshaling)
		if v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got float (not a whole number)")
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

// FloatType validates floating-point values.
type FloatType struct{}

func (t *FloatType) Name() string { return "float" }

func (t *FloatType) Validate(value any) error {
	switch value.(type) {
	case float32, float64, int, int8, int16, int32, int64:
		return nil
	default:
		return fmt.Errorf("expected float, got %T", value)
	}
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	_, ok := value.(bool)
	if !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

// SliceType validates slices of a specific element type.
type SliceType struct {
	elemType Type
}

func (t *SliceType) Name() string {
	return fmt.Sprintf("list[%s]", t.elemType.Name())
}

func (t *SliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected list, got %T", value)
	}

	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if err := t.elemType.Validate(elem); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// RecordType validates a nested map against a fixed set of fields.
// Fields listed as optional may be absent; unknown fields are rejected.
type RecordType struct {
	fields   Schema
	optional map[string]bool
}

func (t *RecordType) Name() string { return "record" }

func (t *RecordType) Validate(value any) error {
	m, ok := asMap(value)
	if !ok {
		return fmt.Errorf("expected record, got %T", value)
	}
	var errs []error
	for _, key := range sortedKeys(t.fields) {
		v, exists := m[key]
		if !exists {
			if !t.optional[key] {
				errs = append(errs, &ValidationError{Key: key, Reason: "required"})
			}
			continue
		}
		if err := t.fields[key].Validate(v); err != nil {
			errs = append(errs, &ValidationError{Key: key, Reason: err.Error(), Value: v})
		}
	}
	for key := range m {
		if _, known := t.fields[key]; !known {
			errs = append(errs, &ValidationError{Key: key, Reason: "not defined in schema"})
		}
	}
	return aggregate(errs)
}

func (t *RecordType) Describe() any {
	out := make(map[string]any, len(t.fields))
	for key, ft := range t.fields {
		out[key] = Describe(ft)
	}
	return out
}

// Fields returns the record's field schema.
func (t *RecordType) Fields() Schema { return t.fields }

// KeyedType validates a map whose keys must be exactly a fixed set and whose
// values all share one element type. Used for species-keyed ports.
type KeyedType struct {
	keys []string
	elem Type
}

func (t *KeyedType) Name() string {
	return fmt.Sprintf("map[%s]", t.elem.Name())
}

func (t *KeyedType) Validate(value any) error {
	m, ok := asMap(value)
	if !ok {
		return fmt.Errorf("expected map, got %T", value)
	}
	var errs []error
	allowed := make(map[string]bool, len(t.keys))
	for _, k := range t.keys {
		allowed[k] = true
		v, exists := m[k]
		if !exists {
			errs = append(errs, &ValidationError{Key: k, Reason: "required"})
			continue
		}
		if err := t.elem.Validate(v); err != nil {
			errs = append(errs, &ValidationError{Key: k, Reason: err.Error(), Value: v})
		}
	}
	extra := make([]string, 0)
	for k := range m {
		if !allowed[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		errs = append(errs, &ValidationError{Key: k, Reason: "not defined in schema"})
	}
	return aggregate(errs)
}

func (t *KeyedType) Describe() any {
	out := make(map[string]any, len(t.keys))
	for _, k := range t.keys {
		out[k] = Describe(t.elem)
	}
	return out
}

// Keys returns a copy of the allowed keys, in declaration order.
func (t *KeyedType) Keys() []string {
	return append([]string(nil), t.keys...)
}

// CustomType applies a user-defined validation function.
type CustomType struct {
	name     string
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value any) error {
	return t.validate(value)
}

// --- Factory Functions ---

// String creates a string type validator.
func String() Type { return &StringType{} }

// Int creates an integer type validator.
func Int() Type { return &IntType{} }

// Float creates a float type validator.
func Float() Type { return &FloatType{} }

// Bool creates a boolean type validator.
func Bool() Type { return &BoolType{} }

// Slice creates a slice type validator for elements of the given type.
func Slice(elemType Type) Type {
	return &SliceType{elemType: elemType}
}

// Record creates a record validator. Fields named in optional may be omitted.
func Record(fields Schema, optional ...string) Type {
	opt := make(map[string]bool, len(optional))
	for _, k := range optional {
		opt[k] = true
	}
	return &RecordType{fields: fields, optional: opt}
}

// Keyed creates a validator for maps keyed by exactly keys.
func Keyed(keys []string, elem Type) Type {
	return &KeyedType{keys: append([]string(nil), keys...), elem: elem}
}

// Custom creates a custom type validator with a user-defined function.
func Custom(name string, validate func(any) error) Type {
	return &CustomType{name: name, validate: validate}
}

// ParseType converts a string type name to a Type.
// Supports basic types and lists: "string", "int", "list[float]", "[int]".
func ParseType(typeStr string) (Type, error) {
	typeStr = strings.TrimSpace(typeStr)

	if strings.HasPrefix(typeStr, "list[") && strings.HasSuffix(typeStr, "]") {
		return parseSlice(typeStr[len("list[") : len(typeStr)-1])
	}
	if len(typeStr) > 2 && typeStr[0] == '[' && typeStr[len(typeStr)-1] == ']' {
		return parseSlice(typeStr[1 : len(typeStr)-1])
	}

	switch typeStr {
	case "string":
		return String(), nil
	case "int", "integer":
		return Int(), nil
	case "float", "number":
		return Float(), nil
	case "bool", "boolean":
		return Bool(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}

func parseSlice(elemTypeStr string) (Type, error) {
	elemType, err := ParseType(elemTypeStr)
	if err != nil {
		return nil, err
	}
	return Slice(elemType), nil
}

// ParseTypeMap converts a map of field names to type strings into a Schema.
// Example: {"count": "int", "coordinates": "list[float]"}
func ParseTypeMap(typeMap map[string]string) (Schema, error) {
	result := make(Schema)
	for key, typeStr := range typeMap {
		t, err := ParseType(typeStr)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		result[key] = t
	}
	return result, nil
}

// ParseTree converts a nested description (as produced by Describe) back into a
// Schema. Nested maps become records with every field required.
func ParseTree(tree map[string]any) (Schema, error) {
	result := make(Schema, len(tree))
	for key, value := range tree {
		switch v := value.(type) {
		case string:
			t, err := ParseType(v)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", key, err)
			}
			result[key] = t
		case map[string]any:
			nested, err := ParseTree(v)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", key, err)
			}
			result[key] = Record(nested)
		default:
			return nil, fmt.Errorf("field %s: expected type string or object, got %T", key, value)
		}
	}
	return result, nil
}

func asMap(value any) (map[string]any, bool) {
	if m, ok := value.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func sortedKeys(s Schema) []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func aggregate(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return &AggregateError{Errors: errs}
}
