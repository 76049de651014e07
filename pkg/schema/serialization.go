package schema

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON serializes the schema as its nested engine-facing description.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	raw, err := s.Describe()
	if err != nil {
		return nil, err
	}
	return json.Marshal(raw)
}

// UnmarshalJSON deserializes the schema from a nested description.
// Keyed maps cannot be recovered from their description and come back as records.
func (s *Schema) UnmarshalJSON(data []byte) error {
	if s == nil {
		return fmt.Errorf("schema: UnmarshalJSON on nil pointer")
	}

	if string(data) == "null" {
		*s = nil
		return nil
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	parsed, err := ParseTree(raw)
	if err != nil {
		return err
	}

	*s = parsed
	return nil
}

// Describe returns the nested map description of every field.
func (s Schema) Describe() (map[string]any, error) {
	out := make(map[string]any, len(s))
	for key, typ := range s {
		if typ == nil {
			return nil, fmt.Errorf("field %s: type is nil", key)
		}
		out[key] = Describe(typ)
	}
	return out, nil
}
