// Package schema provides the type system used to describe and validate process ports.
//
// It defines built-in leaf types (string, int, float, bool), lists, records and
// keyed maps. A process schema maps port names to types; its nested description is
// what a composition engine receives from Schema():
//
//	s := schema.Schema{
//	    "molecules": schema.Keyed([]string{"red", "green"}, schema.Record(schema.Schema{
//	        "count":       schema.Int(),
//	        "coordinates": schema.Slice(schema.Float()),
//	    })),
//	}
//
//	desc, _ := s.Describe()
//	// {"molecules": {"red": {"count": "int", "coordinates": "list[float]"}, "green": {...}}}
//
//	if err := schema.Validate(s, state); err != nil {
//	    // Handle validation errors
//	}
//
// Leaf schemas can also be parsed from type strings:
//
//	s, err := schema.ParseTypeMap(map[string]string{"count": "int", "coordinates": "list[float]"})
//
// Keyed maps reject both missing and unexpected keys, which is how species-keyed
// ports enforce that a state carries exactly the process's species.
//
// This package has zero external dependencies beyond the Go standard library.
package schema
