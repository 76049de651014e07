package domain

// Port and field names used in the nested state tree exchanged with the composition engine.
const (
	PortMolecules     = "molecules"
	PortSpeciesCounts = "species_counts"
	PortReactions     = "reactions"

	FieldCount       = "count"
	FieldCoordinates = "coordinates"
	FieldMolType     = "mol_type"
)

// DefaultSentinel is the placeholder species reported by the simulator at index 0.
const DefaultSentinel = "empty"

// Names of the output datasets declared by the adapter at construction.
const (
	DatasetTime      = "time"
	DatasetCounts    = "molecule_counts"
	DatasetLocations = "molecule_locations"
)
