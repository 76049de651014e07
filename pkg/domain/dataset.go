package domain

import "fmt"

// Trigger is the cadence at which a bound recording command fires.
// Values follow the simulator's command type letters.
type Trigger string

const (
	TriggerBefore Trigger = "B" // once, before each run
	TriggerAfter  Trigger = "A" // once, after each run
	TriggerEvery  Trigger = "E" // after every internal time step
)

// Valid reports whether t is a supported trigger.
func (t Trigger) Valid() bool {
	switch t {
	case TriggerBefore, TriggerAfter, TriggerEvery:
		return true
	}
	return false
}

// DatasetKind distinguishes time series from end-of-interval snapshots.
type DatasetKind int

const (
	// KindTimeSeries datasets hold one row per recorded step; the last row is representative.
	KindTimeSeries DatasetKind = iota
	// KindSnapshot datasets hold the full population at the end of the interval.
	KindSnapshot
)

// Dataset declares a named output buffer and the command that records into it.
type Dataset struct {
	Name    string
	Command string
	Trigger Trigger
	Kind    DatasetKind
}

// Row is one record of an output dataset. Layout is dataset specific.
type Row []float64

// DefaultDatasets returns the datasets every adapter declares at construction.
func DefaultDatasets() []Dataset {
	return []Dataset{
		{Name: DatasetTime, Command: "executiontime " + DatasetTime, Trigger: TriggerEvery, Kind: KindTimeSeries},
		{Name: DatasetCounts, Command: "molcount " + DatasetCounts, Trigger: TriggerEvery, Kind: KindTimeSeries},
		{Name: DatasetLocations, Command: "listmols " + DatasetLocations, Trigger: TriggerAfter, Kind: KindSnapshot},
	}
}

// Column offsets of a listmols row.
const (
	LocSpecies = iota
	LocState
	LocX
	LocY
	LocZ
	LocSerial
	LocWidth
)

// LocationRow is a typed view over a listmols row.
type LocationRow Row

// SpeciesIndex returns the simulator index of the molecule's species.
func (r LocationRow) SpeciesIndex() int { return int(r[LocSpecies]) }

// Position returns the first dim coordinates.
func (r LocationRow) Position(dim int) []float64 {
	if dim > 3 {
		dim = 3
	}
	out := make([]float64, dim)
	copy(out, r[LocX:LocX+dim])
	return out
}

// Serial returns the molecule serial number.
func (r LocationRow) Serial() int64 { return int64(r[LocSerial]) }

// CheckWidth returns an error if the row does not have the listmols layout.
func (r LocationRow) CheckWidth() error {
	if len(r) != LocWidth {
		return fmt.Errorf("location row has %d fields, want %d", len(r), LocWidth)
	}
	return nil
}
