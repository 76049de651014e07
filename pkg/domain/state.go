package domain

import "time"

// Snapshot is one emitted state of a driven run.
type Snapshot struct {
	RunID     string    `json:"run_id"`
	Step      int       `json:"step"`
	Time      float64   `json:"time"`
	State     Tree      `json:"state"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSnapshot creates a snapshot stamped with the current wall time.
func NewSnapshot(runID string, step int, simTime float64, state Tree) *Snapshot {
	return &Snapshot{
		RunID:     runID,
		Step:      step,
		Time:      simTime,
		State:     state,
		Timestamp: time.Now().UTC(),
	}
}
