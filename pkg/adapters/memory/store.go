package memory

import (
	"context"
	"sync"

	"github.com/aretw0/brownian/pkg/domain"
)

// Store implements ports.StateStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string][]*domain.Snapshot
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]*domain.Snapshot),
	}
}

// Append records a copy of the snapshot.
func (s *Store) Append(ctx context.Context, runID string, snap *domain.Snapshot) error {
	copied := cloneSnapshot(snap)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[runID] = append(s.data[runID], copied)
	return nil
}

// Load returns copies of the run's snapshots so callers cannot mutate the store.
func (s *Store) Load(ctx context.Context, runID string) ([]*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snaps, ok := s.data[runID]
	if !ok || len(snaps) == 0 {
		return nil, domain.ErrRunNotFound
	}

	out := make([]*domain.Snapshot, len(snaps))
	for i, snap := range snaps {
		out[i] = cloneSnapshot(snap)
	}
	return out, nil
}

// Delete removes the run.
func (s *Store) Delete(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, runID)
	return nil
}

// List returns stored runs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]string, 0, len(s.data))
	for id := range s.data {
		runs = append(runs, id)
	}
	return runs, nil
}

func cloneSnapshot(snap *domain.Snapshot) *domain.Snapshot {
	c := *snap
	c.State = cloneTree(snap.State)
	return &c
}

func cloneTree(t domain.Tree) domain.Tree {
	if t == nil {
		return nil
	}
	out := make(domain.Tree, len(t))
	for k, v := range t {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return cloneTree(x)
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = cloneValue(x[i])
		}
		return out
	case []float64:
		return append([]float64(nil), x...)
	default:
		return v
	}
}
