package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/brownian/pkg/domain"
)

const ext = ".jsonl"

// Store implements ports.StateStore using the local filesystem.
// Each run is a JSON Lines file holding one snapshot per line.
type Store struct {
	BasePath string

	mu sync.Mutex
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".brownian/runs".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".brownian", "runs")
	}
	return &Store{BasePath: basePath}
}

// Append writes the snapshot as a new line at the end of the run file, then syncs it.
func (s *Store) Append(ctx context.Context, runID string, snap *domain.Snapshot) error {
	path, err := s.path(runID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure run directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open run file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to fsync run file: %w", err)
	}
	return f.Close()
}

// Load reads every snapshot of the run in the order they were appended.
func (s *Store) Load(ctx context.Context, runID string) ([]*domain.Snapshot, error) {
	path, err := s.path(runID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}
	defer f.Close()

	var snaps []*domain.Snapshot
	sc := bufio.NewScanner(f)
	// Location vectors make lines long.
	sc.Buffer(make([]byte, 64*1024), 64*1024*1024)
	for line := 1; sc.Scan(); line++ {
		if len(strings.TrimSpace(sc.Text())) == 0 {
			continue
		}
		var snap domain.Snapshot
		if err := json.Unmarshal(sc.Bytes(), &snap); err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot at %s:%d: %w", path, line, err)
		}
		snaps = append(snaps, &snap)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan run file: %w", err)
	}
	if len(snaps) == 0 {
		return nil, domain.ErrRunNotFound
	}
	return snaps, nil
}

// Delete removes the run file.
func (s *Store) Delete(ctx context.Context, runID string) error {
	path, err := s.path(runID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete run file: %w", err)
	}
	return nil
}

// List returns the IDs of the stored runs, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	runs := []string{}
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ext {
			runs = append(runs, strings.TrimSuffix(entry.Name(), ext))
		}
	}
	sort.Strings(runs)
	return runs, nil
}

func (s *Store) path(runID string) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("runID cannot be empty")
	}
	if strings.ContainsAny(runID, `/\`) || runID == "." || runID == ".." {
		return "", fmt.Errorf("runID %q must not contain path separators", runID)
	}
	return filepath.Join(s.BasePath, runID+ext), nil
}
