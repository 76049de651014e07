package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/brownian/pkg/domain"
)

type nopStore struct{}

func (nopStore) Append(ctx context.Context, runID string, snap *domain.Snapshot) error { return nil }
func (nopStore) Load(ctx context.Context, runID string) ([]*domain.Snapshot, error) {
	return nil, nil
}
func (nopStore) Delete(ctx context.Context, runID string) error { return nil }
func (nopStore) List(ctx context.Context) ([]string, error)     { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(nopStore{})
	ctx := context.Background()

	for i := 0; i < 10000; i++ {
		id := fmt.Sprintf("run-%d", i)
		_ = mgr.Append(ctx, id, domain.NewSnapshot(id, 0, 0, nil))
		_ = mgr.Delete(ctx, id)
	}

	if n := len(mgr.locks); n != 0 {
		t.Errorf("%d run locks remaining after delete", n)
	}
}
