package mock

import (
	"context"

	"github.com/fwojciec/lorecrawl"
)

var _ lorecrawl.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore is a mock implementation of lorecrawl.SnapshotStore.
type SnapshotStore struct {
	SaveSnapshotFn   func(ctx context.Context, snapshot *lorecrawl.Snapshot) error
	LoadSnapshotFn   func(ctx context.Context, projectID string) (*lorecrawl.Snapshot, error)
	DeleteSnapshotFn func(ctx context.Context, projectID string) error
}

func (s *SnapshotStore) SaveSnapshot(ctx context.Context, snapshot *lorecrawl.Snapshot) error {
	return s.SaveSnapshotFn(ctx, snapshot)
}

func (s *SnapshotStore) LoadSnapshot(ctx context.Context, projectID string) (*lorecrawl.Snapshot, error) {
	return s.LoadSnapshotFn(ctx, projectID)
}

func (s *SnapshotStore) DeleteSnapshot(ctx context.Context, projectID string) error {
	return s.DeleteSnapshotFn(ctx, projectID)
}
