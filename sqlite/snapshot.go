package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/lorecrawl"
)

// Compile-time interface verification.
var _ lorecrawl.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore implements lorecrawl.SnapshotStore using SQLite. Each
// project holds at most one snapshot, stored as a single JSON document
// and replaced wholesale on every save.
type SnapshotStore struct {
	db *DB
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(db *DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// SaveSnapshot stores the snapshot, replacing any previous snapshot for
// the same project.
func (s *SnapshotStore) SaveSnapshot(ctx context.Context, snap *lorecrawl.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (project_id, taken_at, data)
		VALUES (?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET
			taken_at = excluded.taken_at,
			data = excluded.data
	`, snap.ProjectID, snap.TakenAt.UTC().Format(time.RFC3339), string(data))

	return err
}

// LoadSnapshot retrieves the snapshot for a project.
func (s *SnapshotStore) LoadSnapshot(ctx context.Context, projectID string) (*lorecrawl.Snapshot, error) {
	var data string

	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM snapshots WHERE project_id = ?", projectID).Scan(&data)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, lorecrawl.Errorf(lorecrawl.ENOTFOUND, "no snapshot for project")
	}
	if err != nil {
		return nil, err
	}

	var snap lorecrawl.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	return &snap, nil
}

// DeleteSnapshot removes a project's snapshot. Deleting a missing
// snapshot is not an error.
func (s *SnapshotStore) DeleteSnapshot(ctx context.Context, projectID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE project_id = ?", projectID)
	return err
}
