package lorecrawl

import (
	"context"
	"time"
)

// DomainBudget is the persisted politeness accounting for one domain:
// its minimum request spacing and the recent request timestamps backing
// the rolling-window cap. Budgets survive restarts so rate limits are
// correct immediately after a resume.
type DomainBudget struct {
	Domain    string        `json:"domain"`
	Delay     time.Duration `json:"delay"`
	PerMinute int           `json:"perMinute"`
	Burst     int           `json:"burst"`
	Recent    []time.Time   `json:"recent,omitempty"`
}

// BackoffState is the persisted failure streak for one domain.
type BackoffState struct {
	Domain    string    `json:"domain"`
	Failures  int       `json:"failures"`
	NextRetry time.Time `json:"nextRetry"`
}

// CrawlStats holds cumulative counters for one crawl.
type CrawlStats struct {
	// Attempted counts fetch attempts, including retries.
	Attempted int `json:"attempted"`

	// Crawled counts pages successfully fetched and processed.
	Crawled int `json:"crawled"`

	// Errors counts terminal per-URL failures.
	Errors int `json:"errors"`

	// Skipped counts robots denials and no-content pages.
	Skipped int `json:"skipped"`

	// Retries counts re-enqueues after retryable failures.
	Retries int `json:"retries"`
}

// Snapshot is a point-in-time serialization of all scheduler state for one
// project: enough to reconstruct identical future scheduling decisions.
// Loading a snapshot is the sole resume mechanism.
type Snapshot struct {
	ProjectID string         `json:"projectId"`
	TakenAt   time.Time      `json:"takenAt"`
	Frontier  []URLRecord    `json:"frontier"`
	Visited   []string       `json:"visited"`
	Budgets   []DomainBudget `json:"budgets"`
	Backoff   []BackoffState `json:"backoff"`
	Stats     CrawlStats     `json:"stats"`
}

// Validate returns an error if the snapshot contains invalid fields.
func (s *Snapshot) Validate() error {
	if s.ProjectID == "" {
		return Errorf(EINVALID, "snapshot project ID required")
	}
	return nil
}

// SnapshotStore persists crawl snapshots, one per project.
type SnapshotStore interface {
	// SaveSnapshot stores the snapshot, replacing any previous snapshot
	// for the same project.
	SaveSnapshot(ctx context.Context, snap *Snapshot) error

	// LoadSnapshot retrieves the snapshot for a project.
	// Returns ENOTFOUND if the project has no snapshot.
	LoadSnapshot(ctx context.Context, projectID string) (*Snapshot, error)

	// DeleteSnapshot removes a project's snapshot. Deleting a missing
	// snapshot is not an error.
	DeleteSnapshot(ctx context.Context, projectID string) error
}
