package lorecrawl

import "time"

// URLRecord is a frontier entry: one URL awaiting a fetch. Records are
// created when a link is discovered and survive in snapshots until the URL
// is marked visited.
type URLRecord struct {
	// URL in normalized form (see crawl.NormalizeURL).
	URL string `json:"url"`

	// Domain is the lowercased host, the key for all politeness state.
	Domain string `json:"domain"`

	// Priority orders the frontier; FIFO among equals.
	Priority LinkPriority `json:"priority"`

	// Origin is the URL of the page this link was discovered on.
	// Empty for seeds.
	Origin string `json:"origin,omitempty"`

	// Depth is the link distance from the seed.
	Depth int `json:"depth"`

	// EnqueuedAt records when the URL entered the frontier.
	EnqueuedAt time.Time `json:"enqueuedAt"`

	// NotBefore delays eligibility, used to schedule retries after
	// backoff. The zero value means eligible immediately.
	NotBefore time.Time `json:"notBefore"`
}
