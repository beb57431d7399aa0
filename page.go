package lorecrawl

import (
	"context"
	"time"
)

// Page represents an extracted wiki page ready for persistence.
type Page struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Content     string    `json:"content"` // Markdown
	ContentHash string    `json:"contentHash"`
	Categories  []string  `json:"categories,omitempty"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// Validate returns an error if the page contains invalid fields.
func (p *Page) Validate() error {
	if p.URL == "" {
		return Errorf(EINVALID, "page URL required")
	}
	return nil
}

// Saver persists extracted pages. Save failures are logged by the crawl
// loop but never retried and never abort a crawl.
type Saver interface {
	// SavePage persists a page and returns its storage location
	// (e.g. a file path).
	SavePage(ctx context.Context, page *Page) (string, error)
}
