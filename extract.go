package lorecrawl

// ExtractResult holds the content and links extracted from a fetched page.
type ExtractResult struct {
	// Title is the page title.
	Title string

	// ContentHTML is the main content as clean HTML with boilerplate
	// (navigation, rails, footers, ads) removed. Empty means the page had
	// no usable content; the scheduler marks such URLs visited without
	// treating them as errors.
	ContentHTML string

	// Categories lists the wiki categories the page belongs to.
	Categories []string

	// Links are the in-scope links discovered on the page, each carrying
	// a priority hint for the frontier.
	Links []DiscoveredLink
}

// Extractor turns fetched HTML into structured content plus discovered
// links. The crawl scheduler consumes only the links; content is handed
// to the Saver.
type Extractor interface {
	// Extract processes raw HTML fetched from pageURL. The URL is used to
	// resolve relative links and to scope discovery to the same site.
	Extract(html string, pageURL string) (*ExtractResult, error)
}
