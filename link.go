package lorecrawl

import (
	"net/url"
	"strings"
)

// LinkPriority represents crawl priority (higher = more important).
type LinkPriority int

// Link priority buckets for crawl ordering. Category listings rank highest
// because they fan out to many content pages; maintenance namespaces rank
// below everything else.
const (
	PriorityNonContent LinkPriority = -50
	PriorityDefault    LinkPriority = 50
	PriorityContent    LinkPriority = 100
	PriorityCategory   LinkPriority = 300
)

// DiscoveredLink represents a URL found on a crawled page, with priority
// metadata attached by the extractor.
type DiscoveredLink struct {
	URL      string
	Priority LinkPriority
	Text     string
	Source   string // "content", "category", "navigation"
}

// PriorityFunc assigns a crawl priority to a URL. The frontier itself is
// priority-agnostic; extractors and seeders use a PriorityFunc to rank
// links before enqueueing.
type PriorityFunc func(rawURL string) LinkPriority

// nonContentNamespaces are wiki namespaces that hold maintenance pages
// rather than reader content.
var nonContentNamespaces = map[string]bool{
	"template:":      true,
	"user:":          true,
	"talk:":          true,
	"help:":          true,
	"special:":       true,
	"file:":          true,
	"mediawiki:":     true,
	"user_talk:":     true,
	"project:":       true,
	"project_talk:":  true,
	"file_talk:":     true,
	"template_talk:": true,
	"category_talk:": true,
	"forum:":         true,
}

// Namespace returns the lowercased wiki namespace prefix of a URL's final
// path segment, including the trailing colon (e.g. "category:"), or an
// empty string for main-namespace pages.
func Namespace(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	segment := u.Path
	if i := strings.LastIndex(segment, "/"); i >= 0 {
		segment = segment[i+1:]
	}
	if unescaped, err := url.PathUnescape(segment); err == nil {
		segment = unescaped
	}
	i := strings.Index(segment, ":")
	if i <= 0 {
		return ""
	}
	return strings.ToLower(segment[:i+1])
}

// PriorityForURL is the default PriorityFunc. It buckets URLs by wiki
// namespace: category listings first, main-namespace article paths next,
// maintenance namespaces last.
func PriorityForURL(rawURL string) LinkPriority {
	ns := Namespace(rawURL)
	switch {
	case ns == "category:":
		return PriorityCategory
	case nonContentNamespaces[ns]:
		return PriorityNonContent
	case ns == "" && isArticlePath(rawURL):
		return PriorityContent
	default:
		return PriorityDefault
	}
}

// isArticlePath reports whether the URL uses a wiki article path layout.
func isArticlePath(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.Contains(u.Path, "/wiki/")
}
