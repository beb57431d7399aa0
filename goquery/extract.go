// Package goquery provides CSS-selector based implementations of
// lorecrawl.Extractor built on github.com/PuerkitoBio/goquery.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/lorecrawl"
)

// extractLinks collects anchors from the regions named by the selectors,
// resolves them against base, and assigns each a priority via the priority
// function. Links are deduplicated by URL, keeping the highest priority
// version; ties keep the first occurrence. External links (different host
// than base) are filtered out.
func extractLinks(doc *goquery.Document, base *url.URL, priority lorecrawl.PriorityFunc, regions []linkRegion) []lorecrawl.DiscoveredLink {
	// Track seen URLs with their index in the result slice for O(1) updates
	seen := make(map[string]int)
	var links []lorecrawl.DiscoveredLink

	for _, region := range regions {
		doc.Find(region.selector).Each(func(_ int, sel *goquery.Selection) {
			href, exists := sel.Attr("href")
			if !exists || href == "" {
				return
			}

			// Skip non-HTTP links (javascript:, mailto:, etc.)
			if isNonHTTPLink(href) {
				return
			}

			resolved := resolveURL(base, href)
			if resolved == "" {
				return
			}

			// Filter external links (exact host match, subdomains are filtered)
			if !isSameHost(base, resolved) {
				return
			}

			link := lorecrawl.DiscoveredLink{
				URL:      resolved,
				Priority: priority(resolved),
				Text:     strings.TrimSpace(sel.Text()),
				Source:   region.source,
			}

			if idx, ok := seen[resolved]; ok {
				// Update if this has higher priority
				if link.Priority > links[idx].Priority {
					links[idx] = link
				}
			} else {
				// First occurrence - add to slice and track index
				seen[resolved] = len(links)
				links = append(links, link)
			}
		})
	}

	return links
}

// linkRegion pairs a CSS selector with the source label attached to links
// it yields.
type linkRegion struct {
	selector string
	source   string
}

// resolveURL resolves href against base and returns the absolute URL with
// any fragment stripped. Returns "" for unparseable hrefs and for links
// that resolve back to the base page itself.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""

	// Fragment-only links point back at the page being parsed
	if resolved.String() == base.String() {
		return ""
	}

	return resolved.String()
}

// isSameHost reports whether the resolved URL is on the same host as base.
func isSameHost(base *url.URL, resolved string) bool {
	u, err := url.Parse(resolved)
	if err != nil {
		return false
	}
	return u.Host == base.Host
}

// isNonHTTPLink reports whether href uses a scheme that cannot be crawled.
func isNonHTTPLink(href string) bool {
	lower := strings.ToLower(strings.TrimSpace(href))
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
