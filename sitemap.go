package lorecrawl

import "context"

// SitemapService discovers URLs from a site's sitemaps, used to seed a
// crawl with more than the single start URL.
type SitemapService interface {
	// DiscoverURLs finds URLs for a site. It checks robots.txt for
	// Sitemap directives, falls back to /sitemap.xml, and resolves
	// sitemap indexes recursively. Returns an empty slice when the site
	// publishes no sitemap.
	DiscoverURLs(ctx context.Context, siteURL string) ([]string, error)
}
