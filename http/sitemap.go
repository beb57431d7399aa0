package http

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/beevik/etree"
	"github.com/fwojciec/lorecrawl"
	"golang.org/x/sync/errgroup"
)

// sitemapFetchLimit caps concurrent child fetches under a sitemap index.
// Child sitemaps live on one host, so the limit stays small.
const sitemapFetchLimit = 4

// Ensure SitemapService implements lorecrawl.SitemapService.
var _ lorecrawl.SitemapService = (*SitemapService)(nil)

// SitemapService discovers seed URLs from a site's sitemaps. Sitemap
// locations come from robots.txt Sitemap: directives, falling back to
// the conventional /sitemap.xml; sitemap indexes are followed
// recursively.
type SitemapService struct {
	client    *http.Client
	userAgent string
}

// NewSitemapService creates a SitemapService using the given HTTP
// client. A nil client falls back to http.DefaultClient.
func NewSitemapService(client *http.Client, userAgent string) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	if userAgent == "" {
		userAgent = lorecrawl.DefaultUserAgent
	}
	return &SitemapService{client: client, userAgent: userAgent}
}

// DiscoverURLs returns every page URL listed in the site's sitemaps.
// When siteURL carries a non-root path, only URLs under that path are
// returned. An empty slice (not nil) means the site advertises no
// sitemap.
func (s *SitemapService) DiscoverURLs(ctx context.Context, siteURL string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(siteURL)
	if err != nil {
		return nil, fmt.Errorf("invalid site URL: %w", err)
	}

	pathPrefix := base.Path
	if pathPrefix == "/" {
		pathPrefix = ""
	}

	// Sitemaps live at the domain root regardless of the seed's path.
	root := *base
	root.Path = ""

	sitemapURLs, err := s.findSitemaps(ctx, &root)
	if err != nil {
		return nil, err
	}
	if len(sitemapURLs) == 0 {
		return []string{}, nil
	}

	var all []string
	seenSitemaps := newSeenSet()
	seenURLs := make(map[string]bool)
	for _, sitemapURL := range sitemapURLs {
		urls, err := s.collect(ctx, sitemapURL, seenSitemaps)
		if err != nil {
			return nil, err
		}
		for _, u := range urls {
			if !seenURLs[u] {
				seenURLs[u] = true
				all = append(all, u)
			}
		}
	}

	if pathPrefix == "" {
		return all, nil
	}
	var filtered []string
	for _, u := range all {
		if underPath(u, pathPrefix) {
			filtered = append(filtered, u)
		}
	}
	return filtered, nil
}

// underPath reports whether the URL's path sits under prefix, respecting
// segment boundaries so /wiki does not match /wikipedia.
func underPath(rawURL, prefix string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return strings.HasPrefix(parsed.Path, prefix)
}

// findSitemaps reads Sitemap: directives from robots.txt, falling back
// to /sitemap.xml when none are advertised.
func (s *SitemapService) findSitemaps(ctx context.Context, root *url.URL) ([]string, error) {
	robotsURL := root.ResolveReference(&url.URL{Path: "/robots.txt"})
	sitemaps, err := s.sitemapsFromRobots(ctx, robotsURL.String())
	if err == nil && len(sitemaps) > 0 {
		return sitemaps, nil
	}

	fallback := root.ResolveReference(&url.URL{Path: "/sitemap.xml"})
	exists, err := s.exists(ctx, fallback.String())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	if exists {
		return []string{fallback.String()}, nil
	}
	return nil, nil
}

// sitemapsFromRobots extracts Sitemap: directives from robots.txt.
func (s *SitemapService) sitemapsFromRobots(ctx context.Context, robotsURL string) ([]string, error) {
	body, err := s.get(ctx, robotsURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var sitemaps []string
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(strings.ToLower(line), "sitemap:") {
			if u := strings.TrimSpace(line[len("sitemap:"):]); u != "" {
				sitemaps = append(sitemaps, u)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading robots.txt: %w", err)
	}
	return sitemaps, nil
}

// seenSet tracks visited sitemap URLs to break reference cycles. Index
// children are fetched concurrently, so access is guarded.
type seenSet struct {
	mu   sync.Mutex
	urls map[string]bool
}

func newSeenSet() *seenSet {
	return &seenSet{urls: make(map[string]bool)}
}

// add records the URL and reports whether it was new.
func (s *seenSet) add(u string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.urls[u] {
		return false
	}
	s.urls[u] = true
	return true
}

// collect fetches one sitemap and returns its page URLs, recursing
// through sitemap indexes. Children of an index are fetched
// concurrently; positional collection keeps results in document order.
func (s *SitemapService) collect(ctx context.Context, sitemapURL string, seen *seenSet) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !seen.add(sitemapURL) {
		return nil, nil
	}

	body, err := s.get(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(body); err != nil {
		return nil, fmt.Errorf("parsing sitemap XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty sitemap XML at %s", sitemapURL)
	}

	if root.Tag == "sitemapindex" {
		var children []string
		for _, el := range root.SelectElements("sitemap") {
			loc := el.SelectElement("loc")
			if loc == nil {
				continue
			}
			if child := strings.TrimSpace(loc.Text()); child != "" {
				children = append(children, child)
			}
		}

		results := make([][]string, len(children))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(sitemapFetchLimit)
		for i, child := range children {
			g.Go(func() error {
				urls, err := s.collect(gctx, child, seen)
				if err != nil {
					return err
				}
				results[i] = urls
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		var all []string
		for _, urls := range results {
			all = append(all, urls...)
		}
		return all, nil
	}

	var urls []string
	for _, el := range root.SelectElements("url") {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if u := strings.TrimSpace(loc.Text()); u != "" {
			urls = append(urls, u)
		}
	}
	return urls, nil
}

// get fetches a URL and returns its body on a 200.
func (s *SitemapService) get(ctx context.Context, targetURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, targetURL)
	}
	return resp.Body, nil
}

// exists checks a URL with a HEAD request.
func (s *SitemapService) exists(ctx context.Context, targetURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, targetURL, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}
