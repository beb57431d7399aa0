package crawl

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/lorecrawl"
	"github.com/temoto/robotstxt"
)

// RobotsGate answers whether URLs may be fetched under their domain's
// robots.txt directives. Rules are fetched through the shared Fetcher on
// first contact with a domain and cached with a TTL. A domain whose
// robots.txt cannot be fetched is treated as permissive, cached with a
// shorter TTL so the fetch is retried soon without hammering the host.
// Crawl-delay directives raise the domain's minimum delay in the rate
// limiter and never lower it.
type RobotsGate struct {
	fetcher lorecrawl.Fetcher
	limiter *RateLimiter
	agent   string
	ttl     time.Duration
	errTTL  time.Duration

	mu    sync.Mutex
	cache map[string]*robotsEntry
	now   func() time.Time
}

// robotsEntry is one domain's cached verdict. A nil group allows
// everything.
type robotsEntry struct {
	group     *robotstxt.Group
	fetchedAt time.Time
	ttl       time.Duration
}

// NewRobotsGate creates a RobotsGate. The limiter may be nil when
// Crawl-delay directives should not feed back into request spacing.
func NewRobotsGate(fetcher lorecrawl.Fetcher, limiter *RateLimiter, agent string, ttl, errTTL time.Duration) *RobotsGate {
	return &RobotsGate{
		fetcher: fetcher,
		limiter: limiter,
		agent:   agent,
		ttl:     ttl,
		errTTL:  errTTL,
		cache:   make(map[string]*robotsEntry),
		now:     time.Now,
	}
}

// Allowed reports whether the URL may be fetched. Problems retrieving or
// parsing the rules never fail the check; they degrade to permissive.
func (g *RobotsGate) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	domain := strings.ToLower(u.Host)

	entry := g.entry(ctx, u.Scheme, domain)
	if entry.group == nil {
		return true
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return entry.group.Test(path)
}

// entry returns the domain's cached rules, refreshing them when the TTL
// has lapsed.
func (g *RobotsGate) entry(ctx context.Context, scheme, domain string) *robotsEntry {
	g.mu.Lock()
	entry, ok := g.cache[domain]
	if ok && g.now().Sub(entry.fetchedAt) < entry.ttl {
		g.mu.Unlock()
		return entry
	}
	g.mu.Unlock()

	entry = g.fetchRules(ctx, scheme, domain)

	g.mu.Lock()
	g.cache[domain] = entry
	g.mu.Unlock()
	return entry
}

// fetchRules retrieves and compiles robots.txt for a domain. The result
// is always usable: transport failures, server errors, and parse errors
// all produce a permissive entry carrying the shorter error TTL.
func (g *RobotsGate) fetchRules(ctx context.Context, scheme, domain string) *robotsEntry {
	entry := &robotsEntry{fetchedAt: g.now(), ttl: g.ttl}

	res, err := g.fetcher.Fetch(ctx, scheme+"://"+domain+"/robots.txt")
	if err != nil || res.StatusCode >= 500 {
		entry.ttl = g.errTTL
		return entry
	}

	robots, err := robotstxt.FromStatusAndBytes(res.StatusCode, res.Body)
	if err != nil {
		entry.ttl = g.errTTL
		return entry
	}

	group := robots.FindGroup(g.agent)
	if group == nil {
		return entry
	}
	entry.group = group
	if group.CrawlDelay > 0 && g.limiter != nil {
		g.limiter.RaiseDelay(domain, group.CrawlDelay)
	}
	return entry
}
