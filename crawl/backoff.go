package crawl

import (
	"math/rand/v2"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/fwojciec/lorecrawl"
)

// BackoffPolicy tracks consecutive-failure streaks per domain and
// computes jittered exponential retry delays. A success resets the
// domain's streak, so backoff state reflects current server health
// rather than total error counts.
type BackoffPolicy struct {
	base       time.Duration
	max        time.Duration
	maxRetries int

	mu      sync.Mutex
	domains map[string]*backoffEntry
	now     func() time.Time
	jitter  func(time.Duration) time.Duration
}

type backoffEntry struct {
	failures  int
	nextRetry time.Time
}

// NewBackoffPolicy creates a BackoffPolicy. The delay after the n-th
// consecutive failure is base doubled n-1 times, jittered into the upper
// half of its range and capped at max. maxRetries bounds how many
// consecutive failures a domain accrues before its URLs fail terminally.
func NewBackoffPolicy(base, max time.Duration, maxRetries int) *BackoffPolicy {
	return &BackoffPolicy{
		base:       base,
		max:        max,
		maxRetries: maxRetries,
		domains:    make(map[string]*backoffEntry),
		now:        time.Now,
		jitter:     equalJitter,
	}
}

// Failure records a retryable failure for the domain and returns the
// jittered delay before its next attempt.
func (p *BackoffPolicy) Failure(domain string) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.domains[domain]
	if !ok {
		e = &backoffEntry{}
		p.domains[domain] = e
	}
	e.failures++

	d := p.base
	for i := 1; i < e.failures && d < p.max; i++ {
		d *= 2
	}
	if d > p.max {
		d = p.max
	}

	delay := p.jitter(d)
	e.nextRetry = p.now().Add(delay)
	return delay
}

// Success resets the domain's failure streak.
func (p *BackoffPolicy) Success(domain string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.domains, domain)
}

// ShouldRetry reports whether the domain's streak is still under the
// retry cap. Attempts against a domain at the cap fail terminally until
// a success resets it.
func (p *BackoffPolicy) ShouldRetry(domain string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.domains[domain]
	if !ok {
		return true
	}
	return e.failures < p.maxRetries
}

// Failures returns the domain's current consecutive-failure count.
func (p *BackoffPolicy) Failures(domain string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.domains[domain]
	if !ok {
		return 0
	}
	return e.failures
}

// States exports failure streaks for snapshots, sorted by domain.
func (p *BackoffPolicy) States() []lorecrawl.BackoffState {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]lorecrawl.BackoffState, 0, len(p.domains))
	for domain, e := range p.domains {
		out = append(out, lorecrawl.BackoffState{
			Domain:    domain,
			Failures:  e.failures,
			NextRetry: e.nextRetry,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Domain < out[j].Domain })
	return out
}

// Restore loads failure streaks from a snapshot.
func (p *BackoffPolicy) Restore(states []lorecrawl.BackoffState) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, s := range states {
		if s.Failures < 1 {
			continue
		}
		p.domains[s.Domain] = &backoffEntry{
			failures:  s.Failures,
			nextRetry: s.NextRetry,
		}
	}
}

// equalJitter spreads a delay uniformly across the upper half of its
// range. Successive doubled delays stay strictly ordered because their
// jitter ranges do not overlap.
func equalJitter(d time.Duration) time.Duration {
	half := d / 2
	if half <= 0 {
		return d
	}
	return half + time.Duration(rand.Int64N(int64(half)))
}

// retryableStatuses are the HTTP responses worth retrying after a
// backoff delay. Every other non-2xx response is terminal for the URL.
var retryableStatuses = map[int]bool{
	http.StatusTooManyRequests:    true,
	http.StatusBadGateway:         true,
	http.StatusServiceUnavailable: true,
	http.StatusGatewayTimeout:     true,
}

// Retryable reports whether an HTTP status code warrants a retry.
func Retryable(statusCode int) bool {
	return retryableStatuses[statusCode]
}
