package crawl

import (
	"sort"
	"sync"
	"time"

	"github.com/fwojciec/lorecrawl"
)

// window is the span of the trailing request-count cap.
const window = 60 * time.Second

// RateLimiter enforces per-domain politeness: a minimum spacing between
// requests and a cap on requests inside a trailing 60-second window.
// Delay reports how long the caller must wait before the next request;
// the limiter itself never sleeps and only advances state through Record.
// Budgets are created lazily per domain and never dropped.
type RateLimiter struct {
	mu        sync.Mutex
	delay     time.Duration
	perMinute int
	burst     int
	domains   map[string]*domainBudget
	now       func() time.Time
}

type domainBudget struct {
	delay     time.Duration
	perMinute int
	burst     int
	recent    []time.Time // ascending timestamps of issued requests
}

// NewRateLimiter creates a RateLimiter with the given defaults for newly
// seen domains: minimum inter-request delay, trailing-window request cap,
// and burst allowance. Burst is how many requests may share one delay
// span; 1 means strictly spaced requests.
func NewRateLimiter(delay time.Duration, perMinute, burst int) *RateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		delay:     delay,
		perMinute: perMinute,
		burst:     burst,
		domains:   make(map[string]*domainBudget),
		now:       time.Now,
	}
}

// Delay returns how long the caller must wait before issuing the next
// request to the domain. Zero means the request is permitted immediately.
func (r *RateLimiter) Delay(domain string) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	b := r.budget(domain)
	b.prune(now)

	wait := b.spacingWait(now)
	if w := b.windowWait(now); w > wait {
		wait = w
	}
	return wait
}

// Record notes that a request to the domain was issued now. Callers
// record successful requests only; retries are spaced by backoff instead.
func (r *RateLimiter) Record(domain string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	b := r.budget(domain)
	b.recent = append(b.recent, now)
	b.prune(now)
}

// RaiseDelay raises the domain's minimum inter-request delay to at least
// d. Crawl-delay directives raise spacing but never lower it below the
// configured default.
func (r *RateLimiter) RaiseDelay(domain string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := r.budget(domain)
	if d > b.delay {
		b.delay = d
	}
}

// SetDomainLimit overrides the trailing-window request cap for one
// domain.
func (r *RateLimiter) SetDomainLimit(domain string, perMinute int) {
	if perMinute < 1 {
		perMinute = 1
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.budget(domain).perMinute = perMinute
}

// MinDelay returns the domain's current minimum inter-request delay.
func (r *RateLimiter) MinDelay(domain string) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.budget(domain).delay
}

// Budgets exports per-domain state for snapshots, sorted by domain for
// deterministic encoding.
func (r *RateLimiter) Budgets() []lorecrawl.DomainBudget {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]lorecrawl.DomainBudget, 0, len(r.domains))
	for domain, b := range r.domains {
		out = append(out, lorecrawl.DomainBudget{
			Domain:    domain,
			Delay:     b.delay,
			PerMinute: b.perMinute,
			Burst:     b.burst,
			Recent:    append([]time.Time(nil), b.recent...),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Domain < out[j].Domain })
	return out
}

// Restore loads budgets from a snapshot so politeness accounting resumes
// where the prior run stopped. Recent request history carries over, which
// keeps the window cap honest across a quick stop and resume.
func (r *RateLimiter) Restore(budgets []lorecrawl.DomainBudget) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, db := range budgets {
		b := &domainBudget{
			delay:     db.Delay,
			perMinute: db.PerMinute,
			burst:     db.Burst,
			recent:    append([]time.Time(nil), db.Recent...),
		}
		if b.perMinute < 1 {
			b.perMinute = r.perMinute
		}
		if b.burst < 1 {
			b.burst = r.burst
		}
		r.domains[db.Domain] = b
	}
}

// budget assumes r.mu is held.
func (r *RateLimiter) budget(domain string) *domainBudget {
	b, ok := r.domains[domain]
	if !ok {
		b = &domainBudget{delay: r.delay, perMinute: r.perMinute, burst: r.burst}
		r.domains[domain] = b
	}
	return b
}

// spacingWait computes the wait imposed by minimum inter-request spacing.
// A request is allowed while fewer than burst requests fall inside the
// last delay span; otherwise it waits until the burst-th most recent
// request leaves the span. With burst 1 this is the classic delay since
// the last request.
func (b *domainBudget) spacingWait(now time.Time) time.Duration {
	if b.delay <= 0 || len(b.recent) == 0 {
		return 0
	}
	inSpan := 0
	for i := len(b.recent) - 1; i >= 0; i-- {
		if now.Sub(b.recent[i]) >= b.delay {
			break
		}
		inSpan++
	}
	if inSpan < b.burst {
		return 0
	}
	blocking := b.recent[len(b.recent)-b.burst]
	return b.delay - now.Sub(blocking)
}

// windowWait computes the wait imposed by the trailing-window cap: the
// time until enough old requests age out of the window to open a slot.
func (b *domainBudget) windowWait(now time.Time) time.Duration {
	if len(b.recent) < b.perMinute {
		return 0
	}
	blocking := b.recent[len(b.recent)-b.perMinute]
	return window - now.Sub(blocking)
}

// prune drops timestamps that can no longer affect either constraint.
// Spacing spans can exceed the window when a Crawl-delay directive raises
// them, so the retention horizon is the larger of the two.
func (b *domainBudget) prune(now time.Time) {
	keep := window
	if b.delay > keep {
		keep = b.delay
	}
	cutoff := now.Add(-keep)

	i := 0
	for i < len(b.recent) && !b.recent[i].After(cutoff) {
		i++
	}
	if i > 0 {
		b.recent = append(b.recent[:0], b.recent[i:]...)
	}
}
