package crawl_test

import (
	"testing"
	"time"

	"github.com/fwojciec/lorecrawl/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_new_domain_has_no_wait(t *testing.T) {
	t.Parallel()

	r := crawl.NewRateLimiter(time.Second, 30, 1)

	assert.Equal(t, time.Duration(0), r.Delay("wiki.example.com"))
}

func TestRateLimiter_enforces_minimum_spacing(t *testing.T) {
	t.Parallel()

	r := crawl.NewRateLimiter(time.Second, 30, 1)

	r.Record("wiki.example.com")
	wait := r.Delay("wiki.example.com")

	// Just recorded, so nearly the full delay remains.
	assert.Greater(t, wait, 900*time.Millisecond)
	assert.LessOrEqual(t, wait, time.Second)
}

func TestRateLimiter_spacing_clears_after_delay_elapses(t *testing.T) {
	t.Parallel()

	r := crawl.NewRateLimiter(30*time.Millisecond, 1000, 1)

	r.Record("wiki.example.com")
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, time.Duration(0), r.Delay("wiki.example.com"))
}

func TestRateLimiter_enforces_window_cap(t *testing.T) {
	t.Parallel()

	// No spacing requirement, so only the trailing-window cap applies.
	r := crawl.NewRateLimiter(0, 5, 1)

	for i := 0; i < 4; i++ {
		r.Record("wiki.example.com")
	}
	assert.Equal(t, time.Duration(0), r.Delay("wiki.example.com"), "under the cap there is no wait")

	r.Record("wiki.example.com")
	wait := r.Delay("wiki.example.com")

	// Window is full; the wait runs until the oldest request ages out.
	assert.Greater(t, wait, 59*time.Second)
	assert.LessOrEqual(t, wait, 60*time.Second)
}

func TestRateLimiter_burst_shares_one_delay_span(t *testing.T) {
	t.Parallel()

	r := crawl.NewRateLimiter(time.Second, 30, 3)

	r.Record("wiki.example.com")
	assert.Equal(t, time.Duration(0), r.Delay("wiki.example.com"))

	r.Record("wiki.example.com")
	assert.Equal(t, time.Duration(0), r.Delay("wiki.example.com"))

	r.Record("wiki.example.com")
	wait := r.Delay("wiki.example.com")
	assert.Greater(t, wait, time.Duration(0), "burst exhausted, spacing applies")
	assert.LessOrEqual(t, wait, time.Second)
}

func TestRateLimiter_domains_are_independent(t *testing.T) {
	t.Parallel()

	r := crawl.NewRateLimiter(time.Second, 30, 1)

	r.Record("a.example.com")

	assert.Greater(t, r.Delay("a.example.com"), time.Duration(0))
	assert.Equal(t, time.Duration(0), r.Delay("b.example.com"), "another domain is unaffected")
}

func TestRateLimiter_RaiseDelay_never_lowers(t *testing.T) {
	t.Parallel()

	r := crawl.NewRateLimiter(time.Second, 30, 1)

	r.RaiseDelay("wiki.example.com", 5*time.Second)
	assert.Equal(t, 5*time.Second, r.MinDelay("wiki.example.com"))

	// A smaller directive never lowers the established delay.
	r.RaiseDelay("wiki.example.com", 2*time.Second)
	assert.Equal(t, 5*time.Second, r.MinDelay("wiki.example.com"))

	r.RaiseDelay("wiki.example.com", 500*time.Millisecond)
	assert.Equal(t, 5*time.Second, r.MinDelay("wiki.example.com"))
}

func TestRateLimiter_SetDomainLimit_overrides_cap_for_one_domain(t *testing.T) {
	t.Parallel()

	r := crawl.NewRateLimiter(0, 100, 1)
	r.SetDomainLimit("slow.example.com", 2)

	r.Record("slow.example.com")
	r.Record("slow.example.com")
	assert.Greater(t, r.Delay("slow.example.com"), time.Duration(0))

	r.Record("fast.example.com")
	r.Record("fast.example.com")
	assert.Equal(t, time.Duration(0), r.Delay("fast.example.com"))
}

func TestRateLimiter_Budgets_Restore_round_trip(t *testing.T) {
	t.Parallel()

	r := crawl.NewRateLimiter(time.Second, 5, 1)
	r.RaiseDelay("wiki.example.com", 2*time.Second)
	r.Record("wiki.example.com")
	r.Record("other.example.com")

	budgets := r.Budgets()
	require.Len(t, budgets, 2)
	assert.Equal(t, "other.example.com", budgets[0].Domain)
	assert.Equal(t, "wiki.example.com", budgets[1].Domain)

	restored := crawl.NewRateLimiter(time.Second, 5, 1)
	restored.Restore(budgets)

	// The raised delay and the recent request history both carry over.
	assert.Equal(t, 2*time.Second, restored.MinDelay("wiki.example.com"))
	assert.Greater(t, restored.Delay("wiki.example.com"), time.Second)
	assert.Greater(t, restored.Delay("other.example.com"), time.Duration(0))
}

func TestRateLimiter_Budgets_copies_state(t *testing.T) {
	t.Parallel()

	r := crawl.NewRateLimiter(time.Second, 30, 1)
	r.Record("wiki.example.com")

	budgets := r.Budgets()
	require.Len(t, budgets, 1)
	require.Len(t, budgets[0].Recent, 1)

	// Mutating the export must not reach into the limiter.
	budgets[0].Recent[0] = time.Time{}
	assert.Greater(t, r.Delay("wiki.example.com"), time.Duration(0))
}
