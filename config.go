package lorecrawl

import "time"

// Defaults for CrawlConfig.
const (
	DefaultUserAgent      = "lorecrawl/1.0 (+https://github.com/fwojciec/lorecrawl)"
	DefaultMinDelay       = 1 * time.Second
	DefaultMaxPerMinute   = 30
	DefaultBurst          = 1
	DefaultMaxRetries     = 3
	DefaultBackoffBase    = 1 * time.Second
	DefaultBackoffMax     = 5 * time.Minute
	DefaultSnapshotEvery  = 10
	DefaultRequestTimeout = 30 * time.Second
	DefaultRobotsTTL      = 24 * time.Hour
	DefaultRobotsErrorTTL = 1 * time.Hour
)

// CrawlConfig holds the tunable values consumed by the crawl scheduler.
// Parsing (flags, config files) happens elsewhere; the scheduler receives
// values only.
type CrawlConfig struct {
	// UserAgent identifies the crawler in requests and robots lookups.
	UserAgent string

	// MinDelay is the default minimum spacing between requests to one
	// domain. Robots Crawl-delay directives can raise it per domain.
	MinDelay time.Duration

	// MaxPerMinute caps requests to one domain in any trailing
	// 60-second window.
	MaxPerMinute int

	// DomainMaxPerMinute overrides MaxPerMinute for specific domains,
	// keyed by normalized host.
	DomainMaxPerMinute map[string]int

	// Burst is how many requests may share one MinDelay span.
	// 1 means strict inter-request spacing.
	Burst int

	// MaxRetries caps consecutive retryable failures per domain before
	// a URL is declared a terminal failure.
	MaxRetries int

	// BackoffBase and BackoffMax bound the exponential retry delay.
	BackoffBase time.Duration
	BackoffMax  time.Duration

	// SnapshotEvery is the number of successfully processed pages
	// between periodic snapshots.
	SnapshotEvery int

	// PageCap limits pages processed in one run; 0 means unlimited.
	PageCap int

	// MaxDepth limits link distance from the seed; 0 means unlimited.
	MaxDepth int

	// RequestTimeout bounds a single fetch attempt.
	RequestTimeout time.Duration

	// RespectRobots disables the robots gate entirely when false.
	RespectRobots bool

	// RobotsTTL is how long parsed robots rules are cached;
	// RobotsErrorTTL is the shorter cache for failed robots fetches.
	RobotsTTL      time.Duration
	RobotsErrorTTL time.Duration

	// ExcludePatterns are substrings; URLs containing any of them are
	// never enqueued.
	ExcludePatterns []string
}

// DefaultCrawlConfig returns the configuration used when no overrides are
// supplied.
func DefaultCrawlConfig() CrawlConfig {
	return CrawlConfig{
		UserAgent:      DefaultUserAgent,
		MinDelay:       DefaultMinDelay,
		MaxPerMinute:   DefaultMaxPerMinute,
		Burst:          DefaultBurst,
		MaxRetries:     DefaultMaxRetries,
		BackoffBase:    DefaultBackoffBase,
		BackoffMax:     DefaultBackoffMax,
		SnapshotEvery:  DefaultSnapshotEvery,
		RequestTimeout: DefaultRequestTimeout,
		RespectRobots:  true,
		RobotsTTL:      DefaultRobotsTTL,
		RobotsErrorTTL: DefaultRobotsErrorTTL,
	}
}

// Validate returns an error if the configuration is unusable. Invalid
// configuration aborts a run at startup; it is never silently corrected.
func (c *CrawlConfig) Validate() error {
	if c.UserAgent == "" {
		return Errorf(EINVALID, "user agent required")
	}
	if c.MinDelay < 0 {
		return Errorf(EINVALID, "minimum delay must not be negative")
	}
	if c.MaxPerMinute < 1 {
		return Errorf(EINVALID, "max requests per minute must be at least 1")
	}
	for domain, perMinute := range c.DomainMaxPerMinute {
		if perMinute < 1 {
			return Errorf(EINVALID, "per-minute override for %q must be at least 1", domain)
		}
	}
	if c.Burst < 1 {
		return Errorf(EINVALID, "burst must be at least 1")
	}
	if c.MaxRetries < 0 {
		return Errorf(EINVALID, "max retries must not be negative")
	}
	if c.BackoffBase <= 0 {
		return Errorf(EINVALID, "backoff base must be positive")
	}
	if c.BackoffMax < c.BackoffBase {
		return Errorf(EINVALID, "backoff max must not be below backoff base")
	}
	if c.SnapshotEvery < 1 {
		return Errorf(EINVALID, "snapshot interval must be at least 1 page")
	}
	if c.PageCap < 0 {
		return Errorf(EINVALID, "page cap must not be negative")
	}
	if c.MaxDepth < 0 {
		return Errorf(EINVALID, "max depth must not be negative")
	}
	if c.RequestTimeout <= 0 {
		return Errorf(EINVALID, "request timeout must be positive")
	}
	if c.RobotsTTL <= 0 || c.RobotsErrorTTL <= 0 {
		return Errorf(EINVALID, "robots cache TTLs must be positive")
	}
	return nil
}
