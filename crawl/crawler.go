package crawl

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/lorecrawl"
)

// errStopRequested signals a graceful stop inside the loop. Run maps it
// back to a nil error.
var errStopRequested = errors.New("stop requested")

// Outcome labels reported through ProgressFunc.
const (
	OutcomeCrawled   = "crawled"
	OutcomeSkipped   = "skipped"
	OutcomeNoContent = "no-content"
	OutcomeRetried   = "retried"
	OutcomeFailed    = "failed"
)

// ProgressEvent describes the outcome of one processed URL.
type ProgressEvent struct {
	URL     string
	Outcome string
	Status  int
	Crawled int
	Queued  int
}

// ProgressFunc receives progress events as the crawl advances. Called
// from the crawl loop, so it should return quickly.
type ProgressFunc func(ProgressEvent)

// Dependencies carries the external capabilities a Crawler composes.
// Fetcher, Extractor, and Saver are required. A nil Converter saves
// extracted HTML as-is, a nil Snapshots disables persistence, a nil
// Logger discards logs.
type Dependencies struct {
	Fetcher   lorecrawl.Fetcher
	Extractor lorecrawl.Extractor
	Saver     lorecrawl.Saver
	Converter lorecrawl.Converter
	Snapshots lorecrawl.SnapshotStore
	Logger    *slog.Logger
	Progress  ProgressFunc
}

// Crawler runs the crawl loop for one project. Each Crawler exclusively
// owns its frontier, rate limiter, robots cache, and backoff state;
// crawlers for different projects share nothing and never throttle each
// other. URLs are processed one at a time: the sequencing is what makes
// per-domain politeness guarantees easy to honor.
type Crawler struct {
	project   *lorecrawl.Project
	config    lorecrawl.CrawlConfig
	fetcher   lorecrawl.Fetcher
	extractor lorecrawl.Extractor
	saver     lorecrawl.Saver
	converter lorecrawl.Converter
	snapshots lorecrawl.SnapshotStore
	logger    *slog.Logger
	progress  ProgressFunc

	frontier *Frontier
	limiter  *RateLimiter
	robots   *RobotsGate
	backoff  *BackoffPolicy
	scope    string // host the crawl is confined to

	stats      lorecrawl.CrawlStats
	runCrawled int // pages crawled by this Run, for the page cap
	processed  int // pages since the last snapshot

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a Crawler for the project. When the snapshot store holds a
// snapshot for the project the crawler resumes from it; otherwise the
// frontier is seeded with the project's seed URL. A snapshot that exists
// but cannot be loaded is an error rather than a silent fresh start.
func New(ctx context.Context, project *lorecrawl.Project, config lorecrawl.CrawlConfig, deps Dependencies) (*Crawler, error) {
	if project == nil {
		return nil, lorecrawl.Errorf(lorecrawl.EINVALID, "project required")
	}
	if err := project.Validate(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if deps.Fetcher == nil || deps.Extractor == nil || deps.Saver == nil {
		return nil, lorecrawl.Errorf(lorecrawl.EINVALID, "fetcher, extractor, and saver required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	c := &Crawler{
		project:   project,
		config:    config,
		fetcher:   deps.Fetcher,
		extractor: deps.Extractor,
		saver:     deps.Saver,
		converter: deps.Converter,
		snapshots: deps.Snapshots,
		logger:    logger,
		progress:  deps.Progress,
		limiter:   NewRateLimiter(config.MinDelay, config.MaxPerMinute, config.Burst),
		backoff:   NewBackoffPolicy(config.BackoffBase, config.BackoffMax, config.MaxRetries),
		scope:     Domain(project.SeedURL),
		stop:      make(chan struct{}),
	}
	for domain, perMinute := range config.DomainMaxPerMinute {
		c.limiter.SetDomainLimit(domain, perMinute)
	}
	if config.RespectRobots {
		c.robots = NewRobotsGate(deps.Fetcher, c.limiter, config.UserAgent, config.RobotsTTL, config.RobotsErrorTTL)
	}

	snap, err := c.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snap != nil {
		c.frontier = RestoreFrontier(snap.Frontier, snap.Visited)
		c.limiter.Restore(snap.Budgets)
		c.backoff.Restore(snap.Backoff)
		c.stats = snap.Stats
		c.logger.Info("crawl resumed",
			"project", project.Name,
			"queued", c.frontier.Len(),
			"visited", c.frontier.VisitedCount(),
		)
		return c, nil
	}

	c.frontier = NewFrontier()
	if !c.Seed(project.SeedURL, lorecrawl.PriorityForURL(project.SeedURL)) {
		return nil, lorecrawl.Errorf(lorecrawl.EINVALID, "seed URL %q could not be enqueued", project.SeedURL)
	}
	return c, nil
}

// Seed normalizes a URL and enqueues it like any discovered link.
// Returns false when the URL is malformed, out of scope, excluded, or
// already known to the frontier.
func (c *Crawler) Seed(rawURL string, priority lorecrawl.LinkPriority) bool {
	norm, err := NormalizeURL(rawURL)
	if err != nil {
		return false
	}
	if !c.inScope(norm) {
		return false
	}
	return c.frontier.Add(lorecrawl.URLRecord{
		URL:        norm,
		Domain:     Domain(norm),
		Priority:   priority,
		EnqueuedAt: time.Now(),
	})
}

// Run executes the crawl loop until the frontier is exhausted, the page
// cap is reached, the context is canceled, or Stop is called. Stops are
// honored only between URLs, never mid-fetch. A final snapshot is
// written on every exit path so the run can be resumed.
func (c *Crawler) Run(ctx context.Context) (*lorecrawl.CrawlStats, error) {
	start := time.Now()
	c.runCrawled = 0
	c.logger.Info("crawl started",
		"project", c.project.Name,
		"seed", c.project.SeedURL,
		"queued", c.frontier.Len(),
		"visited", c.frontier.VisitedCount(),
	)

	runErr := c.loop(ctx)
	if errors.Is(runErr, errStopRequested) {
		c.logger.Info("crawl stopped", "project", c.project.Name)
		runErr = nil
	}

	if err := c.saveSnapshot(ctx); err != nil {
		c.logger.Error("final snapshot failed", "project", c.project.Name, "err", err)
		if runErr == nil {
			runErr = err
		}
	}

	stats := c.stats
	c.logger.Info("crawl finished",
		"project", c.project.Name,
		"crawled", stats.Crawled,
		"errors", stats.Errors,
		"skipped", stats.Skipped,
		"retries", stats.Retries,
		"queued", c.frontier.Len(),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return &stats, runErr
}

// Stop requests a graceful stop. The URL in flight finishes processing,
// a final snapshot is written, and Run returns. Safe to call from any
// goroutine and more than once.
func (c *Crawler) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Stats returns a copy of the current counters.
func (c *Crawler) Stats() lorecrawl.CrawlStats {
	return c.stats
}

// QueueLen returns the number of URLs waiting in the frontier.
func (c *Crawler) QueueLen() int {
	return c.frontier.Len()
}

// Snapshot captures the scheduler state needed to reproduce future
// decisions: pending records in dequeue order, the visited set, rate
// budgets, backoff streaks, and counters.
func (c *Crawler) Snapshot() *lorecrawl.Snapshot {
	return &lorecrawl.Snapshot{
		ProjectID: c.project.ID,
		TakenAt:   time.Now(),
		Frontier:  c.frontier.Records(),
		Visited:   c.frontier.VisitedURLs(),
		Budgets:   c.limiter.Budgets(),
		Backoff:   c.backoff.States(),
		Stats:     c.stats,
	}
}

// loop is the sequential scheduler: one URL at a time, cancellation
// checked once per iteration.
func (c *Crawler) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stop:
			return errStopRequested
		default:
		}

		// The cap bounds pages crawled by this run; cumulative counts
		// carried over from a snapshot do not consume it.
		if c.config.PageCap > 0 && c.runCrawled >= c.config.PageCap {
			c.logger.Info("page cap reached", "project", c.project.Name, "cap", c.config.PageCap)
			return nil
		}

		rec, ok := c.frontier.Next(time.Now())
		if !ok {
			// Nothing eligible. If records are waiting out retry
			// delays, sleep until the earliest becomes eligible.
			next, waiting := c.frontier.NextEligibleAt()
			if !waiting {
				return nil
			}
			if err := c.sleep(ctx, time.Until(next)); err != nil {
				return err
			}
			continue
		}

		if err := c.processURL(ctx, rec); err != nil {
			return err
		}
	}
}

// processURL runs one full iteration for a dequeued record. Per-URL
// failures are absorbed into counters and logs; the only errors returned
// are cancellation and stop, and on those paths the record goes back to
// the frontier so it is never lost.
func (c *Crawler) processURL(ctx context.Context, rec lorecrawl.URLRecord) error {
	if c.robots != nil && !c.allowedByRobots(ctx, rec.URL) {
		c.frontier.MarkVisited(rec.URL)
		c.stats.Skipped++
		c.logger.Info("blocked by robots", "url", rec.URL)
		c.emit(rec.URL, OutcomeSkipped, 0)
		return nil
	}

	if err := c.sleep(ctx, c.limiter.Delay(rec.Domain)); err != nil {
		c.frontier.Requeue(rec)
		return err
	}

	c.stats.Attempted++
	res, err := c.fetch(ctx, rec.URL)
	switch {
	case err != nil:
		c.handleRetryable(rec, 0, err)
	case Retryable(res.StatusCode):
		c.handleRetryable(rec, res.StatusCode, nil)
	case res.StatusCode < 200 || res.StatusCode >= 300:
		c.handleTerminal(rec, res.StatusCode)
	default:
		c.handleSuccess(ctx, rec, res)
	}
	return nil
}

// fetch issues one request on a context detached from run cancellation:
// an iteration in flight completes or times out on its own terms, and a
// stop request takes effect at the next loop check.
func (c *Crawler) fetch(ctx context.Context, url string) (*lorecrawl.FetchResult, error) {
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.config.RequestTimeout)
	defer cancel()
	return c.fetcher.Fetch(fetchCtx, url)
}

// allowedByRobots consults the gate with the same detached-context
// discipline as fetch, since a cache miss triggers a robots.txt request.
func (c *Crawler) allowedByRobots(ctx context.Context, url string) bool {
	gateCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.config.RequestTimeout)
	defer cancel()
	return c.robots.Allowed(gateCtx, url)
}

// handleRetryable processes a transport failure or retryable status:
// grow the domain's backoff streak, and either requeue the record with a
// delayed eligibility or, when the domain is at the retry cap, fail the
// URL terminally.
func (c *Crawler) handleRetryable(rec lorecrawl.URLRecord, status int, fetchErr error) {
	delay := c.backoff.Failure(rec.Domain)

	if c.backoff.ShouldRetry(rec.Domain) {
		rec.NotBefore = time.Now().Add(delay)
		c.frontier.Requeue(rec)
		c.stats.Retries++
		c.logger.Warn("fetch failed, retry scheduled",
			"url", rec.URL,
			"status", status,
			"err", fetchErr,
			"failures", c.backoff.Failures(rec.Domain),
			"delay", delay.Round(time.Millisecond),
		)
		c.emit(rec.URL, OutcomeRetried, status)
		return
	}

	c.frontier.MarkVisited(rec.URL)
	c.stats.Errors++
	c.logger.Error("fetch failed, retries exhausted",
		"url", rec.URL,
		"status", status,
		"err", fetchErr,
		"failures", c.backoff.Failures(rec.Domain),
	)
	c.emit(rec.URL, OutcomeFailed, status)
}

// handleTerminal processes a non-retryable HTTP status. The URL is done;
// the domain's backoff streak is untouched because the server answered.
func (c *Crawler) handleTerminal(rec lorecrawl.URLRecord, status int) {
	c.frontier.MarkVisited(rec.URL)
	c.stats.Errors++
	c.logger.Warn("fetch rejected", "url", rec.URL, "status", status)
	c.emit(rec.URL, OutcomeFailed, status)
}

// handleSuccess processes a 2xx response: record the request against the
// rate budget, reset backoff, extract, enqueue discovered links, and save
// the page. Links are enqueued even when the page has no saveable
// content, since category and index pages exist to be followed, not kept.
func (c *Crawler) handleSuccess(ctx context.Context, rec lorecrawl.URLRecord, res *lorecrawl.FetchResult) {
	c.limiter.Record(rec.Domain)
	c.backoff.Success(rec.Domain)

	result, err := c.extractor.Extract(string(res.Body), rec.URL)
	if err != nil {
		c.frontier.MarkVisited(rec.URL)
		c.stats.Errors++
		c.logger.Warn("extraction failed", "url", rec.URL, "err", err)
		c.emit(rec.URL, OutcomeFailed, res.StatusCode)
		return
	}

	added := c.enqueueLinks(rec, result.Links)

	if strings.TrimSpace(result.ContentHTML) == "" {
		c.frontier.MarkVisited(rec.URL)
		c.stats.Skipped++
		c.logger.Debug("no usable content", "url", rec.URL, "links", added)
		c.emit(rec.URL, OutcomeNoContent, res.StatusCode)
		return
	}

	c.savePage(ctx, rec, result)

	c.frontier.MarkVisited(rec.URL)
	c.stats.Crawled++
	c.runCrawled++
	c.processed++
	c.logger.Info("page crawled",
		"url", rec.URL,
		"title", result.Title,
		"links", added,
		"crawled", c.stats.Crawled,
		"queued", c.frontier.Len(),
	)
	c.emit(rec.URL, OutcomeCrawled, res.StatusCode)

	if c.snapshots != nil && c.processed >= c.config.SnapshotEvery {
		if err := c.saveSnapshot(ctx); err != nil {
			c.logger.Error("periodic snapshot failed", "project", c.project.Name, "err", err)
		} else {
			c.processed = 0
		}
	}
}

// enqueueLinks normalizes, scope-checks, and enqueues links discovered on
// origin, returning how many were actually added.
func (c *Crawler) enqueueLinks(origin lorecrawl.URLRecord, links []lorecrawl.DiscoveredLink) int {
	if c.config.MaxDepth > 0 && origin.Depth >= c.config.MaxDepth {
		return 0
	}

	added := 0
	now := time.Now()
	for _, link := range links {
		norm, err := NormalizeURL(link.URL)
		if err != nil {
			continue
		}
		if !c.inScope(norm) {
			continue
		}
		rec := lorecrawl.URLRecord{
			URL:        norm,
			Domain:     Domain(norm),
			Priority:   link.Priority,
			Origin:     origin.URL,
			Depth:      origin.Depth + 1,
			EnqueuedAt: now,
		}
		if c.frontier.Add(rec) {
			added++
		}
	}
	return added
}

// savePage converts extracted HTML to markdown and hands it to the
// saver. Save problems are logged and counted, never crawl-fatal. The
// save context is detached so an interrupt cannot truncate a page that
// already finished fetching.
func (c *Crawler) savePage(ctx context.Context, rec lorecrawl.URLRecord, result *lorecrawl.ExtractResult) {
	content := result.ContentHTML
	if c.converter != nil {
		md, err := c.converter.Convert(content)
		if err != nil {
			c.logger.Warn("markdown conversion failed, saving extracted HTML", "url", rec.URL, "err", err)
		} else {
			content = md
		}
	}

	page := &lorecrawl.Page{
		URL:         rec.URL,
		Title:       result.Title,
		Content:     content,
		ContentHash: ComputeHash(content),
		Categories:  result.Categories,
		FetchedAt:   time.Now(),
	}
	location, err := c.saver.SavePage(context.WithoutCancel(ctx), page)
	if err != nil {
		c.stats.Errors++
		c.logger.Error("save failed", "url", rec.URL, "err", err)
		return
	}
	c.logger.Debug("page saved", "url", rec.URL, "location", location)
}

// inScope reports whether a normalized URL belongs to this crawl: same
// host as the seed and not matching any exclude pattern.
func (c *Crawler) inScope(normURL string) bool {
	if Domain(normURL) != c.scope {
		return false
	}
	for _, pattern := range c.config.ExcludePatterns {
		if pattern != "" && strings.Contains(normURL, pattern) {
			return false
		}
	}
	return true
}

// sleep waits out a politeness or eligibility delay, abandoning the wait
// on cancellation or stop.
func (c *Crawler) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.stop:
		return errStopRequested
	case <-timer.C:
		return nil
	}
}

func (c *Crawler) loadSnapshot(ctx context.Context) (*lorecrawl.Snapshot, error) {
	if c.snapshots == nil {
		return nil, nil
	}
	snap, err := c.snapshots.LoadSnapshot(ctx, c.project.ID)
	if err != nil {
		if lorecrawl.ErrorCode(err) == lorecrawl.ENOTFOUND {
			return nil, nil
		}
		return nil, err
	}
	return snap, nil
}

// saveSnapshot persists scheduler state on a context detached from run
// cancellation: the snapshot on an interrupted run is the one that makes
// the interrupt recoverable.
func (c *Crawler) saveSnapshot(ctx context.Context) error {
	if c.snapshots == nil {
		return nil
	}
	snap := c.Snapshot()
	if err := c.snapshots.SaveSnapshot(context.WithoutCancel(ctx), snap); err != nil {
		return err
	}
	c.logger.Debug("snapshot saved",
		"project", c.project.Name,
		"queued", len(snap.Frontier),
		"visited", len(snap.Visited),
	)
	return nil
}

func (c *Crawler) emit(url, outcome string, status int) {
	if c.progress == nil {
		return
	}
	c.progress(ProgressEvent{
		URL:     url,
		Outcome: outcome,
		Status:  status,
		Crawled: c.stats.Crawled,
		Queued:  c.frontier.Len(),
	})
}
