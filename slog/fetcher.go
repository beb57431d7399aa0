// Package slog provides logging decorators for lorecrawl services using
// the standard library's structured logging.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/lorecrawl"
)

// Ensure LoggingFetcher implements lorecrawl.Fetcher.
var _ lorecrawl.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with per-request logging.
type LoggingFetcher struct {
	next   lorecrawl.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next lorecrawl.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the attempt.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (res *lorecrawl.FetchResult, err error) {
	defer func(begin time.Time) {
		status, size := 0, 0
		if res != nil {
			status = res.StatusCode
			size = len(res.Body)
		}
		f.logger.Info("fetch",
			"url", url,
			"status", status,
			"bytes", size,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
