package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/lorecrawl"
)

// Ensure LoggingExtractor implements lorecrawl.Extractor.
var _ lorecrawl.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with per-page logging.
type LoggingExtractor struct {
	next   lorecrawl.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next lorecrawl.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the outcome.
func (e *LoggingExtractor) Extract(html string, pageURL string) (res *lorecrawl.ExtractResult, err error) {
	defer func(begin time.Time) {
		links, categories := 0, 0
		if res != nil {
			links = len(res.Links)
			categories = len(res.Categories)
		}
		e.logger.Info("extract",
			"url", pageURL,
			"links", links,
			"categories", categories,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Extract(html, pageURL)
}
