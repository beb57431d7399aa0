package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/lorecrawl"
)

// Ensure LoggingSaver implements lorecrawl.Saver.
var _ lorecrawl.Saver = (*LoggingSaver)(nil)

// LoggingSaver wraps a Saver with per-page logging.
type LoggingSaver struct {
	next   lorecrawl.Saver
	logger *slog.Logger
}

// NewLoggingSaver creates a new LoggingSaver.
func NewLoggingSaver(next lorecrawl.Saver, logger *slog.Logger) *LoggingSaver {
	return &LoggingSaver{next: next, logger: logger}
}

// SavePage delegates to the wrapped saver and logs the operation.
func (s *LoggingSaver) SavePage(ctx context.Context, page *lorecrawl.Page) (path string, err error) {
	defer func(begin time.Time) {
		s.logger.Info("save page",
			"url", page.URL,
			"path", path,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SavePage(ctx, page)
}
