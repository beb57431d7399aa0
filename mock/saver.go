package mock

import (
	"context"

	"github.com/fwojciec/lorecrawl"
)

var _ lorecrawl.Saver = (*Saver)(nil)

// Saver is a mock implementation of lorecrawl.Saver.
type Saver struct {
	SavePageFn func(ctx context.Context, page *lorecrawl.Page) (string, error)
}

func (s *Saver) SavePage(ctx context.Context, page *lorecrawl.Page) (string, error) {
	return s.SavePageFn(ctx, page)
}
