package mock

import (
	"context"

	"github.com/fwojciec/lorecrawl"
)

var _ lorecrawl.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of lorecrawl.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, siteURL string) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, siteURL string) ([]string, error) {
	return s.DiscoverURLsFn(ctx, siteURL)
}
