package mock

import (
	"github.com/fwojciec/lorecrawl"
)

var _ lorecrawl.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of lorecrawl.Extractor.
type Extractor struct {
	ExtractFn func(html, pageURL string) (*lorecrawl.ExtractResult, error)
}

func (e *Extractor) Extract(html, pageURL string) (*lorecrawl.ExtractResult, error) {
	return e.ExtractFn(html, pageURL)
}
