package mock

import (
	"github.com/fwojciec/lorecrawl"
)

var _ lorecrawl.Converter = (*Converter)(nil)

// Converter is a mock implementation of lorecrawl.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
