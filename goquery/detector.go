package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/lorecrawl"
)

var _ lorecrawl.Extractor = (*DetectingExtractor)(nil)

// IsMediaWiki reports whether the HTML was rendered by MediaWiki. It
// checks the meta generator tag first, then falls back to structural
// markers unique to MediaWiki skins.
func IsMediaWiki(html string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}

	// Meta generator is the most reliable signal when present
	generator := ""
	doc.Find("meta[name='generator']").Each(func(_ int, s *goquery.Selection) {
		if content, exists := s.Attr("content"); exists {
			generator = strings.ToLower(content)
		}
	})
	if strings.Contains(generator, "mediawiki") {
		return true
	}

	// Structural markers shared by MediaWiki skins, Fandom included
	for _, selector := range []string{"#mw-content-text", ".mw-parser-output", "body.mediawiki", "#catlinks"} {
		if doc.Find(selector).Length() > 0 {
			return true
		}
	}

	return false
}

// DetectingExtractor routes each page to the MediaWiki extractor or a
// generic fallback based on what rendered it. Detection runs per page,
// so a crawl that wanders onto non-wiki pages of the same site still
// extracts something useful from them.
type DetectingExtractor struct {
	mediaWiki lorecrawl.Extractor
	fallback  lorecrawl.Extractor
}

// NewDetectingExtractor creates a DetectingExtractor with the given
// MediaWiki and fallback extractors.
func NewDetectingExtractor(mediaWiki, fallback lorecrawl.Extractor) *DetectingExtractor {
	return &DetectingExtractor{
		mediaWiki: mediaWiki,
		fallback:  fallback,
	}
}

// Extract dispatches to the MediaWiki extractor when the page carries
// MediaWiki markers and to the fallback otherwise.
func (e *DetectingExtractor) Extract(html string, pageURL string) (*lorecrawl.ExtractResult, error) {
	if IsMediaWiki(html) {
		return e.mediaWiki.Extract(html, pageURL)
	}
	return e.fallback.Extract(html, pageURL)
}
