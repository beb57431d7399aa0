package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/lorecrawl"
)

var _ lorecrawl.Extractor = (*MediaWikiExtractor)(nil)

// minContentLength is the shortest whitespace-collapsed text a content
// region must hold to count as usable page content. Shorter regions are
// skipped so stub and redirect pages come back with no content.
const minContentLength = 50

// titleSelectors are tried in order. #firstHeading is the rendered page
// heading on MediaWiki sites and beats the <title> tag, which carries
// site-name suffixes.
var titleSelectors = []string{
	"#firstHeading",
	"h1",
	".page-title",
	"title",
}

// contentSelectors are tried in order, MediaWiki-specific regions first,
// generic article containers as fallbacks.
var contentSelectors = []string{
	"#mw-content-text",
	".mw-parser-output",
	"main",
	".page-content",
	"#content",
	"article",
}

// ignoreSelectors name boilerplate removed before the content region is
// rendered: site chrome, ads, edit links, and the category bar, which is
// extracted separately.
var ignoreSelectors = []string{
	"nav",
	".nav",
	".navigation",
	".sidebar",
	".rail",
	"footer",
	".footer",
	"script",
	"style",
	".ad",
	".advertisement",
	".mw-editsection",
	".printfooter",
	"#catlinks",
}

// mediaWikiLinkRegions order the link passes. The category bar runs first
// so its links carry the "category" source label; the trailing a[href]
// pass picks up anything outside the named regions.
var mediaWikiLinkRegions = []linkRegion{
	{"#catlinks a[href], .page-categories a[href], .categories a[href]", "category"},
	{"#mw-content-text a[href], .mw-parser-output a[href]", "content"},
	{"a[href]", "page"},
}

// MediaWikiExtractor extracts structured content from MediaWiki pages
// (Fandom wikis included). It pulls the page heading, the parser output
// with boilerplate removed, the category memberships, and the same-host
// links with namespace-based priorities.
type MediaWikiExtractor struct {
	priority lorecrawl.PriorityFunc
}

// NewMediaWikiExtractor creates a new MediaWikiExtractor using the default
// namespace-based link priorities.
func NewMediaWikiExtractor() *MediaWikiExtractor {
	return &MediaWikiExtractor{priority: lorecrawl.PriorityForURL}
}

// Extract parses HTML fetched from pageURL and returns the page title,
// the cleaned content region, category memberships, and discovered links.
// A page whose content region is too short comes back with an empty
// ContentHTML and no error.
func (e *MediaWikiExtractor) Extract(html string, pageURL string) (*lorecrawl.ExtractResult, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, lorecrawl.Errorf(lorecrawl.EINVALID, "invalid page URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, lorecrawl.Errorf(lorecrawl.EINVALID, "failed to parse HTML: %v", err)
	}

	result := &lorecrawl.ExtractResult{
		Title:      e.extractTitle(doc),
		Categories: e.extractCategories(doc),
		Links:      extractLinks(doc, base, e.priority, mediaWikiLinkRegions),
	}

	// Boilerplate removal mutates the document, so content comes last.
	for _, selector := range ignoreSelectors {
		doc.Find(selector).Remove()
	}
	result.ContentHTML = e.extractContent(doc)

	return result, nil
}

// extractTitle returns the first non-empty title the selectors yield.
func (e *MediaWikiExtractor) extractTitle(doc *goquery.Document) string {
	for _, selector := range titleSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if title := collapseSpace(sel.Text()); title != "" {
			return title
		}
	}
	return ""
}

// extractCategories returns the page's category names in document order.
// The leading "Categories" listing link and other Special: links are not
// categories and are skipped.
func (e *MediaWikiExtractor) extractCategories(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	var categories []string

	doc.Find("#catlinks a[href], .page-categories a[href], .categories a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if strings.Contains(href, "Special:") {
			return
		}

		name := strings.TrimPrefix(collapseSpace(sel.Text()), "Category:")
		if name == "" || seen[name] {
			return
		}

		seen[name] = true
		categories = append(categories, name)
	})

	return categories
}

// extractContent renders the first content region whose text meets the
// minimum length. Returns "" when no region qualifies.
func (e *MediaWikiExtractor) extractContent(doc *goquery.Document) string {
	for _, selector := range contentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}

		if len(collapseSpace(sel.Text())) < minContentLength {
			continue
		}

		html, err := goquery.OuterHtml(sel)
		if err != nil {
			continue
		}
		return html
	}
	return ""
}

// collapseSpace trims and collapses runs of whitespace to single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
