package trafilatura

import (
	"bytes"
	"errors"
	"net/url"
	"strings"

	"github.com/fwojciec/lorecrawl"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements lorecrawl.Extractor at compile time.
var _ lorecrawl.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from pages that
// are not wiki-rendered. Link discovery walks the full document rather
// than the extracted content, so navigation links still reach the
// frontier on sites where trafilatura strips them as boilerplate.
type Extractor struct {
	priority lorecrawl.PriorityFunc
}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{priority: lorecrawl.PriorityForURL}
}

// Extract processes raw HTML and returns the main content plus the
// same-host links discovered anywhere in the document.
func (e *Extractor) Extract(rawHTML string, pageURL string) (*lorecrawl.ExtractResult, error) {
	if rawHTML == "" {
		return nil, errors.New("empty HTML input")
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, lorecrawl.Errorf(lorecrawl.EINVALID, "invalid page URL: %v", err)
	}

	opts := trafilatura.Options{
		EnableFallback: true,
		OriginalURL:    base,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, err
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}

	return &lorecrawl.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: contentHTML,
		Links:       e.collectLinks(rawHTML, base),
	}, nil
}

// collectLinks walks the full document for anchors. Parse errors yield no
// links rather than failing the extraction; trafilatura already accepted
// the input.
func (e *Extractor) collectLinks(rawHTML string, base *url.URL) []lorecrawl.DiscoveredLink {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var links []lorecrawl.DiscoveredLink

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if link, ok := e.anchorLink(n, base); ok && !seen[link.URL] {
				seen[link.URL] = true
				links = append(links, link)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links
}

// anchorLink converts an anchor node into a discovered link, resolving
// the href against base. Reports false for anchors that cannot be
// crawled: missing or non-HTTP hrefs, other hosts, and links that point
// back at the page itself.
func (e *Extractor) anchorLink(n *html.Node, base *url.URL) (lorecrawl.DiscoveredLink, bool) {
	var href string
	for _, attr := range n.Attr {
		if attr.Key == "href" {
			href = attr.Val
			break
		}
	}
	if href == "" || isNonHTTPLink(href) {
		return lorecrawl.DiscoveredLink{}, false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return lorecrawl.DiscoveredLink{}, false
	}

	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	if resolved.Host != base.Host || resolved.String() == base.String() {
		return lorecrawl.DiscoveredLink{}, false
	}

	u := resolved.String()
	return lorecrawl.DiscoveredLink{
		URL:      u,
		Priority: e.priority(u),
		Text:     strings.TrimSpace(nodeText(n)),
		Source:   "page",
	}, true
}

// nodeText returns the concatenated text content of a node's subtree.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// isNonHTTPLink reports whether href uses a scheme that cannot be crawled.
func isNonHTTPLink(href string) bool {
	lower := strings.ToLower(strings.TrimSpace(href))
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
