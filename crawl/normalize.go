package crawl

import (
	"net/url"
	"sort"
	"strings"

	"github.com/fwojciec/lorecrawl"
)

// NormalizeURL returns the canonical form of a URL used for frontier
// deduplication: lowercased scheme and host, fragment removed, trailing
// slashes stripped, and query parameters sorted by key then value.
// Presentation variants of the same page collapse to a single form.
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", lorecrawl.Errorf(lorecrawl.EINVALID, "invalid URL %q", rawURL)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", lorecrawl.Errorf(lorecrawl.EINVALID, "unsupported scheme %q in URL %q", u.Scheme, rawURL)
	}
	if u.Host == "" {
		return "", lorecrawl.Errorf(lorecrawl.EINVALID, "URL %q has no host", rawURL)
	}

	u.Scheme = scheme
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	if u.RawPath != "" {
		u.RawPath = strings.TrimRight(u.RawPath, "/")
	}
	u.RawQuery = sortQuery(u.RawQuery)

	return u.String(), nil
}

// Domain returns the lowercased host (including any port) of a URL. The
// empty string means the URL could not be parsed. All per-domain
// politeness state is keyed by this value.
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

// sortQuery re-encodes a query string with its key/value pairs in sorted
// order. Duplicate keys are preserved. Unparseable queries pass through
// unchanged rather than failing normalization.
func sortQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return rawQuery
	}

	type pair struct {
		key   string
		value string
	}
	pairs := make([]pair, 0, len(values))
	for key, vs := range values {
		for _, value := range vs {
			pairs = append(pairs, pair{key: key, value: value})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].key != pairs[j].key {
			return pairs[i].key < pairs[j].key
		}
		return pairs[i].value < pairs[j].value
	})

	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}
	return b.String()
}
