package lorecrawl

import (
	"context"
	"net/http"
)

// FetchResult holds the outcome of a single HTTP attempt.
type FetchResult struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Header holds the response headers.
	Header http.Header

	// Body is the response body, possibly truncated at the fetcher's
	// configured size limit.
	Body []byte

	// FinalURL is the URL after any redirects.
	FinalURL string
}

// Fetcher performs single network attempts. Implementations never retry:
// the crawl scheduler's backoff policy decides whether and when a URL is
// attempted again.
type Fetcher interface {
	// Fetch issues one GET request and returns the response, whatever its
	// status code. A non-nil error means the attempt failed at the
	// transport level (connection, TLS, timeout) and no response exists.
	Fetch(ctx context.Context, url string) (*FetchResult, error)

	// Close releases underlying resources such as idle connections.
	Close() error
}
