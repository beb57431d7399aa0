package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/lorecrawl"
	"github.com/fwojciec/lorecrawl/crawl"
)

// Run executes the fetch command: one request, one extraction, no
// persistence. Useful for checking what a crawl would make of a page
// before committing to one.
func (c *FetchCmd) Run(deps *Dependencies) error {
	res, err := deps.Fetcher.Fetch(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: fetch failed: %v\n", err)
		return err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		fmt.Fprintf(deps.Stderr, "error: HTTP %d for %s\n", res.StatusCode, c.URL)
		return lorecrawl.Errorf(lorecrawl.EINTERNAL, "HTTP %d for %s", res.StatusCode, c.URL)
	}

	result, err := deps.Extractor.Extract(string(res.Body), c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", lorecrawl.ErrorMessage(err))
		return err
	}

	if c.Markdown {
		content := result.ContentHTML
		if deps.Converter != nil {
			if md, convErr := deps.Converter.Convert(content); convErr == nil {
				content = md
			}
		}
		fmt.Fprintln(deps.Stdout, content)
		return nil
	}

	fmt.Fprintf(deps.Stdout, "Title:      %s\n", result.Title)
	fmt.Fprintf(deps.Stdout, "Fetched:    %s (HTTP %d, %s)\n", res.FinalURL, res.StatusCode, crawl.FormatBytes(len(res.Body)))
	if len(result.Categories) > 0 {
		fmt.Fprintf(deps.Stdout, "Categories: %s\n", strings.Join(result.Categories, ", "))
	}
	if strings.TrimSpace(result.ContentHTML) == "" {
		fmt.Fprintln(deps.Stdout, "Content:    none (a crawl would follow links but save nothing)")
	} else {
		fmt.Fprintf(deps.Stdout, "Content:    %s extracted HTML\n", crawl.FormatBytes(len(result.ContentHTML)))
	}
	fmt.Fprintf(deps.Stdout, "Links:      %d in scope\n", len(result.Links))

	if c.Links {
		fmt.Fprintln(deps.Stdout)
		for _, link := range result.Links {
			fmt.Fprintf(deps.Stdout, "  %4d  %s\n", link.Priority, link.URL)
		}
	}

	return nil
}
