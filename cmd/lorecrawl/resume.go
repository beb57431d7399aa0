package main

import (
	"fmt"

	"github.com/fwojciec/lorecrawl"
)

// Run executes the resume command.
func (c *ResumeCmd) Run(deps *Dependencies) error {
	project, err := findProject(deps, c.Name)
	if err != nil {
		if lorecrawl.ErrorCode(err) == lorecrawl.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: project %q not found. Use 'lorecrawl list' to see available projects.\n", c.Name)
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", lorecrawl.ErrorMessage(err))
		}
		return err
	}

	return runCrawl(deps, project, c.MaxPages, c.Sitemap)
}
