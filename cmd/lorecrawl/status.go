package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/lorecrawl"
)

// Run executes the status command.
func (c *StatusCmd) Run(deps *Dependencies) error {
	project, err := findProject(deps, c.Name)
	if err != nil {
		if lorecrawl.ErrorCode(err) == lorecrawl.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: project %q not found. Use 'lorecrawl list' to see available projects.\n", c.Name)
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", lorecrawl.ErrorMessage(err))
		}
		return err
	}

	fmt.Fprintf(deps.Stdout, "Project:  %s (%s)\n", project.Name, project.ID)
	fmt.Fprintf(deps.Stdout, "Seed:     %s\n", project.SeedURL)
	fmt.Fprintf(deps.Stdout, "Created:  %s\n", project.CreatedAt.Format(time.RFC3339))

	snap, err := deps.Snapshots.LoadSnapshot(deps.Ctx, project.ID)
	if err != nil {
		if lorecrawl.ErrorCode(err) == lorecrawl.ENOTFOUND {
			fmt.Fprintln(deps.Stdout, "Status:   not yet crawled")
			return nil
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", lorecrawl.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Snapshot: %s\n", snap.TakenAt.Format(time.RFC3339))
	fmt.Fprintf(deps.Stdout, "Crawled:  %d pages (%d errors, %d skipped, %d retries)\n",
		snap.Stats.Crawled, snap.Stats.Errors, snap.Stats.Skipped, snap.Stats.Retries)
	fmt.Fprintf(deps.Stdout, "Visited:  %d URLs\n", len(snap.Visited))
	fmt.Fprintf(deps.Stdout, "Queued:   %d URLs\n", len(snap.Frontier))
	if len(snap.Frontier) > 0 {
		fmt.Fprintf(deps.Stdout, "\nRun 'lorecrawl resume %s' to continue.\n", project.Name)
	}

	return nil
}
