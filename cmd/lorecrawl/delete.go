package main

import (
	"fmt"

	"github.com/fwojciec/lorecrawl"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return lorecrawl.Errorf(lorecrawl.EINVALID, "use --force to confirm deletion")
	}

	project, err := findProject(deps, c.Name)
	if err != nil {
		if lorecrawl.ErrorCode(err) == lorecrawl.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: project %q not found. Use 'lorecrawl list' to see available projects.\n", c.Name)
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", lorecrawl.ErrorMessage(err))
		}
		return err
	}

	if err := deps.Projects.DeleteProject(deps.Ctx, project.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", lorecrawl.ErrorMessage(err))
		return err
	}

	// The snapshot goes with the project; crawled markdown stays on disk.
	fmt.Fprintf(deps.Stdout, "Deleted project %q. Saved pages are left in place.\n", project.Name)
	return nil
}
