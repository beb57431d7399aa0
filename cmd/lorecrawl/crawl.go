package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/fwojciec/lorecrawl"
	"github.com/fwojciec/lorecrawl/crawl"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	project, err := findProject(deps, c.Name)
	switch {
	case err == nil:
		// Crawling an existing project resumes it. A different seed URL
		// would silently change what the snapshot means, so reject it.
		if c.URL != "" && c.URL != project.SeedURL {
			fmt.Fprintf(deps.Stderr, "error: project %q already crawls %s; delete it first to change the seed\n",
				c.Name, project.SeedURL)
			return lorecrawl.Errorf(lorecrawl.ECONFLICT, "project %q has a different seed URL", c.Name)
		}
	case lorecrawl.ErrorCode(err) == lorecrawl.ENOTFOUND:
		if c.URL == "" {
			fmt.Fprintf(deps.Stderr, "error: project %q does not exist yet; pass a seed URL to create it\n", c.Name)
			return lorecrawl.Errorf(lorecrawl.EINVALID, "seed URL required for a new project")
		}
		project = &lorecrawl.Project{Name: c.Name, SeedURL: c.URL}
		if err := deps.Projects.CreateProject(deps.Ctx, project); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", lorecrawl.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "Created project %q (%s)\n", project.Name, project.ID)
	default:
		fmt.Fprintf(deps.Stderr, "error: %s\n", lorecrawl.ErrorMessage(err))
		return err
	}

	return runCrawl(deps, project, c.MaxPages, c.Sitemap)
}

// findProject resolves a project by name. Returns ENOTFOUND when absent.
func findProject(deps *Dependencies, name string) (*lorecrawl.Project, error) {
	projects, err := deps.Projects.FindProjects(deps.Ctx, lorecrawl.ProjectFilter{Name: &name})
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, lorecrawl.Errorf(lorecrawl.ENOTFOUND, "project %q not found", name)
	}
	return projects[0], nil
}

// runCrawl builds a crawler for the project and runs it, reporting
// progress and a final summary. Shared by the crawl and resume commands.
func runCrawl(deps *Dependencies, project *lorecrawl.Project, maxPages int, sitemap bool) error {
	cfg := deps.Config
	if maxPages > 0 {
		cfg.PageCap = maxPages
	}

	var progress crawl.ProgressFunc
	if !deps.Quiet {
		progress = func(ev crawl.ProgressEvent) {
			switch ev.Outcome {
			case crawl.OutcomeCrawled:
				fmt.Fprintf(deps.Stdout, "  [%d] %s\n", ev.Crawled, crawl.TruncateURL(ev.URL, 72))
			case crawl.OutcomeFailed:
				fmt.Fprintf(deps.Stderr, "  fail %s (HTTP %d)\n", crawl.TruncateURL(ev.URL, 72), ev.Status)
			}
		}
	}

	crawler, err := crawl.New(deps.Ctx, project, cfg, crawl.Dependencies{
		Fetcher:   deps.Fetcher,
		Extractor: deps.Extractor,
		Saver:     deps.Saver,
		Converter: deps.Converter,
		Snapshots: deps.Snapshots,
		Logger:    deps.Logger,
		Progress:  progress,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", lorecrawl.ErrorMessage(err))
		return err
	}

	if sitemap {
		urls, err := deps.Sitemaps.DiscoverURLs(deps.Ctx, project.SeedURL)
		if err != nil {
			// Sitemap seeding is best effort; the seed URL still works.
			fmt.Fprintf(deps.Stderr, "  sitemap discovery failed: %v\n", err)
		} else {
			seeded := 0
			for _, u := range urls {
				if crawler.Seed(u, lorecrawl.PriorityForURL(u)) {
					seeded++
				}
			}
			fmt.Fprintf(deps.Stdout, "Seeded %d sitemap URLs\n", seeded)
		}
	}

	fmt.Fprintf(deps.Stdout, "Crawling %s (%d queued)\n", project.SeedURL, crawler.QueueLen())

	stats, err := crawler.Run(deps.Ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintf(deps.Stdout, "\nInterrupted after %d pages. Progress saved; run 'lorecrawl resume %s' to continue.\n",
				stats.Crawled, project.Name)
			return nil
		}
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "Crawled %d pages (%d errors, %d skipped, %d retries)\n",
		stats.Crawled, stats.Errors, stats.Skipped, stats.Retries)
	if queued := crawler.QueueLen(); queued > 0 {
		fmt.Fprintf(deps.Stdout, "%d URLs still queued; run 'lorecrawl resume %s' to continue.\n", queued, project.Name)
	}
	return nil
}
