package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/lorecrawl"
	"github.com/fwojciec/lorecrawl/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer

	DB        *sqlite.DB
	Projects  lorecrawl.ProjectService
	Snapshots lorecrawl.SnapshotStore
	Sitemaps  lorecrawl.SitemapService

	// Crawl pipeline capabilities, wired for crawl, resume, and fetch.
	Fetcher   lorecrawl.Fetcher
	Extractor lorecrawl.Extractor
	Converter lorecrawl.Converter
	Saver     lorecrawl.Saver

	Config lorecrawl.CrawlConfig
	Logger *slog.Logger
	Quiet  bool
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB      string `help:"SQLite database path (default ~/.lorecrawl/lorecrawl.db, or $LORECRAWL_DB)"`
	Data    string `help:"Directory content is written under, one subdirectory per project (default ./data, or $LORECRAWL_DATA)"`
	Config  string `help:"Crawl configuration YAML file" type:"path"`
	Verbose bool   `short:"v" help:"Log crawl detail to stderr"`
	Quiet   bool   `short:"q" help:"Suppress per-page progress output"`

	Crawl  CrawlCmd  `cmd:"" help:"Crawl a wiki site, creating the project if needed"`
	Resume ResumeCmd `cmd:"" help:"Resume an interrupted crawl"`
	List   ListCmd   `cmd:"" help:"List all registered projects"`
	Status StatusCmd `cmd:"" help:"Show crawl progress for a project"`
	Delete DeleteCmd `cmd:"" help:"Delete a project and its snapshot"`
	Fetch  FetchCmd  `cmd:"" help:"Fetch one URL and preview what would be extracted"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	Name     string `arg:"" help:"Project name"`
	URL      string `arg:"" optional:"" help:"Seed URL (required for a new project)"`
	MaxPages int    `help:"Stop after this many pages this run (0 = unlimited)"`
	Engine   string `enum:"auto,mediawiki,generic" default:"auto" help:"Extraction engine"`
	Sitemap  bool   `help:"Seed the frontier from the site's sitemaps"`
}

// ResumeCmd is the "resume" subcommand.
type ResumeCmd struct {
	Name     string `arg:"" help:"Project name"`
	MaxPages int    `help:"Stop after this many pages this run (0 = unlimited)"`
	Engine   string `enum:"auto,mediawiki,generic" default:"auto" help:"Extraction engine"`
	Sitemap  bool   `help:"Seed the frontier from the site's sitemaps"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct{}

// StatusCmd is the "status" subcommand.
type StatusCmd struct {
	Name string `arg:"" help:"Project name"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	Name  string `arg:"" help:"Project name"`
	Force bool   `help:"Confirm deletion"`
}

// FetchCmd is the "fetch" subcommand.
type FetchCmd struct {
	URL      string `arg:"" help:"Page URL to fetch"`
	Engine   string `enum:"auto,mediawiki,generic" default:"auto" help:"Extraction engine"`
	Links    bool   `help:"List discovered links with priorities"`
	Markdown bool   `help:"Print the converted markdown content"`
}
