package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/lorecrawl"
	"github.com/fwojciec/lorecrawl/fs"
	"github.com/fwojciec/lorecrawl/goquery"
	"github.com/fwojciec/lorecrawl/htmltomarkdown"
	lorehttp "github.com/fwojciec/lorecrawl/http"
	lcslog "github.com/fwojciec/lorecrawl/slog"
	"github.com/fwojciec/lorecrawl/sqlite"
	"github.com/fwojciec/lorecrawl/trafilatura"
	"github.com/fwojciec/lorecrawl/yaml"
)

func main() {
	// SIGINT cancels the context; the crawl loop finishes the page in
	// flight, writes a final snapshot, and exits cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path and content directory. Set before calling Run().
	DBPath  string
	DataDir string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	ProjectService lorecrawl.ProjectService
	SnapshotStore  lorecrawl.SnapshotStore
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:  defaultDBPath(),
		DataDir: defaultDataDir(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Initialize dependencies struct for Kong binding
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	// Create Kong parser with dependency binding
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("lorecrawl"),
		kong.Description("Politely crawl wiki sites into local markdown files"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'lorecrawl --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	// Parse arguments first to know which command and its flags
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	command, _, _ := strings.Cut(kongCtx.Command(), " ")

	if cli.DB != "" {
		m.DBPath = cli.DB
	}
	if cli.Data != "" {
		m.DataDir = cli.Data
	}

	logger := slog.New(slog.DiscardHandler)
	if cli.Verbose {
		logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	deps.Logger = logger
	deps.Quiet = cli.Quiet

	// Crawl configuration: defaults, overridden by a config file when given.
	cfg := lorecrawl.DefaultCrawlConfig()
	if cli.Config != "" {
		cfg, err = yaml.Load(cli.Config)
		if err != nil {
			return fmt.Errorf("failed to load config file %q: %w", cli.Config, err)
		}
	}
	deps.Config = cfg

	// Open database
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set LORECRAWL_DB or pass --db to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	// Wire core services into dependencies
	m.ProjectService = sqlite.NewProjectService(m.DB)
	m.SnapshotStore = sqlite.NewSnapshotStore(m.DB)
	deps.DB = m.DB
	deps.Projects = m.ProjectService
	deps.Snapshots = m.SnapshotStore
	deps.Sitemaps = lorehttp.NewSitemapService(nil, cfg.UserAgent)

	// Wire the crawl pipeline for commands that touch the network
	if command == "crawl" || command == "resume" || command == "fetch" {
		engine := cli.Fetch.Engine
		projectName := ""
		switch command {
		case "crawl":
			engine = cli.Crawl.Engine
			projectName = cli.Crawl.Name
		case "resume":
			engine = cli.Resume.Engine
			projectName = cli.Resume.Name
		}

		fetcher := lorehttp.NewFetcher(
			lorehttp.WithUserAgent(cfg.UserAgent),
			lorehttp.WithTimeout(cfg.RequestTimeout),
		)
		defer fetcher.Close()

		deps.Fetcher = fetcher
		deps.Extractor = newExtractor(engine)
		deps.Converter = htmltomarkdown.NewConverter()
		if projectName != "" {
			deps.Saver = fs.NewSaver(filepath.Join(m.DataDir, projectName))
		}

		if cli.Verbose {
			deps.Fetcher = lcslog.NewLoggingFetcher(deps.Fetcher, logger)
			deps.Extractor = lcslog.NewLoggingExtractor(deps.Extractor, logger)
			deps.Sitemaps = lcslog.NewLoggingSitemapService(deps.Sitemaps, logger)
			if deps.Saver != nil {
				deps.Saver = lcslog.NewLoggingSaver(deps.Saver, logger)
			}
		}
	}

	return kongCtx.Run(deps)
}

// newExtractor builds the extractor for an engine choice. The default
// detects MediaWiki per page and falls back to generic extraction.
func newExtractor(engine string) lorecrawl.Extractor {
	switch engine {
	case "mediawiki":
		return goquery.NewMediaWikiExtractor()
	case "generic":
		return trafilatura.NewExtractor()
	default:
		return goquery.NewDetectingExtractor(goquery.NewMediaWikiExtractor(), trafilatura.NewExtractor())
	}
}

func defaultDBPath() string {
	if path := os.Getenv("LORECRAWL_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "lorecrawl.db"
	}
	dir := filepath.Join(home, ".lorecrawl")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "lorecrawl.db")
}

func defaultDataDir() string {
	if dir := os.Getenv("LORECRAWL_DATA"); dir != "" {
		return dir
	}
	return "data"
}
