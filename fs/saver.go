// Package fs provides file-based storage for crawled pages.
package fs

import (
	"bufio"
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/fwojciec/lorecrawl"
)

// Ensure Saver implements lorecrawl.Saver at compile time.
var _ lorecrawl.Saver = (*Saver)(nil)

// Saver writes pages as markdown files with YAML frontmatter under a base
// directory, mirroring the site's URL structure. Each page is written
// directly rather than staged and committed: crawls are long-running and
// interruptible, and every saved page must survive an interrupt.
type Saver struct {
	baseDir string
}

// NewSaver creates a new Saver that writes to the given base directory.
func NewSaver(baseDir string) *Saver {
	return &Saver{baseDir: baseDir}
}

// SavePage writes a page to disk and returns the path written. When the
// file on disk already records the same content hash the write is
// skipped, so re-crawls of unchanged pages do not churn the corpus.
func (s *Saver) SavePage(ctx context.Context, page *lorecrawl.Page) (string, error) {
	if err := page.Validate(); err != nil {
		return "", err
	}

	relPath, err := URLToPath(page.URL)
	if err != nil {
		return "", err
	}

	fullPath := filepath.Join(s.baseDir, relPath)

	if page.ContentHash != "" && savedHash(fullPath) == page.ContentHash {
		return fullPath, nil
	}

	// Create parent directories
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", err
	}

	content := FormatPage(page)
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		return "", err
	}

	return fullPath, nil
}

// FormatPage formats a page as markdown with YAML frontmatter. Wiki
// titles and category names carry colons and quotes, so they are emitted
// as quoted scalars.
func FormatPage(page *lorecrawl.Page) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(page.URL)
	b.WriteString("\ntitle: ")
	b.WriteString(strconv.Quote(page.Title))
	b.WriteString("\nhash: ")
	b.WriteString(page.ContentHash)
	if len(page.Categories) > 0 {
		b.WriteString("\ncategories: [")
		for i, c := range page.Categories {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(c))
		}
		b.WriteString("]")
	}
	b.WriteString("\ncrawled: ")
	b.WriteString(page.FetchedAt.Format("2006-01-02"))
	b.WriteString("\n---\n\n")
	b.WriteString(page.Content)
	return b.String()
}

// URLToPath converts a page URL to a relative file path.
// Example: https://wiki.example.com/wiki/Category:Characters → wiki/Category_Characters.md
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	path := strings.Trim(u.Path, "/")
	if path == "" {
		return "index.md", nil
	}

	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if unescaped, err := url.PathUnescape(segment); err == nil {
			segment = unescaped
		}
		segments[i] = sanitizeSegment(segment)
	}

	// Query parameters distinguish pages like index.php?title=Foo
	if u.RawQuery != "" {
		segments[len(segments)-1] += "_" + sanitizeSegment(u.RawQuery)
	}

	return filepath.Join(segments...) + ".md", nil
}

// invalidPathChars cannot appear in file names across platforms. Wiki
// URLs bring colons (namespace prefixes) and occasionally quotes.
const invalidPathChars = `<>:"|?*\/`

// sanitizeSegment makes a URL path segment safe to use as a file name.
func sanitizeSegment(segment string) string {
	var b strings.Builder
	for _, r := range segment {
		if strings.ContainsRune(invalidPathChars, r) || unicode.IsSpace(r) {
			b.WriteRune('_')
		} else {
			b.WriteRune(r)
		}
	}

	out := b.String()
	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	out = strings.Trim(out, "_")
	if out == "" {
		return "unnamed"
	}
	return out
}

// savedHash returns the content hash recorded in the frontmatter of the
// file at path, or "" when the file is missing or carries no hash.
func savedHash(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() || scanner.Text() != "---" {
		return ""
	}
	for scanner.Scan() {
		line := scanner.Text()
		if line == "---" {
			break
		}
		if hash, ok := strings.CutPrefix(line, "hash: "); ok {
			return hash
		}
	}
	return ""
}
