package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/lorecrawl"
	"github.com/fwojciec/lorecrawl/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLToPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "article path",
			url:  "https://wiki.example.com/wiki/Aang",
			want: "wiki/Aang.md",
		},
		{
			name: "namespace colon becomes underscore",
			url:  "https://wiki.example.com/wiki/Category:Characters",
			want: "wiki/Category_Characters.md",
		},
		{
			name: "percent-encoded spaces become underscores",
			url:  "https://wiki.example.com/wiki/Wan%20Shi%20Tong",
			want: "wiki/Wan_Shi_Tong.md",
		},
		{
			name: "root path becomes index",
			url:  "https://wiki.example.com/",
			want: "index.md",
		},
		{
			name: "root without trailing slash",
			url:  "https://wiki.example.com",
			want: "index.md",
		},
		{
			name: "query parameters are folded into the name",
			url:  "https://wiki.example.com/index.php?title=Aang",
			want: "index.php_title=Aang.md",
		},
		{
			name: "deep nesting keeps directory structure",
			url:  "https://wiki.example.com/wiki/a/b/c",
			want: "wiki/a/b/c.md",
		},
		{
			name:    "unparseable URL",
			url:     "://not-a-url",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := fs.URLToPath(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestSaver_SavePage(t *testing.T) {
	t.Parallel()

	t.Run("writes markdown with frontmatter", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		saver := fs.NewSaver(dir)

		page := &lorecrawl.Page{
			URL:         "https://wiki.example.com/wiki/Aang",
			Title:       "Aang",
			Content:     "# Aang\n\nThe last airbender.",
			ContentHash: "deadbeef01234567",
			Categories:  []string{"Avatars", "Airbenders"},
			FetchedAt:   time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC),
		}

		path, err := saver.SavePage(context.Background(), page)

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "wiki", "Aang.md"), path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		content := string(data)
		assert.Contains(t, content, "source: https://wiki.example.com/wiki/Aang")
		assert.Contains(t, content, `title: "Aang"`)
		assert.Contains(t, content, "hash: deadbeef01234567")
		assert.Contains(t, content, `categories: ["Avatars", "Airbenders"]`)
		assert.Contains(t, content, "crawled: 2026-08-24")
		assert.Contains(t, content, "The last airbender.")
	})

	t.Run("skips the write when the saved hash matches", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		saver := fs.NewSaver(dir)

		page := &lorecrawl.Page{
			URL:         "https://wiki.example.com/wiki/Appa",
			Title:       "Appa",
			Content:     "Appa is a sky bison.",
			ContentHash: "cafe0123",
			FetchedAt:   time.Now(),
		}

		path, err := saver.SavePage(context.Background(), page)
		require.NoError(t, err)

		// Tamper with the body while keeping the hash line. A second save
		// with the same hash must not touch the file.
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		tampered := string(data) + "\nlocal note\n"
		require.NoError(t, os.WriteFile(path, []byte(tampered), 0644))

		_, err = saver.SavePage(context.Background(), page)
		require.NoError(t, err)

		after, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, tampered, string(after))
	})

	t.Run("rewrites the file when the hash changes", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		saver := fs.NewSaver(dir)

		page := &lorecrawl.Page{
			URL:         "https://wiki.example.com/wiki/Zuko",
			Title:       "Zuko",
			Content:     "Prince of the Fire Nation.",
			ContentHash: "aaaa",
			FetchedAt:   time.Now(),
		}

		_, err := saver.SavePage(context.Background(), page)
		require.NoError(t, err)

		page.Content = "Fire Lord Zuko."
		page.ContentHash = "bbbb"
		path, err := saver.SavePage(context.Background(), page)
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Fire Lord Zuko.")
		assert.NotContains(t, string(data), "Prince of the Fire Nation.")
	})

	t.Run("rejects pages without a URL", func(t *testing.T) {
		t.Parallel()

		saver := fs.NewSaver(t.TempDir())
		_, err := saver.SavePage(context.Background(), &lorecrawl.Page{Title: "No URL"})

		require.Error(t, err)
		assert.Equal(t, lorecrawl.EINVALID, lorecrawl.ErrorCode(err))
	})
}

func TestFormatPage_omits_empty_categories(t *testing.T) {
	t.Parallel()

	page := &lorecrawl.Page{
		URL:       "https://wiki.example.com/wiki/Momo",
		Title:     "Momo",
		Content:   "A winged lemur.",
		FetchedAt: time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
	}

	out := fs.FormatPage(page)

	assert.NotContains(t, out, "categories:")
	assert.Contains(t, out, `title: "Momo"`)
}
