package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fwojciec/lorecrawl"
	main "github.com/fwojciec/lorecrawl/cmd/lorecrawl"
	"github.com/fwojciec/lorecrawl/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResumeCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("resumes from the saved snapshot", func(t *testing.T) {
		t.Parallel()

		projects := &mock.ProjectService{
			FindProjectsFn: func(_ context.Context, filter lorecrawl.ProjectFilter) ([]*lorecrawl.Project, error) {
				return []*lorecrawl.Project{{
					ID:      "proj-9",
					Name:    "avatar",
					SeedURL: "https://wiki.example.com/wiki/Aang",
				}}, nil
			},
		}

		snapshots := emptySnapshots()
		snapshots.LoadSnapshotFn = func(_ context.Context, projectID string) (*lorecrawl.Snapshot, error) {
			return &lorecrawl.Snapshot{
				ProjectID: "proj-9",
				Frontier: []lorecrawl.URLRecord{{
					URL:      "https://wiki.example.com/wiki/Katara",
					Domain:   "wiki.example.com",
					Priority: lorecrawl.PriorityContent,
				}},
				Visited: []string{"https://wiki.example.com/wiki/Aang"},
				Stats:   lorecrawl.CrawlStats{Attempted: 1, Crawled: 1},
			}, nil
		}

		var saved []string
		saver := &mock.Saver{
			SavePageFn: func(_ context.Context, page *lorecrawl.Page) (string, error) {
				saved = append(saved, page.URL)
				return "data/avatar/page.md", nil
			},
		}

		extractor := &mock.Extractor{
			ExtractFn: func(_ string, pageURL string) (*lorecrawl.ExtractResult, error) {
				return &lorecrawl.ExtractResult{Title: "Katara", ContentHTML: "<p>Waterbender.</p>"}, nil
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:       context.Background(),
			Stdout:    stdout,
			Stderr:    stderr,
			Projects:  projects,
			Snapshots: snapshots,
			Fetcher:   okFetcher(),
			Extractor: extractor,
			Converter: &mock.Converter{ConvertFn: func(html string) (string, error) { return "markdown", nil }},
			Saver:     saver,
			Config:    testConfig(),
		}

		cmd := &main.ResumeCmd{Name: "avatar"}

		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Equal(t, []string{"https://wiki.example.com/wiki/Katara"}, saved,
			"only queued URLs are fetched, visited ones stay skipped")
		assert.Contains(t, stdout.String(), "Crawled 2 pages",
			"stats carry over from the snapshot")
	})

	t.Run("errors when the project does not exist", func(t *testing.T) {
		t.Parallel()

		projects := &mock.ProjectService{
			FindProjectsFn: func(_ context.Context, filter lorecrawl.ProjectFilter) ([]*lorecrawl.Project, error) {
				return nil, nil
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   stdout,
			Stderr:   stderr,
			Projects: projects,
			Config:   testConfig(),
		}

		cmd := &main.ResumeCmd{Name: "missing"}

		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Equal(t, lorecrawl.ENOTFOUND, lorecrawl.ErrorCode(err))
		assert.Contains(t, stderr.String(), `project "missing" not found`)
		assert.Contains(t, stderr.String(), "lorecrawl list")
	})
}
