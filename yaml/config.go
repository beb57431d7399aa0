// Package yaml loads crawl configuration overrides from YAML files.
package yaml

import (
	"fmt"
	"os"
	"time"

	"github.com/fwojciec/lorecrawl"
	"gopkg.in/yaml.v3"
)

// File is the on-disk configuration schema. Every field is optional:
// absent keys keep their defaults, which is why the scalars are pointers.
// Durations are expressed in seconds to match the flat style of crawler
// config files (min_delay_seconds: 0.5).
type File struct {
	UserAgent             string         `yaml:"user_agent"`
	MinDelaySeconds       *float64       `yaml:"min_delay_seconds"`
	MaxRequestsPerMinute  *int           `yaml:"max_requests_per_minute"`
	DomainMaxPerMinute    map[string]int `yaml:"domain_max_requests_per_minute"`
	Burst                 *int           `yaml:"burst"`
	MaxRetries            *int           `yaml:"max_retries"`
	BackoffBaseSeconds    *float64       `yaml:"backoff_base_seconds"`
	BackoffMaxSeconds     *float64       `yaml:"backoff_max_seconds"`
	SnapshotEveryNPages   *int           `yaml:"snapshot_every_n_pages"`
	MaxPages              *int           `yaml:"max_pages"`
	MaxDepth              *int           `yaml:"max_depth"`
	RequestTimeoutSeconds *float64       `yaml:"request_timeout_seconds"`
	RespectRobotsTxt      *bool          `yaml:"respect_robots_txt"`
	ExcludePatterns       []string       `yaml:"exclude_patterns"`
}

// Load reads a YAML config file and returns the default crawl
// configuration with the file's overrides applied. The merged
// configuration is validated before it is returned.
func Load(path string) (lorecrawl.CrawlConfig, error) {
	cfg := lorecrawl.DefaultCrawlConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	f.apply(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// apply copies the file's set fields onto cfg.
func (f *File) apply(cfg *lorecrawl.CrawlConfig) {
	if f.UserAgent != "" {
		cfg.UserAgent = f.UserAgent
	}
	if f.MinDelaySeconds != nil {
		cfg.MinDelay = seconds(*f.MinDelaySeconds)
	}
	if f.MaxRequestsPerMinute != nil {
		cfg.MaxPerMinute = *f.MaxRequestsPerMinute
	}
	if f.DomainMaxPerMinute != nil {
		cfg.DomainMaxPerMinute = f.DomainMaxPerMinute
	}
	if f.Burst != nil {
		cfg.Burst = *f.Burst
	}
	if f.MaxRetries != nil {
		cfg.MaxRetries = *f.MaxRetries
	}
	if f.BackoffBaseSeconds != nil {
		cfg.BackoffBase = seconds(*f.BackoffBaseSeconds)
	}
	if f.BackoffMaxSeconds != nil {
		cfg.BackoffMax = seconds(*f.BackoffMaxSeconds)
	}
	if f.SnapshotEveryNPages != nil {
		cfg.SnapshotEvery = *f.SnapshotEveryNPages
	}
	if f.MaxPages != nil {
		cfg.PageCap = *f.MaxPages
	}
	if f.MaxDepth != nil {
		cfg.MaxDepth = *f.MaxDepth
	}
	if f.RequestTimeoutSeconds != nil {
		cfg.RequestTimeout = seconds(*f.RequestTimeoutSeconds)
	}
	if f.RespectRobotsTxt != nil {
		cfg.RespectRobots = *f.RespectRobotsTxt
	}
	if f.ExcludePatterns != nil {
		cfg.ExcludePatterns = f.ExcludePatterns
	}
}

// seconds converts a possibly fractional second count to a Duration.
func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
