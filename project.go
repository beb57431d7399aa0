package lorecrawl

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// Project represents one wiki site to be crawled. A project's name doubles
// as its resume identifier: starting a crawl for a name that already has a
// snapshot continues the earlier crawl.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SeedURL   string    `json:"seedUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// projectNameDisallowed holds characters that cannot appear in project names,
// since names become directory names in the content store.
const projectNameDisallowed = `/\:*?"<>|`

// Validate returns an error if the project contains invalid fields.
func (p *Project) Validate() error {
	if p.Name == "" {
		return Errorf(EINVALID, "project name required")
	}
	if strings.ContainsAny(p.Name, projectNameDisallowed) {
		return Errorf(EINVALID, "project name %q contains invalid characters", p.Name)
	}
	if p.SeedURL == "" {
		return Errorf(EINVALID, "project seed URL required")
	}
	u, err := url.Parse(p.SeedURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Errorf(EINVALID, "project seed URL %q is not a valid http(s) URL", p.SeedURL)
	}
	return nil
}

// ProjectService represents a service for managing projects.
type ProjectService interface {
	// CreateProject creates a new project.
	// Returns ECONFLICT if a project with the same name exists.
	CreateProject(ctx context.Context, project *Project) error

	// FindProjectByID retrieves a project by ID.
	// Returns ENOTFOUND if project does not exist.
	FindProjectByID(ctx context.Context, id string) (*Project, error)

	// FindProjects retrieves projects matching the filter.
	FindProjects(ctx context.Context, filter ProjectFilter) ([]*Project, error)

	// DeleteProject permanently removes a project and its snapshot.
	// Returns ENOTFOUND if project does not exist.
	DeleteProject(ctx context.Context, id string) error
}

// ProjectFilter represents a filter for FindProjects.
type ProjectFilter struct {
	ID   *string `json:"id"`
	Name *string `json:"name"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
