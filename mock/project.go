package mock

import (
	"context"

	"github.com/fwojciec/lorecrawl"
)

var _ lorecrawl.ProjectService = (*ProjectService)(nil)

// ProjectService is a mock implementation of lorecrawl.ProjectService.
type ProjectService struct {
	CreateProjectFn   func(ctx context.Context, project *lorecrawl.Project) error
	FindProjectByIDFn func(ctx context.Context, id string) (*lorecrawl.Project, error)
	FindProjectsFn    func(ctx context.Context, filter lorecrawl.ProjectFilter) ([]*lorecrawl.Project, error)
	DeleteProjectFn   func(ctx context.Context, id string) error
}

func (s *ProjectService) CreateProject(ctx context.Context, project *lorecrawl.Project) error {
	return s.CreateProjectFn(ctx, project)
}

func (s *ProjectService) FindProjectByID(ctx context.Context, id string) (*lorecrawl.Project, error) {
	return s.FindProjectByIDFn(ctx, id)
}

func (s *ProjectService) FindProjects(ctx context.Context, filter lorecrawl.ProjectFilter) ([]*lorecrawl.Project, error) {
	return s.FindProjectsFn(ctx, filter)
}

func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	return s.DeleteProjectFn(ctx, id)
}
