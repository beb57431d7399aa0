package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/lorecrawl"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ lorecrawl.ProjectService = (*ProjectService)(nil)

// ProjectService implements lorecrawl.ProjectService using SQLite.
type ProjectService struct {
	db *DB
}

// NewProjectService creates a new ProjectService.
func NewProjectService(db *DB) *ProjectService {
	return &ProjectService{db: db}
}

// CreateProject creates a new project. Project names are unique because
// the name is the resume handle: CreateProject returns ECONFLICT when a
// project with the same name already exists.
func (s *ProjectService) CreateProject(ctx context.Context, project *lorecrawl.Project) error {
	if err := project.Validate(); err != nil {
		return err
	}

	var existing string
	err := s.db.QueryRowContext(ctx, "SELECT id FROM projects WHERE name = ?", project.Name).Scan(&existing)
	if err == nil {
		return lorecrawl.Errorf(lorecrawl.ECONFLICT, "project name %q already exists", project.Name)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	project.ID = uuid.New().String()
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, seed_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, project.ID, project.Name, project.SeedURL,
		project.CreatedAt.Format(time.RFC3339), project.UpdatedAt.Format(time.RFC3339))

	return err
}

// FindProjectByID retrieves a project by ID.
func (s *ProjectService) FindProjectByID(ctx context.Context, id string) (*lorecrawl.Project, error) {
	var project lorecrawl.Project
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, seed_url, created_at, updated_at
		FROM projects
		WHERE id = ?
	`, id).Scan(&project.ID, &project.Name, &project.SeedURL, &createdAt, &updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, lorecrawl.Errorf(lorecrawl.ENOTFOUND, "project not found")
	}
	if err != nil {
		return nil, err
	}

	if project.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if project.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}

	return &project, nil
}

// FindProjects retrieves projects matching the filter.
func (s *ProjectService) FindProjects(ctx context.Context, filter lorecrawl.ProjectFilter) ([]*lorecrawl.Project, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, name, seed_url, created_at, updated_at FROM projects WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Name != nil {
		query.WriteString(" AND name = ?")
		args = append(args, *filter.Name)
	}

	query.WriteString(" ORDER BY created_at DESC")
	appendLimitOffset(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*lorecrawl.Project
	for rows.Next() {
		var project lorecrawl.Project
		var createdAt, updatedAt string

		if err := rows.Scan(&project.ID, &project.Name, &project.SeedURL, &createdAt, &updatedAt); err != nil {
			return nil, err
		}

		if project.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
			return nil, err
		}
		if project.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
			return nil, err
		}

		projects = append(projects, &project)
	}

	return projects, rows.Err()
}

// DeleteProject permanently removes a project. The project's snapshot
// goes with it via the foreign key cascade.
func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return lorecrawl.Errorf(lorecrawl.ENOTFOUND, "project not found")
	}

	return nil
}
