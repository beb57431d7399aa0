package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/lorecrawl"
	"github.com/fwojciec/lorecrawl/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func mustCreateProject(t *testing.T, db *sqlite.DB, name string) *lorecrawl.Project {
	t.Helper()
	project := &lorecrawl.Project{
		Name:    name,
		SeedURL: "https://" + name + ".example.com/wiki/Main_Page",
	}
	require.NoError(t, sqlite.NewProjectService(db).CreateProject(context.Background(), project))
	return project
}

func TestProjectService_CreateProject(t *testing.T) {
	t.Parallel()

	t.Run("creates project with generated ID and timestamps", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewProjectService(db)
		ctx := context.Background()

		project := &lorecrawl.Project{
			Name:    "avatar-wiki",
			SeedURL: "https://wiki.example.com/wiki/Main_Page",
		}

		err := svc.CreateProject(ctx, project)
		require.NoError(t, err)

		assert.NotEmpty(t, project.ID, "ID should be generated")
		assert.False(t, project.CreatedAt.IsZero(), "CreatedAt should be set")
		assert.False(t, project.UpdatedAt.IsZero(), "UpdatedAt should be set")
	})

	t.Run("returns error for invalid project", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewProjectService(db)
		ctx := context.Background()

		project := &lorecrawl.Project{} // missing required fields

		err := svc.CreateProject(ctx, project)
		require.Error(t, err)
		assert.Equal(t, lorecrawl.EINVALID, lorecrawl.ErrorCode(err))
	})

	t.Run("returns ECONFLICT for duplicate name", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewProjectService(db)
		ctx := context.Background()

		mustCreateProject(t, db, "avatar-wiki")

		dup := &lorecrawl.Project{
			Name:    "avatar-wiki",
			SeedURL: "https://elsewhere.example.com/wiki/Main_Page",
		}
		err := svc.CreateProject(ctx, dup)

		require.Error(t, err)
		assert.Equal(t, lorecrawl.ECONFLICT, lorecrawl.ErrorCode(err))
	})
}

func TestProjectService_FindProjectByID(t *testing.T) {
	t.Parallel()

	t.Run("round-trips a created project", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewProjectService(db)
		ctx := context.Background()

		created := mustCreateProject(t, db, "avatar-wiki")

		found, err := svc.FindProjectByID(ctx, created.ID)
		require.NoError(t, err)

		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, "avatar-wiki", found.Name)
		assert.Equal(t, created.SeedURL, found.SeedURL)
		assert.False(t, found.CreatedAt.IsZero())
	})

	t.Run("returns ENOTFOUND for unknown ID", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewProjectService(db)

		_, err := svc.FindProjectByID(context.Background(), "no-such-id")

		require.Error(t, err)
		assert.Equal(t, lorecrawl.ENOTFOUND, lorecrawl.ErrorCode(err))
	})
}

func TestProjectService_FindProjects(t *testing.T) {
	t.Parallel()

	t.Run("filters by name", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewProjectService(db)
		ctx := context.Background()

		mustCreateProject(t, db, "avatar-wiki")
		mustCreateProject(t, db, "korra-wiki")

		name := "korra-wiki"
		projects, err := svc.FindProjects(ctx, lorecrawl.ProjectFilter{Name: &name})
		require.NoError(t, err)

		require.Len(t, projects, 1)
		assert.Equal(t, "korra-wiki", projects[0].Name)
	})

	t.Run("returns all projects without a filter", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewProjectService(db)
		ctx := context.Background()

		mustCreateProject(t, db, "avatar-wiki")
		mustCreateProject(t, db, "korra-wiki")
		mustCreateProject(t, db, "stormlight-wiki")

		projects, err := svc.FindProjects(ctx, lorecrawl.ProjectFilter{})
		require.NoError(t, err)
		assert.Len(t, projects, 3)
	})

	t.Run("applies limit", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewProjectService(db)
		ctx := context.Background()

		mustCreateProject(t, db, "avatar-wiki")
		mustCreateProject(t, db, "korra-wiki")

		projects, err := svc.FindProjects(ctx, lorecrawl.ProjectFilter{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, projects, 1)
	})
}

func TestProjectService_DeleteProject(t *testing.T) {
	t.Parallel()

	t.Run("removes the project", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewProjectService(db)
		ctx := context.Background()

		created := mustCreateProject(t, db, "avatar-wiki")

		require.NoError(t, svc.DeleteProject(ctx, created.ID))

		_, err := svc.FindProjectByID(ctx, created.ID)
		assert.Equal(t, lorecrawl.ENOTFOUND, lorecrawl.ErrorCode(err))
	})

	t.Run("returns ENOTFOUND for unknown ID", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewProjectService(db)

		err := svc.DeleteProject(context.Background(), "no-such-id")

		require.Error(t, err)
		assert.Equal(t, lorecrawl.ENOTFOUND, lorecrawl.ErrorCode(err))
	})

	t.Run("cascades to the project snapshot", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		projects := sqlite.NewProjectService(db)
		snapshots := sqlite.NewSnapshotStore(db)
		ctx := context.Background()

		created := mustCreateProject(t, db, "avatar-wiki")
		require.NoError(t, snapshots.SaveSnapshot(ctx, &lorecrawl.Snapshot{ProjectID: created.ID}))

		require.NoError(t, projects.DeleteProject(ctx, created.ID))

		_, err := snapshots.LoadSnapshot(ctx, created.ID)
		assert.Equal(t, lorecrawl.ENOTFOUND, lorecrawl.ErrorCode(err))
	})
}
