//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/storyweft/personae/internal/domain"
	"github.com/storyweft/personae/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineRunRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewPipelineRunRepository(pool)

	run := &domain.PipelineRun{
		SourceKind: domain.SourceKindFile,
		SourceRef:  "/tmp/book.txt",
	}
	require.NoError(t, repo.Create(ctx, run))
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, domain.RunStatusQueued, run.Status)
	assert.False(t, run.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, domain.SourceKindFile, got.SourceKind)
	assert.Equal(t, "/tmp/book.txt", got.SourceRef)
	assert.Equal(t, domain.RunStatusQueued, got.Status)
}

func TestPipelineRunRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewPipelineRunRepository(pool)

	_, err := repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

func TestPipelineRunRepository_ClaimQueued(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewPipelineRunRepository(pool)

	first := &domain.PipelineRun{SourceKind: domain.SourceKindFile, SourceRef: "/tmp/a.txt"}
	second := &domain.PipelineRun{SourceKind: domain.SourceKindFile, SourceRef: "/tmp/b.txt"}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	claimed, err := repo.ClaimQueued(ctx, 1)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, first.ID, claimed[0].ID, "oldest queued run is claimed first")
	assert.Equal(t, domain.RunStatusRunning, claimed[0].Status)

	// a claimed run is not claimable again
	claimed, err = repo.ClaimQueued(ctx, 2)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, second.ID, claimed[0].ID)

	claimed, err = repo.ClaimQueued(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, claimed)
}

func TestPipelineRunRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewPipelineRunRepository(pool)

	run := &domain.PipelineRun{SourceKind: domain.SourceKindFile, SourceRef: "/tmp/a.txt"}
	require.NoError(t, repo.Create(ctx, run))

	require.NoError(t, repo.UpdateStatus(ctx, run.ID, domain.RunStatusCompleted, "", 7))

	got, err := repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusCompleted, got.Status)
	assert.Equal(t, 7, got.ChunkCount)

	err = repo.UpdateStatus(ctx, "00000000-0000-0000-0000-000000000000", domain.RunStatusFailed, "boom", 0)
	assert.ErrorIs(t, err, domain.ErrRunNotFound)

	err = repo.UpdateStatus(ctx, run.ID, domain.RunStatus("bogus"), "", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidRunStatus)
}

func TestPipelineRunRepository_List(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewPipelineRunRepository(pool)

	for _, ref := range []string{"/tmp/a.txt", "/tmp/b.txt", "/tmp/c.txt"} {
		require.NoError(t, repo.Create(ctx, &domain.PipelineRun{
			SourceKind: domain.SourceKindFile,
			SourceRef:  ref,
		}))
	}

	runs, err := repo.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}
