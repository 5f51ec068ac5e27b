package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/storyweft/personae/internal/domain"
)

// PipelineRunRepository tracks queued and completed document runs.
type PipelineRunRepository struct {
	db dbtx
}

func NewPipelineRunRepository(pool *pgxpool.Pool) *PipelineRunRepository {
	return &PipelineRunRepository{db: pool}
}

func (r *PipelineRunRepository) Create(ctx context.Context, run *domain.PipelineRun) error {
	if run.Status == "" {
		run.Status = domain.RunStatusQueued
	}
	if !run.Status.IsValid() {
		return domain.ErrInvalidRunStatus
	}
	return r.db.QueryRow(ctx,
		`INSERT INTO pipeline_runs (source_kind, source_ref, status)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		run.SourceKind, run.SourceRef, run.Status,
	).Scan(&run.ID, &run.CreatedAt, &run.UpdatedAt)
}

func (r *PipelineRunRepository) GetByID(ctx context.Context, id string) (*domain.PipelineRun, error) {
	var run domain.PipelineRun
	err := r.db.QueryRow(ctx,
		`SELECT id, source_kind, source_ref, status, error, chunk_count, created_at, updated_at
		 FROM pipeline_runs WHERE id = $1`,
		id,
	).Scan(&run.ID, &run.SourceKind, &run.SourceRef, &run.Status, &run.Error,
		&run.ChunkCount, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRunNotFound
		}
		return nil, err
	}
	return &run, nil
}

// ClaimQueued atomically claims up to limit queued runs and marks them
// running, so concurrent workers never pick up the same run twice.
func (r *PipelineRunRepository) ClaimQueued(ctx context.Context, limit int) ([]*domain.PipelineRun, error) {
	rows, err := r.db.Query(ctx,
		`UPDATE pipeline_runs
		 SET status = $1, updated_at = now()
		 WHERE id IN (
			SELECT id FROM pipeline_runs
			WHERE status = $2
			ORDER BY created_at ASC
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING id, source_kind, source_ref, status, error, chunk_count, created_at, updated_at`,
		domain.RunStatusRunning, domain.RunStatusQueued, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*domain.PipelineRun
	for rows.Next() {
		var run domain.PipelineRun
		if err := rows.Scan(&run.ID, &run.SourceKind, &run.SourceRef, &run.Status,
			&run.Error, &run.ChunkCount, &run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// UpdateStatus records the outcome of a run. The error message holds the
// fatal input error for failed runs or accumulated snapshot-gap warnings
// for completed ones.
func (r *PipelineRunRepository) UpdateStatus(ctx context.Context, id string, status domain.RunStatus, errMsg string, chunkCount int) error {
	if !status.IsValid() {
		return domain.ErrInvalidRunStatus
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE pipeline_runs
		 SET status = $1, error = $2, chunk_count = $3, updated_at = now()
		 WHERE id = $4`,
		status, errMsg, chunkCount, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRunNotFound
	}
	return nil
}

// List returns recent runs, newest first.
func (r *PipelineRunRepository) List(ctx context.Context, limit int) ([]*domain.PipelineRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, source_kind, source_ref, status, error, chunk_count, created_at, updated_at
		 FROM pipeline_runs
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*domain.PipelineRun
	for rows.Next() {
		var run domain.PipelineRun
		if err := rows.Scan(&run.ID, &run.SourceKind, &run.SourceRef, &run.Status,
			&run.Error, &run.ChunkCount, &run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}
