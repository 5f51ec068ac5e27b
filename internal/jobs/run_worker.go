package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/storyweft/personae/internal/domain"
	"github.com/storyweft/personae/internal/service"
	"github.com/storyweft/personae/internal/telemetry"
)

// RunRepository defines the interface for pipeline-run persistence
type RunRepository interface {
	// ClaimQueued atomically claims queued runs and marks them running
	ClaimQueued(ctx context.Context, limit int) ([]*domain.PipelineRun, error)

	// UpdateStatus records a run's outcome
	UpdateStatus(ctx context.Context, id string, status domain.RunStatus, errMsg string, chunkCount int) error
}

// DocumentPipeline defines the interface for executing one document run
type DocumentPipeline interface {
	Run(ctx context.Context, source service.DocumentSource, runID string) (*service.RunResult, error)
}

// SourceResolver turns a run's source reference into a document source
type SourceResolver func(kind domain.SourceKind, ref string) (service.DocumentSource, error)

const claimBatchSize = 1

// RunWorker executes queued pipeline runs one at a time. There is no
// in-core retry: a failed run stays failed and requeueing is a host
// decision.
type RunWorker struct {
	repo     RunRepository
	pipeline DocumentPipeline
	resolve  SourceResolver
}

// NewRunWorker creates a new RunWorker instance
func NewRunWorker(repo RunRepository, pipeline DocumentPipeline, resolve SourceResolver) *RunWorker {
	return &RunWorker{
		repo:     repo,
		pipeline: pipeline,
		resolve:  resolve,
	}
}

// ProcessRuns implements the RunProcessor interface
func (w *RunWorker) ProcessRuns(ctx context.Context) error {
	runs, err := w.repo.ClaimQueued(ctx, claimBatchSize)
	if err != nil {
		return fmt.Errorf("failed to claim queued runs: %w", err)
	}

	for _, run := range runs {
		if err := w.processRun(ctx, run); err != nil {
			log.Printf("Error processing run %s: %v", run.ID, err)
		}
	}

	return nil
}

func (w *RunWorker) processRun(ctx context.Context, run *domain.PipelineRun) error {
	log.Printf("Processing run %s (%s %s)", run.ID, run.SourceKind, run.SourceRef)

	ctx, span := telemetry.StartSpan(ctx, "pipeline.run", telemetry.SpanAttributes{
		RunID:     run.ID,
		Operation: string(run.SourceKind),
	})
	defer span.End()

	source, err := w.resolve(run.SourceKind, run.SourceRef)
	if err != nil {
		span.SetError(err)
		return w.markFailed(ctx, run, err)
	}

	result, err := w.pipeline.Run(ctx, source, run.ID)
	if err != nil {
		span.SetError(err)
		// Cancellation mid-document leaves persisted chunks and snapshots
		// intact; the run is marked failed so the host can requeue it.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return w.markFailed(ctx, run, fmt.Errorf("run aborted: %w", err))
		}
		return w.markFailed(ctx, run, err)
	}

	warnings := strings.Join(result.Warnings, "; ")
	if err := w.repo.UpdateStatus(ctx, run.ID, domain.RunStatusCompleted, warnings, result.ChunkCount); err != nil {
		return fmt.Errorf("failed to mark run %s completed: %w", run.ID, err)
	}

	log.Printf("Run %s completed: %d chunks, %d profiles in memory, %d warnings",
		run.ID, result.ChunkCount, len(result.Profiles), len(result.Warnings))
	return nil
}

func (w *RunWorker) markFailed(ctx context.Context, run *domain.PipelineRun, runErr error) error {
	log.Printf("Run %s failed: %v", run.ID, runErr)
	if ctx.Err() != nil {
		// The status write must still land after cancellation.
		ctx = context.Background()
	}
	if err := w.repo.UpdateStatus(ctx, run.ID, domain.RunStatusFailed, runErr.Error(), 0); err != nil {
		return fmt.Errorf("failed to mark run %s failed: %w", run.ID, err)
	}
	return nil
}
