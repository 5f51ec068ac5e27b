package domain

import "time"

// RunStatus is the lifecycle state of a pipeline run.
type RunStatus string

const (
	RunStatusQueued    RunStatus = "queued"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// IsValid checks whether the status is a known lifecycle state.
func (s RunStatus) IsValid() bool {
	switch s {
	case RunStatusQueued, RunStatusRunning, RunStatusCompleted, RunStatusFailed:
		return true
	}
	return false
}

// SourceKind identifies where a run's document comes from.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindS3   SourceKind = "s3"
)

// PipelineRun records one document-processing run. The run row is
// bookkeeping only: the durable outputs of a run are its chunk rows and
// profile snapshot rows.
type PipelineRun struct {
	ID         string
	SourceKind SourceKind
	SourceRef  string
	Status     RunStatus
	Error      string
	ChunkCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
