package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/storyweft/personae/internal/api"
	"github.com/storyweft/personae/internal/domain"
)

type RunService interface {
	Create(ctx context.Context, run *domain.PipelineRun) error
	GetByID(ctx context.Context, id string) (*domain.PipelineRun, error)
	List(ctx context.Context, limit int) ([]*domain.PipelineRun, error)
}

type RunChunkRepository interface {
	ListByRun(ctx context.Context, runID string) ([]*domain.Chunk, error)
}

type RunHandler struct {
	runs   RunService
	chunks RunChunkRepository
	hasS3  bool
}

func NewRunHandler(runs RunService, chunks RunChunkRepository, hasS3 bool) *RunHandler {
	return &RunHandler{runs: runs, chunks: chunks, hasS3: hasS3}
}

type CreateRunRequest struct {
	Path  string `json:"path"`
	S3Key string `json:"s3_key"`
}

type RunResponse struct {
	ID         string `json:"id"`
	SourceKind string `json:"source_kind"`
	SourceRef  string `json:"source_ref"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	ChunkCount int    `json:"chunk_count"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

type ChunkResponse struct {
	ID            string `json:"id"`
	RunID         string `json:"run_id"`
	SequenceIndex int    `json:"sequence_index"`
	Text          string `json:"text"`
	CreatedAt     string `json:"created_at"`
}

func runToResponse(run *domain.PipelineRun) *RunResponse {
	return &RunResponse{
		ID:         run.ID,
		SourceKind: string(run.SourceKind),
		SourceRef:  run.SourceRef,
		Status:     string(run.Status),
		Error:      run.Error,
		ChunkCount: run.ChunkCount,
		CreatedAt:  run.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:  run.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func chunkToResponse(c *domain.Chunk) *ChunkResponse {
	return &ChunkResponse{
		ID:            c.ID,
		RunID:         c.RunID,
		SequenceIndex: c.SequenceIndex,
		Text:          c.Text,
		CreatedAt:     c.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// Create queues a document run; the worker picks it up asynchronously.
func (h *RunHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	run := &domain.PipelineRun{Status: domain.RunStatusQueued}
	switch {
	case req.Path != "":
		run.SourceKind = domain.SourceKindFile
		run.SourceRef = req.Path
	case req.S3Key != "":
		if !h.hasS3 {
			api.Error(w, http.StatusBadRequest, "object storage is not configured")
			return
		}
		run.SourceKind = domain.SourceKindS3
		run.SourceRef = req.S3Key
	default:
		api.Error(w, http.StatusBadRequest, "either path or s3_key is required")
		return
	}

	if err := h.runs.Create(r.Context(), run); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusAccepted, runToResponse(run))
}

func (h *RunHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := h.runs.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, runToResponse(run))
}

func (h *RunHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			api.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	runs, err := h.runs.List(r.Context(), limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	out := make([]*RunResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, runToResponse(run))
	}
	api.Success(w, http.StatusOK, out)
}

// ListChunks returns a run's persisted chunks in sequence order.
func (h *RunHandler) ListChunks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.runs.GetByID(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	chunks, err := h.chunks.ListByRun(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	out := make([]*ChunkResponse, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, chunkToResponse(c))
	}
	api.Success(w, http.StatusOK, out)
}
