package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/storyweft/personae/internal/api"
	"github.com/storyweft/personae/internal/domain"
)

type ProfileSnapshotService interface {
	ListByChunk(ctx context.Context, chunkID string) ([]*domain.ProfileSnapshot, error)
	ListByName(ctx context.Context, name string) ([]*domain.ProfileSnapshot, error)
}

type ProfileChunkService interface {
	GetByID(ctx context.Context, id string) (*domain.Chunk, error)
}

type ProfileHandler struct {
	snapshots ProfileSnapshotService
	chunks    ProfileChunkService
}

func NewProfileHandler(snapshots ProfileSnapshotService, chunks ProfileChunkService) *ProfileHandler {
	return &ProfileHandler{snapshots: snapshots, chunks: chunks}
}

type ProfileSnapshotResponse struct {
	ID        string         `json:"id"`
	ChunkID   string         `json:"chunk_id"`
	Profile   domain.Profile `json:"profile"`
	CreatedAt string         `json:"created_at"`
}

func snapshotToResponse(s *domain.ProfileSnapshot) *ProfileSnapshotResponse {
	return &ProfileSnapshotResponse{
		ID:        s.ID,
		ChunkID:   s.ChunkID,
		Profile:   s.Profile,
		CreatedAt: s.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ListByChunk returns every profile snapshot recorded for a chunk.
func (h *ProfileHandler) ListByChunk(w http.ResponseWriter, r *http.Request) {
	chunkID := chi.URLParam(r, "id")

	if _, err := h.chunks.GetByID(r.Context(), chunkID); err != nil {
		api.HandleError(w, err)
		return
	}

	snapshots, err := h.snapshots.ListByChunk(r.Context(), chunkID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, snapshotsToResponse(snapshots))
}

// ListByName returns a character's snapshot history across chunks,
// ordered by chunk sequence. The name match is exact.
func (h *ProfileHandler) ListByName(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		api.Error(w, http.StatusBadRequest, "name query parameter is required")
		return
	}

	snapshots, err := h.snapshots.ListByName(r.Context(), name)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, snapshotsToResponse(snapshots))
}

func snapshotsToResponse(snapshots []*domain.ProfileSnapshot) []*ProfileSnapshotResponse {
	out := make([]*ProfileSnapshotResponse, 0, len(snapshots))
	for _, s := range snapshots {
		out = append(out, snapshotToResponse(s))
	}
	return out
}
