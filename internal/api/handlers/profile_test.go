package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/storyweft/personae/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSnapshotService struct {
	mock.Mock
}

func (m *MockSnapshotService) ListByChunk(ctx context.Context, chunkID string) ([]*domain.ProfileSnapshot, error) {
	args := m.Called(ctx, chunkID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ProfileSnapshot), args.Error(1)
}

func (m *MockSnapshotService) ListByName(ctx context.Context, name string) ([]*domain.ProfileSnapshot, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ProfileSnapshot), args.Error(1)
}

type MockChunkGetter struct {
	mock.Mock
}

func (m *MockChunkGetter) GetByID(ctx context.Context, id string) (*domain.Chunk, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chunk), args.Error(1)
}

func sampleSnapshot(chunkID string) *domain.ProfileSnapshot {
	return &domain.ProfileSnapshot{
		ID:        "snap-1",
		ChunkID:   chunkID,
		Profile:   domain.Profile{Name: "Ali", Role: "protagonist"},
		CreatedAt: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestProfileHandler_ListByChunk(t *testing.T) {
	mockChunks := new(MockChunkGetter)
	mockChunks.On("GetByID", mock.Anything, "chunk-0").
		Return(&domain.Chunk{ID: "chunk-0"}, nil)

	mockSnapshots := new(MockSnapshotService)
	mockSnapshots.On("ListByChunk", mock.Anything, "chunk-0").
		Return([]*domain.ProfileSnapshot{sampleSnapshot("chunk-0")}, nil)

	handler := NewProfileHandler(mockSnapshots, mockChunks)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/chunks/chunk-0/profiles", nil), "id", "chunk-0")
	w := httptest.NewRecorder()

	handler.ListByChunk(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []ProfileSnapshotResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Ali", resp.Data[0].Profile.Name)
	assert.Equal(t, "chunk-0", resp.Data[0].ChunkID)
}

func TestProfileHandler_ListByChunk_UnknownChunk(t *testing.T) {
	mockChunks := new(MockChunkGetter)
	mockChunks.On("GetByID", mock.Anything, "chunk-404").Return(nil, domain.ErrChunkNotFound)

	mockSnapshots := new(MockSnapshotService)

	handler := NewProfileHandler(mockSnapshots, mockChunks)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/chunks/chunk-404/profiles", nil), "id", "chunk-404")
	w := httptest.NewRecorder()

	handler.ListByChunk(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockSnapshots.AssertNotCalled(t, "ListByChunk", mock.Anything, mock.Anything)
}

func TestProfileHandler_ListByName(t *testing.T) {
	mockSnapshots := new(MockSnapshotService)
	mockSnapshots.On("ListByName", mock.Anything, "Ali").
		Return([]*domain.ProfileSnapshot{sampleSnapshot("chunk-0"), sampleSnapshot("chunk-1")}, nil)

	handler := NewProfileHandler(mockSnapshots, new(MockChunkGetter))

	req := httptest.NewRequest(http.MethodGet, "/profiles?name=Ali", nil)
	w := httptest.NewRecorder()

	handler.ListByName(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []ProfileSnapshotResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
}

func TestProfileHandler_ListByName_MissingName(t *testing.T) {
	handler := NewProfileHandler(new(MockSnapshotService), new(MockChunkGetter))

	req := httptest.NewRequest(http.MethodGet, "/profiles", nil)
	w := httptest.NewRecorder()

	handler.ListByName(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfileHandler_ListByName_EmptyResultIsOK(t *testing.T) {
	mockSnapshots := new(MockSnapshotService)
	mockSnapshots.On("ListByName", mock.Anything, "Nobody").
		Return([]*domain.ProfileSnapshot{}, nil)

	handler := NewProfileHandler(mockSnapshots, new(MockChunkGetter))

	req := httptest.NewRequest(http.MethodGet, "/profiles?name=Nobody", nil)
	w := httptest.NewRecorder()

	handler.ListByName(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []ProfileSnapshotResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data)
}
