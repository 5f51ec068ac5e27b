package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/storyweft/personae/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRunService struct {
	mock.Mock
}

func (m *MockRunService) Create(ctx context.Context, run *domain.PipelineRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunService) GetByID(ctx context.Context, id string) (*domain.PipelineRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PipelineRun), args.Error(1)
}

func (m *MockRunService) List(ctx context.Context, limit int) ([]*domain.PipelineRun, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PipelineRun), args.Error(1)
}

type MockChunkLister struct {
	mock.Mock
}

func (m *MockChunkLister) ListByRun(ctx context.Context, runID string) ([]*domain.Chunk, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Chunk), args.Error(1)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func sampleRun() *domain.PipelineRun {
	return &domain.PipelineRun{
		ID:         "run-1",
		SourceKind: domain.SourceKindFile,
		SourceRef:  "/tmp/book.txt",
		Status:     domain.RunStatusQueued,
		CreatedAt:  time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestRunHandler_Create_File(t *testing.T) {
	mockSvc := new(MockRunService)
	mockSvc.On("Create", mock.Anything, mock.MatchedBy(func(run *domain.PipelineRun) bool {
		return run.SourceKind == domain.SourceKindFile &&
			run.SourceRef == "/tmp/book.txt" &&
			run.Status == domain.RunStatusQueued
	})).Return(nil)

	handler := NewRunHandler(mockSvc, new(MockChunkLister), false)

	body := `{"path":"/tmp/book.txt"}`
	req := httptest.NewRequest(http.MethodPost, "/runs", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestRunHandler_Create_S3WithoutConfigFails(t *testing.T) {
	handler := NewRunHandler(new(MockRunService), new(MockChunkLister), false)

	body := `{"s3_key":"books/one.txt"}`
	req := httptest.NewRequest(http.MethodPost, "/runs", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunHandler_Create_MissingSource(t *testing.T) {
	handler := NewRunHandler(new(MockRunService), new(MockChunkLister), true)

	req := httptest.NewRequest(http.MethodPost, "/runs", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunHandler_Create_InvalidBody(t *testing.T) {
	handler := NewRunHandler(new(MockRunService), new(MockChunkLister), true)

	req := httptest.NewRequest(http.MethodPost, "/runs", bytes.NewReader([]byte(`not json`)))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunHandler_Get(t *testing.T) {
	mockSvc := new(MockRunService)
	mockSvc.On("GetByID", mock.Anything, "run-1").Return(sampleRun(), nil)

	handler := NewRunHandler(mockSvc, new(MockChunkLister), false)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/runs/run-1", nil), "id", "run-1")
	w := httptest.NewRecorder()

	handler.Get(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data RunResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "run-1", resp.Data.ID)
	assert.Equal(t, "file", resp.Data.SourceKind)
	assert.Equal(t, "queued", resp.Data.Status)
	assert.Equal(t, "2026-01-01T10:00:00Z", resp.Data.CreatedAt)
}

func TestRunHandler_Get_NotFound(t *testing.T) {
	mockSvc := new(MockRunService)
	mockSvc.On("GetByID", mock.Anything, "run-404").Return(nil, domain.ErrRunNotFound)

	handler := NewRunHandler(mockSvc, new(MockChunkLister), false)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/runs/run-404", nil), "id", "run-404")
	w := httptest.NewRecorder()

	handler.Get(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRunHandler_List_InvalidLimit(t *testing.T) {
	handler := NewRunHandler(new(MockRunService), new(MockChunkLister), false)

	req := httptest.NewRequest(http.MethodGet, "/runs?limit=zero", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunHandler_ListChunks(t *testing.T) {
	mockSvc := new(MockRunService)
	mockSvc.On("GetByID", mock.Anything, "run-1").Return(sampleRun(), nil)

	mockChunks := new(MockChunkLister)
	mockChunks.On("ListByRun", mock.Anything, "run-1").Return([]*domain.Chunk{
		{ID: "chunk-0", RunID: "run-1", SequenceIndex: 0, Text: "first"},
		{ID: "chunk-1", RunID: "run-1", SequenceIndex: 1, Text: "second"},
	}, nil)

	handler := NewRunHandler(mockSvc, mockChunks, false)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/runs/run-1/chunks", nil), "id", "run-1")
	w := httptest.NewRecorder()

	handler.ListChunks(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []ChunkResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, 0, resp.Data[0].SequenceIndex)
	assert.Equal(t, 1, resp.Data[1].SequenceIndex)
}

func TestRunHandler_ListChunks_UnknownRun(t *testing.T) {
	mockSvc := new(MockRunService)
	mockSvc.On("GetByID", mock.Anything, "run-404").Return(nil, domain.ErrRunNotFound)

	mockChunks := new(MockChunkLister)

	handler := NewRunHandler(mockSvc, mockChunks, false)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/runs/run-404/chunks", nil), "id", "run-404")
	w := httptest.NewRecorder()

	handler.ListChunks(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockChunks.AssertNotCalled(t, "ListByRun", mock.Anything, mock.Anything)
}
