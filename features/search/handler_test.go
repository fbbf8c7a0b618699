package search_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"papyrus/apps/backend/features/search"
	"papyrus/apps/backend/internal/document"
)

func newTestHandler(e *MockEmbedder, v *MockVectorStore, g *MockGraphStore) *search.Handler {
	return search.NewHandler(newTestService(e, v, g))
}

func TestHandler_Search(t *testing.T) {
	e := new(MockEmbedder)
	v := new(MockVectorStore)
	g := new(MockGraphStore)
	h := newTestHandler(e, v, g)

	e.On("Embed", mock.Anything, "turbine").Return([]float32{0.1}, nil)
	v.On("Search", mock.Anything, mock.Anything, 10).Return([]document.ChunkResult{
		{ChunkID: "c1", DocumentID: "doc-1", Content: "turbine manual", Score: 0.9},
	}, nil)
	g.On("Search", mock.Anything, "turbine", 10).Return([]document.GraphResult{}, nil)

	body, _ := json.Marshal(search.Request{Query: "turbine"})
	req := httptest.NewRequest(http.MethodPost, "/api/search", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.Search(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var envelope struct {
		Data search.Response `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "turbine", envelope.Data.Query)
	assert.Equal(t, search.TypeHybrid, envelope.Data.Type)
	require.Len(t, envelope.Data.Results, 1)
	assert.Equal(t, "c1", envelope.Data.Results[0].ChunkID)
}

func TestHandler_Search_InvalidJSON(t *testing.T) {
	h := newTestHandler(new(MockEmbedder), new(MockVectorStore), new(MockGraphStore))

	req := httptest.NewRequest(http.MethodPost, "/api/search", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()

	h.Search(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestHandler_Search_MissingQuery(t *testing.T) {
	h := newTestHandler(new(MockEmbedder), new(MockVectorStore), new(MockGraphStore))

	req := httptest.NewRequest(http.MethodPost, "/api/search", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()

	h.Search(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "query is required")
}

func TestHandler_Search_UnknownType(t *testing.T) {
	h := newTestHandler(new(MockEmbedder), new(MockVectorStore), new(MockGraphStore))

	req := httptest.NewRequest(http.MethodPost, "/api/search",
		bytes.NewReader([]byte(`{"query":"q","type":"keyword"}`)))
	w := httptest.NewRecorder()

	h.Search(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown search type")
}

func TestHandler_Search_BackendFailure(t *testing.T) {
	e := new(MockEmbedder)
	v := new(MockVectorStore)
	g := new(MockGraphStore)
	h := newTestHandler(e, v, g)

	g.On("Search", mock.Anything, "q", 10).Return(nil, assert.AnError)

	req := httptest.NewRequest(http.MethodPost, "/api/search",
		bytes.NewReader([]byte(`{"query":"q","type":"graph"}`)))
	w := httptest.NewRecorder()

	h.Search(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestHandler_EntityRelationships(t *testing.T) {
	e := new(MockEmbedder)
	v := new(MockVectorStore)
	g := new(MockGraphStore)
	h := newTestHandler(e, v, g)

	g.On("EntityRelationships", mock.Anything, "Main Pump").Return([]document.Relationship{
		{Type: "CONNECTED_TO", Target: "Cooling Loop"},
		{Type: "REQUIRES", Target: "Inspection"},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/search/entities/Main%20Pump/relationships", nil)
	req.SetPathValue("name", "Main Pump")
	w := httptest.NewRecorder()

	h.EntityRelationships(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []document.Relationship `json:"data"`
		Meta struct {
			Count int `json:"count"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 2, envelope.Meta.Count)
	assert.Equal(t, "CONNECTED_TO", envelope.Data[0].Type)
}

func TestHandler_EntityRelationships_BackendFailure(t *testing.T) {
	e := new(MockEmbedder)
	v := new(MockVectorStore)
	g := new(MockGraphStore)
	h := newTestHandler(e, v, g)

	g.On("EntityRelationships", mock.Anything, "Boiler").Return(nil, assert.AnError)

	req := httptest.NewRequest(http.MethodGet, "/api/search/entities/Boiler/relationships", nil)
	req.SetPathValue("name", "Boiler")
	w := httptest.NewRecorder()

	h.EntityRelationships(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}
