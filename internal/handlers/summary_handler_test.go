package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoatlas/ecoatlas/internal/common"
	"github.com/ecoatlas/ecoatlas/internal/models"
	"github.com/ecoatlas/ecoatlas/internal/services/summaries"
)

// stubSummaryService records calls and returns canned results.
type stubSummaryService struct {
	batchResult  *models.BatchResult
	singleResult *models.SingleResult
	err          error

	batchCategory  models.Category
	batchEntities  []models.EntityRecord
	singleEntity   models.EntityRecord
	clearedCategry models.Category
}

func (s *stubSummaryService) SummarizeBatch(_ context.Context, category models.Category, batch []models.EntityRecord) (*models.BatchResult, error) {
	s.batchCategory = category
	s.batchEntities = batch
	return s.batchResult, s.err
}

func (s *stubSummaryService) SummarizeOne(_ context.Context, category models.Category, entity models.EntityRecord) (*models.SingleResult, error) {
	s.singleEntity = entity
	return s.singleResult, s.err
}

func (s *stubSummaryService) ClearCategory(_ context.Context, category models.Category) error {
	s.clearedCategry = category
	return s.err
}

func newTestHandler(service *stubSummaryService) *SummaryHandler {
	return NewSummaryHandler(service, common.GetLogger())
}

func TestBatchRequest(t *testing.T) {
	service := &stubSummaryService{
		batchResult: &models.BatchResult{
			Summaries:  map[string]string{"aphid::nsw": "A sap-sucking insect."},
			Provenance: "gemini-2.0-flash",
		},
	}
	handler := newTestHandler(service)

	body, _ := json.Marshal([]models.EntityRecord{{Name: "Aphid", Context: "NSW"}})
	req := httptest.NewRequest(http.MethodPost, "/api/summaries/pest", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.HandleSummaries(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.CategoryPest, service.batchCategory)
	require.Len(t, service.batchEntities, 1)

	var result models.BatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "gemini-2.0-flash", result.Provenance)
	assert.Equal(t, "A sap-sucking insect.", result.Summaries["aphid::nsw"])
}

func TestBatchRequestInvalidBody(t *testing.T) {
	handler := newTestHandler(&stubSummaryService{})

	req := httptest.NewRequest(http.MethodPost, "/api/summaries/pest", bytes.NewReader([]byte("{not an array")))
	rec := httptest.NewRecorder()

	handler.HandleSummaries(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownCategory(t *testing.T) {
	handler := newTestHandler(&stubSummaryService{})

	req := httptest.NewRequest(http.MethodPost, "/api/summaries/fungus", bytes.NewReader([]byte("[]")))
	rec := httptest.NewRecorder()

	handler.HandleSummaries(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown summary category")
}

func TestMethodNotAllowed(t *testing.T) {
	handler := newTestHandler(&stubSummaryService{})

	req := httptest.NewRequest(http.MethodGet, "/api/summaries/pest", nil)
	rec := httptest.NewRecorder()

	handler.HandleSummaries(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSingleRequest(t *testing.T) {
	service := &stubSummaryService{
		singleResult: &models.SingleResult{
			Key:        "aphid::nsw",
			Summary:    "A sap-sucking insect.",
			Provenance: models.ProvenanceCache,
			Cached:     true,
		},
	}
	handler := newTestHandler(service)

	body, _ := json.Marshal(models.EntityRecord{Name: "Aphid", Context: "NSW"})
	req := httptest.NewRequest(http.MethodPost, "/api/summaries/pest/single", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.HandleSummaries(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result models.SingleResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Cached)
	assert.Equal(t, "aphid::nsw", result.Key)
}

func TestSingleRequestMissingName(t *testing.T) {
	handler := newTestHandler(&stubSummaryService{})

	body, _ := json.Marshal(models.EntityRecord{Context: "NSW"})
	req := httptest.NewRequest(http.MethodPost, "/api/summaries/pest/single", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.HandleSummaries(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSingleRequestInvalidRequestError(t *testing.T) {
	service := &stubSummaryService{err: summaries.ErrInvalidRequest}
	handler := newTestHandler(service)

	body, _ := json.Marshal(models.EntityRecord{Name: "  "})
	req := httptest.NewRequest(http.MethodPost, "/api/summaries/pest/single", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.HandleSummaries(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearRequest(t *testing.T) {
	service := &stubSummaryService{}
	handler := newTestHandler(service)

	req := httptest.NewRequest(http.MethodDelete, "/api/summaries/biome", nil)
	rec := httptest.NewRecorder()

	handler.HandleSummaries(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.CategoryBiome, service.clearedCategry)
	assert.Contains(t, rec.Body.String(), "success")
}
