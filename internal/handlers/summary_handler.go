package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/ecoatlas/ecoatlas/internal/models"
	"github.com/ecoatlas/ecoatlas/internal/services/summaries"
)

// SummaryServiceInterface defines the methods needed from the summary service
type SummaryServiceInterface interface {
	SummarizeBatch(ctx context.Context, category models.Category, batch []models.EntityRecord) (*models.BatchResult, error)
	SummarizeOne(ctx context.Context, category models.Category, entity models.EntityRecord) (*models.SingleResult, error)
	ClearCategory(ctx context.Context, category models.Category) error
}

// SummaryHandler handles summary pipeline HTTP requests
type SummaryHandler struct {
	service  SummaryServiceInterface
	validate *validator.Validate
	logger   arbor.ILogger
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(service SummaryServiceInterface, logger arbor.ILogger) *SummaryHandler {
	return &SummaryHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// categoryFromPath extracts and validates the category path segment from
// /api/summaries/{category}[/single].
func categoryFromPath(path string) (models.Category, string, error) {
	trimmed := strings.TrimPrefix(path, "/api/summaries/")
	segment, rest, _ := strings.Cut(trimmed, "/")
	category, err := models.ParseCategory(segment)
	if err != nil {
		return "", "", err
	}
	return category, rest, nil
}

// HandleSummaries dispatches /api/summaries/{category} routes:
//   - POST /api/summaries/{category}            batch operation
//   - POST /api/summaries/{category}/single     single-entity operation
//   - DELETE /api/summaries/{category}          manual cache clear
func (h *SummaryHandler) HandleSummaries(w http.ResponseWriter, r *http.Request) {
	category, rest, err := categoryFromPath(r.URL.Path)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch {
	case rest == "" && r.Method == http.MethodPost:
		h.batchHandler(w, r, category)
	case rest == "" && r.Method == http.MethodDelete:
		h.clearHandler(w, r, category)
	case rest == "single" && r.Method == http.MethodPost:
		h.singleHandler(w, r, category)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// batchHandler handles POST /api/summaries/{category}
func (h *SummaryHandler) batchHandler(w http.ResponseWriter, r *http.Request, category models.Category) {
	var batch []models.EntityRecord
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: expected a JSON array of entity records")
		return
	}

	result, err := h.service.SummarizeBatch(r.Context(), category, batch)
	if err != nil {
		h.logger.Error().Err(err).Str("category", string(category)).Msg("Batch summary operation failed")
		WriteError(w, http.StatusInternalServerError, "Summary operation failed: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// singleHandler handles POST /api/summaries/{category}/single
func (h *SummaryHandler) singleHandler(w http.ResponseWriter, r *http.Request, category models.Category) {
	var entity models.EntityRecord
	if err := json.NewDecoder(r.Body).Decode(&entity); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: expected a JSON entity record")
		return
	}

	if err := h.validate.Struct(&entity); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid entity record: "+err.Error())
		return
	}

	result, err := h.service.SummarizeOne(r.Context(), category, entity)
	if err != nil {
		if errors.Is(err, summaries.ErrInvalidRequest) {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error().Err(err).Str("category", string(category)).Msg("Single summary operation failed")
		WriteError(w, http.StatusInternalServerError, "Summary operation failed: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// clearHandler handles DELETE /api/summaries/{category}
func (h *SummaryHandler) clearHandler(w http.ResponseWriter, r *http.Request, category models.Category) {
	if err := h.service.ClearCategory(r.Context(), category); err != nil {
		h.logger.Error().Err(err).Str("category", string(category)).Msg("Cache clear failed")
		WriteError(w, http.StatusInternalServerError, "Cache clear failed: "+err.Error())
		return
	}

	WriteSuccess(w, "Cleared "+string(category)+" summary cache")
}
