package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ecoatlas/ecoatlas/internal/common"
)

// StatusHandler handles HTTP requests for application status
type StatusHandler struct {
	config    *common.Config
	startTime time.Time
	logger    arbor.ILogger
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(config *common.Config, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		config:    config,
		startTime: time.Now(),
		logger:    logger,
	}
}

// GetStatusHandler handles GET /api/status
func (h *StatusHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version":         common.GetVersion(),
		"environment":     h.config.Environment,
		"uptime":          time.Since(h.startTime).Round(time.Second).String(),
		"storage_backend": h.config.Storage.Backend,
		"models":          h.config.LLM.Models,
	})
}

// HealthHandler handles GET /health
func (h *StatusHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
