package server

import "net/http"

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - summary pipeline
	mux.HandleFunc("/api/summaries/", s.app.SummaryHandler.HandleSummaries) // POST (batch), POST /single, DELETE (clear)

	// API routes - application status
	mux.HandleFunc("/api/status", s.app.StatusHandler.GetStatusHandler)
	mux.HandleFunc("/health", s.app.StatusHandler.HealthHandler)

	return mux
}
