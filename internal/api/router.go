// Package api serves the ingest, analysis and BCF export operations over HTTP.
package api

import (
	"io"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// NewRouter registers the API routes on a new router.
func NewRouter(s *Server) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.HandleFunc("/api/ingest", s.ingest).Methods(http.MethodPost)
	r.HandleFunc("/api/analyze", s.analyze).Methods(http.MethodPost)
	r.HandleFunc("/api/analyze/image", s.analyzeImage).Methods(http.MethodPost)
	r.HandleFunc("/api/export/bcf", s.exportBCF).Methods(http.MethodPost)

	return r
}

// Handler wraps the router with CORS for allowedOrigins and an access log
// written to accessLog.
func Handler(s *Server, allowedOrigins []string, accessLog io.Writer) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)
	return handlers.LoggingHandler(accessLog, cors(NewRouter(s)))
}
