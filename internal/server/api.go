// ABOUTME: HTTP API handlers for the parameter spec endpoints.
// ABOUTME: Maps engine results and failures onto the REST wire contract.

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/fabworks/paramspec-gateway/internal/specs"
)

// handleParameterSpecs routes /api/parameter-specs by HTTP method.
func (s *Server) handleParameterSpecs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListSpecs(w, r)
	case http.MethodPost:
		s.handleAddSpec(w, r)
	default:
		// OPTIONS never reaches the mux; withCORS answers preflight
		w.Header().Set("Allow", "GET, POST, OPTIONS")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleListSpecs handles GET /api/parameter-specs.
// Returns every stored record as a JSON array; an empty store yields [].
func (s *Server) handleListSpecs(w http.ResponseWriter, r *http.Request) {
	allSpecs, err := s.service.ListAll(r.Context())
	if err != nil {
		s.logger.Error("failed to list parameter specs", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(allSpecs); err != nil {
		s.logger.Warn("failed to encode spec list", "error", err)
	}
}

// handleAddSpec handles POST /api/parameter-specs.
//
// Responsibilities:
//  1. Enforce application/json content type (415 otherwise)
//  2. Decode the body into a raw field mapping, keeping numeric literals
//  3. Hand the mapping to the engine
//  4. Map engine failures to status codes: validation 400, duplicate 409,
//     store faults 500
//  5. Echo the created record with 201
func (s *Server) handleAddSpec(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		s.sendJSONError(w, http.StatusUnsupportedMediaType,
			"Unsupported Media Type. Content-Type must be application/json")
		return
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil || fields == nil {
		s.sendJSONError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	created, err := s.service.Add(r.Context(), fields)
	if err != nil {
		s.handleAddError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(created); err != nil {
		s.logger.Warn("failed to encode created spec", "error", err)
	}
}

// handleAddError maps engine failures onto HTTP status codes.
func (s *Server) handleAddError(w http.ResponseWriter, err error) {
	var verr *specs.ValidationError
	switch {
	case errors.As(err, &verr):
		s.sendJSONError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, specs.ErrDuplicateSpec):
		s.sendJSONError(w, http.StatusConflict, specs.ErrDuplicateSpec.Error())
	default:
		s.logger.Error("failed to add parameter spec", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
	}
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// sendJSONError writes a JSON error response.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// withCORS adds permissive CORS headers and answers preflight requests.
// The original deployment serves browser dashboards from other origins.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Mcp-Session-Id, Mcp-Protocol-Version")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
