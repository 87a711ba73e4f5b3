package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"invoicing-api/internal/core"
)

type errorResponse struct {
	Error     string   `json:"error"`
	Code      string   `json:"code"`
	RequestID string   `json:"request_id,omitempty"`
	Rows      []string `json:"rows,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeServiceError maps the core error taxonomy onto HTTP statuses.
// Import row errors carry their itemized row messages; anything not in
// the taxonomy is an internal error and the raw detail stays out of
// the response.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var importErr *core.ImportError
	switch {
	case errors.As(err, &importErr):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(errorResponse{
			Error:     importErr.Message,
			Code:      "IMPORT_FAILED",
			RequestID: requestIDFromContext(r.Context()),
			Rows:      importErr.Rows,
		})
	case errors.Is(err, core.ErrNotFound):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrInvalidInput):
		writeError(w, r, err.Error(), "INVALID_INPUT", http.StatusBadRequest)
	case errors.Is(err, core.ErrUnavailable):
		writeError(w, r, err.Error(), "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable)
	default:
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, v, http.StatusOK)
}

// writeJSONStatus writes a JSON response with an explicit status.
func writeJSONStatus(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
