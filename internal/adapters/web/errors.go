package web

import (
	"encoding/json"
	"net/http"

	"farmtrack/internal/core"
)

type errorResponse struct {
	Error     string                 `json:"error"`
	Code      string                 `json:"code"`
	Errors    []core.ValidationError `json:"errors,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
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

// writeValidationErrors writes HTTP 400 carrying the full validation-error
// list, so a caller sees every failing field in one round trip.
func writeValidationErrors(w http.ResponseWriter, r *http.Request, errs []core.ValidationError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	resp := errorResponse{
		Error:     "validation failed",
		Code:      "VALIDATION_FAILED",
		Errors:    errs,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeResult maps a command outcome onto the wire: validation failures
// become 400 with the error list, success becomes successStatus with the
// value as the body.
func writeResult[T any](w http.ResponseWriter, r *http.Request, res core.Result[T], successStatus int) {
	if !res.IsSuccess() {
		writeValidationErrors(w, r, res.Errors)
		return
	}
	writeJSON(w, successStatus, res.Value)
}

// serviceError maps the error channel onto the wire: a missing primary
// aggregate becomes 404, everything else 500.
func serviceError(w http.ResponseWriter, r *http.Request, err error) {
	if core.IsNotFound(err) {
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
}
