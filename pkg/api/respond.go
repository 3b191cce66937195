package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pgrind/pgrind/pkg/trace"
)

// sendSuccess wraps data in the response envelope.
func sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(APIResponse{Success: true, Data: data})
}

// sendError writes a failure envelope with the given status code.
func sendError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{Success: false, Error: message})
}

// sendDecodeError maps decoder failures onto HTTP statuses: an
// out-of-range record number is a missing resource, a query against a
// closed reader is a conflict, and anything else (truncated records,
// malformed header lines) is a server-side decode failure.
func sendDecodeError(w http.ResponseWriter, err error) {
	var rangeErr *trace.RangeError
	switch {
	case errors.As(err, &rangeErr):
		sendError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, trace.ErrClosed):
		sendError(w, err.Error(), http.StatusConflict)
	default:
		sendError(w, err.Error(), http.StatusInternalServerError)
	}
}
