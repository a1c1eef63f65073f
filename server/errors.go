package server

import (
	"encoding/json"
	"errors"
	"net/http"
)

// HTTPError represents an HTTP error with status code and message
type HTTPError struct {
	Status  int
	Message string
	Err     error
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *HTTPError) Unwrap() error {
	return e.Err
}

// Common HTTP errors
var (
	ErrNotFound      = &HTTPError{Status: http.StatusNotFound, Message: "Plan not found"}
	ErrUnknownFormat = &HTTPError{Status: http.StatusBadRequest, Message: "Unknown export format"}
	ErrInvalidPlan   = &HTTPError{Status: http.StatusBadRequest, Message: "Invalid plan"}
	ErrPlanTooLarge  = &HTTPError{Status: http.StatusRequestEntityTooLarge, Message: "Plan too large"}
)

type errorBody struct {
	Error string `json:"error"`
}

// sendError writes err as a JSON body. Anything that is not an HTTPError
// becomes a 500 without leaking its message.
func (h *Handler) sendError(w http.ResponseWriter, r *http.Request, err error) {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		httpErr = &HTTPError{Status: http.StatusInternalServerError, Message: "Internal server error", Err: err}
	}

	if httpErr.Status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		h.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", httpErr.Status, "error", err)
	}

	w.Header().Set(headerContentType, mimeTypeJSON)
	w.WriteHeader(httpErr.Status)
	json.NewEncoder(w).Encode(errorBody{Error: httpErr.Message})
}
