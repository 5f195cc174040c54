package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/MrSnakeDoc/versefinder/internal/logger"
	"github.com/MrSnakeDoc/versefinder/internal/reference"
	"github.com/MrSnakeDoc/versefinder/internal/search"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any, log logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug("failed to write response", logger.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error, log logger.Logger) {
	writeJSON(w, status, errorResponse{Message: message, Error: err.Error()}, log)
}

// decodeJSON reads a single JSON value from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// classify maps a lookup or search error to an HTTP status and a short message.
func classify(err error) (int, string) {
	var (
		malformed *reference.MalformedReferenceError
		unknown   *reference.UnknownBookError
		tierErr   *search.SearchTierFailure
	)

	switch {
	case errors.As(err, &malformed), errors.As(err, &unknown):
		return http.StatusBadRequest, "Invalid reference"
	case errors.Is(err, search.ErrNoKeywords), errors.Is(err, search.ErrBlankKeyword):
		return http.StatusBadRequest, "Invalid keywords"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Request timed out"
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "Request cancelled"
	case errors.As(err, &tierErr):
		return http.StatusInternalServerError, "Search failed, please retry"
	default:
		return http.StatusInternalServerError, "Internal error"
	}
}

func writeClassified(w http.ResponseWriter, err error, log logger.Logger) {
	status, message := classify(err)
	if status >= http.StatusInternalServerError {
		log.Error(message, logger.Error(err))
	}
	writeError(w, status, message, err, log)
}
