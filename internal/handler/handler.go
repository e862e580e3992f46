package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shop-catalog/internal/middleware"
	"shop-catalog/internal/model"

	"github.com/rs/zerolog"
)

// maxBodyBytes caps request bodies accepted by write endpoints.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code. The status
// line is already sent when encoding fails, so the failure is only logged.
func writeJSON(w http.ResponseWriter, status int, data interface{}, logger zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error().Err(err).Int("status", status).Msg("failed to encode response")
	}
}

// writeError writes an error envelope with the given status, code and message.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger zerolog.Logger) {
	requestID := middleware.RequestIDFromContext(r.Context())

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.
		Str("code", code).
		Str("error", message).
		Int("status", status).
		Str("request_id", requestID).
		Msg("handler error")

	writeJSON(w, status, model.ErrorResponse{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     code,
		Message:   message,
		RequestID: requestID,
	}, logger)
}

// writeServiceError maps a service error onto an HTTP status. Unknown errors
// become a 500 without leaking their text.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("unexpected service error")
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
		return
	}

	status := http.StatusInternalServerError
	switch domainErr.Code {
	case model.ErrCodeInvalidName, model.ErrCodeInvalidPrice, model.ErrCodeValidation,
		model.ErrCodeInvalidJSON, model.ErrCodeInvalidID:
		status = http.StatusBadRequest
	case model.ErrCodeProductNotFound, model.ErrCodeCategoryNotFound:
		status = http.StatusNotFound
	case model.ErrCodeCategoryInUse, model.ErrCodeCategoryExists:
		status = http.StatusConflict
	}

	writeError(w, r, status, domainErr.Code, domainErr.Message, logger)
}

// methodNotAllowed rejects a request whose method the route does not serve.
func methodNotAllowed(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed, "method not allowed", logger)
}

// decodeJSON decodes a size-limited request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// parseID extracts a positive numeric ID from a path such as /api/products/42.
func parseID(path, prefix string) (int64, error) {
	raw := strings.TrimSuffix(strings.TrimPrefix(path, prefix), "/")
	if raw == "" || strings.Contains(raw, "/") {
		return 0, fmt.Errorf("missing or malformed id in %q", path)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
