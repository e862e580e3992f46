package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"shop-catalog/internal/model"

	"github.com/go-faster/errors"
)

// TransportError reports a request that did not produce a usable response:
// dial failures, timeouts, cancellations and undecodable bodies.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the request ran out of time.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

// APIError is a non-2xx response from the catalog API.
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("catalog api: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("catalog api: %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// maxErrorText bounds raw body text copied into an APIError message.
const maxErrorText = 512

// newAPIError builds an APIError from a response body. The message comes from
// the envelope's "message" field, then "error", then the raw text.
func newAPIError(status int, requestID string, body []byte) *APIError {
	apiErr := &APIError{Status: status, RequestID: requestID}

	var envelope model.ErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.RequestID != "" {
			apiErr.RequestID = envelope.RequestID
		}
		switch {
		case envelope.Message != "":
			apiErr.Code = envelope.Error
			apiErr.Message = envelope.Message
		case envelope.Error != "":
			apiErr.Message = envelope.Error
		}
	}

	if apiErr.Message == "" {
		text := strings.TrimSpace(string(body))
		if len(text) > maxErrorText {
			text = text[:maxErrorText]
		}
		apiErr.Message = text
	}

	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}

	return apiErr
}
