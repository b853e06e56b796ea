package controlapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alghazaly/partsync/internal/core/domain"
)

// apiError is a structured error response.
type apiError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *apiError) Error() string {
	return e.Message
}

func (e *apiError) toJSON() []byte {
	data, _ := json.Marshal(map[string]any{
		"success": false,
		"error":   e,
	})
	return data
}

func badRequest(message string) *apiError {
	return &apiError{StatusCode: http.StatusBadRequest, Code: "BAD_REQUEST", Message: message}
}

func notFound(message string) *apiError {
	return &apiError{StatusCode: http.StatusNotFound, Code: "NOT_FOUND", Message: message}
}

// errorStatus maps domain errors onto status codes.
var errorStatus = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInvalidInput, http.StatusBadRequest, "BAD_REQUEST"},
	{domain.ErrQueueFull, http.StatusInsufficientStorage, "QUEUE_FULL"},
	{domain.ErrDrainInProgress, http.StatusConflict, "DRAIN_IN_PROGRESS"},
	{domain.ErrSyncInProgress, http.StatusConflict, "SYNC_IN_PROGRESS"},
	{domain.ErrOffline, http.StatusServiceUnavailable, "OFFLINE"},
	{domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
	{domain.ErrRemote, http.StatusBadGateway, "REMOTE_ERROR"},
	{domain.ErrNotConfigured, http.StatusNotImplemented, "NOT_CONFIGURED"},
}

// toAPIError converts any error into an apiError.
func toAPIError(err error) *apiError {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			return &apiError{StatusCode: m.status, Code: m.code, Message: err.Error()}
		}
	}
	return &apiError{
		StatusCode: http.StatusInternalServerError,
		Code:       "INTERNAL_ERROR",
		Message:    "an unexpected error occurred",
	}
}
