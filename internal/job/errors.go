package job

import (
	"dataset-exporter/internal/export"
	"dataset-exporter/internal/platform"
	"errors"
	"net/http"
)

var (
	ErrJobNotFound       = errors.New("job not found")
	ErrJobNotFinished    = errors.New("export is not completed")
	ErrQueueFull         = errors.New("export queue is full")
	ErrInvalidProjectID  = errors.New("project_id is required")
	ErrManagerNotRunning = errors.New("export worker is not running")
)

type ErrorResponse struct {
	StatusCode int
	Message    string
}

// GetErrorResponse returns the HTTP response for an error
func GetErrorResponse(err error) ErrorResponse {
	switch {
	case errors.Is(err, ErrJobNotFound):
		return ErrorResponse{http.StatusNotFound, err.Error()}
	case errors.Is(err, ErrJobNotFinished):
		return ErrorResponse{http.StatusConflict, err.Error()}
	case errors.Is(err, ErrInvalidProjectID), errors.Is(err, export.ErrInvalidProjectID):
		return ErrorResponse{http.StatusBadRequest, err.Error()}
	case errors.Is(err, ErrQueueFull), errors.Is(err, ErrManagerNotRunning):
		return ErrorResponse{http.StatusServiceUnavailable, err.Error()}
	case errors.Is(err, export.ErrDatasetNotInProject):
		return ErrorResponse{http.StatusBadRequest, err.Error()}
	case errors.Is(err, platform.ErrNotFound):
		return ErrorResponse{http.StatusNotFound, err.Error()}
	case errors.Is(err, platform.ErrUnauthorized):
		return ErrorResponse{http.StatusBadGateway, "platform rejected the configured API token"}
	default:
		return ErrorResponse{http.StatusInternalServerError, "An unexpected error occurred. Please try again."}
	}
}
