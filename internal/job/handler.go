package job

import (
	"dataset-exporter/pkg/models"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
)

// Handler exposes export jobs over HTTP
type Handler struct {
	manager *Manager
}

func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// RegisterRoutes registers export routes with the Echo instance
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/exports", h.CreateExport)
	e.GET("/exports/:jobId", h.GetExport)
	e.GET("/exports/:jobId/archive", h.DownloadArchive)
	e.GET("/health", h.Health)
}

// CreateExport handles POST /exports
func (h *Handler) CreateExport(c echo.Context) error {
	var req models.ExportRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	job, err := h.manager.Submit(req)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(http.StatusAccepted, CreateExportResponse{
		JobID:  job.ID,
		Status: job.Status,
	})
}

// GetExport handles GET /exports/:jobId
func (h *Handler) GetExport(c echo.Context) error {
	jobID := c.Param("jobId")
	if strings.TrimSpace(jobID) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "job_id is required",
		})
	}

	job, err := h.manager.Get(jobID)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, job)
}

// DownloadArchive handles GET /exports/:jobId/archive
func (h *Handler) DownloadArchive(c echo.Context) error {
	path, err := h.manager.ArchivePath(c.Param("jobId"))
	if err != nil {
		return handleError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentType, "application/x-tar")
	return c.Attachment(path, filepath.Base(path))
}

// Health handles GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func handleError(c echo.Context, err error) error {
	resp := GetErrorResponse(err)
	return c.JSON(resp.StatusCode, map[string]string{
		"error": resp.Message,
	})
}
