package job

import (
	"context"
	"dataset-exporter/internal/export"
	"dataset-exporter/pkg/models"
)

// Runner executes one export, writing its files and archive below storageDir
type Runner interface {
	RunInDir(ctx context.Context, storageDir string, req models.ExportRequest, onProgress export.ProgressFunc) (*models.ExportResult, error)
}
