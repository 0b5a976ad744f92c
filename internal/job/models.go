package job

import (
	"dataset-exporter/pkg/models"
	"time"
)

// Status is the lifecycle state of an export job
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// IsFinished reports whether the job will not change anymore
func (s Status) IsFinished() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is a snapshot of an export job
type Job struct {
	ID         string               `json:"job_id"`
	Request    models.ExportRequest `json:"request"`
	Status     Status               `json:"status"`
	Images     int                  `json:"images_processed"`
	Result     *models.ExportResult `json:"result,omitempty"`
	Error      string               `json:"error,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
	FinishedAt time.Time            `json:"finished_at,omitzero"`
}

type CreateExportResponse struct {
	JobID  string `json:"job_id"`
	Status Status `json:"status"`
}
