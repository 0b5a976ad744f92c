package download

import (
	"context"
	"dataset-exporter/pkg/models"
	"io"
)

// Source is the part of the platform API the bulk downloader needs
type Source interface {
	GetProjectMeta(ctx context.Context, projectID int) (models.ProjectMeta, error)
	ListImages(ctx context.Context, datasetID int) ([]*models.ImageInfo, error)
	DownloadAnnotationBatch(ctx context.Context, datasetID int, imageIDs []int) ([]*models.AnnotationInfo, error)
	GetImageStream(ctx context.Context, imageID int) (io.ReadCloser, error)
}
