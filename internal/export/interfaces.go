package export

import (
	"context"
	"dataset-exporter/internal/download"
	"dataset-exporter/pkg/models"
)

// Platform is the remote service consumed by the exporter
type Platform interface {
	GetProjectInfo(ctx context.Context, projectID int) (*models.Project, error)
	GetProjectMeta(ctx context.Context, projectID int) (models.ProjectMeta, error)
	ListDatasets(ctx context.Context, projectID int) ([]*models.Dataset, error)
	GetDatasetInfo(ctx context.Context, datasetID int) (*models.Dataset, error)
	ListImages(ctx context.Context, datasetID int) ([]*models.ImageInfo, error)
	DownloadAnnotationBatch(ctx context.Context, datasetID int, imageIDs []int) ([]*models.AnnotationInfo, error)
}

// BulkDownloader writes images and annotations together (full export)
type BulkDownloader interface {
	DownloadProject(ctx context.Context, project *models.Project, datasets []*models.Dataset, dir string, opts download.Options) (int, error)
}

// ArchiveFunc packs srcDir into the archive at dstPath
type ArchiveFunc func(srcDir, dstPath string) error
