package annotation

import (
	"context"
	"dataset-exporter/pkg/models"
)

// Source downloads the annotations of a batch of images in one remote call
type Source interface {
	DownloadAnnotationBatch(ctx context.Context, datasetID int, imageIDs []int) ([]*models.AnnotationInfo, error)
}
