// Package annotation pages through a dataset's images in fixed-size batches and
// fetches the annotation payload of every image, one remote call per batch.
package annotation

import (
	"context"
	"dataset-exporter/internal/batch"
	"dataset-exporter/pkg/models"
	"errors"
	"fmt"
)

var ErrMissingAnnotation = errors.New("annotation missing from batch response")

// ImageAnnotation pairs an image with its annotation payload
type ImageAnnotation struct {
	Image      *models.ImageInfo
	Annotation *models.AnnotationInfo
}

// HandleFunc receives the annotations of one batch, in image order
type HandleFunc func(ctx context.Context, batch []ImageAnnotation) error

// Fetcher retrieves annotations batch by batch
type Fetcher struct {
	source    Source
	processor *batch.Processor[*models.ImageInfo]
}

// NewFetcher creates a fetcher issuing one call per batchSize images
func NewFetcher(source Source, batchSize int) (*Fetcher, error) {
	processor, err := batch.NewProcessor[*models.ImageInfo](batchSize)
	if err != nil {
		return nil, err
	}
	return &Fetcher{source: source, processor: processor}, nil
}

// BatchSize returns the number of images per remote call
func (f *Fetcher) BatchSize() int {
	return f.processor.Size()
}

// Each fetches annotations for images in batches and hands every batch to handle
// before requesting the next one. progress, if set, is called after each handled batch.
func (f *Fetcher) Each(ctx context.Context, datasetID int, images []*models.ImageInfo, progress batch.ProgressFunc, handle HandleFunc) error {
	f.processor.WithProgress(progress)
	defer f.processor.WithProgress(nil)

	return f.processor.Process(ctx, images, func(ctx context.Context, chunk []*models.ImageInfo, _ int) error {
		paired, err := f.fetchBatch(ctx, datasetID, chunk)
		if err != nil {
			return err
		}
		return handle(ctx, paired)
	})
}

// Fetch returns the annotations of all images, in the order of images
func (f *Fetcher) Fetch(ctx context.Context, datasetID int, images []*models.ImageInfo) ([]ImageAnnotation, error) {
	result := make([]ImageAnnotation, 0, len(images))
	err := f.Each(ctx, datasetID, images, nil, func(_ context.Context, chunk []ImageAnnotation) error {
		result = append(result, chunk...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// fetchBatch downloads one batch and matches every annotation to its image by id
func (f *Fetcher) fetchBatch(ctx context.Context, datasetID int, images []*models.ImageInfo) ([]ImageAnnotation, error) {
	ids := make([]int, len(images))
	for i, image := range images {
		ids[i] = image.ID
	}

	anns, err := f.source.DownloadAnnotationBatch(ctx, datasetID, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int]*models.AnnotationInfo, len(anns))
	for _, ann := range anns {
		byID[ann.ImageID] = ann
	}

	paired := make([]ImageAnnotation, len(images))
	for i, image := range images {
		ann, ok := byID[image.ID]
		if !ok {
			return nil, fmt.Errorf("%w: image %d (%s)", ErrMissingAnnotation, image.ID, image.Name)
		}
		paired[i] = ImageAnnotation{Image: image, Annotation: ann}
	}
	return paired, nil
}
