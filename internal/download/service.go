package download

import (
	"context"
	"dataset-exporter/internal/annotation"
	"dataset-exporter/internal/extension"
	"dataset-exporter/internal/fsutil"
	"dataset-exporter/internal/logging"
	"dataset-exporter/pkg/models"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Service downloads a project's images and annotations into the standard
// layout: meta.json plus {dataset}/img and {dataset}/ann per dataset
type Service struct {
	source Source
	logger zerolog.Logger
}

// NewService creates a bulk downloader
func NewService(source Source, logger zerolog.Logger) *Service {
	return &Service{
		source: source,
		logger: logging.Component(logger, "download"),
	}
}

// DownloadProject writes every image and annotation of datasets into dir and
// returns the number of images written. The first error aborts the download.
func (s *Service) DownloadProject(ctx context.Context, project *models.Project, datasets []*models.Dataset, dir string, opts Options) (int, error) {
	normalize := opts.Normalize
	if normalize == nil {
		normalize = extension.Identity
	}

	fetcher, err := annotation.NewFetcher(s.source, opts.BatchSize)
	if err != nil {
		return 0, err
	}

	if err := fsutil.Mkdir(dir); err != nil {
		return 0, err
	}

	meta, err := s.source.GetProjectMeta(ctx, project.ID)
	if err != nil {
		return 0, err
	}
	if err := fsutil.DumpJSON(filepath.Join(dir, metaFileName), meta); err != nil {
		return 0, err
	}

	total := 0
	for _, dataset := range datasets {
		count, err := s.downloadDataset(ctx, fetcher, project, dataset, dir, normalize, opts.OnBatch)
		if err != nil {
			return total, fmt.Errorf("dataset %q: %w", dataset.Name, err)
		}
		total += count
	}

	return total, nil
}

// downloadDataset writes one dataset's images and annotations, batch by batch
func (s *Service) downloadDataset(ctx context.Context, fetcher *annotation.Fetcher, project *models.Project, dataset *models.Dataset, dir string, normalize extension.Normalizer, onBatch func(int)) (int, error) {
	datasetDir, err := fsutil.LocalName(dataset.Name)
	if err != nil {
		return 0, err
	}
	imgDir := filepath.Join(dir, datasetDir, imageDirName)
	annDir := filepath.Join(dir, datasetDir, annotationDirName)
	if err := fsutil.Mkdir(imgDir); err != nil {
		return 0, err
	}
	if err := fsutil.Mkdir(annDir); err != nil {
		return 0, err
	}

	images, err := s.source.ListImages(ctx, dataset.ID)
	if err != nil {
		return 0, err
	}

	progress := logging.NewProgress(s.logger,
		fmt.Sprintf("Downloading images and annotations for: %q/%q", project.Name, dataset.Name),
		len(images))

	err = fetcher.Each(ctx, dataset.ID, images, progress.Report, func(ctx context.Context, chunk []annotation.ImageAnnotation) error {
		for _, pair := range chunk {
			name, err := fsutil.LocalName(normalize(pair.Image.Name, pair.Image.MimeType))
			if err != nil {
				return err
			}

			if err := s.saveImage(ctx, pair.Image, filepath.Join(imgDir, name)); err != nil {
				return err
			}
			if err := fsutil.DumpJSON(filepath.Join(annDir, name+".json"), pair.Annotation.Annotation); err != nil {
				return err
			}
		}
		if onBatch != nil {
			onBatch(len(chunk))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(images), nil
}

// saveImage copies the image stream to path
func (s *Service) saveImage(ctx context.Context, image *models.ImageInfo, path string) error {
	stream, err := s.source.GetImageStream(ctx, image.ID)
	if err != nil {
		return err
	}
	defer stream.Close()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}

	if _, err := io.Copy(file, stream); err != nil {
		file.Close()
		return fmt.Errorf("failed to write image %s: %w", image.Name, err)
	}

	return file.Close()
}
