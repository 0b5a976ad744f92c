// Package export drives a whole export run: it resolves the project and its
// datasets, writes them to disk in the configured mode and archives the result.
package export

import (
	"context"
	"dataset-exporter/internal/annotation"
	"dataset-exporter/internal/archive"
	"dataset-exporter/internal/download"
	"dataset-exporter/internal/extension"
	"dataset-exporter/internal/fsutil"
	"dataset-exporter/internal/logging"
	"dataset-exporter/pkg/models"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
)

const (
	metaFileName      = "meta.json"
	annotationDirName = "ann"
)

// Config is fixed for the lifetime of an Exporter
type Config struct {
	Mode       models.ExportMode
	StorageDir string
	BatchSize  int
	// Normalize maps declared image names to file names; nil keeps them verbatim
	Normalize extension.Normalizer
}

// ProgressFunc receives the running number of exported images
type ProgressFunc func(images int)

// Exporter runs exports against one platform
type Exporter struct {
	platform Platform
	bulk     BulkDownloader
	archive  ArchiveFunc
	config   Config
	logger   zerolog.Logger
}

// NewExporter creates an exporter. bulk is only used by full exports.
func NewExporter(platform Platform, bulk BulkDownloader, config Config, logger zerolog.Logger) *Exporter {
	if config.Normalize == nil {
		config.Normalize = extension.Identity
	}
	return &Exporter{
		platform: platform,
		bulk:     bulk,
		archive:  archive.ArchiveDirectory,
		config:   config,
		logger:   logging.Component(logger, "export"),
	}
}

// WithArchiver replaces the archiving step
func (e *Exporter) WithArchiver(fn ArchiveFunc) *Exporter {
	e.archive = fn
	return e
}

// Mode returns the configured export mode
func (e *Exporter) Mode() models.ExportMode {
	return e.config.Mode
}

// Run exports the requested project into the configured storage directory
func (e *Exporter) Run(ctx context.Context, req models.ExportRequest, onProgress ProgressFunc) (*models.ExportResult, error) {
	return e.RunInDir(ctx, e.config.StorageDir, req, onProgress)
}

// RunInDir exports the requested project below storageDir and returns the
// archive path. The project directory is cleared first, so it only ever holds
// this run's datasets. Any failure aborts the run and no archive is produced.
func (e *Exporter) RunInDir(ctx context.Context, storageDir string, req models.ExportRequest, onProgress ProgressFunc) (*models.ExportResult, error) {
	if req.ProjectID <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidProjectID, req.ProjectID)
	}

	project, err := e.platform.GetProjectInfo(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	logger := e.logger.With().Int("project_id", project.ID).Str("project", project.Name).Logger()

	datasets, err := e.resolveDatasets(ctx, project, req.DatasetID)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("title", project.Name).Str("mode", e.config.Mode.String()).Msg("DOWNLOAD_PROJECT")

	dirName, err := fsutil.LocalName(project.DirName())
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(storageDir, dirName)
	if err := fsutil.Reset(dir); err != nil {
		return nil, err
	}
	tracker := &imageCounter{onProgress: onProgress}

	var images int
	switch e.config.Mode {
	case models.ExportModeFull:
		images, err = e.bulk.DownloadProject(ctx, project, datasets, dir, download.Options{
			BatchSize: e.config.BatchSize,
			Normalize: e.config.Normalize,
			OnBatch:   tracker.add,
		})
	default:
		images, err = e.exportAnnotations(ctx, logger, project, datasets, dir, tracker)
	}
	if err != nil {
		logger.Error().Err(err).Msg("export failed")
		return nil, err
	}

	logger.Info().Msgf("Project %q has been successfully downloaded", project.Name)

	archivePath := filepath.Join(storageDir, project.ArchiveName())
	if err := e.archive(dir, archivePath); err != nil {
		logger.Error().Err(err).Msg("archiving failed")
		return nil, err
	}
	logger.Info().Str("archive", archivePath).Msg("Result directory is archived")

	return &models.ExportResult{
		ArchivePath: archivePath,
		Project:     project.Name,
		Datasets:    len(datasets),
		Images:      images,
	}, nil
}

// resolveDatasets returns the single requested dataset or every dataset of the project
func (e *Exporter) resolveDatasets(ctx context.Context, project *models.Project, datasetID *int) ([]*models.Dataset, error) {
	if datasetID == nil {
		return e.platform.ListDatasets(ctx, project.ID)
	}

	dataset, err := e.platform.GetDatasetInfo(ctx, *datasetID)
	if err != nil {
		return nil, err
	}
	if dataset.ProjectID != project.ID {
		return nil, fmt.Errorf("%w: dataset %d, project %d", ErrDatasetNotInProject, dataset.ID, project.ID)
	}
	return []*models.Dataset{dataset}, nil
}

// exportAnnotations writes meta.json and one {image}.json per image under {dataset}/ann
func (e *Exporter) exportAnnotations(ctx context.Context, logger zerolog.Logger, project *models.Project, datasets []*models.Dataset, dir string, tracker *imageCounter) (int, error) {
	meta, err := e.platform.GetProjectMeta(ctx, project.ID)
	if err != nil {
		return 0, err
	}
	if err := fsutil.DumpJSON(filepath.Join(dir, metaFileName), meta); err != nil {
		return 0, err
	}

	fetcher, err := annotation.NewFetcher(e.platform, e.config.BatchSize)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, dataset := range datasets {
		datasetDir, err := fsutil.LocalName(dataset.Name)
		if err != nil {
			return total, err
		}
		annDir := filepath.Join(dir, datasetDir, annotationDirName)
		if err := fsutil.Mkdir(annDir); err != nil {
			return total, err
		}

		images, err := e.platform.ListImages(ctx, dataset.ID)
		if err != nil {
			return total, err
		}

		progress := logging.NewProgress(logger,
			fmt.Sprintf("Downloading annotations for: %q/%q", project.Name, dataset.Name),
			len(images))

		err = fetcher.Each(ctx, dataset.ID, images, nil, func(_ context.Context, chunk []annotation.ImageAnnotation) error {
			for _, pair := range chunk {
				name, err := fsutil.LocalName(e.config.Normalize(pair.Image.Name, pair.Image.MimeType))
				if err != nil {
					return err
				}
				if err := fsutil.DumpJSON(filepath.Join(annDir, name+".json"), pair.Annotation.Annotation); err != nil {
					return err
				}
			}
			progress.IterDone(len(chunk))
			tracker.add(len(chunk))
			return nil
		})
		if err != nil {
			return total, fmt.Errorf("dataset %q: %w", dataset.Name, err)
		}
		total += progress.Current()
	}

	logger.Info().Msgf("Total number of images: %d", total)
	return total, nil
}

// imageCounter accumulates exported images across datasets
type imageCounter struct {
	done       int
	onProgress ProgressFunc
}

func (c *imageCounter) add(n int) {
	c.done += n
	if c.onProgress != nil {
		c.onProgress(c.done)
	}
}
