package cli

import (
	"context"
	"dataset-exporter/internal/auth"
	"dataset-exporter/internal/config"
	"dataset-exporter/internal/logging"
	"dataset-exporter/pkg/models"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export one project (or one of its datasets) and archive it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runExport(cmd.Context(), cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.String("project-id", "", "id of the project to export")
	flags.String("dataset-id", "", "export only this dataset of the project")
	flags.String("mode", "", `"all" exports images and annotations, anything else annotations only`)
	flags.Bool("fix-extension", false, "append the MIME subtype to image names without an extension")
	flags.String("storage-dir", "", "directory receiving the export and its archive")
	flags.Int("batch-size", 0, "images per annotation request")

	a.bindFlags(cmd, map[string]string{
		config.KeyProjectID:    "project-id",
		config.KeyDatasetID:    "dataset-id",
		config.KeyDownloadMode: "mode",
		config.KeyFixExtension: "fix-extension",
		config.KeyStorageDir:   "storage-dir",
		config.KeyBatchSize:    "batch-size",
	})
	return cmd
}

// runExport performs one export and prints the archive path on out
func (a *app) runExport(ctx context.Context, out io.Writer) error {
	if err := auth.ValidateCredentials(a.cfg.Credentials); err != nil {
		return err
	}

	req := models.ExportRequest{ProjectID: a.cfg.ProjectID, DatasetID: a.cfg.DatasetID}
	exporter := a.newExporter(a.newPlatform())

	progress := logging.NewProgress(a.logger, "Exporting images", 0)
	result, err := exporter.Run(ctx, req, func(images int) {
		progress.Report(images, 0)
	})
	if err != nil {
		return fmt.Errorf("export of project %d failed: %w", req.ProjectID, err)
	}

	p := message.NewPrinter(language.English)
	a.logger.Info().
		Str("archive", result.ArchivePath).
		Msg(p.Sprintf("Exported %d images from %d datasets of %q", result.Images, result.Datasets, result.Project))

	_, err = fmt.Fprintln(out, result.ArchivePath)
	return err
}
