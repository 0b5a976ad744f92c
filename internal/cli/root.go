// Package cli wires configuration, logging and the platform client into the
// exporter's cobra commands.
package cli

import (
	"dataset-exporter/internal/config"
	"dataset-exporter/internal/download"
	"dataset-exporter/internal/export"
	"dataset-exporter/internal/extension"
	"dataset-exporter/internal/logging"
	"dataset-exporter/internal/platform"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries the state shared by all subcommands of one invocation
type app struct {
	v        *viper.Viper
	cfg      *config.Config
	logger   zerolog.Logger
	bindings map[*cobra.Command]map[string]string
}

// NewRootCmd creates the root command with the export and serve subcommands
func NewRootCmd(ver string) *cobra.Command {
	a := &app{
		v:        config.NewViper(),
		logger:   zerolog.Nop(),
		bindings: make(map[*cobra.Command]map[string]string),
	}

	cmd := &cobra.Command{
		Use:           "dataset-exporter",
		Short:         "Export annotated image projects into tar archives",
		Version:       ver,
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: `  # Export annotations of project 42
  SERVER_ADDRESS=https://app.example.com API_TOKEN=... dataset-exporter export --project-id 42

  # Export images and annotations of a single dataset
  dataset-exporter export --project-id 42 --dataset-id 7 --mode all --fix-extension

  # Run the HTTP export service
  dataset-exporter serve --listen-addr :8080`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	cmd.PersistentFlags().String("config", "", "path to a YAML config file")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("log-format", "", "log format: console or json (default: console on a terminal)")
	a.bindFlags(cmd, map[string]string{
		config.KeyLogFormat: "log-format",
	})

	cmd.AddCommand(newExportCmd(a), newServeCmd(a), newVersionCmd(ver))
	return cmd
}

// setup loads dotenv files, the config file and the environment, then builds the logger
func (a *app) setup(cmd *cobra.Command) error {
	// Only the running command's flags are bound; subcommands share keys.
	for _, c := range []*cobra.Command{cmd.Root(), cmd} {
		for key, name := range a.bindings[c] {
			if flag := cmd.Flags().Lookup(name); flag != nil {
				if err := a.v.BindPFlag(key, flag); err != nil {
					return err
				}
			}
		}
	}

	var loaded []string
	if config.IsDevelopment() {
		files, err := config.LoadDotEnv(config.DevelopmentEnvFiles()...)
		if err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}
		loaded = files
	}

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := config.ReadFile(a.v, path); err != nil {
			return err
		}
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Log.Level = "debug"
	}
	a.cfg = cfg

	a.logger = logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	for _, file := range loaded {
		a.logger.Debug().Str("file", file).Msg("loaded env file")
	}
	return nil
}

// bindFlags records which flag of cmd overrides each config key
func (a *app) bindFlags(cmd *cobra.Command, keys map[string]string) {
	a.bindings[cmd] = keys
}

func (a *app) newPlatform() *platform.Service {
	return platform.NewService(a.cfg.Credentials,
		platform.WithTimeout(a.cfg.HTTPTimeout),
		platform.WithLogger(a.logger),
	)
}

func (a *app) newExporter(client *platform.Service) *export.Exporter {
	return export.NewExporter(client, download.NewService(client, a.logger), export.Config{
		Mode:       a.cfg.Mode,
		StorageDir: a.cfg.StorageDir,
		BatchSize:  a.cfg.BatchSize,
		Normalize:  extension.NewNormalizer(a.cfg.FixExtension),
	}, a.logger)
}
