package cli

import (
	"context"
	"dataset-exporter/internal/auth"
	"dataset-exporter/internal/config"
	"dataset-exporter/internal/job"
	"dataset-exporter/internal/middleware"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP export service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runServe(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.String("listen-addr", "", "address the HTTP server listens on")
	flags.String("mode", "", `"all" exports images and annotations, anything else annotations only`)
	flags.Bool("fix-extension", false, "append the MIME subtype to image names without an extension")
	flags.String("storage-dir", "", "directory receiving exports and archives")

	a.bindFlags(cmd, map[string]string{
		config.KeyListenAddr:   "listen-addr",
		config.KeyDownloadMode: "mode",
		config.KeyFixExtension: "fix-extension",
		config.KeyStorageDir:   "storage-dir",
	})
	return cmd
}

// newServer builds the echo instance serving the job API
func (a *app) newServer(manager *job.Manager) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.SecurityHeaders(a.cfg.Server.Domain))
	e.Use(middleware.CORSConfig(a.cfg.Server.Domain))
	e.Use(middleware.APIKey(a.cfg.Server.APIKey))

	job.NewHandler(manager).RegisterRoutes(e)
	return e
}

// runServe verifies the credentials, then serves until ctx is cancelled
func (a *app) runServe(ctx context.Context) error {
	if err := auth.ValidateCredentials(a.cfg.Credentials); err != nil {
		return err
	}

	client := a.newPlatform()
	user, err := auth.NewService(client).Verify(ctx)
	if err != nil {
		return err
	}
	a.logger.Info().Str("login", user.Login).Msg("credentials verified")

	manager := job.NewManager(a.newExporter(client), a.cfg.StorageDir, a.logger)
	manager.Start(ctx)

	e := a.newServer(manager)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			a.logger.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	a.logger.Info().
		Str("addr", a.cfg.Server.ListenAddr).
		Str("mode", a.cfg.Mode.String()).
		Msg("starting export server")
	if err := e.Start(a.cfg.Server.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
