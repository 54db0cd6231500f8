// Package cli holds the cobra commands of the brandai binary.
package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"brandai/backend/internal/ai"
	"brandai/backend/internal/api"
	"brandai/backend/internal/catalog"
	"brandai/backend/internal/config"
	"brandai/backend/internal/imagen"
	"brandai/backend/internal/vertex"
	"brandai/backend/internal/vision"
)

const shutdownGrace = 15 * time.Second

// NewServeCmd creates the 'serve' command that runs the HTTP service.
func NewServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the ad critique HTTP service",
		Example: `  brandai serve
  brandai serve --addr 127.0.0.1:9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			cfg.ConfigureLogging()
			if addr == "" {
				addr = cfg.Addr()
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to BACKEND_HOST:BACKEND_PORT)")
	return cmd
}

func runServe(ctx context.Context, cfg config.Config, addr string) error {
	for _, warning := range cfg.Warnings() {
		logrus.Warn(warning)
	}

	brands := catalog.New(catalog.SourceForPath(cfg.CatalogPath))
	// A broken catalog is logged inside Load and leaves the service running.
	_ = brands.Load(ctx)

	server, err := api.NewServer(buildServerConfig(ctx, cfg, brands))
	if err != nil {
		return err
	}
	router, err := server.Router()
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("starting brandai backend on %s", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// buildServerConfig wires the cloud adapters. Adapters that cannot be built
// are left nil so the service still starts and reports upstream errors per request.
func buildServerConfig(ctx context.Context, cfg config.Config, brands *catalog.Catalog) api.Config {
	serverCfg := api.Config{
		Catalog:        brands,
		StaticDir:      cfg.StaticDir,
		AllowedOrigins: cfg.AllowedOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}

	visionClient, err := vision.NewClient(ctx, vision.Config{
		CredentialsFile: cfg.CredentialsFile,
		Endpoint:        cfg.VisionEndpoint,
		Timeout:         cfg.VisionTimeout,
	})
	if err != nil {
		logrus.WithError(err).Warn("cloud vision disabled")
	} else {
		serverCfg.Analyzer = visionClient
	}

	transport, err := vertex.NewClient(ctx, vertex.Config{
		Project:         cfg.ProjectID,
		Location:        cfg.Location,
		CredentialsFile: cfg.CredentialsFile,
		BaseURL:         cfg.VertexBaseURL,
		Timeout:         cfg.VertexTimeout,
		MaxRetries:      cfg.VertexMaxRetries,
		Backoff:         cfg.VertexRetryBackoff,
	})
	if err != nil {
		logrus.WithError(err).Warn("vertex ai disabled")
		return serverCfg
	}
	logrus.WithFields(logrus.Fields{
		"project":  cfg.ProjectID,
		"location": cfg.Location,
		"gemini":   cfg.GeminiModel,
		"imagen":   cfg.ImagenModel,
	}).Info("vertex ai initialized")

	if critic, err := ai.NewClient(transport, ai.Config{Model: cfg.GeminiModel, Temperature: &cfg.GeminiTemperature}); err == nil {
		serverCfg.Critic = critic
	}
	if generator, err := imagen.NewClient(transport, imagen.Config{Model: cfg.ImagenModel}); err == nil {
		serverCfg.Generator = generator
	}
	return serverCfg
}
