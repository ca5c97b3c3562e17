package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesprial/rs-introspect/internal/config"
	"github.com/jamesprial/rs-introspect/internal/oauth"
	"github.com/jamesprial/rs-introspect/internal/transport"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the guard HTTP server",
		Long: `Run the HTTP server. It serves:

  GET /.well-known/oauth-protected-resource   RFC 9728 metadata
  GET /health                                 liveness
  GET /whoami                                 claims of the presented token

/whoami demands the configured required scopes and entitlements.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}
}

// runServe blocks until ctx is done or the server fails, then shuts down
// gracefully.
func runServe(ctx context.Context, opts *rootOptions) error {
	logger := opts.logger
	if logger == nil {
		logger = slog.Default()
	}
	slog.SetDefault(logger)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Info("server configuration loaded",
		"addr", cfg.Server.Addr,
		"base_url", cfg.Server.BaseURL,
		"introspection_endpoint", cfg.Introspection.Endpoint,
		"issuer", cfg.Introspection.Issuer,
		"auth_method", cfg.Introspection.Auth.Method,
	)

	oauthCfg := newOAuthConfig(cfg, logger)
	if err := oauth.ResolveIntrospectionEndpoint(ctx, oauthCfg); err != nil {
		return fmt.Errorf("failed to resolve introspection endpoint: %w", err)
	}

	verifier, metadataService, err := oauth.NewOAuthServices(oauthCfg)
	if err != nil {
		return fmt.Errorf("failed to create oauth services: %w", err)
	}

	server, _, _, err := transport.NewTransportServices(&transport.Config{
		ServerConfig:    cfg,
		Verifier:        verifier,
		MetadataService: metadataService,
		Logger:          logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create transport services: %w", err)
	}

	logger.Info("transport services initialized",
		"metadata_url", metadataService.GetMetadataURL(),
		"required_scopes", []string(cfg.Guard.RequiredScopes),
		"required_entitlements", []string(cfg.Guard.RequiredEntitlements),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.Server.Addr)
		serverErrCh <- server.Start()
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping server gracefully")
	case serveErr = <-serverErrCh:
		if serveErr != nil {
			logger.Error("server error", "error", serveErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && serveErr == nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if serveErr != nil {
		return serveErr
	}

	logger.Info("server stopped successfully")
	return nil
}
