package transport

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jamesprial/rs-introspect/internal/config"
	"github.com/jamesprial/rs-introspect/internal/oauth"
	"github.com/jamesprial/rs-introspect/internal/transport/internal/handlers"
	transporthttp "github.com/jamesprial/rs-introspect/internal/transport/internal/http"
	"github.com/jamesprial/rs-introspect/internal/transport/internal/middleware"
	pkgoauth "github.com/jamesprial/rs-introspect/pkg/oauth"
)

// Route paths served by NewTransportServices.
const (
	MetadataPath = pkgoauth.ProtectedResourceMetadataPath
	HealthPath   = "/health"
	WhoAmIPath   = "/whoami"
)

// NewServer creates a configured HTTP server.
// The server is configured with timeouts from the config and uses the provided router.
// If logger is nil, it uses the default slog logger.
func NewServer(cfg *config.Config, router Router, logger *slog.Logger) Server {
	return transporthttp.NewServer(cfg, router, logger)
}

// NewRouter creates a new HTTP router backed by chi.
func NewRouter() Router {
	return transporthttp.NewRouter()
}

// NewAuthMiddleware creates bearer token middleware backed by verifier.
// Failures are written through responder.
func NewAuthMiddleware(verifier oauth.Verifier, responder ErrorResponder) AuthMiddleware {
	return middleware.NewAuthMiddleware(verifier, responder)
}

// NewErrorResponder creates an error responder for the given realm.
// An empty realm uses the default "Resource Server".
func NewErrorResponder(realm string, logger *slog.Logger) ErrorResponder {
	return transporthttp.NewErrorResponder(realm, logger)
}

// NewMetadataHandler creates the OAuth protected resource metadata handler.
// It serves metadata at /.well-known/oauth-protected-resource per RFC 9728.
// If logger is nil, it uses the default slog logger.
func NewMetadataHandler(service oauth.MetadataService, responder ErrorResponder, logger *slog.Logger) http.Handler {
	return handlers.NewMetadataHandler(service, responder, logger)
}

// NewHealthHandler creates the health check handler.
func NewHealthHandler(responder ErrorResponder, logger *slog.Logger) http.Handler {
	return handlers.NewHealthHandler(responder, logger)
}

// NewWhoAmIHandler creates the handler echoing the caller's claims.
func NewWhoAmIHandler(responder ErrorResponder, logger *slog.Logger) http.Handler {
	return handlers.NewWhoAmIHandler(responder, logger)
}

// NewLoggingMiddleware creates request logging middleware.
// If logger is nil, it uses the default slog logger.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return middleware.NewLoggingMiddleware(logger)
}

// NewRecoveryMiddleware creates panic recovery middleware.
// If logger is nil, it uses the default slog logger.
func NewRecoveryMiddleware(responder ErrorResponder, logger *slog.Logger) Middleware {
	return middleware.NewRecoveryMiddleware(responder, logger)
}

// NewRequestIDMiddleware creates middleware assigning X-Request-ID.
func NewRequestIDMiddleware() Middleware {
	return middleware.NewRequestIDMiddleware()
}

// NewCORSMiddleware creates CORS middleware for origins. It does nothing
// when origins is empty.
func NewCORSMiddleware(origins []string) Middleware {
	return middleware.NewCORSMiddleware(origins)
}

// Guard composes Authenticate with the scope and entitlement requirements
// of cfg. The result protects any handler.
func Guard(auth AuthMiddleware, cfg config.GuardConfig) Middleware {
	chain := []Middleware{auth.Authenticate()}
	if len(cfg.RequiredScopes) > 0 {
		chain = append(chain, auth.RequireScopes(cfg.RequiredScopes...))
	}
	if len(cfg.RequiredEntitlements) > 0 {
		chain = append(chain, auth.RequireEntitlements(cfg.RequiredEntitlements...))
	}

	return func(next http.Handler) http.Handler {
		for i := len(chain) - 1; i >= 0; i-- {
			next = chain[i](next)
		}
		return next
	}
}

// Config holds the configuration needed for the transport layer.
type Config struct {
	// ServerConfig is the server configuration.
	ServerConfig *config.Config

	// Verifier authorizes bearer tokens.
	Verifier oauth.Verifier

	// MetadataService provides protected resource metadata.
	MetadataService oauth.MetadataService

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// NewTransportServices creates all transport layer services from the configuration.
// It wires routing, middleware and handlers. Further protected routes can
// be added to the returned router with Guard and the returned AuthMiddleware.
func NewTransportServices(cfg *Config) (Server, Router, AuthMiddleware, error) {
	if cfg == nil {
		return nil, nil, nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.ServerConfig == nil {
		return nil, nil, nil, fmt.Errorf("server config cannot be nil")
	}
	if cfg.Verifier == nil {
		return nil, nil, nil, fmt.Errorf("verifier cannot be nil")
	}
	if cfg.MetadataService == nil {
		return nil, nil, nil, fmt.Errorf("metadata service cannot be nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	guardCfg := cfg.ServerConfig.Guard

	responder := NewErrorResponder(guardCfg.Realm, logger)
	auth := NewAuthMiddleware(cfg.Verifier, responder)

	router := NewRouter()
	router.Use(
		NewRecoveryMiddleware(responder, logger),
		NewRequestIDMiddleware(),
		NewLoggingMiddleware(logger),
		NewCORSMiddleware(cfg.ServerConfig.Server.CORSOrigins),
	)

	// Handlers check their own method so that 405 carries Allow and CORS
	// preflights reach the CORS middleware.
	router.Handle(MetadataPath, NewMetadataHandler(cfg.MetadataService, responder, logger))
	router.Handle(HealthPath, NewHealthHandler(responder, logger))
	router.Handle(WhoAmIPath, Guard(auth, guardCfg)(NewWhoAmIHandler(responder, logger)))

	server := NewServer(cfg.ServerConfig, router, logger)

	return server, router, auth, nil
}
