package oauth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/jamesprial/rs-introspect/internal/oauth/internal/introspect"
	"github.com/jamesprial/rs-introspect/internal/oauth/internal/metadata"
)

// Client authentication methods toward the introspection endpoint.
const (
	ClientAuthNone              = introspect.AuthNone
	ClientAuthSecretBasic       = introspect.AuthClientSecretBasic
	ClientAuthPrivateKeyJWT     = introspect.AuthPrivateKeyJWT
	ClientAuthClientCredentials = introspect.AuthClientCredentials
)

// metadataServiceAdapter adapts metadata.Service to oauth.MetadataService interface.
type metadataServiceAdapter struct {
	service *metadata.Service
}

func (a *metadataServiceAdapter) GetMetadata(ctx context.Context) (*ProtectedResourceMetadata, error) {
	meta, err := a.service.GetMetadata(ctx)
	if err != nil {
		return nil, err
	}
	return &ProtectedResourceMetadata{
		Resource:               meta.Resource,
		AuthorizationServers:   meta.AuthorizationServers,
		ScopesSupported:        meta.ScopesSupported,
		BearerMethodsSupported: meta.BearerMethodsSupported,
	}, nil
}

func (a *metadataServiceAdapter) GetMetadataURL() string {
	return a.service.GetMetadataURL()
}

// ClientAuthConfig selects how this resource server authenticates to the
// introspection endpoint.
type ClientAuthConfig struct {
	// Method is one of the ClientAuth* constants. Empty means none.
	Method string

	ClientID     string
	ClientSecret string

	// PrivateKeyFile is a PEM encoded RSA or EC key for private_key_jwt.
	PrivateKeyFile string
	KeyID          string

	// TokenURL and TokenScopes configure the client_credentials grant.
	TokenURL    string
	TokenScopes []string
}

// Config holds the configuration needed to construct OAuth services.
type Config struct {
	// BaseURL is the canonical base URL for this protected resource.
	BaseURL string

	// Issuer is the authorization server. It is advertised in metadata and
	// used for discovery when IntrospectionEndpoint is empty.
	Issuer string

	// IntrospectionEndpoint is the RFC 7662 endpoint URL.
	IntrospectionEndpoint string

	// IntrospectionMethod is "POST" (default) or "GET".
	IntrospectionMethod string

	// DisableCertCheck skips TLS verification toward the endpoint.
	DisableCertCheck bool

	// Timeout bounds each introspection call of the default HTTP client.
	Timeout time.Duration

	// ClientAuth configures resource server authentication.
	ClientAuth ClientAuthConfig

	// EntitlementClaim is the response key holding entitlements.
	EntitlementClaim string

	// ScopesSupported is a list of OAuth scopes this server supports.
	ScopesSupported []string

	// HTTPClient overrides the HTTP client used for introspection,
	// discovery and client_credentials token requests.
	HTTPClient *http.Client

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// NewVerifier creates a Verifier bound to cfg's introspection endpoint.
// The endpoint must already be resolved; see ResolveIntrospectionEndpoint.
func NewVerifier(cfg *Config, opts ...VerifierOption) (Verifier, error) {
	if cfg.IntrospectionEndpoint == "" {
		return nil, ErrNoIntrospectionEndpoint
	}

	auth, err := newAuthenticator(cfg)
	if err != nil {
		return nil, err
	}

	icfg := introspect.Config{
		Endpoint:         cfg.IntrospectionEndpoint,
		Method:           cfg.IntrospectionMethod,
		Timeout:          cfg.Timeout,
		DisableCertCheck: cfg.DisableCertCheck,
		Authenticator:    auth,
		Logger:           cfg.logger(),
	}
	if cfg.HTTPClient != nil {
		icfg.Doer = cfg.HTTPClient
	}

	client, err := introspect.NewClient(icfg)
	if err != nil {
		return nil, err
	}

	claimOpts := []ClaimsOption{WithEntitlementClaim(cfg.EntitlementClaim)}
	return newVerifier(client, cfg.logger(), claimOpts, opts...), nil
}

func newAuthenticator(cfg *Config) (introspect.Authenticator, error) {
	ca := cfg.ClientAuth
	switch ca.Method {
	case "", ClientAuthNone:
		return introspect.NoAuth{}, nil
	case ClientAuthSecretBasic:
		return introspect.ClientSecretBasic{ClientID: ca.ClientID, ClientSecret: ca.ClientSecret}, nil
	case ClientAuthPrivateKeyJWT:
		pemKey, err := os.ReadFile(ca.PrivateKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read private key: %w", err)
		}
		auth, err := introspect.NewPrivateKeyJWT(ca.ClientID, cfg.IntrospectionEndpoint, ca.KeyID, pemKey)
		if err != nil {
			return nil, err
		}
		return auth, nil
	case ClientAuthClientCredentials:
		return introspect.NewClientCredentials(clientcredentials.Config{
			ClientID:     ca.ClientID,
			ClientSecret: ca.ClientSecret,
			TokenURL:     ca.TokenURL,
			Scopes:       ca.TokenScopes,
		}, cfg.HTTPClient), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedClientAuth, ca.Method)
	}
}

// NewMetadataService creates a new protected resource metadata service.
// The service provides RFC 9728 compliant metadata at the well-known endpoint.
func NewMetadataService(cfg *Config) MetadataService {
	var servers []string
	if cfg.Issuer != "" {
		servers = []string{cfg.Issuer}
	}
	service := metadata.NewService(cfg.BaseURL, servers, cfg.ScopesSupported)
	return &metadataServiceAdapter{service: service}
}

// NewOAuthServices creates all OAuth services from the configuration.
// This is a convenience function for dependency injection.
func NewOAuthServices(cfg *Config, opts ...VerifierOption) (Verifier, MetadataService, error) {
	verifier, err := NewVerifier(cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	return verifier, NewMetadataService(cfg), nil
}
