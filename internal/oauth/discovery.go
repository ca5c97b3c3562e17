package oauth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
)

// DiscoverIntrospectionEndpoint reads introspection_endpoint from the
// issuer's OpenID Connect discovery document. client may be nil.
func DiscoverIntrospectionEndpoint(ctx context.Context, issuer string, client *http.Client) (string, error) {
	if client != nil {
		ctx = oidc.ClientContext(ctx, client)
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDiscoveryFailed, err)
	}

	var doc struct {
		IntrospectionEndpoint string `json:"introspection_endpoint"`
	}
	if err := provider.Claims(&doc); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDiscoveryFailed, err)
	}
	if strings.TrimSpace(doc.IntrospectionEndpoint) == "" {
		return "", fmt.Errorf("%w: issuer %s does not advertise introspection_endpoint", ErrDiscoveryFailed, issuer)
	}

	return doc.IntrospectionEndpoint, nil
}

// ResolveIntrospectionEndpoint fills cfg.IntrospectionEndpoint through
// discovery when only cfg.Issuer is configured.
func ResolveIntrospectionEndpoint(ctx context.Context, cfg *Config) error {
	if cfg.IntrospectionEndpoint != "" {
		return nil
	}
	if cfg.Issuer == "" {
		return ErrNoIntrospectionEndpoint
	}

	endpoint, err := DiscoverIntrospectionEndpoint(ctx, cfg.Issuer, cfg.HTTPClient)
	if err != nil {
		return err
	}
	cfg.IntrospectionEndpoint = endpoint
	cfg.logger().Info("discovered introspection endpoint", "issuer", cfg.Issuer, "endpoint", endpoint)
	return nil
}
