package main

import (
	"context"
	"log/slog"

	"github.com/jamesprial/rs-introspect/internal/config"
	"github.com/jamesprial/rs-introspect/internal/oauth"
)

// newOAuthConfig maps the loaded configuration onto the oauth package.
func newOAuthConfig(cfg *config.Config, logger *slog.Logger) *oauth.Config {
	ic := cfg.Introspection
	return &oauth.Config{
		BaseURL:               cfg.Server.BaseURL,
		Issuer:                ic.Issuer,
		IntrospectionEndpoint: ic.Endpoint,
		IntrospectionMethod:   ic.Method,
		DisableCertCheck:      ic.DisableCertCheck,
		Timeout:               ic.Timeout,
		ClientAuth: oauth.ClientAuthConfig{
			Method:         ic.Auth.Method,
			ClientID:       ic.Auth.ClientID,
			ClientSecret:   ic.Auth.ClientSecret,
			PrivateKeyFile: ic.Auth.PrivateKeyFile,
			KeyID:          ic.Auth.KeyID,
			TokenURL:       ic.Auth.TokenURL,
			TokenScopes:    ic.Auth.TokenScopes,
		},
		EntitlementClaim: cfg.Guard.EntitlementClaim,
		ScopesSupported:  cfg.Guard.ScopesSupported,
		Logger:           logger,
	}
}

// newVerifier resolves the introspection endpoint, through discovery when
// only an issuer is configured, and builds the verifier.
func newVerifier(ctx context.Context, cfg *config.Config, logger *slog.Logger) (oauth.Verifier, *oauth.Config, error) {
	oauthCfg := newOAuthConfig(cfg, logger)
	if err := oauth.ResolveIntrospectionEndpoint(ctx, oauthCfg); err != nil {
		return nil, nil, err
	}

	verifier, err := oauth.NewVerifier(oauthCfg)
	if err != nil {
		return nil, nil, err
	}
	return verifier, oauthCfg, nil
}
