package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that the configuration is valid and complete.
// It returns an error if required fields are missing or values are invalid.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := validateServer(&cfg.Server); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}

	return ValidateIntrospection(cfg)
}

// ValidateIntrospection checks everything but the server section.
func ValidateIntrospection(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := validateIntrospection(&cfg.Introspection); err != nil {
		return fmt.Errorf("invalid introspection config: %w", err)
	}

	if err := validateClientAuth(&cfg.Introspection.Auth); err != nil {
		return fmt.Errorf("invalid client auth config: %w", err)
	}

	if err := validateGuard(&cfg.Guard); err != nil {
		return fmt.Errorf("invalid guard config: %w", err)
	}

	return nil
}

// isLocalhost returns true if the host is localhost or a loopback address.
// It handles bare hostnames and host:port combinations.
func isLocalhost(host string) bool {
	if host == "localhost" || host == "127.0.0.1" {
		return true
	}

	if len(host) > len("localhost:") && host[:len("localhost:")] == "localhost:" {
		return true
	}
	if len(host) > len("127.0.0.1:") && host[:len("127.0.0.1:")] == "127.0.0.1:" {
		return true
	}

	return false
}

// validateWebURL checks an absolute http(s) URL, allowing plain http only
// for localhost.
func validateWebURL(name, raw string) error {
	parsedURL, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}

	if !parsedURL.IsAbs() {
		return fmt.Errorf("%s must be an absolute URL", name)
	}

	if parsedURL.Scheme != "https" && parsedURL.Scheme != "http" {
		return fmt.Errorf("%s must use http or https scheme", name)
	}

	if parsedURL.Scheme == "http" && !isLocalhost(parsedURL.Host) {
		return fmt.Errorf("%s must use https scheme for non-localhost hosts", name)
	}

	return nil
}

// validateServer validates the server-related fields.
func validateServer(cfg *ServerConfig) error {
	if cfg.Addr == "" {
		return fmt.Errorf("SERVER_ADDR is required")
	}

	if cfg.BaseURL == "" {
		return fmt.Errorf("SERVER_BASE_URL is required")
	}

	if err := validateWebURL("SERVER_BASE_URL", cfg.BaseURL); err != nil {
		return err
	}

	if cfg.ReadTimeout <= 0 {
		return fmt.Errorf("SERVER_READ_TIMEOUT must be positive")
	}

	if cfg.WriteTimeout <= 0 {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT must be positive")
	}

	// 0 is allowed, meaning no idle timeout
	if cfg.IdleTimeout < 0 {
		return fmt.Errorf("SERVER_IDLE_TIMEOUT must be non-negative")
	}

	for i, origin := range cfg.CORSOrigins {
		if origin == "*" {
			continue
		}
		if _, err := url.Parse(origin); err != nil {
			return fmt.Errorf("invalid SERVER_CORS_ORIGINS[%d]: %w", i, err)
		}
	}

	return nil
}

// validateIntrospection validates the endpoint settings.
func validateIntrospection(cfg *IntrospectionConfig) error {
	if cfg.Endpoint == "" && cfg.Issuer == "" {
		return fmt.Errorf("INTROSPECTION_ENDPOINT or OAUTH_ISSUER is required")
	}

	if cfg.Endpoint != "" {
		if strings.HasPrefix(cfg.Endpoint, "file://") {
			if len(cfg.Endpoint) == len("file://") {
				return fmt.Errorf("INTROSPECTION_ENDPOINT file URL needs a directory")
			}
		} else if err := validateWebURL("INTROSPECTION_ENDPOINT", cfg.Endpoint); err != nil {
			return err
		}
	}

	if cfg.Issuer != "" {
		if err := validateWebURL("OAUTH_ISSUER", cfg.Issuer); err != nil {
			return err
		}
	}

	if cfg.Method != "POST" && cfg.Method != "GET" {
		return fmt.Errorf("INTROSPECTION_METHOD must be POST or GET, got %q", cfg.Method)
	}

	if cfg.Timeout <= 0 {
		return fmt.Errorf("INTROSPECTION_TIMEOUT must be positive")
	}

	return nil
}

// validateClientAuth validates the fields each authentication method needs.
func validateClientAuth(cfg *ClientAuthConfig) error {
	switch cfg.Method {
	case "none":
		return nil
	case "client_secret_basic":
		if cfg.ClientID == "" || cfg.ClientSecret == "" {
			return fmt.Errorf("INTROSPECTION_CLIENT_ID and INTROSPECTION_CLIENT_SECRET are required for client_secret_basic")
		}
	case "private_key_jwt":
		if cfg.ClientID == "" {
			return fmt.Errorf("INTROSPECTION_CLIENT_ID is required for private_key_jwt")
		}
		if cfg.PrivateKeyFile == "" {
			return fmt.Errorf("INTROSPECTION_PRIVATE_KEY_FILE is required for private_key_jwt")
		}
	case "client_credentials":
		if cfg.ClientID == "" || cfg.ClientSecret == "" {
			return fmt.Errorf("INTROSPECTION_CLIENT_ID and INTROSPECTION_CLIENT_SECRET are required for client_credentials")
		}
		if cfg.TokenURL == "" {
			return fmt.Errorf("INTROSPECTION_TOKEN_URL is required for client_credentials")
		}
		if err := validateWebURL("INTROSPECTION_TOKEN_URL", cfg.TokenURL); err != nil {
			return err
		}
	default:
		return fmt.Errorf("INTROSPECTION_AUTH_METHOD %q is not supported", cfg.Method)
	}
	return nil
}

// validateGuard validates the challenge and authorization settings.
func validateGuard(cfg *GuardConfig) error {
	if cfg.Realm == "" {
		return fmt.Errorf("OAUTH_REALM is required")
	}
	if strings.ContainsAny(cfg.Realm, "\r\n") {
		return fmt.Errorf("OAUTH_REALM must not contain line breaks")
	}

	for i, scope := range cfg.RequiredScopes {
		if strings.ContainsAny(scope, " \t") {
			return fmt.Errorf("OAUTH_REQUIRED_SCOPES[%d] must not contain whitespace", i)
		}
	}

	if cfg.EntitlementClaim == "" {
		return fmt.Errorf("OAUTH_ENTITLEMENT_CLAIM is required")
	}

	return nil
}
