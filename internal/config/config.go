// Package config provides configuration management for the introspecting
// resource server. Configuration comes from an optional YAML file, overlaid
// by environment variables, with sensible defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"
)

// Defaults applied to unset fields.
const (
	DefaultAddr                 = ":8080"
	DefaultReadTimeout          = 30 * time.Second
	DefaultWriteTimeout         = 30 * time.Second
	DefaultIdleTimeout          = 120 * time.Second
	DefaultIntrospectionMethod  = "POST"
	DefaultIntrospectionTimeout = 10 * time.Second
	DefaultAuthMethod           = "none"
	DefaultRealm                = "Resource Server"
	DefaultEntitlementClaim     = "x-entitlement"
)

// Config holds the complete server configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Introspection IntrospectionConfig `yaml:"introspection"`
	Guard         GuardConfig         `yaml:"guard"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	// Addr is the address to bind the HTTP server (e.g., ":8080").
	Addr string `yaml:"addr" env:"SERVER_ADDR"`

	// BaseURL is the canonical URL of this protected resource. It is the
	// resource identifier advertised in metadata.
	BaseURL string `yaml:"base_url" env:"SERVER_BASE_URL"`

	ReadTimeout  time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT"`

	// CORSOrigins enables CORS for these origins. Empty disables CORS.
	CORSOrigins StringList `yaml:"cors_origins" env:"SERVER_CORS_ORIGINS"`
}

// IntrospectionConfig describes the RFC 7662 endpoint and how this server
// authenticates to it.
type IntrospectionConfig struct {
	// Endpoint is the introspection URL. https, http://localhost and
	// file:// fixture directories are accepted.
	Endpoint string `yaml:"endpoint" env:"INTROSPECTION_ENDPOINT"`

	// Issuer is used for OIDC discovery when Endpoint is empty.
	Issuer string `yaml:"issuer" env:"OAUTH_ISSUER"`

	DisableCertCheck bool          `yaml:"disable_cert_check" env:"INTROSPECTION_DISABLE_CERT_CHECK"`
	Method           string        `yaml:"method" env:"INTROSPECTION_METHOD"`
	Timeout          time.Duration `yaml:"timeout" env:"INTROSPECTION_TIMEOUT"`

	Auth ClientAuthConfig `yaml:"auth"`
}

// ClientAuthConfig holds resource server credentials.
type ClientAuthConfig struct {
	Method         string     `yaml:"method" env:"INTROSPECTION_AUTH_METHOD"`
	ClientID       string     `yaml:"client_id" env:"INTROSPECTION_CLIENT_ID"`
	ClientSecret   string     `yaml:"client_secret" env:"INTROSPECTION_CLIENT_SECRET"`
	PrivateKeyFile string     `yaml:"private_key_file" env:"INTROSPECTION_PRIVATE_KEY_FILE"`
	KeyID          string     `yaml:"key_id" env:"INTROSPECTION_KEY_ID"`
	TokenURL       string     `yaml:"token_url" env:"INTROSPECTION_TOKEN_URL"`
	TokenScopes    StringList `yaml:"token_scopes" env:"INTROSPECTION_TOKEN_SCOPES"`
}

// GuardConfig holds what protected routes demand of a token.
type GuardConfig struct {
	Realm                string     `yaml:"realm" env:"OAUTH_REALM"`
	ScopesSupported      StringList `yaml:"scopes_supported" env:"OAUTH_SCOPES_SUPPORTED"`
	RequiredScopes       StringList `yaml:"required_scopes" env:"OAUTH_REQUIRED_SCOPES"`
	RequiredEntitlements StringList `yaml:"required_entitlements" env:"OAUTH_REQUIRED_ENTITLEMENTS"`
	EntitlementClaim     string     `yaml:"entitlement_claim" env:"OAUTH_ENTITLEMENT_CLAIM"`
}

// StringList is a list read from YAML as a sequence and from the
// environment as a comma-separated value.
type StringList []string

// Decode implements envdecode.Decoder.
func (l *StringList) Decode(value string) error {
	*l = parseCommaSeparated(value)
	return nil
}

// Load reads the YAML file at path (skipped when path is empty), overlays
// environment variables, applies defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadIntrospection is Load for callers that only verify tokens and never
// serve HTTP. The server section is not validated.
func LoadIntrospection(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}

	if err := ValidateIntrospection(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func read(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := decodeYAML(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// decodeYAML rejects unknown keys so typos do not silently fall back to defaults.
func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyDefaults() {
	setDefault(&c.Server.Addr, DefaultAddr)
	setDefaultDuration(&c.Server.ReadTimeout, DefaultReadTimeout)
	setDefaultDuration(&c.Server.WriteTimeout, DefaultWriteTimeout)
	setDefaultDuration(&c.Server.IdleTimeout, DefaultIdleTimeout)

	c.Introspection.Method = strings.ToUpper(c.Introspection.Method)
	setDefault(&c.Introspection.Method, DefaultIntrospectionMethod)
	setDefaultDuration(&c.Introspection.Timeout, DefaultIntrospectionTimeout)
	setDefault(&c.Introspection.Auth.Method, DefaultAuthMethod)

	setDefault(&c.Guard.Realm, DefaultRealm)
	setDefault(&c.Guard.EntitlementClaim, DefaultEntitlementClaim)
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func setDefaultDuration(field *time.Duration, value time.Duration) {
	if *field == 0 {
		*field = value
	}
}

// parseCommaSeparated splits a comma-separated value into a string slice.
// Empty values are filtered out. Returns nil if nothing remains.
func parseCommaSeparated(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

// String returns a string representation of the configuration (for debugging).
// Sensitive values are redacted.
func (c *Config) String() string {
	secret := ""
	if c.Introspection.Auth.ClientSecret != "" {
		secret = "[REDACTED]"
	}
	return fmt.Sprintf("Config{Addr: %s, BaseURL: %s, ReadTimeout: %v, WriteTimeout: %v, IdleTimeout: %v, CORSOrigins: %v, "+
		"IntrospectionEndpoint: %s, Issuer: %s, Method: %s, Timeout: %v, DisableCertCheck: %t, "+
		"AuthMethod: %s, ClientID: %s, ClientSecret: %s, Realm: %s, RequiredScopes: %v, RequiredEntitlements: %v, EntitlementClaim: %s}",
		c.Server.Addr, c.Server.BaseURL, c.Server.ReadTimeout, c.Server.WriteTimeout, c.Server.IdleTimeout, []string(c.Server.CORSOrigins),
		c.Introspection.Endpoint, c.Introspection.Issuer, c.Introspection.Method, c.Introspection.Timeout, c.Introspection.DisableCertCheck,
		c.Introspection.Auth.Method, c.Introspection.Auth.ClientID, secret,
		c.Guard.Realm, []string(c.Guard.RequiredScopes), []string(c.Guard.RequiredEntitlements), c.Guard.EntitlementClaim)
}
