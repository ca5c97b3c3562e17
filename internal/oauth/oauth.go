// Package oauth verifies bearer tokens presented to this resource server by
// asking the authorization server's RFC 7662 introspection endpoint, and
// serves RFC 9728 protected resource metadata.
package oauth

import (
	"context"
)

// Verifier authorizes one request's bearer token.
// Implementations are safe for concurrent use and keep no state between calls.
type Verifier interface {
	// Verify extracts the token from header (the Authorization header value)
	// or query (the access_token parameter), checks its syntax, introspects
	// it and validates the response. An empty string means the source is
	// absent.
	//
	// Every failure is an *errors.VerificationError from internal/errors.
	// An inactive or expired token is always rejected with invalid_token.
	Verify(ctx context.Context, header, query string) (*Claims, error)
}

// MetadataService provides Protected Resource Metadata per RFC 9728.
// This metadata helps clients discover the authorization servers and
// supported scopes for this protected resource.
type MetadataService interface {
	// GetMetadata returns the protected resource metadata document.
	GetMetadata(ctx context.Context) (*ProtectedResourceMetadata, error)

	// GetMetadataURL returns the canonical URL where this metadata is served.
	// Typically: {baseURL}/.well-known/oauth-protected-resource
	GetMetadataURL() string
}

// ProtectedResourceMetadata represents the OAuth 2.0 Protected Resource
// Metadata as defined in RFC 9728.
type ProtectedResourceMetadata struct {
	// Resource is the canonical URI for this protected resource.
	Resource string `json:"resource"`

	// AuthorizationServers lists issuers whose tokens this resource accepts.
	AuthorizationServers []string `json:"authorization_servers,omitempty"`

	// ScopesSupported is an optional array of OAuth scope values supported
	// by this protected resource.
	ScopesSupported []string `json:"scopes_supported,omitempty"`

	// BearerMethodsSupported lists how tokens may be presented. This
	// resource accepts the Authorization header and the access_token
	// query parameter.
	BearerMethodsSupported []string `json:"bearer_methods_supported,omitempty"`
}
