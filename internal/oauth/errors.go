package oauth

import (
	"errors"
)

// Sentinel errors for setting up OAuth services. Per-request verification
// failures use the taxonomy in internal/errors instead.
var (
	// ErrNoIntrospectionEndpoint indicates neither an endpoint nor an issuer was configured.
	ErrNoIntrospectionEndpoint = errors.New("no introspection endpoint configured")

	// ErrDiscoveryFailed indicates the issuer's discovery document could not be used.
	ErrDiscoveryFailed = errors.New("introspection endpoint discovery failed")

	// ErrUnsupportedClientAuth indicates an unknown introspection client authentication method.
	ErrUnsupportedClientAuth = errors.New("unsupported introspection client authentication method")
)
