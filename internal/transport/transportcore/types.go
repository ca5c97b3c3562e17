// Package transportcore provides core types, interfaces, and primitives for the transport layer.
// This package exists to break import cycles between the transport package and its internal subpackages.
package transportcore

import (
	"context"
	"net/http"
)

// Middleware is a function that wraps an http.Handler.
// It can modify the request, response, or perform additional logic
// before or after calling the next handler in the chain.
type Middleware func(http.Handler) http.Handler

// Server manages the HTTP server lifecycle.
// Implementations must support graceful shutdown and provide
// access to the bound address after startup.
type Server interface {
	// Start begins serving HTTP requests on the configured address.
	// This is a blocking call that returns when the server stops
	// or encounters an error during startup. A server cannot be
	// restarted; Start after Shutdown returns ErrServerClosed.
	Start() error

	// Shutdown gracefully shuts down the server without interrupting
	// active connections. It waits for active connections to close
	// or the context to be cancelled/expired.
	Shutdown(ctx context.Context) error

	// Addr returns the address the server is listening on.
	// This is useful when the server is configured to bind to a random port.
	Addr() string
}

// Router handles HTTP request routing and middleware composition.
// It extends http.Handler with pattern-based routing and middleware support.
type Router interface {
	http.Handler

	// Handle registers a handler for the given pattern. A pattern may be
	// prefixed with a method ("GET /health"); without one, every method
	// reaches the handler.
	Handle(pattern string, handler http.Handler)

	// HandleFunc registers a handler function for the given pattern.
	HandleFunc(pattern string, handler http.HandlerFunc)

	// Use applies middleware to all subsequent route registrations.
	// Middleware is applied in the order registered.
	Use(middlewares ...Middleware)
}

// AuthMiddleware guards routes with bearer token verification.
// Failures are written as RFC 6750 challenges and stop the chain.
type AuthMiddleware interface {
	// Authenticate verifies the request's access token, taken from the
	// Authorization header or the access_token query parameter, and stores
	// the resulting claims in the request context.
	Authenticate() Middleware

	// RequireScopes demands every listed scope. It must run after
	// Authenticate; missing claims are answered as an unauthenticated request.
	RequireScopes(scopes ...string) Middleware

	// RequireAnyScope demands at least one of the listed scopes.
	RequireAnyScope(scopes ...string) Middleware

	// RequireEntitlements demands every listed entitlement.
	RequireEntitlements(entitlements ...string) Middleware
}

// ErrorResponder writes error responses.
type ErrorResponder interface {
	// Challenge maps err onto the RFC 6750 status, WWW-Authenticate header
	// and JSON body. Errors outside the verification taxonomy become 500.
	Challenge(w http.ResponseWriter, r *http.Request, err error)

	// InternalError sends a 500 Internal Server Error response without
	// exposing err to the client.
	InternalError(w http.ResponseWriter, r *http.Request, err error)
}
