// Package transport provides the HTTP boundary of the resource server guard.
// It ties token verification to protected handlers through middleware and
// serves RFC 9728 Protected Resource Metadata.
package transport

import (
	"github.com/jamesprial/rs-introspect/internal/transport/transportcore"
)

// Re-export types from transportcore.
// This allows external packages to import transport without creating cycles.

// Middleware is a function that wraps an http.Handler.
type Middleware = transportcore.Middleware

// Server manages the HTTP server lifecycle.
type Server = transportcore.Server

// Router handles HTTP request routing and middleware composition.
type Router = transportcore.Router

// AuthMiddleware guards routes with bearer token verification.
type AuthMiddleware = transportcore.AuthMiddleware

// ErrorResponder writes RFC 6750 challenges and internal errors.
type ErrorResponder = transportcore.ErrorResponder
