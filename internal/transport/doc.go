// Package transport provides the HTTP boundary of the resource server guard.
//
// # Architecture
//
// The transport package connects bearer token verification (internal/oauth)
// with HTTP handlers. Middleware runs the verifier, and failures become
// RFC 6750 challenges written by the ErrorResponder.
//
// Package structure:
//
//	internal/transport/
//	├── transport.go              # Public interfaces
//	├── errors.go                 # Transport domain errors
//	├── context.go                # Context keys and helpers
//	├── wire.go                   # Factory functions
//	├── internal/
//	│   ├── http/
//	│   │   ├── server.go         # HTTP server with graceful shutdown
//	│   │   ├── router.go         # chi routing
//	│   │   └── response.go       # Challenge writer
//	│   ├── middleware/
//	│   │   ├── auth.go           # Token verification and requirements
//	│   │   ├── cors.go           # CORS exposing WWW-Authenticate
//	│   │   ├── logging.go        # Request logging
//	│   │   ├── recovery.go       # Panic recovery
//	│   │   └── requestid.go      # X-Request-ID
//	│   └── handlers/
//	│       ├── metadata.go       # /.well-known/oauth-protected-resource
//	│       ├── whoami.go         # Echo of the caller's claims
//	│       └── health.go         # Health check endpoint
//
// # Middleware Chain
//
//  1. Recovery - catches panics and returns 500 errors
//  2. Request id - assigns X-Request-ID
//  3. Logging - logs request details, never tokens
//  4. CORS - only when origins are configured
//  5. Authentication - verifies the bearer token (protected routes only)
//  6. Scope and entitlement checks (if configured)
//
// # Error Handling
//
// Missing token:
//
//	HTTP/1.1 401 Unauthorized
//	WWW-Authenticate: Bearer realm="Resource Server"
//	Content-Type: application/json
//
//	{"error":"no_token","error_description":"missing token"}
//
// Insufficient scope:
//
//	HTTP/1.1 403 Forbidden
//	WWW-Authenticate: Bearer realm="Resource Server",error="insufficient_scope",error_description="no permission for this call with granted scope"
//	Content-Type: application/json
//
//	{"error":"insufficient_scope","error_description":"no permission for this call with granted scope"}
//
// Internal errors are answered with 500 and no WWW-Authenticate header.
//
// # Usage Example
//
//	server, router, auth, err := transport.NewTransportServices(&transport.Config{
//		ServerConfig:    cfg,
//		Verifier:        verifier,
//		MetadataService: metadataService,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	router.Handle("/api/*", transport.Guard(auth, cfg.Guard)(apiHandler))
//
//	if err := server.Start(); err != nil {
//		log.Fatal(err)
//	}
//
// # Context Values
//
//	claims, ok := transport.ClaimsFromContext(r.Context())
//	if !ok {
//		// Not authenticated
//	}
//	sub, _ := claims.Subject()
package transport
