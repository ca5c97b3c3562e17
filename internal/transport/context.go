package transport

import (
	"context"

	"github.com/jamesprial/rs-introspect/internal/oauth"
	"github.com/jamesprial/rs-introspect/internal/transport/transportcore"
)

// ClaimsContextKey is the context key for verified token claims.
const ClaimsContextKey = transportcore.ClaimsContextKey

// ClaimsFromContext extracts verified claims from the request context.
// Returns nil and false if the claims are not present in the context.
//
// This is used by handlers that need to access the caller's token data.
func ClaimsFromContext(ctx context.Context) (*oauth.Claims, bool) {
	return transportcore.ClaimsFromContext(ctx)
}

// ContextWithClaims adds verified claims to the request context.
func ContextWithClaims(ctx context.Context, claims *oauth.Claims) context.Context {
	return transportcore.ContextWithClaims(ctx, claims)
}

// RequestIDFromContext returns the id assigned by the request id middleware.
func RequestIDFromContext(ctx context.Context) string {
	return transportcore.RequestIDFromContext(ctx)
}
