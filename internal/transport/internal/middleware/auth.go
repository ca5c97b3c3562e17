// Package middleware provides HTTP middleware for the transport layer.
package middleware

import (
	"net/http"

	"github.com/jamesprial/rs-introspect/internal/oauth"
	"github.com/jamesprial/rs-introspect/internal/oauth/oautherr"
	"github.com/jamesprial/rs-introspect/internal/transport/transportcore"
)

// authMiddleware implements transportcore.AuthMiddleware.
type authMiddleware struct {
	verifier  oauth.Verifier
	responder transportcore.ErrorResponder
}

// NewAuthMiddleware creates bearer token authentication middleware.
// It verifies tokens with the provided Verifier and stores the claims in
// the request context.
func NewAuthMiddleware(verifier oauth.Verifier, responder transportcore.ErrorResponder) transportcore.AuthMiddleware {
	if verifier == nil {
		panic("verifier cannot be nil")
	}
	if responder == nil {
		panic("responder cannot be nil")
	}

	return &authMiddleware{
		verifier:  verifier,
		responder: responder,
	}
}

// Authenticate verifies the access token and adds claims to context.
// Any verification failure is written as a challenge and the chain stops.
func (m *authMiddleware) Authenticate() transportcore.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header, query := oauth.SourcesFromRequest(r)

			claims, err := m.verifier.Verify(r.Context(), header, query)
			if err != nil {
				m.responder.Challenge(w, r, err)
				return
			}

			ctx := transportcore.ContextWithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireScopes checks that the token has all required scopes.
// This middleware must be used after Authenticate() in the chain.
func (m *authMiddleware) RequireScopes(scopes ...string) transportcore.Middleware {
	return m.require(func(c *oauth.Claims) error {
		return c.RequireAllScopes(scopes...)
	})
}

// RequireAnyScope checks that the token has at least one of the scopes.
func (m *authMiddleware) RequireAnyScope(scopes ...string) transportcore.Middleware {
	return m.require(func(c *oauth.Claims) error {
		return c.RequireAnyScope(scopes...)
	})
}

// RequireEntitlements checks that the token carries every entitlement.
func (m *authMiddleware) RequireEntitlements(entitlements ...string) transportcore.Middleware {
	return m.require(func(c *oauth.Claims) error {
		for _, e := range entitlements {
			if err := c.RequireEntitlement(e); err != nil {
				return err
			}
		}
		return nil
	})
}

// require runs check against the claims in context. Missing claims mean
// Authenticate did not run, which is answered as an unauthenticated request.
func (m *authMiddleware) require(check func(*oauth.Claims) error) transportcore.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := transportcore.ClaimsFromContext(r.Context())
			if !ok {
				m.responder.Challenge(w, r, oautherr.NewNoTokenError("RequireScopes"))
				return
			}

			if err := check(claims); err != nil {
				m.responder.Challenge(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
