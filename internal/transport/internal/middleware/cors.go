package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/jamesprial/rs-introspect/internal/transport/transportcore"
	"github.com/jamesprial/rs-introspect/pkg/oauth"
)

// NewCORSMiddleware allows browser clients from origins to call protected
// routes. WWW-Authenticate is exposed so scripts can read challenges.
// An empty origins list returns a pass-through middleware.
func NewCORSMiddleware(origins []string) transportcore.Middleware {
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			oauth.HeaderAuthorization,
			oauth.HeaderXAuthorization,
			oauth.HeaderContentType,
			oauth.HeaderRequestID,
		},
		ExposedHeaders: []string{oauth.HeaderWWWAuthenticate, oauth.HeaderRequestID},
		MaxAge:         300,
	})
}
