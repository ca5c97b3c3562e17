package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/jamesprial/rs-introspect/internal/transport/transportcore"
	"github.com/jamesprial/rs-introspect/pkg/oauth"
)

// maxRequestIDLen bounds ids accepted from callers.
const maxRequestIDLen = 128

// NewRequestIDMiddleware assigns every request an id, stored in the
// context and echoed in the X-Request-ID response header. A caller's id
// is kept when it is printable and short; otherwise a UUID is generated.
func NewRequestIDMiddleware() transportcore.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(oauth.HeaderRequestID)
			if !validRequestID(id) {
				id = uuid.NewString()
			}

			w.Header().Set(oauth.HeaderRequestID, id)
			ctx := transportcore.ContextWithRequestID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
