package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	ierrors "github.com/jamesprial/rs-introspect/internal/errors"
	"github.com/jamesprial/rs-introspect/internal/transport/transportcore"
	"github.com/jamesprial/rs-introspect/pkg/oauth"
)

// errorResponder implements transportcore.ErrorResponder.
type errorResponder struct {
	realm  string
	logger *slog.Logger
}

// NewErrorResponder creates a responder whose challenges name realm.
// An empty realm uses the default protection space. If logger is nil,
// it uses the default slog logger.
func NewErrorResponder(realm string, logger *slog.Logger) transportcore.ErrorResponder {
	if logger == nil {
		logger = slog.Default()
	}
	return &errorResponder{
		realm:  realm,
		logger: logger,
	}
}

// Challenge writes the RFC 6750 response for err.
//
// Format: WWW-Authenticate: Bearer realm="<realm>",error="<code>",error_description="<desc>"
func (e *errorResponder) Challenge(w http.ResponseWriter, r *http.Request, err error) {
	c := ierrors.MapToHTTP(err, e.realm)

	attrs := []any{
		"status", c.Status,
		"error", c.Body.Error,
		"request_id", transportcore.RequestIDFromContext(r.Context()),
	}
	if c.Status >= http.StatusInternalServerError {
		e.logger.Error("request failed", append(attrs, "cause", err)...)
	} else {
		e.logger.Warn("request rejected", append(attrs, "description", c.Body.ErrorDescription)...)
	}

	if c.HasHeader() {
		w.Header().Set(oauth.HeaderWWWAuthenticate, c.WWWAuthenticate)
	}
	w.Header().Set(oauth.HeaderContentType, oauth.ContentTypeJSON)
	w.WriteHeader(c.Status)

	if encodeErr := json.NewEncoder(w).Encode(c.Body); encodeErr != nil {
		e.logger.Error("failed to encode error response", "error", encodeErr)
	}
}

// InternalError sends a 500 Internal Server Error response.
// The cause is logged, never sent to the client.
func (e *errorResponder) InternalError(w http.ResponseWriter, r *http.Request, err error) {
	e.Challenge(w, r, ierrors.New("InternalError", ierrors.KindInternalServerError, "internal server error", err))
}
