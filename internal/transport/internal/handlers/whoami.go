package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jamesprial/rs-introspect/internal/oauth/oautherr"
	"github.com/jamesprial/rs-introspect/internal/transport/transportcore"
	pkgoauth "github.com/jamesprial/rs-introspect/pkg/oauth"
)

type whoAmIHandler struct {
	responder transportcore.ErrorResponder
	logger    *slog.Logger
}

// NewWhoAmIHandler creates a handler that echoes the verified claims of
// the caller. It must sit behind the Authenticate middleware.
func NewWhoAmIHandler(responder transportcore.ErrorResponder, logger *slog.Logger) http.Handler {
	if responder == nil {
		panic("responder cannot be nil")
	}
	return &whoAmIHandler{responder: responder, logger: orDefault(logger)}
}

func (h *whoAmIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	claims, ok := transportcore.ClaimsFromContext(r.Context())
	if !ok {
		h.responder.Challenge(w, r, oautherr.NewNoTokenError("WhoAmI"))
		return
	}

	w.Header().Set(pkgoauth.HeaderContentType, pkgoauth.ContentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(claims); err != nil {
		h.logger.Error("failed to encode claims",
			"request_id", transportcore.RequestIDFromContext(r.Context()),
			"error", err,
		)
	}
}
