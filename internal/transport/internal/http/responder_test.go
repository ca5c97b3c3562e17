package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	ierrors "github.com/jamesprial/rs-introspect/internal/errors"
	"github.com/jamesprial/rs-introspect/internal/oauth/oautherr"
	"github.com/jamesprial/rs-introspect/internal/transport/transportcore"
)

// newTestResponder creates a responder for testing.
// Uses the actual NewErrorResponder constructor.
func newTestResponder(realm string) transportcore.ErrorResponder {
	return NewErrorResponder(realm, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestResponder_Challenge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		realm      string
		err        error
		wantStatus int
		wantHeader string
		wantBody   ierrors.Body
	}{
		{
			name:       "no token",
			realm:      "Resource Server",
			err:        oautherr.NewNoTokenError("test"),
			wantStatus: http.StatusUnauthorized,
			wantHeader: `Bearer realm="Resource Server"`,
			wantBody:   ierrors.Body{Error: "no_token", ErrorDescription: "missing token"},
		},
		{
			name:       "invalid request",
			realm:      "Resource Server",
			err:        oautherr.NewInvalidRequestError("test", oautherr.DescMultipleMethods),
			wantStatus: http.StatusBadRequest,
			wantHeader: `Bearer realm="Resource Server",error="invalid_request",error_description="more than one method for including an access token used"`,
			wantBody:   ierrors.Body{Error: "invalid_request", ErrorDescription: oautherr.DescMultipleMethods},
		},
		{
			name:       "expired token",
			realm:      "Resource Server",
			err:        oautherr.NewInvalidTokenError("test", oautherr.DescAccessTokenExpired, nil),
			wantStatus: http.StatusUnauthorized,
			wantHeader: `Bearer realm="Resource Server",error="invalid_token",error_description="the access token expired"`,
			wantBody:   ierrors.Body{Error: "invalid_token", ErrorDescription: "the access token expired"},
		},
		{
			name:       "insufficient scope with custom realm",
			realm:      "My API",
			err:        oautherr.NewInsufficientScopeError("test"),
			wantStatus: http.StatusForbidden,
			wantHeader: `Bearer realm="My API",error="insufficient_scope",error_description="no permission for this call with granted scope"`,
			wantBody:   ierrors.Body{Error: "insufficient_scope", ErrorDescription: oautherr.DescInsufficientScope},
		},
		{
			name:       "insufficient entitlement",
			realm:      "Resource Server",
			err:        oautherr.NewInsufficientEntitlementError("test"),
			wantStatus: http.StatusForbidden,
			wantHeader: `Bearer realm="Resource Server",error="insufficient_entitlement",error_description="no permission for this call with granted entitlement"`,
			wantBody:   ierrors.Body{Error: "insufficient_entitlement", ErrorDescription: oautherr.DescInsufficientEntitled},
		},
		{
			name:       "internal error has no header",
			realm:      "Resource Server",
			err:        oautherr.NewInternalError("test", oautherr.DescContactEndpoint, errors.New("refused")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   ierrors.Body{Error: "internal_server_error", ErrorDescription: oautherr.DescContactEndpoint},
		},
		{
			name:       "empty realm uses default",
			realm:      "",
			err:        oautherr.NewNoTokenError("test"),
			wantStatus: http.StatusUnauthorized,
			wantHeader: `Bearer realm="Resource Server"`,
			wantBody:   ierrors.Body{Error: "no_token", ErrorDescription: "missing token"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/resource", nil)

			newTestResponder(tt.realm).Challenge(w, r, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("Status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("WWW-Authenticate"); got != tt.wantHeader {
				t.Errorf("WWW-Authenticate = %q, want %q", got, tt.wantHeader)
			}
			if _, present := w.Header()["Www-Authenticate"]; tt.wantHeader == "" && present {
				t.Error("WWW-Authenticate present, want absent")
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}

			var body ierrors.Body
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body != tt.wantBody {
				t.Errorf("body = %+v, want %+v", body, tt.wantBody)
			}
		})
	}
}

func TestResponder_InternalError(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/resource", nil)

	newTestResponder("Resource Server").InternalError(w, r, errors.New("database password is hunter2"))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", w.Code)
	}
	if w.Header().Get("WWW-Authenticate") != "" {
		t.Error("WWW-Authenticate set on internal error")
	}

	raw := w.Body.String()
	var body ierrors.Body
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error != "internal_server_error" || body.ErrorDescription != "internal server error" {
		t.Errorf("body = %+v", body)
	}
	if strings.Contains(raw, "hunter2") {
		t.Error("internal error cause leaked to the client")
	}
}

func TestResponder_ForeignErrorIsInternal(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/resource", nil)

	newTestResponder("Resource Server").Challenge(w, r, errors.New("unexpected"))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", w.Code)
	}
}

func TestResponder_EscapesQuotes(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/resource", nil)

	newTestResponder(`a "quoted" realm`).Challenge(w, r, oautherr.NewNoTokenError("test"))

	want := `Bearer realm="a \"quoted\" realm"`
	if got := w.Header().Get("WWW-Authenticate"); got != want {
		t.Errorf("WWW-Authenticate = %q, want %q", got, want)
	}
}
