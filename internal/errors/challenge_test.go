package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestMapToHTTP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		realm      string
		wantStatus int
		wantHeader string
		wantBody   Body
	}{
		{
			name:       "no_token has realm only",
			err:        New("Extract", KindNoToken, "missing token", nil),
			realm:      "My API",
			wantStatus: http.StatusUnauthorized,
			wantHeader: `Bearer realm="My API"`,
			wantBody:   Body{Error: "no_token", ErrorDescription: "missing token"},
		},
		{
			name:       "invalid_request",
			err:        New("Extract", KindInvalidRequest, "more than one method for including an access token used", nil),
			realm:      "My API",
			wantStatus: http.StatusBadRequest,
			wantHeader: `Bearer realm="My API",error="invalid_request",error_description="more than one method for including an access token used"`,
			wantBody:   Body{Error: "invalid_request", ErrorDescription: "more than one method for including an access token used"},
		},
		{
			name:       "invalid_token",
			err:        New("Verify", KindInvalidToken, "the access token expired", nil),
			wantStatus: http.StatusUnauthorized,
			wantHeader: `Bearer realm="Resource Server",error="invalid_token",error_description="the access token expired"`,
			wantBody:   Body{Error: "invalid_token", ErrorDescription: "the access token expired"},
		},
		{
			name:       "insufficient_scope",
			err:        New("RequireScope", KindInsufficientScope, "no permission for this call with granted scope", nil),
			wantStatus: http.StatusForbidden,
			wantHeader: `Bearer realm="Resource Server",error="insufficient_scope",error_description="no permission for this call with granted scope"`,
			wantBody:   Body{Error: "insufficient_scope", ErrorDescription: "no permission for this call with granted scope"},
		},
		{
			name:       "insufficient_entitlement",
			err:        New("RequireEntitlement", KindInsufficientEntitlement, "no permission for this call with granted entitlement", nil),
			wantStatus: http.StatusForbidden,
			wantHeader: `Bearer realm="Resource Server",error="insufficient_entitlement",error_description="no permission for this call with granted entitlement"`,
			wantBody:   Body{Error: "insufficient_entitlement", ErrorDescription: "no permission for this call with granted entitlement"},
		},
		{
			name:       "internal_server_error omits header",
			err:        New("Introspect", KindInternalServerError, "unable to contact introspection endpoint", errors.New("refused")),
			wantStatus: http.StatusInternalServerError,
			wantHeader: "",
			wantBody:   Body{Error: "internal_server_error", ErrorDescription: "unable to contact introspection endpoint"},
		},
		{
			name:       "unrecognized kind falls back to 400",
			err:        New("op", Kind("temporarily_unavailable"), "try later", nil),
			wantStatus: http.StatusBadRequest,
			wantHeader: `Bearer realm="Resource Server",error="temporarily_unavailable",error_description="try later"`,
			wantBody:   Body{Error: "temporarily_unavailable", ErrorDescription: "try later"},
		},
		{
			name:       "foreign error is internal",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantHeader: "",
			wantBody:   Body{Error: "internal_server_error", ErrorDescription: "internal server error"},
		},
		{
			name:       "quotes are escaped",
			err:        New("op", KindInvalidToken, `bad "token"`, nil),
			realm:      `a\b`,
			wantStatus: http.StatusUnauthorized,
			wantHeader: `Bearer realm="a\\b",error="invalid_token",error_description="bad \"token\""`,
			wantBody:   Body{Error: "invalid_token", ErrorDescription: `bad "token"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := MapToHTTP(tt.err, tt.realm)

			if got.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", got.Status, tt.wantStatus)
			}
			if got.WWWAuthenticate != tt.wantHeader {
				t.Errorf("WWWAuthenticate = %q, want %q", got.WWWAuthenticate, tt.wantHeader)
			}
			if got.HasHeader() != (tt.wantHeader != "") {
				t.Errorf("HasHeader() = %v, want %v", got.HasHeader(), tt.wantHeader != "")
			}
			if got.Body != tt.wantBody {
				t.Errorf("Body = %+v, want %+v", got.Body, tt.wantBody)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := map[Kind]int{
		KindNoToken:                 http.StatusUnauthorized,
		KindInvalidRequest:          http.StatusBadRequest,
		KindInvalidToken:            http.StatusUnauthorized,
		KindInsufficientScope:       http.StatusForbidden,
		KindInsufficientEntitlement: http.StatusForbidden,
		KindInternalServerError:     http.StatusInternalServerError,
		Kind("whatever"):            http.StatusBadRequest,
	}

	for kind, want := range tests {
		if got := StatusFor(kind); got != want {
			t.Errorf("StatusFor(%q) = %d, want %d", kind, got, want)
		}
	}
}
