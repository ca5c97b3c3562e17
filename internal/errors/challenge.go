package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// DefaultRealm is the protection space used when none is configured.
const DefaultRealm = "Resource Server"

// Body is the JSON error document returned alongside a challenge.
type Body struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Challenge is the HTTP rendering of a verification failure.
type Challenge struct {
	// Status is the HTTP status code.
	Status int

	// WWWAuthenticate is the header value, empty when the header must be omitted.
	WWWAuthenticate string

	// Body is the JSON response body.
	Body Body
}

// HasHeader reports whether a WWW-Authenticate header must be sent.
func (c Challenge) HasHeader() bool {
	return c.WWWAuthenticate != ""
}

// StatusFor returns the HTTP status code for kind per RFC 6750 Section 3.1.
// Unrecognized kinds map to 400.
func StatusFor(kind Kind) int {
	switch kind {
	case KindNoToken, KindInvalidToken:
		return http.StatusUnauthorized
	case KindInsufficientScope, KindInsufficientEntitlement:
		return http.StatusForbidden
	case KindInternalServerError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// MapToHTTP translates err into status, WWW-Authenticate value and JSON body.
// Errors outside the taxonomy are treated as internal_server_error. An empty
// realm falls back to DefaultRealm.
//
// Example output for an expired token:
//
//	401
//	Bearer realm="Resource Server",error="invalid_token",error_description="the access token expired"
//	{"error":"invalid_token","error_description":"the access token expired"}
func MapToHTTP(err error, realm string) Challenge {
	if realm == "" {
		realm = DefaultRealm
	}

	ve := Normalize("MapToHTTP", err)
	if ve == nil {
		ve = New("MapToHTTP", KindInternalServerError, "internal server error", nil)
	}

	c := Challenge{
		Status: StatusFor(ve.Kind),
		Body: Body{
			Error:            string(ve.Kind),
			ErrorDescription: ve.Description,
		},
	}

	switch ve.Kind {
	case KindInternalServerError:
		// no header
	case KindNoToken:
		// The client did not know authentication was required.
		c.WWWAuthenticate = fmt.Sprintf(`Bearer realm="%s"`, quote(realm))
	default:
		c.WWWAuthenticate = fmt.Sprintf(`Bearer realm="%s",error="%s",error_description="%s"`,
			quote(realm), quote(string(ve.Kind)), quote(ve.Description))
	}

	return c
}

// quote escapes backslashes and double quotes for use inside a quoted-string.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
