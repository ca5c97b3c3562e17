package token

import (
	"strings"

	"github.com/jamesprial/rs-introspect/internal/oauth/oautherr"
	pkgoauth "github.com/jamesprial/rs-introspect/pkg/oauth"
)

// bearerPrefix is matched case-insensitively.
const bearerPrefix = pkgoauth.BearerToken + " "

// Extract selects the token candidate from an Authorization header value and
// an access_token query value. An empty string means the source is absent.
//
// Exactly one source may carry a token. A header that does not use the
// Bearer scheme is rejected as invalid_token rather than ignored.
func Extract(header, query string) (string, error) {
	switch {
	case header == "" && query == "":
		return "", oautherr.NewNoTokenError("Extract")
	case header != "" && query != "":
		return "", oautherr.NewInvalidRequestError("Extract", oautherr.DescMultipleMethods)
	case query != "":
		return query, nil
	}

	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", oautherr.NewInvalidTokenError("Extract", oautherr.DescNotBearer, nil)
	}
	return header[len(bearerPrefix):], nil
}

// ExtractAndValidate runs Extract followed by Validate.
func ExtractAndValidate(header, query string) (BearerToken, error) {
	candidate, err := Extract(header, query)
	if err != nil {
		return "", err
	}
	return Validate(candidate)
}
