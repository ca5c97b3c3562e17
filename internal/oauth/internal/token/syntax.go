// Package token extracts bearer tokens from request sources and validates
// their syntax against the RFC 6750 b64token grammar.
package token

import (
	"regexp"

	"github.com/jamesprial/rs-introspect/internal/oauth/oautherr"
)

// BearerToken is a token string known to match the b64token grammar.
// Only Validate produces values of this type.
type BearerToken string

// String returns the raw token.
func (t BearerToken) String() string {
	return string(t)
}

// b64token = 1*( ALPHA / DIGIT / "-" / "." / "_" / "~" / "+" / "/" ) *"="
var b64token = regexp.MustCompile(`^[A-Za-z0-9\-._~+/]+=*$`)

// Validate checks candidate against the b64token grammar.
func Validate(candidate string) (BearerToken, error) {
	if !b64token.MatchString(candidate) {
		return "", oautherr.NewInvalidTokenError("Validate", oautherr.DescNotB64Token, nil)
	}
	return BearerToken(candidate), nil
}
