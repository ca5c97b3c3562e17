package oauth

import (
	"net/http"
	"strings"

	pkgoauth "github.com/jamesprial/rs-introspect/pkg/oauth"
)

// AccessTokenParam is the RFC 6750 Section 2.3 query parameter.
const AccessTokenParam = pkgoauth.AccessTokenParam

// authorizationHeaders are checked in order; the first one present wins.
var authorizationHeaders = []string{pkgoauth.HeaderXAuthorization, pkgoauth.HeaderAuthorization}

// AuthorizationHeader returns the credentials header value from h. Names
// are matched case-insensitively, so non-canonical keys are found too.
func AuthorizationHeader(h http.Header) string {
	for _, name := range authorizationHeaders {
		if v := h.Get(name); v != "" {
			return v
		}
		for k, vs := range h {
			if strings.EqualFold(k, name) && len(vs) > 0 && vs[0] != "" {
				return vs[0]
			}
		}
	}
	return ""
}

// SourcesFromRequest returns the two token sources of r: the credentials
// header value and the access_token query parameter.
func SourcesFromRequest(r *http.Request) (header, query string) {
	header = AuthorizationHeader(r.Header)
	if r.URL != nil {
		query = r.URL.Query().Get(AccessTokenParam)
	}
	return header, query
}
