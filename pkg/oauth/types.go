// Package oauth provides shared OAuth 2.0 constants for bearer-protected
// resource servers and their introspection clients.
package oauth

// Token type constants as defined in RFC 6750.
const (
	// BearerToken is the authentication scheme of RFC 6750 Section 2.1.
	BearerToken = "Bearer"

	// AccessTokenParam is the RFC 6750 Section 2.3 URI query parameter.
	AccessTokenParam = "access_token"
)

// Bearer methods advertised in RFC 9728 metadata.
const (
	BearerMethodHeader = "header"
	BearerMethodQuery  = "query"
)

// ProtectedResourceMetadataPath is the RFC 9728 Section 3 well-known path.
const ProtectedResourceMetadataPath = "/.well-known/oauth-protected-resource"

// IntrospectionParamToken is the RFC 7662 Section 2.1 request parameter.
const IntrospectionParamToken = "token"

// HTTP header names.
const (
	// HeaderAuthorization is the Authorization HTTP header name.
	HeaderAuthorization = "Authorization"

	// HeaderXAuthorization is consulted before Authorization; some proxies
	// forward the caller's credentials under it.
	HeaderXAuthorization = "X-Authorization"

	// HeaderWWWAuthenticate is the WWW-Authenticate HTTP header name.
	HeaderWWWAuthenticate = "WWW-Authenticate"

	// HeaderContentType is the Content-Type HTTP header name.
	HeaderContentType = "Content-Type"

	// HeaderRequestID carries the per-request correlation id.
	HeaderRequestID = "X-Request-ID"
)

// Content type constants.
const (
	// ContentTypeJSON is the application/json content type.
	ContentTypeJSON = "application/json"

	// ContentTypeFormURLEncoded is the application/x-www-form-urlencoded content type.
	ContentTypeFormURLEncoded = "application/x-www-form-urlencoded"
)
