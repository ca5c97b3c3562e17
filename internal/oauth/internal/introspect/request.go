package introspect

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"path"
	"strings"

	pkgoauth "github.com/jamesprial/rs-introspect/pkg/oauth"
)

// RequestFactory builds one introspection request carrying params for the
// given endpoint. The request is single-use.
type RequestFactory func(ctx context.Context, endpoint string, params url.Values) (*http.Request, error)

// FormPost sends params as an application/x-www-form-urlencoded POST body,
// the form RFC 7662 Section 2.1 requires.
func FormPost(ctx context.Context, endpoint string, params url.Values) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set(pkgoauth.HeaderContentType, pkgoauth.ContentTypeFormURLEncoded)
	req.Header.Set("Accept", pkgoauth.ContentTypeJSON)
	return req, nil
}

// QueryGet sends params in the query string of a GET request. Some older
// authorization servers only accept this form.
func QueryGet(ctx context.Context, endpoint string, params url.Values) (*http.Request, error) {
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+sep+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", pkgoauth.ContentTypeJSON)
	return req, nil
}

// errFixtureEscape rejects tokens whose fixture path leaves the fixture
// directory. b64token allows "." and "/", so "../x" is a valid token.
var errFixtureEscape = errors.New("fixture path escapes the fixture directory")

// fixtureRequest reads a canned response from a file:// directory. The
// token is appended to the endpoint as "<token>.json" and every other
// parameter is ignored.
func fixtureRequest(ctx context.Context, endpoint string, params url.Values) (*http.Request, error) {
	target := endpoint + params.Get(paramToken) + ".json"
	if err := checkFixturePath(endpoint, target); err != nil {
		return nil, err
	}
	return http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
}

// checkFixturePath makes sure target, once dot segments are resolved the
// way the file transport resolves them, stays below endpoint's directory.
func checkFixturePath(endpoint, target string) error {
	base, err := url.Parse(endpoint)
	if err != nil {
		return err
	}
	u, err := url.Parse(target)
	if err != nil {
		return err
	}

	dir := base.Path[:strings.LastIndex(base.Path, "/")+1]
	if dir == "" {
		return errFixtureEscape
	}
	cleaned := path.Clean("/" + u.Path)
	if !strings.HasPrefix(cleaned, dir) || len(cleaned) == len(dir) {
		return errFixtureEscape
	}
	return nil
}

// FactoryForMethod returns the factory for an HTTP method name.
// Anything other than GET selects FormPost.
func FactoryForMethod(method string) RequestFactory {
	if strings.EqualFold(method, http.MethodGet) {
		return QueryGet
	}
	return FormPost
}

func isFileEndpoint(endpoint string) bool {
	return strings.HasPrefix(strings.ToLower(endpoint), "file://")
}
