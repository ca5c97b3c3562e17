// Package introspect implements the client side of RFC 7662 token
// introspection: building the request, authenticating the resource server,
// dispatching through an injected HTTP client and decoding the response.
package introspect

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jamesprial/rs-introspect/internal/oauth/internal/token"
	"github.com/jamesprial/rs-introspect/internal/oauth/oautherr"
	pkgoauth "github.com/jamesprial/rs-introspect/pkg/oauth"
)

const (
	// maxResponseSize caps the introspection body read into memory.
	maxResponseSize = 1 << 20

	paramToken = pkgoauth.IntrospectionParamToken
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config configures a Client.
type Config struct {
	// Endpoint is the introspection endpoint URL. Supported schemes are
	// https, http and file (fixture directories, for tests).
	Endpoint string

	// Method selects the request form, "POST" (default) or "GET".
	// Ignored for file endpoints.
	Method string

	// Doer overrides the HTTP client. When nil a client built by
	// NewHTTPClient(Timeout, DisableCertCheck) is used.
	Doer Doer

	// Timeout bounds each call of the default HTTP client. Zero means none.
	Timeout time.Duration

	// DisableCertCheck skips TLS verification of the default HTTP client.
	DisableCertCheck bool

	// Authenticator adds resource server credentials. Nil means NoAuth.
	Authenticator Authenticator

	// Logger receives debug output. Nil means slog.Default().
	Logger *slog.Logger
}

// Client performs introspection calls against one endpoint.
// It is safe for concurrent use.
type Client struct {
	endpoint string
	fixture  bool
	factory  RequestFactory
	doer     Doer
	auth     Authenticator
	logger   *slog.Logger
}

// NewClient validates cfg and creates a Client.
func NewClient(cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("introspect: endpoint is required")
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("introspect: invalid endpoint: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "https", "http", "file":
	default:
		return nil, fmt.Errorf("introspect: unsupported endpoint scheme %q", u.Scheme)
	}

	c := &Client{
		endpoint: endpoint,
		fixture:  isFileEndpoint(endpoint),
		factory:  FactoryForMethod(cfg.Method),
		doer:     cfg.Doer,
		auth:     cfg.Authenticator,
		logger:   cfg.Logger,
	}
	if c.fixture {
		c.factory = fixtureRequest
	}
	if c.doer == nil {
		c.doer = NewHTTPClient(cfg.Timeout, cfg.DisableCertCheck)
	}
	if c.auth == nil {
		c.auth = NoAuth{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c, nil
}

// NewHTTPClient returns an HTTP client able to reach https, http and file
// endpoints. disableCertCheck turns off TLS certificate verification.
func NewHTTPClient(timeout time.Duration, disableCertCheck bool) *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if disableCertCheck {
		if tr.TLSClientConfig == nil {
			tr.TLSClientConfig = &tls.Config{}
		}
		tr.TLSClientConfig.InsecureSkipVerify = true // #nosec G402 -- explicit operator opt-in
	}
	tr.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))

	return &http.Client{
		Transport: tr,
		Timeout:   timeout,
	}
}

// Endpoint returns the configured endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Introspect asks the endpoint about tok and returns the decoded JSON object.
// Every failure is an internal_server_error VerificationError; the caller's
// context cancellation surfaces the same way.
func (c *Client) Introspect(ctx context.Context, tok token.BearerToken) (map[string]any, error) {
	const op = "Introspect"

	params := url.Values{paramToken: {tok.String()}}
	header := make(http.Header)

	if !c.fixture {
		if err := c.auth.Authenticate(ctx, params, header); err != nil {
			c.logger.Debug("introspection client authentication failed", "error", err)
			return nil, oautherr.NewInternalError(op, oautherr.DescBuildRequest, err)
		}
	}

	req, err := c.factory(ctx, c.endpoint, params)
	if err != nil {
		return nil, oautherr.NewInternalError(op, oautherr.DescBuildRequest, err)
	}
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		c.logger.Debug("introspection request failed", "endpoint", c.endpoint, "error", err)
		return nil, oautherr.NewInternalError(op, oautherr.DescContactEndpoint, err)
	}
	defer resp.Body.Close()

	if !c.fixture && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		c.logger.Debug("introspection endpoint returned non-2xx", "endpoint", c.endpoint, "status", resp.StatusCode)
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return nil, oautherr.NewInternalError(op, oautherr.DescUnexpectedStatus,
			fmt.Errorf("status %d", resp.StatusCode))
	}

	return decodeResponse(op, resp.Body)
}

// decodeResponse reads a single JSON object from body. Numbers are kept as
// json.Number so integer checks stay exact.
func decodeResponse(op string, body io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(io.LimitReader(body, maxResponseSize+1))
	if err != nil {
		return nil, oautherr.NewInternalError(op, oautherr.DescDecodeResponse, err)
	}
	if len(data) > maxResponseSize {
		return nil, oautherr.NewInternalError(op, oautherr.DescDecodeResponse,
			fmt.Errorf("response exceeds %d bytes", maxResponseSize))
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, oautherr.NewInternalError(op, oautherr.DescDecodeResponse, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, oautherr.NewInternalError(op, oautherr.DescDecodeResponse,
			errors.New("trailing data after JSON value"))
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, oautherr.NewInternalError(op, oautherr.DescMalformedData,
			fmt.Errorf("expected JSON object, got %T", v))
	}
	return obj, nil
}
