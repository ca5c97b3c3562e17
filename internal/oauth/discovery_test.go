package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newDiscoveryServer serves an OpenID configuration whose issuer is the
// server's own URL. An empty endpoint omits introspection_endpoint.
func newDiscoveryServer(t *testing.T, endpoint string) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		doc := map[string]any{
			"issuer":                 srv.URL,
			"authorization_endpoint": srv.URL + "/authorize",
			"token_endpoint":         srv.URL + "/token",
			"jwks_uri":               srv.URL + "/jwks",
		}
		if endpoint != "" {
			doc["introspection_endpoint"] = endpoint
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDiscoverIntrospectionEndpoint(t *testing.T) {
	t.Parallel()

	srv := newDiscoveryServer(t, "https://as.example.com/introspect")

	got, err := DiscoverIntrospectionEndpoint(context.Background(), srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("DiscoverIntrospectionEndpoint() unexpected error: %v", err)
	}
	if got != "https://as.example.com/introspect" {
		t.Errorf("DiscoverIntrospectionEndpoint() = %q", got)
	}
}

func TestDiscoverIntrospectionEndpoint_NotAdvertised(t *testing.T) {
	t.Parallel()

	srv := newDiscoveryServer(t, "")

	_, err := DiscoverIntrospectionEndpoint(context.Background(), srv.URL, nil)
	if !errors.Is(err, ErrDiscoveryFailed) {
		t.Errorf("error = %v, want ErrDiscoveryFailed", err)
	}
}

func TestDiscoverIntrospectionEndpoint_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	_, err := DiscoverIntrospectionEndpoint(context.Background(), srv.URL, nil)
	if !errors.Is(err, ErrDiscoveryFailed) {
		t.Errorf("error = %v, want ErrDiscoveryFailed", err)
	}
}

func TestResolveIntrospectionEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("explicit endpoint kept", func(t *testing.T) {
		t.Parallel()
		cfg := &Config{IntrospectionEndpoint: "https://as.example.com/introspect", Issuer: "http://127.0.0.1:1"}
		if err := ResolveIntrospectionEndpoint(context.Background(), cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.IntrospectionEndpoint != "https://as.example.com/introspect" {
			t.Errorf("IntrospectionEndpoint = %q", cfg.IntrospectionEndpoint)
		}
	})

	t.Run("nothing configured", func(t *testing.T) {
		t.Parallel()
		err := ResolveIntrospectionEndpoint(context.Background(), &Config{})
		if !errors.Is(err, ErrNoIntrospectionEndpoint) {
			t.Errorf("error = %v, want ErrNoIntrospectionEndpoint", err)
		}
	})

	t.Run("discovered from issuer", func(t *testing.T) {
		t.Parallel()
		srv := newDiscoveryServer(t, "https://as.example.com/oauth/introspect")
		cfg := &Config{Issuer: srv.URL, Logger: discardLogger}
		if err := ResolveIntrospectionEndpoint(context.Background(), cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.IntrospectionEndpoint != "https://as.example.com/oauth/introspect" {
			t.Errorf("IntrospectionEndpoint = %q", cfg.IntrospectionEndpoint)
		}
	})
}
