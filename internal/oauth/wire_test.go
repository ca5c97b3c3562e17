package oauth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	ierrors "github.com/jamesprial/rs-introspect/internal/errors"
	"github.com/jamesprial/rs-introspect/internal/oauth/internal/introspect"
	"github.com/jamesprial/rs-introspect/internal/oauth/oauthtest"
)

func writeECKey(t *testing.T) string {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	path := filepath.Join(t.TempDir(), "client.pem")
	data := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	return path
}

func TestNewVerifier_RequiresEndpoint(t *testing.T) {
	t.Parallel()

	_, err := NewVerifier(&Config{Issuer: "https://as.example.com"})
	if !errors.Is(err, ErrNoIntrospectionEndpoint) {
		t.Errorf("NewVerifier() error = %v, want ErrNoIntrospectionEndpoint", err)
	}
}

func TestNewVerifier_InvalidEndpoint(t *testing.T) {
	t.Parallel()

	if _, err := NewVerifier(&Config{IntrospectionEndpoint: "ftp://as.example.com/introspect"}); err == nil {
		t.Error("NewVerifier() expected error for ftp endpoint, got nil")
	}
}

func TestNewAuthenticator(t *testing.T) {
	t.Parallel()

	keyFile := writeECKey(t)

	tests := []struct {
		name    string
		auth    ClientAuthConfig
		wantErr bool
		check   func(t *testing.T, a introspect.Authenticator)
	}{
		{
			name: "default none",
			check: func(t *testing.T, a introspect.Authenticator) {
				if _, ok := a.(introspect.NoAuth); !ok {
					t.Errorf("got %T, want NoAuth", a)
				}
			},
		},
		{
			name: "client secret basic",
			auth: ClientAuthConfig{Method: ClientAuthSecretBasic, ClientID: "rs", ClientSecret: "s3cret"},
			check: func(t *testing.T, a introspect.Authenticator) {
				want := introspect.ClientSecretBasic{ClientID: "rs", ClientSecret: "s3cret"}
				if !reflect.DeepEqual(a, want) {
					t.Errorf("got %#v, want %#v", a, want)
				}
			},
		},
		{
			name: "private key jwt",
			auth: ClientAuthConfig{Method: ClientAuthPrivateKeyJWT, ClientID: "rs", PrivateKeyFile: keyFile, KeyID: "k1"},
			check: func(t *testing.T, a introspect.Authenticator) {
				pk, ok := a.(*introspect.PrivateKeyJWT)
				if !ok {
					t.Fatalf("got %T, want *PrivateKeyJWT", a)
				}
				if pk.Algorithm() != "ES256" {
					t.Errorf("Algorithm() = %q, want ES256", pk.Algorithm())
				}
			},
		},
		{
			name:    "private key jwt missing file",
			auth:    ClientAuthConfig{Method: ClientAuthPrivateKeyJWT, ClientID: "rs", PrivateKeyFile: filepath.Join(t.TempDir(), "nope.pem")},
			wantErr: true,
		},
		{
			name: "client credentials",
			auth: ClientAuthConfig{Method: ClientAuthClientCredentials, ClientID: "rs", ClientSecret: "s", TokenURL: "https://as.example.com/token"},
			check: func(t *testing.T, a introspect.Authenticator) {
				if _, ok := a.(*introspect.ClientCredentials); !ok {
					t.Errorf("got %T, want *ClientCredentials", a)
				}
			},
		},
		{
			name:    "unknown method",
			auth:    ClientAuthConfig{Method: "tls_client_auth"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := &Config{IntrospectionEndpoint: "https://as.example.com/introspect", ClientAuth: tt.auth}
			a, err := newAuthenticator(cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("newAuthenticator() expected error, got nil")
				}
				if a != nil {
					t.Errorf("newAuthenticator() = %T, want nil interface", a)
				}
				return
			}
			if err != nil {
				t.Fatalf("newAuthenticator() unexpected error: %v", err)
			}
			tt.check(t, a)
		})
	}
}

func TestNewAuthenticator_UnknownMethodSentinel(t *testing.T) {
	t.Parallel()

	_, err := newAuthenticator(&Config{ClientAuth: ClientAuthConfig{Method: "bogus"}})
	if !errors.Is(err, ErrUnsupportedClientAuth) {
		t.Errorf("error = %v, want ErrUnsupportedClientAuth", err)
	}
}

func TestNewMetadataService(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		cfg         *Config
		wantServers []string
	}{
		{
			name: "with issuer",
			cfg: &Config{
				BaseURL:         "https://api.example.com/",
				Issuer:          "https://as.example.com",
				ScopesSupported: []string{"read"},
			},
			wantServers: []string{"https://as.example.com"},
		},
		{
			name: "endpoint only",
			cfg: &Config{
				BaseURL:               "https://api.example.com",
				IntrospectionEndpoint: "https://as.example.com/introspect",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := NewMetadataService(tt.cfg)
			meta, err := svc.GetMetadata(context.Background())
			if err != nil {
				t.Fatalf("GetMetadata() unexpected error: %v", err)
			}
			if meta.Resource != "https://api.example.com" {
				t.Errorf("Resource = %q", meta.Resource)
			}
			if !reflect.DeepEqual(meta.AuthorizationServers, tt.wantServers) {
				t.Errorf("AuthorizationServers = %v, want %v", meta.AuthorizationServers, tt.wantServers)
			}
			if !reflect.DeepEqual(meta.ScopesSupported, tt.cfg.ScopesSupported) {
				t.Errorf("ScopesSupported = %v, want %v", meta.ScopesSupported, tt.cfg.ScopesSupported)
			}
			if got := svc.GetMetadataURL(); got != "https://api.example.com/.well-known/oauth-protected-resource" {
				t.Errorf("GetMetadataURL() = %q", got)
			}
		})
	}
}

func TestNewOAuthServices(t *testing.T) {
	t.Parallel()

	srv := oauthtest.NewServer(t)
	srv.RequireBasicAuth("rs", "s3cret")
	srv.SetResponse("good", map[string]any{"active": true, "scope": "read", "sub": "alice"})

	cfg := &Config{
		BaseURL:               "https://api.example.com",
		IntrospectionEndpoint: srv.IntrospectionURL(),
		ClientAuth:            ClientAuthConfig{Method: ClientAuthSecretBasic, ClientID: "rs", ClientSecret: "s3cret"},
		Logger:                discardLogger,
	}

	verifier, metadataSvc, err := NewOAuthServices(cfg)
	if err != nil {
		t.Fatalf("NewOAuthServices() unexpected error: %v", err)
	}
	if metadataSvc == nil {
		t.Fatal("NewOAuthServices() returned nil MetadataService")
	}

	claims, err := verifier.Verify(context.Background(), "", "good")
	if err != nil {
		t.Fatalf("Verify() unexpected error: %v", err)
	}
	if !claims.HasScope("read") {
		t.Errorf("Scope() = %v, want read", claims.Scope())
	}

	_, err = verifier.Verify(context.Background(), "Bearer unknown", "")
	assertVerificationError(t, err, ierrors.KindInvalidToken, "the access token is not active")
}

func TestNewOAuthServices_WrongClientSecret(t *testing.T) {
	t.Parallel()

	srv := oauthtest.NewServer(t)
	srv.RequireBasicAuth("rs", "s3cret")
	srv.SetResponse("good", map[string]any{"active": true})

	verifier, _, err := NewOAuthServices(&Config{
		BaseURL:               "https://api.example.com",
		IntrospectionEndpoint: srv.IntrospectionURL(),
		ClientAuth:            ClientAuthConfig{Method: ClientAuthSecretBasic, ClientID: "rs", ClientSecret: "wrong"},
		Logger:                discardLogger,
	})
	if err != nil {
		t.Fatalf("NewOAuthServices() unexpected error: %v", err)
	}

	_, err = verifier.Verify(context.Background(), "Bearer good", "")
	assertVerificationError(t, err, ierrors.KindInternalServerError, "unexpected response code from introspection endpoint")
}

func TestNewOAuthServices_Error(t *testing.T) {
	t.Parallel()

	v, m, err := NewOAuthServices(&Config{BaseURL: "https://api.example.com"})
	if err == nil {
		t.Fatal("NewOAuthServices() expected error, got nil")
	}
	if v != nil || m != nil {
		t.Error("NewOAuthServices() returned services alongside an error")
	}
}
