package metadata

import (
	"context"
	"fmt"
	"strings"

	pkgoauth "github.com/jamesprial/rs-introspect/pkg/oauth"
)

// WellKnownPath is the RFC 9728 metadata path.
const WellKnownPath = pkgoauth.ProtectedResourceMetadataPath

// ProtectedResourceMetadata represents the OAuth 2.0 Protected Resource
// Metadata as defined in RFC 9728.
type ProtectedResourceMetadata struct {
	Resource               string   `json:"resource"`
	AuthorizationServers   []string `json:"authorization_servers,omitempty"`
	ScopesSupported        []string `json:"scopes_supported,omitempty"`
	BearerMethodsSupported []string `json:"bearer_methods_supported,omitempty"`
}

// Service provides Protected Resource Metadata per RFC 9728.
type Service struct {
	resource               string
	authorizationServers   []string
	scopesSupported        []string
	bearerMethodsSupported []string
	metadataURL            string
}

// NewService creates a new metadata service.
//
// Parameters:
//   - baseURL: the canonical base URL for this protected resource (e.g., "https://api.example.com")
//   - authorizationServers: issuers whose tokens are accepted (optional)
//   - scopesSupported: array of supported OAuth scopes (optional)
func NewService(baseURL string, authorizationServers []string, scopesSupported []string) *Service {
	// Tokens are accepted in the Authorization header and the access_token query parameter.
	bearerMethods := []string{pkgoauth.BearerMethodHeader, pkgoauth.BearerMethodQuery}

	resource := normalizeBaseURL(baseURL)

	return &Service{
		resource:               resource,
		authorizationServers:   authorizationServers,
		scopesSupported:        scopesSupported,
		bearerMethodsSupported: bearerMethods,
		metadataURL:            resource + WellKnownPath,
	}
}

// GetMetadata returns the protected resource metadata document.
func (s *Service) GetMetadata(ctx context.Context) (*ProtectedResourceMetadata, error) {
	meta := &ProtectedResourceMetadata{
		Resource:               s.resource,
		AuthorizationServers:   s.authorizationServers,
		ScopesSupported:        s.scopesSupported,
		BearerMethodsSupported: s.bearerMethodsSupported,
	}
	if err := ValidateMetadata(meta); err != nil {
		return nil, err
	}
	return meta, nil
}

// GetMetadataURL returns the canonical URL where this metadata is served.
func (s *Service) GetMetadataURL() string {
	return s.metadataURL
}

// normalizeBaseURL strips trailing slashes; RFC 8707 resource identifiers
// carry none unless semantically significant.
func normalizeBaseURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/")
}

// ValidateMetadata validates the metadata document per RFC 9728.
func ValidateMetadata(metadata *ProtectedResourceMetadata) error {
	if metadata.Resource == "" {
		return fmt.Errorf("resource field is required")
	}

	for _, server := range metadata.AuthorizationServers {
		if server == "" {
			return fmt.Errorf("authorization server URL cannot be empty")
		}
		if !strings.HasPrefix(server, "https://") && !strings.HasPrefix(server, "http://localhost") {
			return fmt.Errorf("authorization server URL must use HTTPS (or http://localhost for testing): %s", server)
		}
	}

	return nil
}
