// Package mocks provides mock implementations for testing the transport layer.
package mocks

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	ierrors "github.com/jamesprial/rs-introspect/internal/errors"
	"github.com/jamesprial/rs-introspect/internal/oauth"
)

// Verifier is a mock implementation of oauth.Verifier.
type Verifier struct {
	VerifyFunc func(ctx context.Context, header, query string) (*oauth.Claims, error)
}

// Verify calls the mock VerifyFunc.
func (m *Verifier) Verify(ctx context.Context, header, query string) (*oauth.Claims, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, header, query)
	}
	return nil, nil
}

// MetadataService is a mock implementation of oauth.MetadataService.
type MetadataService struct {
	GetMetadataFunc    func(ctx context.Context) (*oauth.ProtectedResourceMetadata, error)
	GetMetadataURLFunc func() string
}

// GetMetadata calls the mock GetMetadataFunc.
func (m *MetadataService) GetMetadata(ctx context.Context) (*oauth.ProtectedResourceMetadata, error) {
	if m.GetMetadataFunc != nil {
		return m.GetMetadataFunc(ctx)
	}
	return &oauth.ProtectedResourceMetadata{}, nil
}

// GetMetadataURL calls the mock GetMetadataURLFunc.
func (m *MetadataService) GetMetadataURL() string {
	if m.GetMetadataURLFunc != nil {
		return m.GetMetadataURLFunc()
	}
	return "https://example.com/.well-known/oauth-protected-resource"
}

// ErrorResponder records calls and writes the mapped challenge for the
// default realm.
type ErrorResponder struct {
	mu sync.Mutex

	ChallengeCalled bool
	ChallengeErr    error
	InternalCalled  bool
	InternalErr     error
}

// Challenge records the call and writes the status, header and body
// that the error maps to.
func (m *ErrorResponder) Challenge(w http.ResponseWriter, _ *http.Request, err error) {
	m.mu.Lock()
	m.ChallengeCalled = true
	m.ChallengeErr = err
	m.mu.Unlock()

	c := ierrors.MapToHTTP(err, "")
	if c.HasHeader() {
		w.Header().Set("WWW-Authenticate", c.WWWAuthenticate)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(c.Status)
	_ = json.NewEncoder(w).Encode(c.Body)
}

// InternalError records the call and writes a 500 response.
func (m *ErrorResponder) InternalError(w http.ResponseWriter, _ *http.Request, err error) {
	m.mu.Lock()
	m.InternalCalled = true
	m.InternalErr = err
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(`{"error":"internal_server_error"}`))
}

// Reset clears all recorded state.
func (m *ErrorResponder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChallengeCalled = false
	m.ChallengeErr = nil
	m.InternalCalled = false
	m.InternalErr = nil
}
