// Package oauthtest provides a fake RFC 7662 introspection endpoint and
// file:// fixture helpers for tests across packages.
package oauthtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/elnormous/contenttype"
)

var (
	formMediaType  = contenttype.NewMediaType("application/x-www-form-urlencoded")
	jsonMediaType  = contenttype.NewMediaType("application/json")
	jsonMediaTypes = []contenttype.MediaType{jsonMediaType}
)

// Server is a fake introspection endpoint. Unknown tokens introspect as
// {"active":false}.
type Server struct {
	*httptest.Server

	mu        sync.RWMutex
	responses map[string]any
	clientID  string
	secret    string

	calls atomic.Int64
}

// NewServer starts a fake endpoint that is closed when t finishes.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{responses: make(map[string]any)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// SetResponse makes tok introspect as resp. resp is marshaled as JSON,
// so it may be a map, a raw json.RawMessage or any other value.
func (s *Server) SetResponse(tok string, resp any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[tok] = resp
}

// RequireBasicAuth makes the endpoint reject callers that do not present
// these client credentials.
func (s *Server) RequireBasicAuth(clientID, secret string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clientID, s.secret = clientID, secret
}

// IntrospectionURL returns the endpoint URL.
func (s *Server) IntrospectionURL() string {
	return s.URL + "/introspect"
}

// Calls returns the number of introspection requests served.
func (s *Server) Calls() int {
	return int(s.calls.Load())
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/introspect" {
		http.NotFound(w, r)
		return
	}
	s.calls.Add(1)

	if r.Header.Get("Accept") != "" {
		if _, _, err := contenttype.GetAcceptableMediaType(r, jsonMediaTypes); err != nil {
			http.Error(w, "not acceptable", http.StatusNotAcceptable)
			return
		}
	}

	var tok string
	switch r.Method {
	case http.MethodPost:
		ctype, err := contenttype.GetMediaType(r)
		if err != nil || !ctype.Matches(formMediaType) {
			http.Error(w, "content-type must be application/x-www-form-urlencoded", http.StatusUnsupportedMediaType)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		tok = r.PostForm.Get("token")
	case http.MethodGet:
		tok = r.URL.Query().Get("token")
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	clientID, secret := s.clientID, s.secret
	resp, ok := s.responses[tok]
	s.mu.RUnlock()

	if clientID != "" {
		id, pw, hasAuth := r.BasicAuth()
		if !hasAuth || id != clientID || pw != secret {
			w.Header().Set("WWW-Authenticate", `Basic realm="introspection"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	if tok == "" {
		http.Error(w, `{"error":"invalid_request"}`, http.StatusBadRequest)
		return
	}
	if !ok {
		resp = map[string]any{"active": false}
	}

	w.Header().Set("Content-Type", "application/json")
	if raw, isRaw := resp.(json.RawMessage); isRaw {
		_, _ = w.Write(raw)
		return
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// FixtureDir writes one <token>.json file per entry into a temporary
// directory and returns its file:// endpoint, ending in a slash.
// string and []byte values are written verbatim; anything else as JSON.
func FixtureDir(t testing.TB, fixtures map[string]any) string {
	t.Helper()

	dir := t.TempDir()
	for tok, resp := range fixtures {
		var data []byte
		switch v := resp.(type) {
		case string:
			data = []byte(v)
		case []byte:
			data = v
		default:
			b, err := json.Marshal(v)
			if err != nil {
				t.Fatalf("marshal fixture %q: %v", tok, err)
			}
			data = b
		}
		if err := os.WriteFile(filepath.Join(dir, tok+".json"), data, 0o600); err != nil {
			t.Fatalf("write fixture %q: %v", tok, err)
		}
	}
	return "file://" + filepath.ToSlash(dir) + "/"
}
