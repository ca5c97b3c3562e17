package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	ierrors "github.com/jamesprial/rs-introspect/internal/errors"
	"github.com/jamesprial/rs-introspect/internal/oauth"
)

// fakeVerifier records the token sources it was given.
type fakeVerifier struct {
	mu          sync.Mutex
	verifyFunc  func(ctx context.Context, header, query string) (*oauth.Claims, error)
	gotHeader   string
	gotQuery    string
	verifyCalls int
}

func (f *fakeVerifier) Verify(ctx context.Context, header, query string) (*oauth.Claims, error) {
	f.mu.Lock()
	f.gotHeader, f.gotQuery = header, query
	f.verifyCalls++
	f.mu.Unlock()
	return f.verifyFunc(ctx, header, query)
}

// mockErrorResponder records errors and writes the mapped status and header.
type mockErrorResponder struct {
	mu             sync.Mutex
	challengeErr   error
	challenged     bool
	internalCalled bool
	internalErr    error
}

func (m *mockErrorResponder) Challenge(w http.ResponseWriter, _ *http.Request, err error) {
	m.mu.Lock()
	m.challenged = true
	m.challengeErr = err
	m.mu.Unlock()

	c := ierrors.MapToHTTP(err, "")
	if c.HasHeader() {
		w.Header().Set("WWW-Authenticate", c.WWWAuthenticate)
	}
	w.WriteHeader(c.Status)
}

func (m *mockErrorResponder) InternalError(w http.ResponseWriter, _ *http.Request, err error) {
	m.mu.Lock()
	m.internalCalled = true
	m.internalErr = err
	m.mu.Unlock()

	w.WriteHeader(http.StatusInternalServerError)
}

// captureHandler collects slog records for assertions.
type captureHandler struct {
	mu      sync.Mutex
	entries []map[string]any
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	entry := map[string]any{
		"level":   r.Level.String(),
		"message": r.Message,
	}
	r.Attrs(func(a slog.Attr) bool {
		entry[a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, entry)
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *captureHandler) WithGroup(string) slog.Handler { return h }

func (h *captureHandler) all() []map[string]any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]map[string]any(nil), h.entries...)
}
