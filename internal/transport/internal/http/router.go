package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/jamesprial/rs-introspect/internal/transport/transportcore"
)

// router implements transportcore.Router on a chi mux.
type router struct {
	mux         chi.Router
	middlewares []transportcore.Middleware
}

// NewRouter creates a new HTTP router backed by chi. RemoteAddr is taken
// from X-Real-IP or X-Forwarded-For when a proxy sets them.
func NewRouter() transportcore.Router {
	mux := chi.NewRouter()
	mux.Use(chimiddleware.RealIP)

	return &router{
		mux:         mux,
		middlewares: make([]transportcore.Middleware, 0),
	}
}

// Handle registers a handler for the given pattern.
// The handler is wrapped with all currently registered middleware.
func (r *router) Handle(pattern string, handler http.Handler) {
	wrapped := r.applyMiddleware(handler)

	if method, path, ok := splitPattern(pattern); ok {
		r.mux.Method(method, path, wrapped)
		return
	}
	r.mux.Handle(pattern, wrapped)
}

// HandleFunc registers a handler function for the given pattern.
// The handler is wrapped with all currently registered middleware.
func (r *router) HandleFunc(pattern string, handler http.HandlerFunc) {
	r.Handle(pattern, handler)
}

// Use applies middleware to all subsequent route registrations.
// Middleware is applied in the order registered.
func (r *router) Use(middlewares ...transportcore.Middleware) {
	r.middlewares = append(r.middlewares, middlewares...)
}

// ServeHTTP implements http.Handler by delegating to the chi mux.
func (r *router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// applyMiddleware wraps the handler with all registered middleware.
// The first middleware in the list is the outermost layer (executes first).
func (r *router) applyMiddleware(handler http.Handler) http.Handler {
	wrapped := handler
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}
	return wrapped
}

// splitPattern splits "GET /path" into its method and path.
func splitPattern(pattern string) (method, path string, ok bool) {
	method, path, found := strings.Cut(pattern, " ")
	if !found || method == "" || strings.HasPrefix(method, "/") {
		return "", "", false
	}
	return strings.ToUpper(method), strings.TrimSpace(path), true
}
