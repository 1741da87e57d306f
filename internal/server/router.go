package server

import (
	"net/http"
	"strings"
	"sync"
)

// BasicRouter is a simple HTTP router implementing the [Router] interface.
//
// Uses [http.ServeMux] internally for routing.
type BasicRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware

	once    sync.Once
	wrapped http.Handler
}

// NewBasicRouter creates a new [BasicRouter] instance.
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{
		mux:         http.NewServeMux(),
		middlewares: []Middleware{},
	}
}

// Use adds [Middleware] to the [Router] instance's middleware stack, applied in the order it's added.
//
// Middleware added after the first request is served has no effect.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers a handler for the specified HTTP method and path.
//
// Requests with any other method get a 405 with an Allow header.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	methodHandler := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !strings.EqualFold(req.Method, method) {
			w.Header().Set("Allow", method)
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		handler.ServeHTTP(w, req)
	})

	r.mux.Handle(path, methodHandler)
}

// Handler registers every route returned by [Handler.Routes].
func (r *BasicRouter) Handler(handler Handler) {
	for _, route := range handler.Routes() {
		r.Handle(route.Method, route.Path, route.Handler)
	}
}

// ServeHTTP implements [http.Handler] for the entire router, running the middleware stack around the mux.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.once.Do(func() {
		r.wrapped = r.Apply(r.mux)
	})
	r.wrapped.ServeHTTP(w, req)
}

// Apply wraps a handler with all registered middleware.
//
// Middleware is applied in reverse order (last added wraps first).
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	wrapped := handler

	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}

	return wrapped
}
