// Package middleware provides an ordered HTTP middleware stack plus the
// request logging and CORS implementations used by the server.
package middleware

import "net/http"

// System collects middleware and wraps handlers with it.
type System interface {
	// Use appends a middleware to the stack.
	Use(mw func(http.Handler) http.Handler)
	// Apply wraps handler so the first Use'd middleware runs outermost.
	Apply(handler http.Handler) http.Handler
}

type stack struct {
	fns []func(http.Handler) http.Handler
}

// New creates an empty middleware stack.
func New() System {
	return &stack{}
}

func (s *stack) Use(fn func(http.Handler) http.Handler) {
	s.fns = append(s.fns, fn)
}

func (s *stack) Apply(handler http.Handler) http.Handler {
	for i := len(s.fns) - 1; i >= 0; i-- {
		handler = s.fns[i](handler)
	}
	return handler
}
