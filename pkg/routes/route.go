// Package routes declares route definitions that domain handlers return
// and the server registers, keeping handlers free of mux wiring.
package routes

import "net/http"

// Route binds an HTTP method and path pattern to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// endpoint renders the method-scoped ServeMux pattern for this route under
// the given prefix.
func (r Route) endpoint(prefix string) string {
	return r.Method + " " + prefix + r.Pattern
}
