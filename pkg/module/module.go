// Package module mounts domain muxes under single-level URL prefixes and
// routes requests to them with the prefix stripped, so each domain mux can
// register its patterns relative to its own root.
package module

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dhg-platform/taxon/pkg/middleware"
)

// Module pairs a URL prefix with the mux serving it and an optional
// middleware chain applied to every request under the prefix.
type Module struct {
	prefix     string
	mux        http.Handler
	middleware middleware.System
}

// New creates a Module mounted at prefix. The prefix must be a single-level
// sub-path such as /api; invalid prefixes panic since they are programmer
// errors caught at wiring time.
func New(prefix string, mux http.Handler) *Module {
	mustValidPrefix(prefix)

	return &Module{
		prefix:     prefix,
		mux:        mux,
		middleware: middleware.New(),
	}
}

// Prefix returns the mount prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use appends middleware to the module chain.
func (m *Module) Use(fn func(http.Handler) http.Handler) {
	m.middleware.Use(fn)
}

// Serve strips the module prefix from the request path and dispatches to the
// module mux through the middleware chain.
func (m *Module) Serve(w http.ResponseWriter, r *http.Request) {
	inner := cloneRequest(r, stripPrefix(r.URL.Path, m.prefix))
	m.middleware.Apply(m.mux).ServeHTTP(w, inner)
}

func mustValidPrefix(prefix string) {
	if prefix == "" {
		panic("module prefix cannot be empty")
	}
	if !strings.HasPrefix(prefix, "/") {
		panic(fmt.Sprintf("module prefix must start with /: %s", prefix))
	}
	if strings.Contains(prefix[1:], "/") {
		panic(fmt.Sprintf("module prefix must be single-level sub-path: %s", prefix))
	}
}

// stripPrefix removes the mount prefix from path, mapping the bare prefix
// itself to the mux root.
func stripPrefix(path, prefix string) string {
	rest := strings.TrimPrefix(path, prefix)
	if rest == "" {
		return "/"
	}
	return rest
}

// cloneRequest copies the request with the rewritten path so the original
// request seen by outer handlers is left untouched. RawPath is cleared
// because the rewritten path no longer matches any original escaping.
func cloneRequest(r *http.Request, path string) *http.Request {
	clone := r.Clone(r.Context())
	clone.URL.Path = path
	clone.URL.RawPath = ""
	return clone
}
