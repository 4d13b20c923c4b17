// Package api assembles the HTTP surface: it wires the shared runtime, the
// domain systems, and their routes into a single module mounted under the
// configured base path.
package api

import (
	"net/http"

	"github.com/dhg-platform/taxon/internal/config"
	"github.com/dhg-platform/taxon/internal/infrastructure"
	"github.com/dhg-platform/taxon/pkg/middleware"
	"github.com/dhg-platform/taxon/pkg/module"
)

// NewModule builds the API module. Requests pass through CORS and request
// logging middleware before reaching the domain handlers.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)

	mux := http.NewServeMux()
	registerRoutes(mux, NewDomain(runtime), cfg, runtime)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Infrastructure.Logger))

	return m, nil
}
