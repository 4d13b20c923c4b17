package api

import (
	"net/http"

	"github.com/dhg-platform/taxon/internal/config"
	"github.com/dhg-platform/taxon/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	routes.Register(
		mux,
		domain.Sources.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Experts.Handler().Routes(),
		domain.DocTypes.Handler().Routes(),
		domain.Prompts.Handler().Routes(),
		newClassifyHandler(domain.Workflow, runtime.Logger).routes(),
		newStorageHandler(runtime.Storage, runtime.Logger).routes(),
	)
}
