package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/dhg-platform/taxon/internal/sources"
	"github.com/dhg-platform/taxon/internal/workflow"
	"github.com/dhg-platform/taxon/pkg/handlers"
	"github.com/dhg-platform/taxon/pkg/routes"
)

// classifyHandler exposes the classification pipeline over HTTP.
type classifyHandler struct {
	rt     *workflow.Runtime
	logger *slog.Logger
}

// runRequest carries batch options for classification endpoints.
type runRequest struct {
	Limit  int    `json:"limit"`
	Prompt string `json:"prompt"`
}

func newClassifyHandler(rt *workflow.Runtime, logger *slog.Logger) *classifyHandler {
	return &classifyHandler{
		rt:     rt,
		logger: logger.With("handler", "classify"),
	}
}

func (h *classifyHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/classify",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/sources", Handler: h.runSources},
			{Method: "POST", Pattern: "/sources/{id}", Handler: h.classifySource},
			{Method: "POST", Pattern: "/experts", Handler: h.runExperts},
			{Method: "POST", Pattern: "/reconcile", Handler: h.reconcile},
		},
	}
}

func (h *classifyHandler) runSources(w http.ResponseWriter, r *http.Request) {
	opts, err := decodeRunRequest(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	summary, err := workflow.RunSources(r.Context(), h.rt, opts)
	if err != nil {
		handlers.RespondError(w, h.logger, mapWorkflowStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, summary)
}

func (h *classifyHandler) runExperts(w http.ResponseWriter, r *http.Request) {
	opts, err := decodeRunRequest(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	summary, err := workflow.RunExperts(r.Context(), h.rt, opts)
	if err != nil {
		handlers.RespondError(w, h.logger, mapWorkflowStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, summary)
}

func (h *classifyHandler) classifySource(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, sources.ErrNotFound)
		return
	}

	opts, err := decodeRunRequest(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	outcome, err := workflow.ClassifySource(r.Context(), h.rt, id, opts)
	if err != nil {
		handlers.RespondError(w, h.logger, mapWorkflowStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, outcome)
}

func (h *classifyHandler) reconcile(w http.ResponseWriter, r *http.Request) {
	fix := r.URL.Query().Get("fix") == "true"

	report, err := workflow.Reconcile(r.Context(), h.rt, fix)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, report)
}

func decodeRunRequest(r *http.Request) (workflow.Options, error) {
	var req runRequest

	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return workflow.Options{}, err
		}
	}

	return workflow.Options{
		Limit:      req.Limit,
		PromptName: req.Prompt,
	}, nil
}

func mapWorkflowStatus(err error) int {
	if errors.Is(err, workflow.ErrEmptyVocabulary) {
		return http.StatusConflict
	}
	if errors.Is(err, sources.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
