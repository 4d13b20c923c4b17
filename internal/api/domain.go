package api

import (
	"golang.org/x/time/rate"

	"github.com/dhg-platform/taxon/internal/doctypes"
	"github.com/dhg-platform/taxon/internal/experts"
	"github.com/dhg-platform/taxon/internal/prompts"
	"github.com/dhg-platform/taxon/internal/sources"
	"github.com/dhg-platform/taxon/internal/workflow"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Sources  sources.System
	Experts  experts.System
	DocTypes doctypes.System
	Prompts  prompts.System
	Workflow *workflow.Runtime
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	sourcesSystem := sources.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	expertsSystem := experts.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	doctypesSystem := doctypes.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	promptsSystem := prompts.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	wf := &workflow.Runtime{
		Sources:    sourcesSystem,
		Experts:    expertsSystem,
		DocTypes:   doctypesSystem,
		Prompts:    promptsSystem,
		Classifier: runtime.Classifier,
		Storage:    runtime.Storage,
		Logger:     runtime.Logger.With("workflow", "classify"),

		Limiter:          rate.NewLimiter(rate.Limit(float64(runtime.Workflow.RatePerMinute)/60), 1),
		Concurrency:      runtime.Workflow.Concurrency,
		MaxContentLength: runtime.Workflow.MaxContentLength,
		FetchBatchSize:   runtime.Workflow.FetchBatchSize,
		DefaultPrompt:    runtime.Workflow.DefaultPrompt,
	}

	return &Domain{
		Sources:  sourcesSystem,
		Experts:  expertsSystem,
		DocTypes: doctypesSystem,
		Prompts:  promptsSystem,
		Workflow: wf,
	}
}
