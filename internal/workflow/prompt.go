package workflow

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dhg-platform/taxon/internal/doctypes"
)

// promptContext holds the resolved template and vocabulary for a run.
// Resolved once per run and shared by every document in the batch.
type promptContext struct {
	name       string
	template   string
	vocabulary []doctypes.DocumentType
}

// resolvePrompt looks up the named prompt template and loads the document
// type vocabulary restricted to the prompt's linked categories. An empty
// vocabulary is returned as-is; the orchestrator decides whether to proceed.
func resolvePrompt(ctx context.Context, rt *Runtime, name string) (*promptContext, error) {
	if name == "" {
		name = rt.DefaultPrompt
	}

	prompt, err := rt.Prompts.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("resolve prompt %q: %w", name, err)
	}

	vocabulary, err := rt.DocTypes.ListByCategories(ctx, prompt.Categories)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary for prompt %q: %w", name, err)
	}

	return &promptContext{
		name:       name,
		template:   prompt.Template,
		vocabulary: vocabulary,
	}, nil
}

// BuildPrompt assembles the instruction text sent to the classifier: the
// base template, an enumerated de-duplicated list of valid document types,
// and the document content truncated to maxContentLength. Identical inputs
// always produce identical output. The second return value reports whether
// the vocabulary was empty, so the caller can refuse to classify against
// an uncontrolled vocabulary.
func BuildPrompt(
	template string,
	vocabulary []doctypes.DocumentType,
	content string,
	maxContentLength int,
) (string, bool) {
	var b strings.Builder

	b.WriteString(strings.TrimSpace(template))
	b.WriteString("\n\nValid document types:\n")

	types := dedupeTypes(vocabulary)
	for _, t := range types {
		b.WriteString(fmt.Sprintf("- %s: %s", t.ID, t.Name))
		if t.Description != "" {
			b.WriteString(" (" + t.Description + ")")
		}
		b.WriteString("\n")
	}

	b.WriteString("\nDocument content:\n")
	b.WriteString(truncate(content, maxContentLength))

	return b.String(), len(types) == 0
}

// dedupeTypes sorts the vocabulary by mnemonic and drops duplicate entries,
// keeping prompt enumeration stable regardless of input order.
func dedupeTypes(vocabulary []doctypes.DocumentType) []doctypes.DocumentType {
	seen := make(map[string]bool, len(vocabulary))
	types := make([]doctypes.DocumentType, 0, len(vocabulary))

	for _, t := range vocabulary {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		types = append(types, t)
	}

	sort.Slice(types, func(i, j int) bool {
		return types[i].ID < types[j].ID
	})

	return types
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}
