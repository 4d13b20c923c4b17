package workflow_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dhg-platform/taxon/internal/classifier"
	"github.com/dhg-platform/taxon/internal/doctypes"
	"github.com/dhg-platform/taxon/internal/experts"
	"github.com/dhg-platform/taxon/internal/prompts"
	"github.com/dhg-platform/taxon/internal/sources"
	"github.com/dhg-platform/taxon/internal/workflow"
	"github.com/dhg-platform/taxon/pkg/lifecycle"
	"github.com/dhg-platform/taxon/pkg/pagination"
)

func ptr[T any](v T) *T { return &v }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockSources serves a fixed set of unclassified sources and records every
// state transition the pipeline applies.
type mockSources struct {
	mu sync.Mutex

	docs    []sources.Source
	updates map[uuid.UUID]sources.ClassificationUpdate
	skips   map[uuid.UUID]string
	errors  map[uuid.UUID]string

	// fetchErr fails every fetch; transientErr fails only the next
	// transientLeft fetches, then the store recovers.
	fetchErr      error
	transientErr  error
	transientLeft int
	fetchCalls    int
}

func newMockSources(docs ...sources.Source) *mockSources {
	return &mockSources{
		docs:    docs,
		updates: make(map[uuid.UUID]sources.ClassificationUpdate),
		skips:   make(map[uuid.UUID]string),
		errors:  make(map[uuid.UUID]string),
	}
}

func (m *mockSources) Handler(int64) *sources.Handler { return nil }

func (m *mockSources) List(_ context.Context, _ pagination.PageRequest, filters sources.Filters) (*pagination.PageResult[sources.Source], error) {
	var out []sources.Source
	for _, d := range m.docs {
		if filters.Status != nil && d.Status != *filters.Status {
			continue
		}
		out = append(out, d)
	}
	result := pagination.NewPageResult(out, len(out), 1, len(out)+1)
	return &result, nil
}

func (m *mockSources) Find(_ context.Context, id uuid.UUID) (*sources.Source, error) {
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, sources.ErrNotFound
}

func (m *mockSources) Create(context.Context, sources.CreateCommand) (*sources.Source, error) {
	return nil, nil
}

func (m *mockSources) Delete(context.Context, uuid.UUID) error { return nil }

func (m *mockSources) FetchUnclassified(_ context.Context, limit int, cursor *time.Time) ([]sources.Source, error) {
	m.mu.Lock()
	m.fetchCalls++
	if m.fetchErr != nil {
		m.mu.Unlock()
		return nil, m.fetchErr
	}
	if m.transientLeft > 0 {
		m.transientLeft--
		m.mu.Unlock()
		return nil, m.transientErr
	}
	m.mu.Unlock()

	var out []sources.Source
	for _, d := range m.docs {
		if d.DocumentTypeID != nil {
			continue
		}
		if cursor != nil && !d.CreatedAt.Before(*cursor) {
			continue
		}
		out = append(out, d)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockSources) UpdateClassification(_ context.Context, id uuid.UUID, update sources.ClassificationUpdate) (*sources.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates[id] = update
	return &sources.Source{ID: id, DocumentTypeID: &update.DocumentTypeID, Status: update.Status}, nil
}

func (m *mockSources) MarkSkipped(_ context.Context, id uuid.UUID, reason string) (*sources.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skips[id] = reason
	return &sources.Source{ID: id, Status: sources.StatusSkipped}, nil
}

func (m *mockSources) RecordError(_ context.Context, id uuid.UUID, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[id] = msg
	return nil
}

// mockExperts mirrors mockSources for the expert document store.
type mockExperts struct {
	mu sync.Mutex

	docs    []experts.ExpertDocument
	updates map[uuid.UUID]experts.ClassificationUpdate
	skips   map[uuid.UUID]string
	errors  map[uuid.UUID]string
}

func newMockExperts(docs ...experts.ExpertDocument) *mockExperts {
	return &mockExperts{
		docs:    docs,
		updates: make(map[uuid.UUID]experts.ClassificationUpdate),
		skips:   make(map[uuid.UUID]string),
		errors:  make(map[uuid.UUID]string),
	}
}

func (m *mockExperts) Handler() *experts.Handler { return nil }

func (m *mockExperts) List(_ context.Context, _ pagination.PageRequest, filters experts.Filters) (*pagination.PageResult[experts.ExpertDocument], error) {
	var out []experts.ExpertDocument
	for _, d := range m.docs {
		if filters.Status != nil && d.Status != *filters.Status {
			continue
		}
		out = append(out, d)
	}
	result := pagination.NewPageResult(out, len(out), 1, len(out)+1)
	return &result, nil
}

func (m *mockExperts) Find(_ context.Context, id uuid.UUID) (*experts.ExpertDocument, error) {
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, experts.ErrNotFound
}

func (m *mockExperts) ListBySource(context.Context, uuid.UUID) ([]experts.ExpertDocument, error) {
	return nil, nil
}

func (m *mockExperts) Create(context.Context, experts.CreateCommand) (*experts.ExpertDocument, error) {
	return nil, nil
}

func (m *mockExperts) Delete(context.Context, uuid.UUID) error { return nil }

func (m *mockExperts) FetchUnclassified(_ context.Context, limit int, cursor *time.Time) ([]experts.ExpertDocument, error) {
	var out []experts.ExpertDocument
	for _, d := range m.docs {
		if d.DocumentTypeID != nil {
			continue
		}
		if cursor != nil && !d.CreatedAt.Before(*cursor) {
			continue
		}
		out = append(out, d)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockExperts) UpdateClassification(_ context.Context, id uuid.UUID, update experts.ClassificationUpdate) (*experts.ExpertDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates[id] = update
	return &experts.ExpertDocument{ID: id, DocumentTypeID: &update.DocumentTypeID, Status: update.Status}, nil
}

func (m *mockExperts) MarkSkipped(_ context.Context, id uuid.UUID, reason string) (*experts.ExpertDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skips[id] = reason
	return &experts.ExpertDocument{ID: id, Status: experts.StatusSkipped}, nil
}

func (m *mockExperts) RecordError(_ context.Context, id uuid.UUID, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[id] = msg
	return nil
}

// mockDocTypes serves a fixed vocabulary.
type mockDocTypes struct {
	types []doctypes.DocumentType
}

func (m *mockDocTypes) Handler() *doctypes.Handler { return nil }

func (m *mockDocTypes) List(context.Context, pagination.PageRequest, doctypes.Filters) (*pagination.PageResult[doctypes.DocumentType], error) {
	result := pagination.NewPageResult(m.types, len(m.types), 1, len(m.types)+1)
	return &result, nil
}

func (m *mockDocTypes) Find(_ context.Context, id string) (*doctypes.DocumentType, error) {
	for i := range m.types {
		if m.types[i].ID == id {
			return &m.types[i], nil
		}
	}
	return nil, doctypes.ErrNotFound
}

func (m *mockDocTypes) ListByCategories(_ context.Context, categories []string) ([]doctypes.DocumentType, error) {
	if len(categories) == 0 {
		return m.types, nil
	}

	var out []doctypes.DocumentType
	for _, t := range m.types {
		for _, c := range categories {
			if t.Category == c {
				out = append(out, t)
				break
			}
		}
	}
	return out, nil
}

func (m *mockDocTypes) Create(context.Context, doctypes.CreateCommand) (*doctypes.DocumentType, error) {
	return nil, nil
}

func (m *mockDocTypes) Delete(context.Context, string) error { return nil }

// mockPrompts serves a single named template.
type mockPrompts struct {
	prompt prompts.Prompt
}

func (m *mockPrompts) Handler() *prompts.Handler { return nil }

func (m *mockPrompts) List(context.Context, pagination.PageRequest, prompts.Filters) (*pagination.PageResult[prompts.Prompt], error) {
	return nil, nil
}

func (m *mockPrompts) Find(context.Context, uuid.UUID) (*prompts.Prompt, error) { return nil, nil }

func (m *mockPrompts) FindByName(_ context.Context, name string) (*prompts.Prompt, error) {
	if name != m.prompt.Name {
		return nil, prompts.ErrNotFound
	}
	return &m.prompt, nil
}

func (m *mockPrompts) Create(context.Context, prompts.CreateCommand) (*prompts.Prompt, error) {
	return nil, nil
}

func (m *mockPrompts) Update(context.Context, uuid.UUID, prompts.UpdateCommand) (*prompts.Prompt, error) {
	return nil, nil
}

func (m *mockPrompts) Delete(context.Context, uuid.UUID) error { return nil }

// mockClassifier returns canned responses keyed by a substring of the
// prompt's document content, falling back to a default response.
type mockClassifier struct {
	mu sync.Mutex

	responses map[string]string
	errs      map[string]error
	fallback  string
	calls     int
}

func (m *mockClassifier) Classify(_ context.Context, prompt string) (*classifier.RawResponse, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	for key, err := range m.errs {
		if strings.Contains(prompt, key) {
			return nil, err
		}
	}
	for key, content := range m.responses {
		if strings.Contains(prompt, key) {
			return &classifier.RawResponse{Content: content, Model: "mock"}, nil
		}
	}
	return &classifier.RawResponse{Content: m.fallback, Model: "mock"}, nil
}

func (m *mockClassifier) Model() string { return "mock" }

// blockingClassifier signals started on its first call, then holds the
// request open until the context is cancelled. It lets tests cancel a run
// while a classification is in flight.
type blockingClassifier struct {
	started chan struct{}
}

func newBlockingClassifier() *blockingClassifier {
	return &blockingClassifier{started: make(chan struct{}, 1)}
}

func (c *blockingClassifier) Classify(ctx context.Context, _ string) (*classifier.RawResponse, error) {
	select {
	case c.started <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

func (c *blockingClassifier) Model() string { return "mock" }

// mockStorage serves text blobs from a map keyed by storage key.
type mockStorage struct {
	blobs map[string]string
	errs  map[string]error
}

func (m *mockStorage) Start(*lifecycle.Coordinator) error { return nil }

func (m *mockStorage) Upload(context.Context, string, io.Reader, string) error { return nil }

func (m *mockStorage) Download(_ context.Context, key string) (io.ReadCloser, error) {
	text, err := m.DownloadText(context.Background(), key)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(strings.NewReader(text)), nil
}

func (m *mockStorage) DownloadText(_ context.Context, key string) (string, error) {
	if err, ok := m.errs[key]; ok {
		return "", err
	}
	text, ok := m.blobs[key]
	if !ok {
		return "", fmt.Errorf("blob %q not found", key)
	}
	return text, nil
}

func (m *mockStorage) Delete(context.Context, string) error { return nil }

func (m *mockStorage) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.blobs[key]
	return ok, nil
}

func testVocabulary() []doctypes.DocumentType {
	return []doctypes.DocumentType{
		{ID: "PAN", Name: "Policy Analysis", Category: "analysis", Description: "policy review documents"},
		{ID: "RPT", Name: "Research Report", Category: "research", Description: "long-form research output"},
		{ID: "MIN", Name: "Meeting Minutes", Category: "administrative"},
	}
}

func testRuntime(src *mockSources, exp *mockExperts, cls *mockClassifier, store *mockStorage) *workflow.Runtime {
	return &workflow.Runtime{
		Sources:  src,
		Experts:  exp,
		DocTypes: &mockDocTypes{types: testVocabulary()},
		Prompts: &mockPrompts{prompt: prompts.Prompt{
			ID:       uuid.New(),
			Name:     "document-classification",
			Template: "Classify the document below.",
		}},
		Classifier: cls,
		Storage:    store,
		Logger:     discardLogger(),

		Concurrency:      2,
		MaxContentLength: 16000,
		FetchBatchSize:   10,
		DefaultPrompt:    "document-classification",
	}
}
