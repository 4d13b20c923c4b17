package sources_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dhg-platform/taxon/internal/sources"
	"github.com/dhg-platform/taxon/pkg/pagination"
)

type mockSystem struct {
	listFn        func(ctx context.Context, page pagination.PageRequest, filters sources.Filters) (*pagination.PageResult[sources.Source], error)
	findFn        func(ctx context.Context, id uuid.UUID) (*sources.Source, error)
	createFn      func(ctx context.Context, cmd sources.CreateCommand) (*sources.Source, error)
	deleteFn      func(ctx context.Context, id uuid.UUID) error
	markSkippedFn func(ctx context.Context, id uuid.UUID, reason string) (*sources.Source, error)
}

func (m *mockSystem) Handler(maxUploadSize int64) *sources.Handler {
	return sources.NewHandler(
		m,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
		maxUploadSize,
	)
}

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters sources.Filters) (*pagination.PageResult[sources.Source], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*sources.Source, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) Create(ctx context.Context, cmd sources.CreateCommand) (*sources.Source, error) {
	return m.createFn(ctx, cmd)
}

func (m *mockSystem) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

func (m *mockSystem) FetchUnclassified(_ context.Context, _ int, _ *time.Time) ([]sources.Source, error) {
	return nil, nil
}

func (m *mockSystem) UpdateClassification(_ context.Context, _ uuid.UUID, _ sources.ClassificationUpdate) (*sources.Source, error) {
	return nil, nil
}

func (m *mockSystem) MarkSkipped(ctx context.Context, id uuid.UUID, reason string) (*sources.Source, error) {
	return m.markSkippedFn(ctx, id, reason)
}

func (m *mockSystem) RecordError(_ context.Context, _ uuid.UUID, _ string) error {
	return nil
}

func setupMux(sys *mockSystem) *http.ServeMux {
	mux := http.NewServeMux()
	group := sys.Handler(1 << 20).Routes()
	for _, route := range group.Routes {
		pattern := route.Method + " " + group.Prefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	return mux
}

func sampleSource() sources.Source {
	now := time.Now().Truncate(time.Second)
	return sources.Source{
		ID:         uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"),
		Title:      "quarterly-report.pdf",
		StorageKey: "sources/550e8400-e29b-41d4-a716-446655440000",
		MimeType:   "application/pdf",
		Status:     sources.StatusUnprocessed,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestHandlerList(t *testing.T) {
	s := sampleSource()
	sys := &mockSystem{
		listFn: func(_ context.Context, _ pagination.PageRequest, _ sources.Filters) (*pagination.PageResult[sources.Source], error) {
			result := pagination.NewPageResult([]sources.Source{s}, 1, 1, 20)
			return &result, nil
		},
	}

	mux := setupMux(sys)

	t.Run("returns paginated list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/sources", nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var result pagination.PageResult[sources.Source]
		if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
			t.Fatalf("decode: %v", err)
		}

		if result.Total != 1 {
			t.Errorf("total = %d, want 1", result.Total)
		}
		if len(result.Data) != 1 {
			t.Fatalf("data length = %d, want 1", len(result.Data))
		}
		if result.Data[0].ID != s.ID {
			t.Errorf("id = %v, want %v", result.Data[0].ID, s.ID)
		}
	})

	t.Run("passes query filters", func(t *testing.T) {
		var captured sources.Filters
		sys.listFn = func(_ context.Context, _ pagination.PageRequest, f sources.Filters) (*pagination.PageResult[sources.Source], error) {
			captured = f
			result := pagination.NewPageResult([]sources.Source{}, 0, 1, 20)
			return &result, nil
		}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/sources?status=processed&unclassified=true", nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if captured.Status == nil || *captured.Status != "processed" {
			t.Errorf("status filter = %v, want processed", captured.Status)
		}
		if !captured.Unclassified {
			t.Error("unclassified filter not set")
		}
	})
}

func TestHandlerFind(t *testing.T) {
	s := sampleSource()

	t.Run("returns source by id", func(t *testing.T) {
		sys := &mockSystem{
			findFn: func(_ context.Context, id uuid.UUID) (*sources.Source, error) {
				if id != s.ID {
					return nil, sources.ErrNotFound
				}
				return &s, nil
			},
		}
		mux := setupMux(sys)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/sources/"+s.ID.String(), nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var got sources.Source
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.ID != s.ID {
			t.Errorf("id = %v, want %v", got.ID, s.ID)
		}
	})

	t.Run("invalid uuid returns 400", func(t *testing.T) {
		mux := setupMux(&mockSystem{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/sources/not-a-uuid", nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("not found returns 404", func(t *testing.T) {
		sys := &mockSystem{
			findFn: func(_ context.Context, _ uuid.UUID) (*sources.Source, error) {
				return nil, sources.ErrNotFound
			},
		}
		mux := setupMux(sys)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/sources/"+uuid.New().String(), nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestHandlerSearch(t *testing.T) {
	s := sampleSource()

	t.Run("returns search results", func(t *testing.T) {
		sys := &mockSystem{
			listFn: func(_ context.Context, _ pagination.PageRequest, _ sources.Filters) (*pagination.PageResult[sources.Source], error) {
				result := pagination.NewPageResult([]sources.Source{s}, 1, 1, 20)
				return &result, nil
			},
		}
		mux := setupMux(sys)

		body, _ := json.Marshal(sources.SearchRequest{
			PageRequest: pagination.PageRequest{Page: 1, PageSize: 20},
		})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/sources/search", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var result pagination.PageResult[sources.Source]
		if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if result.Total != 1 {
			t.Errorf("total = %d, want 1", result.Total)
		}
	})

	t.Run("invalid json returns 400", func(t *testing.T) {
		mux := setupMux(&mockSystem{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/sources/search", bytes.NewReader([]byte("not json")))
		req.Header.Set("Content-Type", "application/json")
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("normalizes pagination", func(t *testing.T) {
		var capturedPage pagination.PageRequest
		sys := &mockSystem{
			listFn: func(_ context.Context, page pagination.PageRequest, _ sources.Filters) (*pagination.PageResult[sources.Source], error) {
				capturedPage = page
				result := pagination.NewPageResult([]sources.Source{}, 0, page.Page, page.PageSize)
				return &result, nil
			},
		}
		mux := setupMux(sys)

		body, _ := json.Marshal(sources.SearchRequest{
			PageRequest: pagination.PageRequest{Page: 0, PageSize: 0},
		})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/sources/search", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if capturedPage.Page != 1 {
			t.Errorf("page = %d, want 1 (normalized)", capturedPage.Page)
		}
		if capturedPage.PageSize != 20 {
			t.Errorf("page_size = %d, want 20 (default)", capturedPage.PageSize)
		}
	})
}

func multipartBody(t *testing.T, field, filename string, data []byte, title string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if title != "" {
		if err := w.WriteField("title", title); err != nil {
			t.Fatalf("write title field: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	return &buf, w.FormDataContentType()
}

func TestHandlerUpload(t *testing.T) {
	s := sampleSource()

	t.Run("creates source from multipart upload", func(t *testing.T) {
		var captured sources.CreateCommand
		sys := &mockSystem{
			createFn: func(_ context.Context, cmd sources.CreateCommand) (*sources.Source, error) {
				captured = cmd
				return &s, nil
			},
		}
		mux := setupMux(sys)

		buf, contentType := multipartBody(t, "file", "quarterly-report.txt", []byte("report body"), "Quarterly Report")

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/sources", buf)
		req.Header.Set("Content-Type", contentType)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201", rec.Code)
		}
		if captured.Title != "Quarterly Report" {
			t.Errorf("title = %q, want Quarterly Report", captured.Title)
		}
		if string(captured.Data) != "report body" {
			t.Errorf("data = %q, want report body", captured.Data)
		}
		if captured.MimeType == "" {
			t.Error("mime type not detected")
		}
	})

	t.Run("defaults title to filename", func(t *testing.T) {
		var captured sources.CreateCommand
		sys := &mockSystem{
			createFn: func(_ context.Context, cmd sources.CreateCommand) (*sources.Source, error) {
				captured = cmd
				return &s, nil
			},
		}
		mux := setupMux(sys)

		buf, contentType := multipartBody(t, "file", "notes.txt", []byte("meeting notes"), "")

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/sources", buf)
		req.Header.Set("Content-Type", contentType)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201", rec.Code)
		}
		if captured.Title != "notes.txt" {
			t.Errorf("title = %q, want notes.txt", captured.Title)
		}
	})

	t.Run("missing file returns 400", func(t *testing.T) {
		mux := setupMux(&mockSystem{})

		buf, contentType := multipartBody(t, "", "", nil, "Orphan Title")

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/sources", buf)
		req.Header.Set("Content-Type", contentType)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandlerSkip(t *testing.T) {
	s := sampleSource()
	s.Status = sources.StatusSkipped

	t.Run("skips with provided reason", func(t *testing.T) {
		var capturedID uuid.UUID
		var capturedReason string
		sys := &mockSystem{
			markSkippedFn: func(_ context.Context, id uuid.UUID, reason string) (*sources.Source, error) {
				capturedID = id
				capturedReason = reason
				return &s, nil
			},
		}
		mux := setupMux(sys)

		body := []byte(`{"reason":"duplicate upload"}`)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/sources/"+s.ID.String()+"/skip", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if capturedID != s.ID {
			t.Errorf("id = %v, want %v", capturedID, s.ID)
		}
		if capturedReason != "duplicate upload" {
			t.Errorf("reason = %q, want duplicate upload", capturedReason)
		}
	})

	t.Run("defaults reason when body omits it", func(t *testing.T) {
		var capturedReason string
		sys := &mockSystem{
			markSkippedFn: func(_ context.Context, _ uuid.UUID, reason string) (*sources.Source, error) {
				capturedReason = reason
				return &s, nil
			},
		}
		mux := setupMux(sys)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/sources/"+s.ID.String()+"/skip", bytes.NewReader([]byte(`{}`)))
		req.Header.Set("Content-Type", "application/json")
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if capturedReason != "skipped by operator" {
			t.Errorf("reason = %q, want skipped by operator", capturedReason)
		}
	})

	t.Run("invalid uuid returns 400", func(t *testing.T) {
		mux := setupMux(&mockSystem{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/sources/not-a-uuid/skip", bytes.NewReader([]byte(`{}`)))
		req.Header.Set("Content-Type", "application/json")
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandlerDelete(t *testing.T) {
	sourceID := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")

	t.Run("deletes source", func(t *testing.T) {
		var capturedID uuid.UUID
		sys := &mockSystem{
			deleteFn: func(_ context.Context, id uuid.UUID) error {
				capturedID = id
				return nil
			},
		}
		mux := setupMux(sys)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("DELETE", "/sources/"+sourceID.String(), nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", rec.Code)
		}
		if capturedID != sourceID {
			t.Errorf("id = %v, want %v", capturedID, sourceID)
		}
	})

	t.Run("invalid uuid returns 400", func(t *testing.T) {
		mux := setupMux(&mockSystem{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("DELETE", "/sources/not-a-uuid", nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("not found returns 404", func(t *testing.T) {
		sys := &mockSystem{
			deleteFn: func(_ context.Context, _ uuid.UUID) error {
				return sources.ErrNotFound
			},
		}
		mux := setupMux(sys)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("DELETE", "/sources/"+uuid.New().String(), nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestHandlerRoutes(t *testing.T) {
	group := (&mockSystem{}).Handler(1 << 20).Routes()

	if group.Prefix != "/sources" {
		t.Errorf("prefix = %q, want /sources", group.Prefix)
	}

	want := []struct {
		method  string
		pattern string
	}{
		{"GET", ""},
		{"GET", "/{id}"},
		{"POST", ""},
		{"POST", "/search"},
		{"POST", "/{id}/skip"},
		{"DELETE", "/{id}"},
	}

	if len(group.Routes) != len(want) {
		t.Fatalf("route count = %d, want %d", len(group.Routes), len(want))
	}

	for i, w := range want {
		r := group.Routes[i]
		if r.Method != w.method || r.Pattern != w.pattern {
			t.Errorf("route[%d] = %s %s, want %s %s", i, r.Method, r.Pattern, w.method, w.pattern)
		}
	}
}
