package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/pinsync/pinsync/internal/auth"
	"github.com/pinsync/pinsync/internal/domain"
	"github.com/pinsync/pinsync/internal/httpserver/deps"
	"github.com/pinsync/pinsync/internal/httpserver/mw"
	"github.com/pinsync/pinsync/internal/logger"
	"github.com/pinsync/pinsync/internal/store/sqlite"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
}

func (p *capturePublisher) Publish(ctx context.Context, ev domain.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *capturePublisher) published() []domain.ChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.ChangeEvent(nil), p.events...)
}

func testDeps(t *testing.T) (deps.Deps, *capturePublisher) {
	t.Helper()

	repo, err := sqlite.New(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("opening test database failed: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	pub := &capturePublisher{}
	return deps.Deps{
		Logger:    logger.New("error", false),
		Repo:      repo,
		Publisher: pub,
	}, pub
}

// router wires the handlers exactly like routes/bookmarks.go but with the
// identity injected directly, skipping cookie auth.
func testRouter(d deps.Deps, ownerID string) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := mw.WithIdentity(req.Context(), auth.Identity{UserID: ownerID, Email: ownerID + "@test"})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Get("/api/bookmarks", ListBookmarks(d))
	r.Post("/api/bookmarks", CreateBookmark(d))
	r.Delete("/api/bookmarks/{id}", DeleteBookmark(d))
	r.Post("/api/bookmarks/import", ImportBookmarks(d))
	r.Get("/api/bookmarks/export", ExportBookmarks(d))
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateBookmark(t *testing.T) {
	d, pub := testDeps(t)
	h := testRouter(d, "user-1")

	rec := doJSON(t, h, http.MethodPost, "/api/bookmarks",
		`{"title":"Go blog","target_url":"https://go.dev/blog/"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body: %s)", rec.Code, rec.Body.String())
	}

	var b domain.Bookmark
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("response is not a bookmark: %v", err)
	}
	if b.ID == "" || b.CreatedAt.IsZero() {
		t.Errorf("response not fully populated: %+v", b)
	}
	if b.OwnerID != "user-1" {
		t.Errorf("OwnerID = %s, want user-1", b.OwnerID)
	}

	events := pub.published()
	if len(events) != 1 || events[0].Kind != domain.EventInsert || events[0].ID != b.ID {
		t.Errorf("published events = %+v, want one insert for %s", events, b.ID)
	}
}

func TestCreateBookmarkValidation(t *testing.T) {
	d, pub := testDeps(t)
	h := testRouter(d, "user-1")

	tests := []struct {
		name string
		body string
		want int
	}{
		{"empty url", `{"title":"x","target_url":""}`, http.StatusUnprocessableEntity},
		{"empty title", `{"title":"","target_url":"https://x.dev"}`, http.StatusUnprocessableEntity},
		{"bad scheme", `{"title":"x","target_url":"ftp://x.dev"}`, http.StatusUnprocessableEntity},
		{"not json", `{{{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/api/bookmarks", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}

	// Rejected intents have no side effect: nothing stored, nothing published.
	if len(pub.published()) != 0 {
		t.Errorf("events published for rejected creates: %+v", pub.published())
	}
	rec := doJSON(t, h, http.MethodGet, "/api/bookmarks", "")
	if !strings.Contains(rec.Body.String(), `"bookmarks":[]`) {
		t.Errorf("list not empty after rejected creates: %s", rec.Body.String())
	}
}

func TestListBookmarksSnapshotOrder(t *testing.T) {
	d, _ := testDeps(t)
	h := testRouter(d, "user-1")

	doJSON(t, h, http.MethodPost, "/api/bookmarks", `{"title":"first","target_url":"https://a.dev"}`)
	doJSON(t, h, http.MethodPost, "/api/bookmarks", `{"title":"second","target_url":"https://b.dev"}`)

	rec := doJSON(t, h, http.MethodGet, "/api/bookmarks", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Bookmarks []domain.Bookmark `json:"bookmarks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if len(resp.Bookmarks) != 2 {
		t.Fatalf("snapshot has %d records, want 2", len(resp.Bookmarks))
	}
	if resp.Bookmarks[0].Title != "second" || resp.Bookmarks[1].Title != "first" {
		t.Errorf("snapshot order = [%s %s], want newest first",
			resp.Bookmarks[0].Title, resp.Bookmarks[1].Title)
	}
}

func TestDeleteBookmark(t *testing.T) {
	d, pub := testDeps(t)
	h := testRouter(d, "user-1")

	rec := doJSON(t, h, http.MethodPost, "/api/bookmarks", `{"title":"x","target_url":"https://x.dev"}`)
	var b domain.Bookmark
	_ = json.Unmarshal(rec.Body.Bytes(), &b)

	rec = doJSON(t, h, http.MethodDelete, "/api/bookmarks/"+b.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	events := pub.published()
	if len(events) != 2 || events[1].Kind != domain.EventDelete || events[1].ID != b.ID {
		t.Errorf("events = %+v, want insert then delete for %s", events, b.ID)
	}

	// Double delete: 404, no extra event.
	rec = doJSON(t, h, http.MethodDelete, "/api/bookmarks/"+b.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
	if len(pub.published()) != 2 {
		t.Errorf("event published for a no-op delete: %+v", pub.published())
	}
}

func TestDeleteForeignBookmark(t *testing.T) {
	d, pub := testDeps(t)
	owner := testRouter(d, "user-1")
	intruder := testRouter(d, "user-2")

	rec := doJSON(t, owner, http.MethodPost, "/api/bookmarks", `{"title":"x","target_url":"https://x.dev"}`)
	var b domain.Bookmark
	_ = json.Unmarshal(rec.Body.Bytes(), &b)

	rec = doJSON(t, intruder, http.MethodDelete, "/api/bookmarks/"+b.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("foreign delete status = %d, want 404", rec.Code)
	}

	// Record still visible to its owner, and no delete event went out.
	rec = doJSON(t, owner, http.MethodGet, "/api/bookmarks", "")
	if !strings.Contains(rec.Body.String(), b.ID) {
		t.Error("record vanished after foreign delete attempt")
	}
	for _, ev := range pub.published() {
		if ev.Kind == domain.EventDelete {
			t.Errorf("delete event published for foreign delete: %+v", ev)
		}
	}
}

func TestImportBookmarks(t *testing.T) {
	d, pub := testDeps(t)
	h := testRouter(d, "user-1")

	doc := `
bookmarks:
  - title: Go blog
    url: https://go.dev/blog/
  - title: bad
    url: not-a-url
`
	rec := doJSON(t, h, http.MethodPost, "/api/bookmarks/import", doc)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	var resp importResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp.Created != 1 || resp.Skipped != 1 {
		t.Errorf("import result = %+v, want 1 created 1 skipped", resp)
	}
	if len(pub.published()) != 1 {
		t.Errorf("published %d events, want 1", len(pub.published()))
	}
}

func TestExportBookmarks(t *testing.T) {
	d, _ := testDeps(t)
	h := testRouter(d, "user-1")

	// Nothing to export yet.
	rec := doJSON(t, h, http.MethodGet, "/api/bookmarks/export", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("empty export status = %d, want 404", rec.Code)
	}

	doJSON(t, h, http.MethodPost, "/api/bookmarks", `{"title":"Go blog","target_url":"https://go.dev/blog/"}`)

	rec = doJSON(t, h, http.MethodGet, "/api/bookmarks/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Go blog") || !strings.Contains(body, "https://go.dev/blog/") {
		t.Errorf("export missing entries: %s", body)
	}
}
