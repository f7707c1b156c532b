package mw

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pinsync/pinsync/internal/auth"
)

func testSessions() *auth.Sessions {
	return auth.NewSessions([]byte("0123456789abcdef0123456789abcdef"), time.Hour, false)
}

func protected(t *testing.T, sessions *auth.Sessions, want auth.Identity) http.Handler {
	t.Helper()
	return RequireAuth(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := IdentityFrom(r.Context())
		if !ok {
			t.Error("identity missing from context inside protected handler")
		}
		if got != want {
			t.Errorf("identity = %+v, want %+v", got, want)
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRequireAuthWithValidCookie(t *testing.T) {
	sessions := testSessions()
	id := auth.Identity{UserID: "user-1", Email: "u@example.com"}
	token, expires, err := sessions.Issue(id)
	if err != nil {
		t.Fatalf("issuing session failed: %v", err)
	}

	rec := httptest.NewRecorder()
	sessions.SetCookie(rec, token, expires)
	cookie := rec.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/api/bookmarks", nil)
	req.AddCookie(cookie)

	resp := httptest.NewRecorder()
	protected(t, sessions, id).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.Code)
	}
}

func TestRequireAuthRejectsAPIRequest(t *testing.T) {
	sessions := testSessions()
	h := RequireAuth(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached without a session")
	}))

	for _, path := range []string{"/api/bookmarks", "/ws"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", path, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("%s: Content-Type = %s, want application/json", path, ct)
		}
	}
}

func TestRequireAuthRedirectsPageRequest(t *testing.T) {
	sessions := testSessions()
	h := RequireAuth(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached without a session")
	}))

	req := httptest.NewRequest(http.MethodGet, "/settings", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/auth/login" {
		t.Errorf("Location = %s, want /auth/login", loc)
	}
}

func TestRequireAuthRejectsTamperedToken(t *testing.T) {
	sessions := testSessions()
	token, expires, err := sessions.Issue(auth.Identity{UserID: "user-1", Email: "u@example.com"})
	if err != nil {
		t.Fatalf("issuing session failed: %v", err)
	}

	rec := httptest.NewRecorder()
	sessions.SetCookie(rec, strings.ToUpper(token), expires)
	cookie := rec.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/api/bookmarks", nil)
	req.AddCookie(cookie)

	resp := httptest.NewRecorder()
	h := RequireAuth(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached with a tampered token")
	}))
	h.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.Code)
	}
}
