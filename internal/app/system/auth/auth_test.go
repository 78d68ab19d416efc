package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/flowhub/internal/app/system/auth"
	"go.uber.org/zap"
)

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if called != nil {
			*called = true
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestNewSessionManager_EmptyKeyGeneratesOne(t *testing.T) {
	sm, err := auth.NewSessionManager("", "s", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("expected random key fallback, got %v", err)
	}
	if sm == nil {
		t.Fatal("expected session manager")
	}
}

func TestNewSessionManager_EmptyNameFails(t *testing.T) {
	if _, err := auth.NewSessionManager("k", "", "", time.Hour, false, zap.NewNop()); err == nil {
		t.Fatal("expected error for empty session name")
	}
}

func TestRequireSignedIn_NoUser_Returns401(t *testing.T) {
	sm := newTestSessionManager(t)
	called := false
	handler := sm.RequireSignedIn(okHandler(&called))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/members/x/code-of-conduct", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if called {
		t.Error("handler should not run without a user")
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q", ct)
	}
}

func TestRequireSignedIn_WithUser_Proceeds(t *testing.T) {
	sm := newTestSessionManager(t)
	called := false
	handler := sm.RequireSignedIn(okHandler(&called))

	req := withTestUser(httptest.NewRequest("GET", "/", nil), "member")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called || rec.Code != http.StatusOK {
		t.Errorf("expected pass-through, got called=%v status=%d", called, rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireRole("admin")(okHandler(nil))

	tests := []struct {
		name     string
		role     string
		signedIn bool
		expected int
	}{
		{"no user", "", false, http.StatusUnauthorized},
		{"member", "member", true, http.StatusForbidden},
		{"admin", "admin", true, http.StatusOK},
		{"uppercase admin", "ADMIN", true, http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/code-of-conduct/upload", nil)
			if tc.signedIn {
				req = withTestUser(req, tc.role)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.expected {
				t.Errorf("expected status %d, got %d", tc.expected, rec.Code)
			}
		})
	}
}

func TestSignIn_LoadSessionUser_RoundTrip(t *testing.T) {
	sm := newTestSessionManager(t)

	rec := httptest.NewRecorder()
	want := auth.SessionUser{ID: "507f1f77bcf86cd799439011", Name: "Ada", LoginID: "ada@example.com", Role: "admin"}
	if err := sm.SignIn(rec, httptest.NewRequest("GET", "/", nil), want); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}

	var got *auth.SessionUser
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))
	req := httptest.NewRequest("GET", "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected user loaded from session")
	}
	if *got != want {
		t.Errorf("loaded user: got %+v, want %+v", *got, want)
	}
}

func TestLoadSessionUser_GarbageCookie(t *testing.T) {
	sm := newTestSessionManager(t)

	found := true
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = auth.CurrentUser(r)
	}))
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "test-session", Value: "not-a-valid-cookie"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if found {
		t.Error("expected no user for an unreadable cookie")
	}
}

func TestCurrentUser_NoUser(t *testing.T) {
	user, ok := auth.CurrentUser(httptest.NewRequest("GET", "/", nil))
	if ok || user != nil {
		t.Errorf("expected no user, got %v %v", user, ok)
	}
}

func TestSessionUser_IsAdmin(t *testing.T) {
	var nilUser *auth.SessionUser
	if nilUser.IsAdmin() {
		t.Error("nil user is not admin")
	}
	if !(&auth.SessionUser{Role: "Admin"}).IsAdmin() {
		t.Error("expected Admin to be admin")
	}
	if (&auth.SessionUser{Role: "member"}).IsAdmin() {
		t.Error("member is not admin")
	}
}

func withTestUser(r *http.Request, role string) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:      "507f1f77bcf86cd799439011",
		Name:    "Test User",
		LoginID: "test@example.com",
		Role:    role,
	})
}
