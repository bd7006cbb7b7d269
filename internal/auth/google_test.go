package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	sharedauth "portfolio-backend/internal/shared/auth"
	"portfolio-backend/internal/users"
)

func newRouter(svc *GoogleService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	svc.RegisterRoutes(router.Group("/api/v1"))
	return router
}

// fakeGoogle serves the token and userinfo endpoints.
func fakeGoogle(t *testing.T, profile map[string]any) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "fake-access",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fake-access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(profile)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func configFor(srv *httptest.Server) GoogleConfig {
	return GoogleConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/api/v1/auth/google/callback",
		UIRedirect:   "http://localhost:3000/admin?from=login",
		Endpoint:     oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"},
		UserInfoURL:  srv.URL + "/userinfo",
	}
}

func startState(t *testing.T, router *gin.Engine) string {
	t.Helper()
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/start", nil))
	if resp.Code != http.StatusFound {
		t.Fatalf("start: expected 302, got %d", resp.Code)
	}
	loc, err := url.Parse(resp.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	state := loc.Query().Get("state")
	if state == "" {
		t.Fatalf("expected state in redirect %q", loc)
	}
	return state
}

func TestStartRequiresConfiguration(t *testing.T) {
	router := newRouter(NewGoogleService(GoogleConfig{UIRedirect: "http://localhost:3000/admin"}, nil))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/start", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}

func TestStartStoresState(t *testing.T) {
	svc := NewGoogleService(GoogleConfig{ClientID: "client", ClientSecret: "secret", RedirectURL: "http://cb"}, nil)
	state := startState(t, newRouter(svc))
	if !svc.states.consume(state) {
		t.Fatalf("expected state to be stored")
	}
}

func TestCallbackRejectsUnknownState(t *testing.T) {
	router := newRouter(NewGoogleService(GoogleConfig{ClientID: "client", ClientSecret: "secret", RedirectURL: "http://cb"}, nil))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?state=nope&code=abc", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCallbackIssuesTokenForRecordedUser(t *testing.T) {
	t.Setenv("ENV", "dev")
	t.Setenv("JWT_SECRET", "google-test")
	srv := fakeGoogle(t, map[string]any{
		"id":             "g-123",
		"email":          "Owner@Example.com",
		"verified_email": true,
		"name":           "Owner",
	})
	recorder := users.NewService(users.NewMemoryRepo())
	router := newRouter(NewGoogleService(configFor(srv), recorder))

	state := startState(t, router)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet,
		"/api/v1/auth/google/callback?code=xyz&state="+url.QueryEscape(state), nil))
	if resp.Code != http.StatusFound {
		t.Fatalf("callback: expected 302, got %d: %s", resp.Code, resp.Body.String())
	}

	loc, err := url.Parse(resp.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	if loc.Query().Get("from") != "login" {
		t.Fatalf("existing query lost: %q", loc)
	}
	claims, err := sharedauth.VerifyJWT(loc.Query().Get("token"))
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if claims.Email != "Owner@Example.com" {
		t.Fatalf("email claim = %q", claims.Email)
	}
	if strings.HasPrefix(claims.Subject, "google:") {
		t.Fatalf("subject should be the stored user id, got %q", claims.Subject)
	}
	if _, err := recorder.GetByID(t.Context(), claims.Subject); err != nil {
		t.Fatalf("user not recorded: %v", err)
	}
}

func TestCallbackRejectsUnverifiedEmail(t *testing.T) {
	t.Setenv("ENV", "dev")
	srv := fakeGoogle(t, map[string]any{"id": "g-9", "email": "x@example.com", "verified_email": false})
	router := newRouter(NewGoogleService(configFor(srv), nil))

	state := startState(t, router)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet,
		"/api/v1/auth/google/callback?code=xyz&state="+url.QueryEscape(state), nil))
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestStateStoreConsumesOnceAndExpires(t *testing.T) {
	store := newStateStore()
	store.put("stale", time.Now().Add(-time.Minute))
	if store.consume("stale") {
		t.Fatalf("expected expired state to be rejected")
	}

	store.put("old", time.Now().Add(-time.Second))
	store.put("fresh", time.Now().Add(time.Minute))
	if store.len() != 1 {
		t.Fatalf("expected expired entries pruned on put, have %d", store.len())
	}
	if !store.consume("fresh") {
		t.Fatalf("expected fresh state to be accepted")
	}
	if store.consume("fresh") {
		t.Fatalf("expected state to be single use")
	}
}

func TestAppendToken(t *testing.T) {
	got, err := appendToken("http://localhost:3000/admin?from=login", "abc")
	if err != nil {
		t.Fatalf("appendToken: %v", err)
	}
	if !strings.Contains(got, "token=abc") || !strings.Contains(got, "from=login") {
		t.Fatalf("unexpected redirect %q", got)
	}
	if _, err := appendToken("", "abc"); err == nil {
		t.Fatalf("expected error for empty redirect")
	}
}
