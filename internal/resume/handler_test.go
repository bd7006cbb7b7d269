package resume

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func postJSON(r http.Handler, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return body.Error
}

func TestMutateContract(t *testing.T) {
	tests := []struct {
		name    string
		body    map[string]any
		status  int
		message string
	}{
		{"wrong password", map[string]any{"password": "nope", "action": "create"}, http.StatusUnauthorized, "Invalid password"},
		{"unknown action", map[string]any{"password": "s3cret", "action": "explode"}, http.StatusBadRequest, "Invalid action"},
		{"missing data", map[string]any{"password": "s3cret", "action": "create"}, http.StatusBadRequest, "invalid input: data is required"},
	}
	r := newTestRouter(newTestService())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(r, "/api/v1/resume", tt.body)
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
			if got := decodeError(t, w); got != tt.message {
				t.Fatalf("expected %q, got %q", tt.message, got)
			}
		})
	}
}

// brokenRepo serves reads from memory and fails every write.
type brokenRepo struct {
	*MemoryRepo
}

var errStoreDown = errors.New("connection refused")

func (brokenRepo) Create(context.Context, Entry) (Entry, error) { return Entry{}, errStoreDown }
func (brokenRepo) Replace(context.Context, string, Entry) (Entry, error) {
	return Entry{}, errStoreDown
}
func (brokenRepo) Delete(context.Context, string) error { return errStoreDown }

func TestMutateStoreFailure(t *testing.T) {
	svc := &Service{Repo: brokenRepo{NewMemoryRepo()}, Gate: NewGate("s3cret")}
	r := newTestRouter(svc)
	id := "0b5f6c0e-7a43-4c1e-9f57-3f0f7c6d2a11"
	skills := map[string]any{"category": "skills", "title": "Languages", "highlights": []string{"Go"}}

	tests := []struct {
		name string
		body map[string]any
	}{
		{"create", map[string]any{"password": "s3cret", "action": "create", "data": skills}},
		{"update", map[string]any{"password": "s3cret", "action": "update", "id": id, "data": skills}},
		{"delete", map[string]any{"password": "s3cret", "action": "delete", "id": id}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(r, "/api/v1/resume", tt.body)
			if w.Code != http.StatusInternalServerError {
				t.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
			}
			if msg := decodeError(t, w); msg != "Failed to apply resume change" {
				t.Fatalf("unexpected error message %q", msg)
			}
			if bytes.Contains(w.Body.Bytes(), []byte(errStoreDown.Error())) {
				t.Fatalf("store error leaked to client: %s", w.Body.String())
			}
		})
	}
}

func TestMutateCurrentIgnoresStaleEndDate(t *testing.T) {
	r := newTestRouter(newTestService())

	w := postJSON(r, "/api/v1/resume", map[string]any{
		"password": "s3cret",
		"action":   "create",
		"data": map[string]any{
			"category":     "experience",
			"title":        "Engineer",
			"organization": "Acme",
			"start_date":   "2022-01-01",
			"end_date":     "2023-01",
			"current":      true,
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/resume/experience", nil))
	var entries []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if end, ok := entries[0]["end_date"]; !ok || end != nil {
		t.Fatalf("expected end_date null, got %v", entries[0]["end_date"])
	}
}

func TestMutateCreateThenList(t *testing.T) {
	r := newTestRouter(newTestService())

	w := postJSON(r, "/api/v1/resume", map[string]any{
		"password": "s3cret",
		"action":   "create",
		"data": map[string]any{
			"category":   "skills",
			"title":      "Languages",
			"highlights": []string{"Go", "TypeScript"},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var ok struct {
		Success bool `json:"success"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &ok)
	if !ok.Success {
		t.Fatalf("expected success true, got %s", w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resume/skills", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var entries []Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Highlights[1] != "TypeScript" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestUnlock(t *testing.T) {
	r := newTestRouter(newTestService())
	if w := postJSON(r, "/api/v1/resume/unlock", map[string]string{"password": "s3cret"}); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w := postJSON(r, "/api/v1/resume/unlock", map[string]string{"password": "bad"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestListUnknownCategory(t *testing.T) {
	r := newTestRouter(newTestService())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/resume/hobbies", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
