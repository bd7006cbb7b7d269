package uploads

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	localstore "portfolio-backend/internal/shared/storage/object/local"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

type uploadPart struct {
	name string
	data []byte
}

func newUploadRouter(t *testing.T) (*gin.Engine, *Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := localstore.New(t.TempDir(), "http://localhost:8080/media")
	reg := NewRegistry(RegistryOptions{Store: store, MaxFiles: 10, Notifier: &recordingNotifier{}})
	h := NewHandler(reg, 1<<20)

	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v1/admin"))
	return r, reg
}

func multipartBody(t *testing.T, parts []uploadPart) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		fw, err := w.CreateFormFile("files", p.name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(p.data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func createSession(t *testing.T, r *gin.Engine) string {
	t.Helper()
	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/uploads/sessions", bytes.NewBufferString(`{"projectId":"p-1"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var body struct {
		SessionID string `json:"sessionId"`
		MaxFiles  int    `json:"maxFiles"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.MaxFiles != 10 {
		t.Fatalf("expected maxFiles 10, got %d", body.MaxFiles)
	}
	return body.SessionID
}

func TestUploadSessionLifecycle(t *testing.T) {
	r, _ := newUploadRouter(t)
	sessionID := createSession(t, r)
	base := "/api/v1/admin/uploads/sessions/" + sessionID

	body, contentType := multipartBody(t, []uploadPart{
		{name: "cover.png", data: pngBytes},
		{name: "notes.txt", data: []byte("hello")},
		{name: "fake.png", data: []byte("plain text pretending")},
	})
	req := httptest.NewRequest(http.MethodPost, base+"/files", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var submitted struct {
		URLs     []string       `json:"urls"`
		Tasks    []Task         `json:"tasks"`
		Rejected []rejectedFile `json:"rejected"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &submitted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(submitted.URLs) != 1 || len(submitted.Tasks) != 1 || len(submitted.Rejected) != 2 {
		t.Fatalf("unexpected submit response: %s", resp.Body.String())
	}
	task := submitted.Tasks[0]
	if task.Status != StatusSuccess || task.URL != submitted.URLs[0] {
		t.Fatalf("unexpected task %+v", task)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, base+"/tasks/"+task.ID+"/retry", nil))
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 for retry of success, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, base+"/tasks/"+task.ID, nil))
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, base+"/tasks/"+task.ID, nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, base, nil))
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 closing session, got %d", resp.Code)
	}
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, base, nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after close, got %d", resp.Code)
	}
}

func TestSubmitWithoutWaitReturnsAccepted(t *testing.T) {
	r, reg := newUploadRouter(t)
	sessionID := createSession(t, r)

	body, contentType := multipartBody(t, []uploadPart{{name: "a.png", data: pngBytes}})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/uploads/sessions/"+sessionID+"/files?wait=false", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", resp.Code, resp.Body.String())
	}

	s, err := reg.Get(sessionID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if len(s.Coordinator.Tasks()) != 1 {
		t.Fatalf("expected one task in session")
	}
}

func TestSubmitRequiresFiles(t *testing.T) {
	r, _ := newUploadRouter(t)
	sessionID := createSession(t, r)

	body, contentType := multipartBody(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/uploads/sessions/"+sessionID+"/files", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestUnknownSessionIs404(t *testing.T) {
	r, _ := newUploadRouter(t)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/admin/uploads/sessions/nope", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
