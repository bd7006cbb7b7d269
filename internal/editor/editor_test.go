package editor

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"portfolio-backend/internal/resume"
)

type countingClient struct {
	Client
	mutations int
}

func (c *countingClient) Mutate(ctx context.Context, req resume.MutateRequest) error {
	c.mutations++
	return c.Client.Mutate(ctx, req)
}

func newTestServer(t *testing.T) *HTTPClient {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := &resume.Service{Repo: resume.NewMemoryRepo(), Gate: resume.NewGate("s3cret")}
	r := gin.New()
	resume.NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL+"/api/v1", srv.Client())
}

func TestGateRoundTrip(t *testing.T) {
	ed := New(newTestServer(t))
	ctx := context.Background()

	if ed.Session.State() != Locked {
		t.Fatalf("expected new editor to be locked")
	}
	if err := ed.Unlock(ctx, "s3cret"); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if ed.Session.State() != Unlocked {
		t.Fatalf("expected unlocked")
	}
	if secret, ok := ed.Session.Secret(); !ok || secret != "s3cret" {
		t.Fatalf("unexpected secret %q %v", secret, ok)
	}

	ed.Exit()
	if ed.Session.State() != Locked {
		t.Fatalf("expected locked after exit")
	}
	if _, ok := ed.Session.Secret(); ok {
		t.Fatalf("expected secret cleared after exit")
	}
}

func TestWrongSecretStaysLocked(t *testing.T) {
	client := newTestServer(t)
	ed := New(client)
	ctx := context.Background()

	if err := ed.Unlock(ctx, "guess"); !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if ed.Session.State() != Locked {
		t.Fatalf("expected locked after wrong secret")
	}

	data, _ := resume.EncodeItem(resume.Skills{Title: "Languages", Highlights: []string{"Go"}})
	err := client.Mutate(ctx, resume.MutateRequest{Password: "guess", Action: resume.ActionCreate, Data: data})
	if !errors.Is(err, resume.ErrUnauthorized) {
		t.Fatalf("expected server to reject forced mutate, got %v", err)
	}
}

func TestLockedEditorNeverCallsServer(t *testing.T) {
	client := &countingClient{Client: newTestServer(t)}
	ed := New(client)

	err := ed.Save(context.Background(), resume.Skills{Title: "x", Highlights: []string{"y"}}, "")
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if err := ed.Delete(context.Background(), resume.CategorySkills, "id"); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if client.mutations != 0 {
		t.Fatalf("expected no server calls, got %d", client.mutations)
	}
}

func TestSaveRefreshesFromServer(t *testing.T) {
	ed := New(newTestServer(t))
	ctx := context.Background()
	if err := ed.Unlock(ctx, "s3cret"); err != nil {
		t.Fatalf("unlock: %v", err)
	}

	form := &ExperienceForm{
		Title:        "Engineer",
		Organization: "Acme",
		StartDate:    "2021-02-01",
		EndDate:      "2022-02-01",
		Current:      true,
	}
	form.Technologies.Add("Go")
	if err := ed.Save(ctx, form.Item(), ""); err != nil {
		t.Fatalf("save: %v", err)
	}

	items := ed.Items(resume.CategoryExperience)
	if len(items) != 1 {
		t.Fatalf("expected 1 cached item, got %d", len(items))
	}
	if items[0].EndDate != nil || !items[0].Current {
		t.Fatalf("expected current entry with null end date, got %+v", items[0])
	}

	if err := ed.Delete(ctx, resume.CategoryExperience, items[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := ed.Items(resume.CategoryExperience); len(got) != 0 {
		t.Fatalf("expected empty cache after delete, got %+v", got)
	}
}

func TestRefreshIsIdempotent(t *testing.T) {
	ed := New(newTestServer(t))
	ctx := context.Background()
	if err := ed.Unlock(ctx, "s3cret"); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if err := ed.Save(ctx, resume.Skills{Title: "Tools", Highlights: []string{"git"}}, ""); err != nil {
		t.Fatalf("save: %v", err)
	}

	first := ed.Items(resume.CategorySkills)
	if err := ed.Refresh(ctx, resume.CategorySkills); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	second := ed.Items(resume.CategorySkills)
	if len(first) != len(second) || first[0].ID != second[0].ID {
		t.Fatalf("refresh changed cache: %+v vs %+v", first, second)
	}
}

func TestUpdateReplacesWholeRecord(t *testing.T) {
	ed := New(ServiceClient{Svc: &resume.Service{Repo: resume.NewMemoryRepo(), Gate: resume.NewGate("s3cret")}})
	ctx := context.Background()
	if err := ed.Unlock(ctx, "s3cret"); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if err := ed.Save(ctx, resume.Skills{Title: "Tools", Highlights: []string{"git", "make"}}, ""); err != nil {
		t.Fatalf("save: %v", err)
	}
	id := ed.Items(resume.CategorySkills)[0].ID

	if err := ed.Save(ctx, resume.Skills{Title: "Tooling", Highlights: []string{"docker"}}, id); err != nil {
		t.Fatalf("update: %v", err)
	}
	got := ed.Items(resume.CategorySkills)
	if len(got) != 1 || got[0].Title != "Tooling" || len(got[0].Highlights) != 1 {
		t.Fatalf("unexpected cache after update: %+v", got)
	}
}
