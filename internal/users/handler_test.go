package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"portfolio-backend/internal/shared/auth"
	"portfolio-backend/internal/shared/server/middleware"
)

func TestMe(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("ENV", "dev")
	t.Setenv("JWT_SECRET", "users-test")

	svc := NewService(NewMemoryRepo())
	stored, err := svc.UpsertFromAuth(context.Background(), User{GoogleSub: "g-1", Email: "admin@example.com", Name: "Admin"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	r := gin.New()
	r.Use(middleware.Auth())
	NewHandler(svc, []string{" Admin@Example.com "}).RegisterRoutes(r.Group("/api/v1"))

	token := func(subject string) string {
		tok, err := auth.SignJWT(auth.Claims{
			Email:            "admin@example.com",
			RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
		})
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return tok
	}

	tests := []struct {
		name   string
		bearer string
		status int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"unknown user", token("ghost"), http.StatusNotFound},
		{"known admin", token(stored.ID), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
			if tt.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tt.bearer)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.status, w.Body.String())
			}
			if tt.status != http.StatusOK {
				return
			}
			var body struct {
				ID      string `json:"id"`
				IsAdmin bool   `json:"isAdmin"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.ID != stored.ID || !body.IsAdmin {
				t.Fatalf("unexpected body %+v", body)
			}
		})
	}
}
