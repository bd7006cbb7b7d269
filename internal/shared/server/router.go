package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	googleauth "portfolio-backend/internal/auth"
	"portfolio-backend/internal/blog"
	"portfolio-backend/internal/projects"
	"portfolio-backend/internal/resume"
	"portfolio-backend/internal/services/health"
	"portfolio-backend/internal/shared/config"
	"portfolio-backend/internal/shared/metrics"
	"portfolio-backend/internal/shared/server/middleware"
	"portfolio-backend/internal/shared/server/respond"
	"portfolio-backend/internal/uploads"
	"portfolio-backend/internal/users"
)

// RouterDeps carries the handlers mounted by NewRouter. Nil handlers are
// skipped.
type RouterDeps struct {
	Config          config.Config
	Health          *health.Service
	ResumeHandler   *resume.Handler
	ProjectsHandler *projects.Handler
	BlogHandler     *blog.Handler
	UploadsHandler  *uploads.Handler
	UsersHandler    *users.Handler
	GoogleAuth      *googleauth.GoogleService
	// MediaDir is served under /media when the local blob store is active.
	MediaDir string
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(),
	)
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				middleware.PublicReadGroup: {Rate: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst},
			},
		}))
	}

	r.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		st := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !st.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, st)
	})
	r.GET("/metrics", metrics.Handler())
	if deps.MediaDir != "" {
		r.Static("/media", deps.MediaDir)
	}
	if deps.ProjectsHandler != nil {
		r.GET("/sitemap.xml", deps.ProjectsHandler.Sitemap)
	}

	api := r.Group("/api/v1")
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UsersHandler != nil {
		deps.UsersHandler.RegisterRoutes(api)
	}
	if deps.ResumeHandler != nil {
		deps.ResumeHandler.RegisterRoutes(api)
	}
	if deps.ProjectsHandler != nil {
		deps.ProjectsHandler.RegisterPublic(api)
	}
	if deps.BlogHandler != nil {
		deps.BlogHandler.RegisterPublic(api)
	}

	admin := api.Group("/admin", middleware.RequireAdmin(cfg.AdminEmails))
	if deps.ProjectsHandler != nil {
		deps.ProjectsHandler.RegisterAdmin(admin)
	}
	if deps.BlogHandler != nil {
		deps.BlogHandler.RegisterAdmin(admin)
	}
	if deps.UploadsHandler != nil {
		deps.UploadsHandler.RegisterRoutes(admin)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
