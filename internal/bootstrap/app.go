package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "portfolio-backend/internal/auth"
	"portfolio-backend/internal/blog"
	"portfolio-backend/internal/projects"
	"portfolio-backend/internal/resume"
	"portfolio-backend/internal/services/health"
	"portfolio-backend/internal/shared/config"
	"portfolio-backend/internal/shared/server"
	"portfolio-backend/internal/shared/storage/db"
	"portfolio-backend/internal/shared/storage/object"
	localstore "portfolio-backend/internal/shared/storage/object/local"
	s3store "portfolio-backend/internal/shared/storage/object/s3"
	"portfolio-backend/internal/shared/telemetry"
	"portfolio-backend/internal/uploads"
	"portfolio-backend/internal/users"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.BlobStore

	ResumeRepo   resume.Repo
	ProjectsRepo projects.Repo
	BlogRepo     blog.Repo
	UsersRepo    users.Repo

	ResumeService   *resume.Service
	ProjectsService *projects.Service
	BlogService     *blog.Service
	UsersService    *users.Service
	Uploads         *uploads.Registry

	GoogleAuth *googleauth.GoogleService
}

// Build prepares every dependency and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	telemetry.Init(cfg.Env)
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, mediaDir, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
	}
	buildServices(app)

	var mediaHandlerDir string
	if cfg.ObjectStoreType == "local" {
		mediaHandlerDir = mediaDir
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		Health:          health.NewService(sqlDB, cfg.ObjectStoreType),
		ResumeHandler:   resume.NewHandler(app.ResumeService),
		ProjectsHandler: projects.NewHandler(app.ProjectsService),
		BlogHandler:     blog.NewHandler(app.BlogService),
		UploadsHandler:  uploads.NewHandler(app.Uploads, cfg.UploadMaxBytes),
		UsersHandler:    users.NewHandler(app.UsersService, cfg.AdminEmails),
		GoogleAuth:      app.GoogleAuth,
		MediaDir:        mediaHandlerDir,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":          cfg.Env,
		"database":     sqlDB != nil,
		"object_store": cfg.ObjectStoreType,
	})
	return app, nil
}

// Close releases long-lived resources.
func (a *App) Close() {
	if a.Uploads != nil {
		a.Uploads.CloseAll()
	}
	if a.DB != nil && !db.IsLambdaRuntime() {
		a.DB.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database.memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database.memory", map[string]any{"reason": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	if isDevLike(cfg.Env) {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.BlobStore, string, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		store, err := s3store.New(ctx, s3store.Options{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			ForcePathStyle:  cfg.S3ForcePathStyle,
			PublicBaseURL:   cfg.PublicBaseURL,
		})
		if err != nil {
			return nil, "", fmt.Errorf("s3 store: %w", err)
		}
		return store, "", nil
	default:
		store := localstore.New(cfg.LocalStoreDir, cfg.PublicBaseURL)
		return store, store.Dir(), nil
	}
}

func buildServices(app *App) {
	cfg := app.Config
	if app.DB != nil {
		app.ResumeRepo = &resume.PGRepo{DB: app.DB}
		app.ProjectsRepo = &projects.PGRepo{DB: app.DB}
		app.BlogRepo = &blog.PGRepo{DB: app.DB}
		app.UsersRepo = &users.PGRepo{DB: app.DB}
	} else {
		app.ResumeRepo = resume.NewMemoryRepo()
		app.ProjectsRepo = projects.NewMemoryRepo()
		app.BlogRepo = blog.NewMemoryRepo()
		app.UsersRepo = users.NewMemoryRepo()
	}

	app.ResumeService = &resume.Service{Repo: app.ResumeRepo, Gate: resume.NewGate(cfg.ResumePassword)}
	app.ProjectsService = &projects.Service{Repo: app.ProjectsRepo, SiteURL: cfg.SiteURL}
	app.BlogService = &blog.Service{Repo: app.BlogRepo}
	app.UsersService = users.NewService(app.UsersRepo)
	app.Uploads = uploads.NewRegistry(uploads.RegistryOptions{
		Store:          app.Store,
		Notifier:       uploads.LogNotifier{},
		MaxFiles:       cfg.UploadMaxFiles,
		TTL:            cfg.UploadSessionTTL,
		CancelOnRemove: cfg.UploadCancelOnRemove,
	})
	app.GoogleAuth = googleauth.NewGoogleService(googleauth.GoogleConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		UIRedirect:   cfg.UIRedirectURL,
	}, app.UsersService)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
