package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"portfolio-backend/internal/shared/telemetry"
)

const defaultResumePassword = "admin123"

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	Env             string
	DatabaseURL     string

	ObjectStoreType   string
	LocalStoreDir     string
	PublicBaseURL     string
	S3Endpoint        string
	S3Region          string
	S3Bucket          string
	S3Prefix          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3ForcePathStyle  bool

	ResumePassword string
	AdminEmails    []string
	SiteURL        string

	UploadMaxFiles       int
	UploadMaxBytes       int64
	UploadSessionTTL     time.Duration
	UploadCancelOnRemove bool

	RateLimitRPS   float64
	RateLimitBurst int

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		telemetry.Warn("config.missing", map[string]any{"key": "DATABASE_URL", "effect": "memory repositories"})
	}

	password := os.Getenv("RESUME_PASSWORD")
	if password == "" {
		if env == "production" {
			telemetry.Warn("config.missing", map[string]any{"key": "RESUME_PASSWORD", "effect": "resume editing disabled"})
		} else {
			password = defaultResumePassword
		}
	}

	storeType := normalizeStoreType(getEnv("OBJECT_STORE", "local"))
	publicBaseDefault := "http://localhost:8080/media"
	if storeType == "s3" {
		// s3 store derives a bucket URL when unset
		publicBaseDefault = ""
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		Env:             env,
		DatabaseURL:     dbURL,

		ObjectStoreType:   storeType,
		LocalStoreDir:     getEnv("LOCAL_STORE_DIR", "./data/project-media"),
		PublicBaseURL:     strings.TrimRight(getEnv("PUBLIC_BASE_URL", publicBaseDefault), "/"),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3Bucket:          getEnv("S3_BUCKET", "project-media"),
		S3Prefix:          getEnv("S3_PREFIX", ""),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3ForcePathStyle:  getEnvBool("S3_FORCE_PATH_STYLE", true),

		ResumePassword: password,
		AdminEmails:    splitAndTrim(strings.ToLower(getEnv("ADMIN_EMAILS", ""))),
		SiteURL:        strings.TrimRight(getEnv("SITE_URL", "http://localhost:3000"), "/"),

		UploadMaxFiles:       getEnvInt("UPLOAD_MAX_FILES", 10),
		UploadMaxBytes:       int64(getEnvInt("UPLOAD_MAX_BYTES", 50<<20)),
		UploadSessionTTL:     getEnvDuration("UPLOAD_SESSION_TTL", time.Hour),
		UploadCancelOnRemove: getEnvBool("UPLOAD_CANCEL_ON_REMOVE", false),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 0),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 20),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		UIRedirectURL:      getEnv("UI_REDIRECT_URL", ""),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("config.invalid", map[string]any{"key": key, "type": "int", "error": err.Error()})
		return def
	}
	return val
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		telemetry.Warn("config.invalid", map[string]any{"key": key, "type": "float", "error": err.Error()})
		return def
	}
	return val
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		telemetry.Warn("config.invalid", map[string]any{"key": key, "type": "bool", "error": err.Error()})
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		telemetry.Warn("config.invalid", map[string]any{"key": key, "type": "duration", "error": err.Error()})
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
