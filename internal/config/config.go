package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName     string
	AppEnv      string
	AppURL      string
	Port        string
	ContentPath string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret    string
	JWTExpiry    time.Duration
	CookieSecure bool

	// Key-value store backing likes, drafts, published snapshots and projects
	KVDriver      string // "memory" or "redis"
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Generative text service
	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiModel   string
	GeminiTimeout time.Duration

	// Studio
	StudioStepDelay     time.Duration // Delay between simulated progress milestones
	StudioAssetBaseURL  string        // Base for synthesized asset URLs
	StudioTimeout       time.Duration // Upper bound on one generation
	StudioIdleTTL       time.Duration // Unused sessions are dropped after this
	OrphanSweepInterval time.Duration

	// Email
	EmailFrom    string
	ResendAPIKey string

	// Observability (optional)
	SentryDSN string

	// Storage (S3-compatible, optional: cover uploads are disabled without a bucket)
	S3Region               string
	S3Bucket               string
	S3AccessKey            string
	S3SecretKey            string
	S3Endpoint             string
	S3PresignExpiryPublic  time.Duration
	S3PresignExpiryPrivate time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName:     envString("APP_NAME", "Storyloom"),
		AppEnv:      envString("APP_ENV", "development"),
		AppURL:      envString("APP_URL", "http://localhost:8090"),
		Port:        envString("PORT", "8090"),
		ContentPath: envString("CONTENT_PATH", "content"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/storyloom.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Security
		JWTSecret:    envRequired("JWT_SECRET"),
		JWTExpiry:    envDuration("JWT_EXPIRY", 168*time.Hour), // 7 days
		CookieSecure: envBool("COOKIE_SECURE", envString("APP_ENV", "development") == "production"),

		// Key-value store
		KVDriver:      envString("KV_DRIVER", "memory"),
		RedisAddr:     envString("REDIS_ADDR", "localhost:6379"),
		RedisPassword: envString("REDIS_PASSWORD", ""),
		RedisDB:       envInt("REDIS_DB", 0),

		// Generative text
		GeminiAPIKey:  envString("GEMINI_API_KEY", ""),
		GeminiBaseURL: envString("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiModel:   envString("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiTimeout: envDuration("GEMINI_TIMEOUT", 60*time.Second),

		// Studio
		StudioStepDelay:     envDuration("STUDIO_STEP_DELAY", 800*time.Millisecond),
		StudioAssetBaseURL:  envString("STUDIO_ASSET_BASE_URL", "https://example.com"),
		StudioTimeout:       envDuration("STUDIO_TIMEOUT", 2*time.Minute),
		StudioIdleTTL:       envDuration("STUDIO_IDLE_TTL", 2*time.Hour),
		OrphanSweepInterval: envDuration("ORPHAN_SWEEP_INTERVAL", 6*time.Hour),

		// Email (RESEND_API_KEY optional in development, required in production)
		EmailFrom:    envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage
		S3Region:               envString("S3_REGION", "us-east-1"),
		S3Bucket:               envString("S3_BUCKET", ""),
		S3AccessKey:            envString("S3_ACCESS_KEY", ""),
		S3SecretKey:            envString("S3_SECRET_KEY", ""),
		S3Endpoint:             envString("S3_ENDPOINT", ""),
		S3PresignExpiryPublic:  envDuration("S3_PRESIGN_EXPIRY_PUBLIC", 168*time.Hour),
		S3PresignExpiryPrivate: envDuration("S3_PRESIGN_EXPIRY_PRIVATE", 1*time.Hour),
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures external services are configured for production deployments.
func validateProduction(cfg *Config) {
	if cfg.ResendAPIKey == "" {
		slog.Error("production deployment requires RESEND_API_KEY",
			"hint", "set APP_ENV=development for local testing with email log mode")
		os.Exit(1)
	}
	if cfg.GeminiAPIKey == "" {
		slog.Error("production deployment requires GEMINI_API_KEY")
		os.Exit(1)
	}
	if cfg.KVDriver != "redis" {
		slog.Warn("in-memory key-value store loses likes and drafts on restart", "kv_driver", cfg.KVDriver)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// StorageEnabled reports whether a bucket is configured for cover uploads.
func (c *Config) StorageEnabled() bool {
	return c.S3Bucket != ""
}

// Sanitized returns a copy of the config with only public/safe fields.
// All secrets, credentials, and sensitive data are excluded.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:            c.AppName,
		AppEnv:             c.AppEnv,
		AppURL:             c.AppURL,
		Port:               c.Port,
		KVDriver:           c.KVDriver,
		GeminiModel:        c.GeminiModel,
		StudioStepDelay:    c.StudioStepDelay,
		StudioAssetBaseURL: c.StudioAssetBaseURL,
		EmailFrom:          c.EmailFrom,
		S3Endpoint:         c.S3Endpoint,
	}
}
