package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendLocal    = "local"
	BackendSupabase = "supabase"
)

type Config struct {
	AppEnv string

	HTTPAddr string

	// Backend selects the collaborator: "local" (postgres/redis/s3) or "supabase".
	Backend string

	DatabaseURL string

	JWTSecret      string
	JWTIssuer      string
	AccessTokenTTL time.Duration
	BcryptCost     int

	// Hosted collaborator. The anon key is publishable; access rules stay on the backend.
	SupabaseURL     string
	SupabaseAnonKey string

	StorageBucket string

	// S3/MinIO (local backend blob store)
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Region          string
	S3UsePathStyle    bool
	S3PublicBaseURL   string

	// RabbitMQ
	RabbitURL      string
	RabbitExchange string

	// Redis & Caching
	RedisURL     string
	CacheTTLList time.Duration

	// Rate Limiting
	RLEnabled    bool
	RLLimit      int
	RLWindow     time.Duration
	RLLoginLimit int

	// Visitors
	CookieSecure         bool
	VisitorIdleTTL       time.Duration
	VisitorSweepInterval time.Duration
	MaxUploadBytes       int64

	SeedFile string

	LogLevel  string
	LogFormat string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.AppEnv = getEnv("APP_ENV", "dev")
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")
	cfg.Backend = strings.ToLower(getEnv("BACKEND", BackendLocal))

	cfg.DatabaseURL = getEnv("DATABASE_URL", "")

	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.JWTIssuer = getEnv("JWT_ISSUER", "listing-service")
	cfg.AccessTokenTTL = getDuration("ACCESS_TOKEN_TTL", 12*time.Hour)
	cfg.BcryptCost = getIntEnv("BCRYPT_COST", 12)

	cfg.SupabaseURL = strings.TrimRight(getEnv("SUPABASE_URL", ""), "/")
	cfg.SupabaseAnonKey = getEnv("SUPABASE_ANON_KEY", "")

	cfg.StorageBucket = getEnv("STORAGE_BUCKET", "event-images")

	cfg.S3Endpoint = getEnv("S3_ENDPOINT", "http://localhost:9000")
	cfg.S3AccessKeyID = getEnv("S3_ACCESS_KEY_ID", "minioadmin")
	cfg.S3SecretAccessKey = getEnv("S3_SECRET_ACCESS_KEY", "minioadmin")
	cfg.S3Region = getEnv("S3_REGION", "us-east-1")
	cfg.S3UsePathStyle = getBoolEnv("S3_USE_PATH_STYLE", true)
	cfg.S3PublicBaseURL = strings.TrimRight(getEnv("S3_PUBLIC_BASE_URL", "http://localhost:9000/"+cfg.StorageBucket), "/")

	cfg.RabbitURL = getEnv("RABBIT_URL", "")
	cfg.RabbitExchange = getEnv("RABBIT_EXCHANGE", "city.events")

	cfg.RedisURL = getEnv("REDIS_URL", "redis://localhost:6379/0")
	cfg.CacheTTLList = getDuration("CACHE_TTL_LIST", 15*time.Second)

	cfg.RLEnabled = getEnv("RL_ENABLED", "true") == "true"
	cfg.RLLimit = getIntEnv("RL_IP_LIMIT", 100)
	cfg.RLWindow = getDuration("RL_IP_WINDOW", 1*time.Minute)
	cfg.RLLoginLimit = getIntEnv("RL_LOGIN_LIMIT", 10)

	cfg.CookieSecure = getBoolEnv("COOKIE_SECURE", cfg.AppEnv != "dev")
	cfg.VisitorIdleTTL = getDuration("VISITOR_IDLE_TTL", 30*time.Minute)
	cfg.VisitorSweepInterval = getDuration("VISITOR_SWEEP_INTERVAL", 1*time.Minute)
	cfg.MaxUploadBytes = int64(getIntEnv("MAX_UPLOAD_BYTES", 10*1024*1024))

	cfg.SeedFile = getEnv("SEED_FILE", "")

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "console")

	cfg.HTTPReadTimeout = getDuration("HTTP_READ_TIMEOUT", 10*time.Second)
	cfg.HTTPWriteTimeout = getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second)
	cfg.HTTPIdleTimeout = getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second)

	// validation
	switch cfg.Backend {
	case BackendLocal:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("missing DATABASE_URL")
		}
		if cfg.JWTSecret == "" {
			return nil, fmt.Errorf("missing JWT_SECRET")
		}
	case BackendSupabase:
		if cfg.SupabaseURL == "" {
			return nil, fmt.Errorf("missing SUPABASE_URL")
		}
		if cfg.SupabaseAnonKey == "" {
			return nil, fmt.Errorf("missing SUPABASE_ANON_KEY")
		}
	default:
		return nil, fmt.Errorf("unknown BACKEND %q", cfg.Backend)
	}

	if cfg.AppEnv != "dev" && cfg.Backend == BackendLocal && cfg.RabbitURL == "" {
		return nil, fmt.Errorf("missing RABBIT_URL (required when APP_ENV != dev)")
	}

	return cfg, nil
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getIntEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getBoolEnv(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
