package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvDev        = "dev"
	EnvLocal      = "local"
	EnvStaging    = "staging"
	EnvProduction = "production"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	DatabaseURL     string
	PublicBaseURL   string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string
	MinIO           MinIOConfig

	Log        LogConfig
	Retry      RetryConfig
	Generation GenerationConfig
}

// MinIOConfig configures the MinIO object store.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type LogConfig struct {
	Level  string
	Format string
}

// RetryConfig is the backoff schedule used for storage calls.
type RetryConfig struct {
	MaxRetries        int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// GenerationConfig tunes petition generation.
type GenerationConfig struct {
	Delay     time.Duration
	RateLimit float64
	RateBurst int
}

// Load reads configuration from the environment and an optional .env file.
func Load() (Config, error) {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	cfg := Config{
		Port:            v.GetString("PORT"),
		Env:             normalizeEnv(v.GetString("ENV")),
		CORSAllowOrigin: splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),
		DatabaseURL:     strings.TrimSpace(v.GetString("DATABASE_URL")),
		PublicBaseURL:   strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
		ObjectStoreType: normalizeStoreType(v.GetString("OBJECT_STORE")),
		LocalStoreDir:   v.GetString("LOCAL_STORE_DIR"),
		AWSRegion:       v.GetString("AWS_REGION"),
		S3Bucket:        v.GetString("S3_BUCKET"),
		S3Prefix:        v.GetString("S3_PREFIX"),
		SSEKMSKeyID:     v.GetString("SSE_KMS_KEY_ID"),
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Retry: RetryConfig{
			MaxRetries:        v.GetInt("RETRY_MAX_RETRIES"),
			InitialDelay:      parseDuration(v.GetString("RETRY_INITIAL_DELAY"), time.Second),
			MaxDelay:          parseDuration(v.GetString("RETRY_MAX_DELAY"), 10*time.Second),
			BackoffMultiplier: v.GetFloat64("RETRY_BACKOFF_MULTIPLIER"),
		},
		Generation: GenerationConfig{
			Delay:     parseDuration(v.GetString("GENERATION_DELAY"), 3*time.Second),
			RateLimit: v.GetFloat64("GENERATION_RATE_LIMIT"),
			RateBurst: v.GetInt("GENERATION_RATE_BURST"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", EnvDev)
	v.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:5173")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080/api/v1/files")
	v.SetDefault("OBJECT_STORE", "local")
	v.SetDefault("LOCAL_STORE_DIR", "./data")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MINIO_BUCKET", "documents")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("RETRY_MAX_RETRIES", 3)
	v.SetDefault("RETRY_BACKOFF_MULTIPLIER", 2.0)
	v.SetDefault("GENERATION_RATE_LIMIT", 0.5)
	v.SetDefault("GENERATION_RATE_BURST", 3)
}

func (c Config) validate() error {
	var errs []error
	if c.Env == EnvProduction && c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required in production"))
	}
	switch c.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(c.S3Bucket) == "" {
			errs = append(errs, errors.New("OBJECT_STORE=s3 requires S3_BUCKET"))
		}
	case "minio":
		if strings.TrimSpace(c.MinIO.Endpoint) == "" {
			errs = append(errs, errors.New("OBJECT_STORE=minio requires MINIO_ENDPOINT"))
		}
	}
	if c.Retry.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("RETRY_MAX_RETRIES must be >= 0, got %d", c.Retry.MaxRetries))
	}
	return errors.Join(errs...)
}

func parseDuration(raw string, def time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
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
		return EnvProduction
	case "staging":
		return EnvStaging
	case "local":
		return EnvLocal
	default:
		return EnvDev
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "minio":
		return "minio"
	default:
		return "local"
	}
}

// IsDevLike reports whether env tolerates missing infrastructure.
func IsDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case EnvDev, EnvLocal:
		return true
	default:
		return false
	}
}
