package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	GinMode      string
	ServiceName  string
	LogLevel     string
	MongoURI     string
	DBName       string
	JWTSecret    string
	JWTExpiresIn time.Duration
	BcryptCost   int
	CORSOrigins  []string

	// Media host
	MediaProvider string
	CloudinaryURL string
	S3Region      string
	S3Bucket      string
	MaxUploadSize int64
	MediaRPS      float64

	// Redis backs the distributed rate limiter and the job queue.
	// Both fall back to in-process behaviour when RedisURL is empty.
	RedisURL      string
	RedisPassword string
	RedisDB       int

	RateLimitReqs   int
	RateLimitWindow time.Duration

	OTELEnabled  bool
	OTELEndpoint string

	ReconcileInterval time.Duration
	WorkerConcurrency int
}

func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		GinMode:      getEnv("GIN_MODE", "debug"),
		ServiceName:  getEnv("SERVICE_NAME", "visage-api"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		MongoURI:     getEnv("MONGODB_URI", "mongodb://127.0.0.1:27017"),
		DBName:       getEnv("DB_NAME", "visage"),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		JWTExpiresIn: getEnvDuration("JWT_EXPIRES_IN", 30*24*time.Hour),
		BcryptCost:   getEnvInt("BCRYPT_COST", 10),
		CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),

		MediaProvider: strings.ToLower(getEnv("MEDIA_PROVIDER", "cloudinary")),
		CloudinaryURL: getEnv("CLOUDINARY_URL", ""),
		S3Region:      getEnv("S3_REGION", "us-east-1"),
		S3Bucket:      getEnv("S3_BUCKET", ""),
		MaxUploadSize: getEnvInt64("MAX_UPLOAD_SIZE", 10*1024*1024),
		MediaRPS:      getEnvFloat("MEDIA_RPS", 10),

		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),

		OTELEnabled:  getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint: getEnv("OTEL_ENDPOINT", "localhost:4317"),

		ReconcileInterval: getEnvDuration("RECONCILE_INTERVAL", time.Hour),
		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 5),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	switch c.MediaProvider {
	case "cloudinary":
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET must be set when MEDIA_PROVIDER=s3")
		}
	default:
		return fmt.Errorf("unknown MEDIA_PROVIDER %q", c.MediaProvider)
	}
	return nil
}

// RedisEnabled reports whether a Redis endpoint was configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != ""
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings ("30s", "720h") and bare
// integers, which are read as seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
