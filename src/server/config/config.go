package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	SeedFile string `env:"SEED_FILE"`

	// Store backend: "memory", "sqlite", "postgres", or "redis"
	StoreBackend string `env:"STORE_BACKEND" envDefault:"memory"`
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"highway.db"` // SQLite file path

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"highway"`

	// Report exports go to S3 when S3_ENDPOINT is set, else to ExportDir.
	S3Endpoint      string        `env:"S3_ENDPOINT"`
	S3Bucket        string        `env:"S3_BUCKET" envDefault:"highway-reports"`
	S3Region        string        `env:"S3_REGION" envDefault:"us-east-1"`
	S3AccessKey     string        `env:"S3_ACCESS_KEY"`
	S3SecretKey     string        `env:"S3_SECRET_KEY"`
	S3UseSSL        bool          `env:"S3_USE_SSL" envDefault:"true"`
	ExportDir       string        `env:"EXPORT_DIR" envDefault:"exports"`
	ExportURLExpiry time.Duration `env:"EXPORT_URL_EXPIRY" envDefault:"15m"`

	// Auth
	AuthEnabled  bool   `env:"AUTH_ENABLED"`
	AuthIssuer   string `env:"AUTH_ISSUER"`
	AuthAudience string `env:"AUTH_AUDIENCE"`

	// CORS
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	// Per-client rate limit on API routes; zero disables it.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case "memory", "sqlite", "redis":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("STORE_BACKEND=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.AuthEnabled && (c.AuthIssuer == "" || c.AuthAudience == "") {
		return fmt.Errorf("AUTH_ENABLED requires AUTH_ISSUER and AUTH_AUDIENCE")
	}
	return nil
}
