// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file,
when present, is loaded first through 'joho/godotenv'; variables already set in
the process environment always win.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, AMQP) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// minSecretLength mirrors the HS256 key floor enforced by the token service.
const minSecretLength = 32

// # Configuration Schema

// Config holds all runtime configuration for the Wanderly identity service.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`
	LogLevel    string `env:"LOG_LEVEL"    envDefault:"info"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Store (Redis) for the revocation list and rate limits
	RedisURL string `env:"REDIS_URL,required"`

	// Token signing and lifetimes
	JWTSecret            string        `env:"JWT_SECRET,required"`
	JWTIssuer            string        `env:"JWT_ISSUER"             envDefault:"wanderly.app"`
	AccessTokenTTL       time.Duration `env:"ACCESS_TOKEN_TTL"       envDefault:"15m"`
	RefreshTokenTTL      time.Duration `env:"REFRESH_TOKEN_TTL"      envDefault:"48h"`
	VerificationTokenTTL time.Duration `env:"VERIFICATION_TOKEN_TTL" envDefault:"24h"`
	ResetTokenTTL        time.Duration `env:"RESET_TOKEN_TTL"        envDefault:"1h"`

	// Account policy
	PublicBaseURL        string `env:"PUBLIC_BASE_URL"        envDefault:"http://localhost:8080"`
	RequireVerifiedLogin bool   `env:"REQUIRE_VERIFIED_LOGIN" envDefault:"false"`

	// Email pipeline, shared with the worker
	MailConfig

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`

	// Credential endpoint throttling (per client IP, fixed window)
	LoginRateLimit  int           `env:"LOGIN_RATE_LIMIT"  envDefault:"10"`
	LoginRateWindow time.Duration `env:"LOGIN_RATE_WINDOW" envDefault:"1m"`
}

// MailConfig holds the email queue and SMTP relay settings.
type MailConfig struct {
	// Email job queue (RabbitMQ). An empty URL selects the in-process queue.
	AMQPURL     string `env:"AMQP_URL"`
	EmailQueue  string `env:"EMAIL_QUEUE"  envDefault:"auth.email"`
	MailWorkers int    `env:"MAIL_WORKERS" envDefault:"2"`

	// Outgoing mail (SMTP). An empty host selects the logging sender.
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT"     envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM"     envDefault:"Wanderly <no-reply@wanderly.app>"`
}

// WorkerConfig is the configuration of the standalone email worker.
type WorkerConfig struct {
	Debug       bool   `env:"DEBUG"        envDefault:"false"`
	LogLevel    string `env:"LOG_LEVEL"    envDefault:"info"`
	MetricsPort string `env:"METRICS_PORT" envDefault:"9091"`

	MailConfig
}

// # Configuration Loading

// Load reads an optional .env file and parses environment variables into a [Config].
func Load(files ...string) (*Config, error) {
	if err := loadEnvFiles(files); err != nil {
		return nil, err
	}

	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadWorker reads the subset of settings needed by the email worker.
//
// AMQP_URL is mandatory here since the worker has nothing to consume without it.
func LoadWorker(files ...string) (*WorkerConfig, error) {
	if err := loadEnvFiles(files); err != nil {
		return nil, err
	}

	cfg := &WorkerConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.AMQPURL == "" {
		return nil, errors.New("config: AMQP_URL is required by the email worker")
	}

	return cfg, nil
}

// SlogLevel resolves LOG_LEVEL; DEBUG=true always forces debug output.
func (c *WorkerConfig) SlogLevel() slog.Level {
	return parseLevel(c.Debug, c.LogLevel)
}

// loadEnvFiles loads optional .env files; godotenv never overrides variables that are already set.
func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: failed to read env file: %w", err)
	}
	return nil
}

// validate checks cross-field constraints the struct tags cannot express.
func (c *Config) validate() error {
	if len(c.JWTSecret) < minSecretLength {
		return fmt.Errorf("config: JWT_SECRET must be at least %d bytes", minSecretLength)
	}
	if c.MailWorkers < 1 {
		return errors.New("config: MAIL_WORKERS must be at least 1")
	}
	if c.LoginRateLimit < 1 || c.LoginRateWindow <= 0 {
		return errors.New("config: LOGIN_RATE_LIMIT and LOGIN_RATE_WINDOW must be positive")
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SlogLevel resolves LOG_LEVEL; DEBUG=true always forces debug output.
func (c *Config) SlogLevel() slog.Level {
	return parseLevel(c.Debug, c.LogLevel)
}

func parseLevel(debug bool, level string) slog.Level {
	if debug {
		return slog.LevelDebug
	}

	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Origins returns the configured extra CORS origins.
func (c *Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// VerificationLink builds the public URL embedded in verification emails.
func (c *Config) VerificationLink() string {
	return strings.TrimRight(c.PublicBaseURL, "/") + "/api/v1/auth/verify/"
}

// ResetLink builds the public URL embedded in password reset emails.
func (c *Config) ResetLink() string {
	return strings.TrimRight(c.PublicBaseURL, "/") + "/api/v1/auth/password-reset-confirm/"
}
