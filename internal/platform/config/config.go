// Package config builds runtime configuration from environment variables so
// main stays lean. Every knob has a development default; production overrides
// via env.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full server configuration.
type Config struct {
	Server   Server
	Postgres Postgres
	Redis    Redis
	Kafka    Kafka
	Blob     Blob
	Identity Identity
	Engine   Engine
	Auth     Auth
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Postgres configures the document, ledger, and job stores. An empty URL
// selects the in-memory stores (development and tests).
type Postgres struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Redis configures the distributed subject lock. An empty URL selects the
// in-process locker (single-instance deployments).
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka configures the lifecycle audit publisher. Empty brokers select the
// in-memory audit sink.
type Kafka struct {
	Brokers []string
	Topic   string
}

// Blob configures the S3-compatible object store holding avatars and
// generated images.
type Blob struct {
	Bucket   string
	Region   string
	Endpoint string
}

// Identity configures the auth provider admin client used for credential
// revocation.
type Identity struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Engine tunes the erasure orchestrator and export assembler.
type Engine struct {
	StepTimeout       time.Duration
	RetryMaxAttempts  int
	RetryInitialDelay time.Duration
	WorkerCount       int
	ExportConcurrency int
}

// Auth configures service-token validation for the caller-facing API.
type Auth struct {
	SigningKey string
	Issuer     string
	Audience   string
}

// FromEnv assembles the configuration with sane defaults.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            envString("SCOUTPOST_ADDR", ":8080"),
			ShutdownTimeout: envDuration("SCOUTPOST_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Postgres: Postgres{
			URL:             os.Getenv("SCOUTPOST_POSTGRES_URL"),
			MaxOpenConns:    envInt("SCOUTPOST_POSTGRES_MAX_OPEN", 20),
			MaxIdleConns:    envInt("SCOUTPOST_POSTGRES_MAX_IDLE", 5),
			ConnMaxLifetime: envDuration("SCOUTPOST_POSTGRES_CONN_LIFETIME", 30*time.Minute),
		},
		Redis: Redis{
			URL:          os.Getenv("SCOUTPOST_REDIS_URL"),
			PoolSize:     envInt("SCOUTPOST_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("SCOUTPOST_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("SCOUTPOST_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("SCOUTPOST_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("SCOUTPOST_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: Kafka{
			Brokers: envStrings("SCOUTPOST_KAFKA_BROKERS"),
			Topic:   envString("SCOUTPOST_KAFKA_TOPIC", "scoutpost.lifecycle.audit"),
		},
		Blob: Blob{
			Bucket:   os.Getenv("SCOUTPOST_BLOB_BUCKET"),
			Region:   envString("SCOUTPOST_BLOB_REGION", "eu-central-1"),
			Endpoint: os.Getenv("SCOUTPOST_BLOB_ENDPOINT"),
		},
		Identity: Identity{
			BaseURL: os.Getenv("SCOUTPOST_IDENTITY_URL"),
			APIKey:  os.Getenv("SCOUTPOST_IDENTITY_API_KEY"),
			Timeout: envDuration("SCOUTPOST_IDENTITY_TIMEOUT", 10*time.Second),
		},
		Engine: Engine{
			StepTimeout:       envDuration("SCOUTPOST_ENGINE_STEP_TIMEOUT", 30*time.Second),
			RetryMaxAttempts:  envInt("SCOUTPOST_ENGINE_RETRY_ATTEMPTS", 3),
			RetryInitialDelay: envDuration("SCOUTPOST_ENGINE_RETRY_DELAY", 250*time.Millisecond),
			WorkerCount:       envInt("SCOUTPOST_ENGINE_WORKERS", 4),
			ExportConcurrency: envInt("SCOUTPOST_ENGINE_EXPORT_CONCURRENCY", 8),
		},
		Auth: Auth{
			// Default is for development only; override in production.
			SigningKey: envString("SCOUTPOST_AUTH_SIGNING_KEY", "dev-secret-key-change-in-production"),
			Issuer:     envString("SCOUTPOST_AUTH_ISSUER", "scoutpost"),
			Audience:   envString("SCOUTPOST_AUTH_AUDIENCE", "lifecycle-api"),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envStrings(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
