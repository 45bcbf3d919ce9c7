package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress  string `validate:"required"`
	DatabaseURI string `validate:"required"`
	JWTSecret   string `validate:"required,min=8"`
	LogLevel    string `validate:"oneof=debug info warn error"`

	RedisAddress  string `validate:"required,hostname_port"`
	RedisPassword string
	LockTTL       time.Duration `validate:"gt=0"`
	CacheTTL      time.Duration `validate:"gt=0"`

	RendererAddress    string `validate:"required,url"`
	GCSBucket          string `validate:"required"`
	GCSCredentialsFile string
	GCPProjectID       string `validate:"required_with=PubSubTopic"`
	PubSubTopic        string

	DefaultLocale string `validate:"required,bcp47_language_tag"`
	RolesFile     string
	Roles         map[string][]string `validate:"required,min=1"`

	ReconcileSchedule  string        `validate:"required"`
	ReconcileBatchSize int           `validate:"gt=0"`
	WorkerPoolSize     int           `validate:"gt=0"`
	ShutdownTimeout    time.Duration `validate:"gt=0"`
}

const (
	defaultRunAddress         = ":8080"
	defaultLogLevel           = "info"
	defaultRedisAddress       = "localhost:6379"
	defaultLockTTL            = 30 * time.Second
	defaultCacheTTL           = 5 * time.Minute
	defaultLocale             = "nl"
	defaultReconcileSchedule  = "@every 15m"
	defaultReconcileBatchSize = 200
	defaultWorkerPoolSize     = 4
	defaultShutdownTimeout    = 10 * time.Second
)

var validate = validator.New()

// Load parses configuration from a .env file, environment variables and flags.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:         getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:        getString(lookup, "DATABASE_URI", ""),
		JWTSecret:          getString(lookup, "JWT_SECRET", ""),
		LogLevel:           getString(lookup, "LOG_LEVEL", defaultLogLevel),
		RedisAddress:       getString(lookup, "REDIS_ADDRESS", defaultRedisAddress),
		RedisPassword:      getString(lookup, "REDIS_PASSWORD", ""),
		LockTTL:            getDuration(lookup, "LOCK_TTL", defaultLockTTL),
		CacheTTL:           getDuration(lookup, "CACHE_TTL", defaultCacheTTL),
		RendererAddress:    getString(lookup, "RENDERER_ADDRESS", ""),
		GCSBucket:          getString(lookup, "GCS_BUCKET", ""),
		GCSCredentialsFile: getString(lookup, "GCS_CREDENTIALS_FILE", ""),
		GCPProjectID:       getString(lookup, "GCP_PROJECT_ID", ""),
		PubSubTopic:        getString(lookup, "PUBSUB_TOPIC", ""),
		DefaultLocale:      getString(lookup, "DEFAULT_LOCALE", defaultLocale),
		RolesFile:          getString(lookup, "ROLES_FILE", ""),
		ReconcileSchedule:  getString(lookup, "RECONCILE_SCHEDULE", defaultReconcileSchedule),
		ReconcileBatchSize: getInt(lookup, "RECONCILE_BATCH_SIZE", defaultReconcileBatchSize),
		WorkerPoolSize:     getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:    getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fset := flag.NewFlagSet("dealerflow", flag.ContinueOnError)
	fset.SetOutput(io.Discard)

	var (
		lockTTLStr         = cfg.LockTTL.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fset.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fset.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fset.StringVar(&cfg.RendererAddress, "r", cfg.RendererAddress, "PDF renderer base URL")
	fset.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for verifying actor tokens")
	fset.StringVar(&cfg.RedisAddress, "redis", cfg.RedisAddress, "Redis host:port")
	fset.StringVar(&cfg.GCSBucket, "bucket", cfg.GCSBucket, "Bucket for generated documents")
	fset.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Minimum log level")
	fset.StringVar(&cfg.RolesFile, "roles", cfg.RolesFile, "YAML file with role capabilities")
	fset.StringVar(&cfg.ReconcileSchedule, "reconcile-schedule", cfg.ReconcileSchedule, "Cron schedule of the stock reconciliation")
	fset.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent reconciliation workers")
	fset.IntVar(&cfg.ReconcileBatchSize, "reconcile-batch", cfg.ReconcileBatchSize, "Vehicles per reconciliation batch")
	fset.StringVar(&lockTTLStr, "lock-ttl", lockTTLStr, "Transition lock TTL")
	fset.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fset.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.LockTTL, err = time.ParseDuration(lockTTLStr); err != nil {
		return nil, fmt.Errorf("invalid lock ttl: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = string(content)
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.ReconcileBatchSize <= 0 {
		cfg.ReconcileBatchSize = defaultReconcileBatchSize
	}

	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaultLockTTL
	}

	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.Roles, err = loadRoles(cfg.RolesFile); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
