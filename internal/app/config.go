package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/appregistry-backend/internal/data/db"
	"github.com/yungbote/appregistry-backend/internal/observability"
	"github.com/yungbote/appregistry-backend/internal/platform/envutil"
	"github.com/yungbote/appregistry-backend/internal/platform/logger"
)

// DriverMemory keeps every application in process; nothing survives a restart.
const DriverMemory = "memory"

type ListenerConfig struct {
	Audit             bool `yaml:"audit"`
	Events            bool `yaml:"events"`
	EventsFailOnError bool `yaml:"events_fail_on_error"`
	PermissionCleanup bool `yaml:"permission_cleanup"`
}

type ValidationConfig struct {
	RequireEmail  bool `yaml:"require_email"`
	MaxNameLength int  `yaml:"max_name_length"`
}

// FileConfig is the optional YAML overlay named by APP_CONFIG_FILE. Environment
// variables win over values from the file.
type FileConfig struct {
	HTTPAddr    string           `yaml:"http_addr"`
	CORSOrigins []string         `yaml:"cors_origins"`
	Listeners   ListenerConfig   `yaml:"listeners"`
	Validation  ValidationConfig `yaml:"validation"`
}

type Config struct {
	LogMode         string
	HTTPAddr        string
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	DB db.Config

	RedisAddr    string
	RedisChannel string

	JWTSecretKey string

	Listeners  ListenerConfig
	Validation ValidationConfig

	Otel observability.OtelConfig
}

func defaultFileConfig() FileConfig {
	return FileConfig{
		HTTPAddr: ":8080",
		Listeners: ListenerConfig{
			Audit:             true,
			Events:            true,
			PermissionCleanup: true,
		},
		Validation: ValidationConfig{MaxNameLength: 255},
	}
}

// LoadDotEnv loads .env from the working directory when one exists.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "ignoring unreadable .env: %v\n", err)
	}
}

// ReadFileConfig overlays the YAML at path onto the defaults. An empty path
// returns the defaults.
func ReadFileConfig(path string) (FileConfig, error) {
	fc := defaultFileConfig()
	path = strings.TrimSpace(path)
	if path == "" {
		return fc, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fc, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return fc, nil
}

func LoadConfig(log *logger.Logger) (Config, error) {
	fc, err := ReadFileConfig(os.Getenv("APP_CONFIG_FILE"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		LogMode:         envutil.String("LOG_MODE", "development"),
		HTTPAddr:        envutil.String("HTTP_ADDR", fc.HTTPAddr),
		ShutdownTimeout: envutil.Duration("HTTP_SHUTDOWN_TIMEOUT", 15*time.Second),
		CORSOrigins:     fc.CORSOrigins,
		DB: db.Config{
			Driver:           strings.ToLower(envutil.String("DB_DRIVER", db.DriverPostgres)),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "appregistry"),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath:       envutil.String("SQLITE_PATH", "appregistry.db"),
			MaxOpenConns:     envutil.Int("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:     envutil.Int("DB_MAX_IDLE_CONNS", 5),
			SlowQuery:        envutil.Duration("DB_SLOW_QUERY", time.Second),
		},
		RedisAddr:    envutil.String("REDIS_ADDR", ""),
		RedisChannel: envutil.String("REDIS_CHANNEL", "applications"),
		JWTSecretKey: envutil.String("JWT_SECRET_KEY", ""),
		Listeners: ListenerConfig{
			Audit:             envutil.Bool("LISTENER_AUDIT", fc.Listeners.Audit),
			Events:            envutil.Bool("LISTENER_EVENTS", fc.Listeners.Events),
			EventsFailOnError: envutil.Bool("LISTENER_EVENTS_FAIL_ON_ERROR", fc.Listeners.EventsFailOnError),
			PermissionCleanup: envutil.Bool("LISTENER_PERMISSION_CLEANUP", fc.Listeners.PermissionCleanup),
		},
		Validation: ValidationConfig{
			RequireEmail:  envutil.Bool("REQUIRE_EMAIL", fc.Validation.RequireEmail),
			MaxNameLength: envutil.Int("MAX_NAME_LENGTH", fc.Validation.MaxNameLength),
		},
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "appregistry"),
			Environment: envutil.String("APP_ENV", "development"),
			Version:     envutil.String("APP_VERSION", "dev"),
			SampleRatio: envutil.Float("OTEL_SAMPLE_RATIO", 1),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     observability.ParseHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS")),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
		},
	}
	if raw := envutil.String("CORS_ORIGINS", ""); raw != "" {
		cfg.CORSOrigins = strings.Split(raw, ",")
	}

	switch cfg.DB.Driver {
	case db.DriverPostgres, db.DriverSQLite, DriverMemory:
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DB.Driver)
	}
	if cfg.JWTSecretKey == "" {
		log.Warn("JWT_SECRET_KEY not set; mutating routes are unauthenticated")
	}
	return cfg, nil
}

func envMode() string {
	return envutil.String("LOG_MODE", "development")
}
