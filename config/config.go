// Package config loads the application settings from defaults, an optional
// YAML file and TASKS_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Sid-047/reminderApp/modules/auth"
	"github.com/Sid-047/reminderApp/modules/snapshot"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "TASKS"

// DefaultFile is read when TASKS_CONFIG is not set and the file exists.
const DefaultFile = "reminder.yaml"

// Config holds all application settings.
type Config struct {
	HTTP            HTTPConfig    `mapstructure:"http"`
	Storage         StorageConfig `mapstructure:"storage"`
	NATS            NATSConfig    `mapstructure:"nats"`
	Auth            AuthConfig    `mapstructure:"auth"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFormat       string        `mapstructure:"log_format"`
	// SeedDemo gives users without a snapshot the sample tasks.
	SeedDemo bool `mapstructure:"seed_demo"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type StorageConfig struct {
	Backend          string        `mapstructure:"backend"`
	SQLitePath       string        `mapstructure:"sqlite_path"`
	RedisAddr        string        `mapstructure:"redis_addr"`
	RedisPassword    string        `mapstructure:"redis_password"`
	RedisDB          int           `mapstructure:"redis_db"`
	PostgresURL      string        `mapstructure:"postgres_url"`
	Bucket           string        `mapstructure:"bucket"`
	SimulatedLatency time.Duration `mapstructure:"simulated_latency"`
	DBDebug          bool          `mapstructure:"db_debug"`
}

type NATSConfig struct {
	Port         int    `mapstructure:"port"`
	URL          string `mapstructure:"url"`
	JetStreamDir string `mapstructure:"jetstream_dir"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	JWTTTL    time.Duration `mapstructure:"jwt_ttl"`
	Issuer    string        `mapstructure:"issuer"`
}

// settings maps each config key to its default and environment variable.
var settings = []struct {
	key string
	env string
	def any
}{
	{"http.addr", "HTTP_ADDR", ":3000"},
	{"storage.backend", "STORAGE_BACKEND", snapshot.BackendSQLite},
	{"storage.sqlite_path", "SQLITE_PATH", "reminder.db"},
	{"storage.redis_addr", "REDIS_ADDR", "127.0.0.1:6379"},
	{"storage.redis_password", "REDIS_PASSWORD", ""},
	{"storage.redis_db", "REDIS_DB", 0},
	{"storage.postgres_url", "POSTGRES_URL", ""},
	{"storage.bucket", "STORAGE_BUCKET", "reminder-snapshots"},
	{"storage.simulated_latency", "SIMULATED_LATENCY", "0s"},
	{"storage.db_debug", "DB_DEBUG", false},
	{"nats.port", "NATS_PORT", 4222},
	{"nats.url", "NATS_URL", ""},
	{"nats.jetstream_dir", "JETSTREAM_DIR", "/tmp/reminder-nats"},
	{"auth.jwt_secret", "JWT_SECRET", "reminder-dev-secret-change-me"},
	{"auth.jwt_ttl", "JWT_TTL", "24h"},
	{"auth.issuer", "JWT_ISSUER", "reminder"},
	{"shutdown_timeout", "SHUTDOWN_TIMEOUT", "30s"},
	{"log_level", "LOG_LEVEL", "info"},
	{"log_format", "LOG_FORMAT", "text"},
	{"seed_demo", "SEED_DEMO", true},
}

// Load reads the file named by TASKS_CONFIG, or ./reminder.yaml if present.
func Load() (*Config, error) {
	path := os.Getenv(EnvPrefix + "_CONFIG")
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	return LoadFile(path)
}

// LoadFile reads path as YAML, or only defaults and environment when path is empty.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, s := range settings {
		v.SetDefault(s.key, s.def)
		if err := v.BindEnv(s.key, EnvPrefix+"_"+s.env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", s.key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.NATS.URL == "" {
		cfg.NATS.URL = fmt.Sprintf("nats://localhost:%d", cfg.NATS.Port)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case snapshot.BackendSQLite, snapshot.BackendRedis, snapshot.BackendPostgres, snapshot.BackendJetStream:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend == snapshot.BackendPostgres && c.Storage.PostgresURL == "" {
		return errors.New("storage.postgres_url is required for the postgres backend")
	}
	if c.Storage.SimulatedLatency < 0 {
		return errors.New("storage.simulated_latency must not be negative")
	}
	if c.Auth.JWTTTL <= 0 {
		return errors.New("auth.jwt_ttl must be positive")
	}
	if c.NATS.Port <= 0 {
		return errors.New("nats.port must be positive")
	}
	return nil
}

// Snapshot returns the storage plugin settings.
func (c *Config) Snapshot() snapshot.Config {
	return snapshot.Config{
		Backend:       c.Storage.Backend,
		SQLitePath:    c.Storage.SQLitePath,
		SQLiteDebug:   c.Storage.DBDebug,
		RedisAddr:     c.Storage.RedisAddr,
		RedisPassword: c.Storage.RedisPassword,
		RedisDB:       c.Storage.RedisDB,
		PostgresURL:   c.Storage.PostgresURL,
		NATSURL:       c.NATS.URL,
		Bucket:        c.Storage.Bucket,
		Latency:       c.Storage.SimulatedLatency,
	}
}

// Token returns the access token settings.
func (c *Config) Token() auth.TokenConfig {
	return auth.TokenConfig{
		SecretKey: c.Auth.JWTSecret,
		TTL:       c.Auth.JWTTTL,
		Issuer:    c.Auth.Issuer,
	}
}
