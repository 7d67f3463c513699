// Package config loads promptflow settings from PROMPTFLOW_* environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/promptflow/internal/logging"
	"github.com/aretw0/promptflow/pkg/runner"
)

// EnvPrefix is stripped from environment variable names before decoding.
const EnvPrefix = "PROMPTFLOW_"

// Store backends.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config is the full runtime configuration.
// Field tags are the lower-cased variable names without the prefix:
// PROMPTFLOW_REDIS_ADDR decodes into RedisAddr.
type Config struct {
	Store    string `mapstructure:"store"`
	StoreDir string `mapstructure:"store_dir"`

	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	RedisPrefix   string        `mapstructure:"redis_prefix"`
	RedisTTL      time.Duration `mapstructure:"redis_ttl"`

	SQLDSN string `mapstructure:"sql_dsn"`

	// EncryptionKey is a base64 AES-256 key. Empty disables encryption at rest.
	EncryptionKey          string   `mapstructure:"encryption_key"`
	EncryptionFallbackKeys []string `mapstructure:"encryption_fallback_keys"`

	DistributedLock bool          `mapstructure:"distributed_lock"`
	LockTTL         time.Duration `mapstructure:"lock_ttl"`

	FlowFile string `mapstructure:"flow_file"`
	Locale   string `mapstructure:"locale"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	HTTPAddr string `mapstructure:"http_addr"`

	// MaxInputSize is the byte limit of one incoming message.
	MaxInputSize int `mapstructure:"max_input_size"`

	// TraceOutput is "stdout", "stderr" or a file path. Empty disables tracing.
	TraceOutput string `mapstructure:"trace_output"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Store:     StoreMemory,
		StoreDir:  ".promptflow",
		RedisAddr: "localhost:6379",
		LockTTL:   30 * time.Second,
		Locale:    "en-us",
		LogLevel:  "info",
		LogFormat: logging.FormatText,
		HTTPAddr:  ":8080",

		MaxInputSize: runner.DefaultMaxInputSize,
	}
}

// Load reads the optional env files (".env" when none are given) and then the
// process environment. Missing env files are not an error.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return FromEnviron(os.Environ())
}

// FromEnviron decodes KEY=VALUE pairs carrying EnvPrefix.
func FromEnviron(environ []string) (Config, error) {
	values := make(map[string]any)
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		values[strings.ToLower(strings.TrimPrefix(key, EnvPrefix))] = value
	}
	return FromMap(values)
}

// FromMap decodes values over the defaults.
func FromMap(values map[string]any) (Config, error) {
	return Default().Merge(values)
}

// Merge decodes values over a copy of c and validates the result.
func (c Config) Merge(values map[string]any) (Config, error) {
	cfg := c
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, err
	}
	if err := decoder.Decode(values); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreFile, StoreRedis:
	case StoreSQLite, StorePostgres:
		if c.Store == StorePostgres && c.SQLDSN == "" {
			return errors.New("postgres store requires PROMPTFLOW_SQL_DSN")
		}
	default:
		return fmt.Errorf("unknown store %q (want memory, file, redis, sqlite or postgres)", c.Store)
	}
	if c.DistributedLock && c.Store != StoreRedis {
		return errors.New("distributed lock requires the redis store")
	}
	if c.MaxInputSize <= 0 {
		return fmt.Errorf("max input size must be positive, got %d", c.MaxInputSize)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// SQLitePath returns the DSN for the sqlite store, defaulting to a file in StoreDir.
func (c Config) SQLitePath() string {
	if c.SQLDSN != "" {
		return c.SQLDSN
	}
	return strings.TrimSuffix(c.StoreDir, "/") + "/promptflow.db"
}
