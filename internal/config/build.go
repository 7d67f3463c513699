package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/promptflow/internal/adapters/file"
	"github.com/aretw0/promptflow/internal/logging"
	"github.com/aretw0/promptflow/pkg/adapters/memory"
	"github.com/aretw0/promptflow/pkg/adapters/redis"
	"github.com/aretw0/promptflow/pkg/adapters/sqlstore"
	"github.com/aretw0/promptflow/pkg/flow"
	"github.com/aretw0/promptflow/pkg/persistence"
	"github.com/aretw0/promptflow/pkg/ports"
	"github.com/aretw0/promptflow/pkg/runner"
)

// Stores bundles the configured persistence.
type Stores struct {
	Flows    ports.FlowStore
	Profiles ports.ProfileStore

	// Locker is set when DistributedLock is enabled.
	Locker ports.DistributedLocker

	closers []io.Closer
}

// Close releases database connections.
func (s *Stores) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Logger builds the application logger.
func (c Config) Logger() *slog.Logger {
	level, _ := logging.ParseLevel(c.LogLevel)
	return logging.New(level, c.LogFormat)
}

// Sanitizer returns the input policy shared by every transport.
func (c Config) Sanitizer() runner.Sanitizer {
	return runner.Sanitizer{MaxSize: c.MaxInputSize}
}

// Codec returns the record codec: JSON, sealed with AES-GCM when a key is set.
func (c Config) Codec() (persistence.Codec, error) {
	if c.EncryptionKey == "" {
		return persistence.JSON, nil
	}
	active, err := persistence.ParseKey(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	cfg := persistence.EncryptionConfig{ActiveKey: active}
	for i, k := range c.EncryptionFallbackKeys {
		key, err := persistence.ParseKey(k)
		if err != nil {
			return nil, fmt.Errorf("fallback key %d: %w", i, err)
		}
		cfg.FallbackKeys = append(cfg.FallbackKeys, key)
	}
	return persistence.NewEncryptedCodec(persistence.JSON, cfg)
}

// Sequence loads FlowFile, or returns the built-in question table.
func (c Config) Sequence() (*flow.Sequence, error) {
	if c.FlowFile == "" {
		return flow.Default(), nil
	}
	return flow.Load(c.FlowFile)
}

// OpenStores connects the configured backend.
func (c Config) OpenStores(ctx context.Context, logger *slog.Logger) (*Stores, error) {
	codec, err := c.Codec()
	if err != nil {
		return nil, err
	}

	switch c.Store {
	case StoreMemory:
		return &Stores{
			Flows:    memory.NewFlowStore(memory.WithCodec(codec)),
			Profiles: memory.NewProfileStore(memory.WithCodec(codec)),
		}, nil

	case StoreFile:
		if err := os.MkdirAll(c.StoreDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store dir: %w", err)
		}
		return &Stores{
			Flows:    file.NewFlowStore(c.StoreDir, file.WithCodec(codec)),
			Profiles: file.NewProfileStore(c.StoreDir, file.WithCodec(codec)),
		}, nil

	case StoreRedis:
		client := redis.NewClient(c.RedisAddr, c.RedisPassword, c.RedisDB)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", c.RedisAddr, err)
		}
		flowOpts := []redis.Option{redis.WithCodec(codec), redis.WithTTL(c.RedisTTL)}
		profileOpts := []redis.Option{redis.WithCodec(codec), redis.WithTTL(c.RedisTTL)}
		if c.RedisPrefix != "" {
			flowOpts = append(flowOpts, redis.WithPrefix(c.RedisPrefix+"flow:"))
			profileOpts = append(profileOpts, redis.WithPrefix(c.RedisPrefix+"profile:"))
		}
		s := &Stores{
			Flows:    redis.NewFlowStore(client, flowOpts...),
			Profiles: redis.NewProfileStore(client, profileOpts...),
			closers:  []io.Closer{client},
		}
		if c.DistributedLock {
			prefix := c.RedisPrefix
			if prefix == "" {
				prefix = "promptflow:"
			}
			s.Locker = redis.NewLocker(client, prefix)
		}
		return s, nil

	case StoreSQLite, StorePostgres:
		dsn := c.SQLDSN
		if c.Store == StoreSQLite {
			dsn = c.SQLitePath()
		}
		db, err := sqlstore.Open(sqlstore.Dialect(c.Store), dsn, logger)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Flows:    sqlstore.NewFlowStore(db, sqlstore.WithCodec(codec)),
			Profiles: sqlstore.NewProfileStore(db, sqlstore.WithCodec(codec)),
			closers:  []io.Closer{db},
		}, nil
	}
	return nil, fmt.Errorf("unknown store %q", c.Store)
}
