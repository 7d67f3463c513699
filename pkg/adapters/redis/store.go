package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/promptflow/pkg/domain"
	"github.com/aretw0/promptflow/pkg/persistence"
)

// Default key prefixes.
const (
	FlowPrefix    = "promptflow:flow:"
	ProfilePrefix = "promptflow:profile:"
)

// noExpiryScore is the index score of records without TTL (2100-01-01).
const noExpiryScore = 4102444800

// Store implements ports.Store using Redis.
// Records live under prefix+"rec:"+key; a ZSET at prefix+"index" tracks keys by expiry.
type Store[T any] struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	codec  persistence.Codec
	now    func() time.Time
}

// Option configures the Store.
type Option func(*settings)

type settings struct {
	prefix string
	ttl    time.Duration
	codec  persistence.Codec
	now    func() time.Time
}

// WithTTL sets the expiration for records.
func WithTTL(ttl time.Duration) Option {
	return func(s *settings) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *settings) {
		s.prefix = prefix
	}
}

// WithCodec sets the serialization used for stored values.
func WithCodec(c persistence.Codec) Option {
	return func(s *settings) {
		s.codec = c
	}
}

// WithClock sets the clock used to score the index.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
	}
}

// NewClient creates a go-redis client.
func NewClient(address, password string, db int) *backend.Client {
	return backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient[T any](client *backend.Client, defaultPrefix string, opts ...Option) *Store[T] {
	s := settings{
		prefix: defaultPrefix,
		codec:  persistence.JSON,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return &Store[T]{
		client: client,
		prefix: s.prefix,
		ttl:    s.ttl,
		codec:  s.codec,
		now:    s.now,
	}
}

// NewFlowStore creates a FlowStore under FlowPrefix.
func NewFlowStore(client *backend.Client, opts ...Option) *Store[domain.FlowState] {
	return NewFromClient[domain.FlowState](client, FlowPrefix, opts...)
}

// NewProfileStore creates a ProfileStore under ProfilePrefix.
func NewProfileStore(client *backend.Client, opts ...Option) *Store[domain.Profile] {
	return NewFromClient[domain.Profile](client, ProfilePrefix, opts...)
}

func (s *Store[T]) key(id string) string {
	return s.prefix + "rec:" + id
}

func (s *Store[T]) indexKey() string {
	return s.prefix + "index"
}

// Save persists the record to Redis.
func (s *Store[T]) Save(ctx context.Context, key string, v *T) error {
	data, err := s.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	pipe := s.client.TxPipeline()

	// A zero TTL means no expiration.
	pipe.Set(ctx, s.key(key), data, s.ttl)

	score := float64(s.now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = noExpiryScore
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: key,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the record from Redis.
func (s *Store[T]) Load(ctx context.Context, key string) (*T, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var v T
	if err := s.codec.Unmarshal(val, &v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &v, nil
}

// Delete removes the record and its index entry.
func (s *Store[T]) Delete(ctx context.Context, key string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(key))
	pipe.ZRem(ctx, s.indexKey(), key)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// List returns the live keys, pruning expired index entries first.
func (s *Store[T]) List(ctx context.Context) ([]string, error) {
	now := float64(s.now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired keys: %w", err)
	}

	keys, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}

// Ping checks connectivity.
func (s *Store[T]) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
