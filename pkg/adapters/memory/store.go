package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/promptflow/pkg/domain"
	"github.com/aretw0/promptflow/pkg/persistence"
	"github.com/aretw0/promptflow/pkg/ports"
)

// Store implements ports.Store in memory.
// Records are kept encoded, so callers never share pointers with the store.
// Safe for concurrent use.
type Store[T any] struct {
	data  map[string][]byte
	codec persistence.Codec
	mu    sync.RWMutex
}

var (
	_ ports.FlowStore    = (*Store[domain.FlowState])(nil)
	_ ports.ProfileStore = (*Store[domain.Profile])(nil)
)

// Option configures the Store.
type Option func(*options)

type options struct {
	codec persistence.Codec
}

// WithCodec sets the serialization used for stored records.
func WithCodec(c persistence.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// NewStore creates a new in-memory store.
func NewStore[T any](opts ...Option) *Store[T] {
	o := options{codec: persistence.JSON}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{
		data:  make(map[string][]byte),
		codec: o.codec,
	}
}

// NewFlowStore creates an in-memory FlowStore.
func NewFlowStore(opts ...Option) *Store[domain.FlowState] {
	return NewStore[domain.FlowState](opts...)
}

// NewProfileStore creates an in-memory ProfileStore.
func NewProfileStore(opts ...Option) *Store[domain.Profile] {
	return NewStore[domain.Profile](opts...)
}

// Save persists the record in memory.
func (s *Store[T]) Save(ctx context.Context, key string, v *T) error {
	data, err := s.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = data
	return nil
}

// Load retrieves the record from memory.
func (s *Store[T]) Load(ctx context.Context, key string) (*T, error) {
	s.mu.RLock()
	data, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrNotFound
	}

	var v T
	if err := s.codec.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &v, nil
}

// Delete removes the record.
func (s *Store[T]) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// List returns the stored keys, sorted.
func (s *Store[T]) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
