package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/promptflow/pkg/domain"
	"github.com/aretw0/promptflow/pkg/persistence"
)

// Record kinds.
const (
	KindFlow    = "flow"
	KindProfile = "profile"
)

// Store implements ports.Store for one record kind.
type Store[T any] struct {
	db    *DB
	kind  string
	codec persistence.Codec
}

// Option configures the Store.
type Option func(*options)

type options struct {
	codec persistence.Codec
}

// WithCodec sets the serialization used for the data column.
func WithCodec(c persistence.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// New creates a store for records of the given kind.
func New[T any](db *DB, kind string, opts ...Option) *Store[T] {
	o := options{codec: persistence.JSON}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{db: db, kind: kind, codec: o.codec}
}

// NewFlowStore creates a FlowStore.
func NewFlowStore(db *DB, opts ...Option) *Store[domain.FlowState] {
	return New[domain.FlowState](db, KindFlow, opts...)
}

// NewProfileStore creates a ProfileStore.
func NewProfileStore(db *DB, opts ...Option) *Store[domain.Profile] {
	return New[domain.Profile](db, KindProfile, opts...)
}

// Save stores or updates the record.
func (s *Store[T]) Save(ctx context.Context, key string, v *T) error {
	data, err := s.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	query := s.db.rebind(`
		INSERT INTO promptflow_records (kind, key, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (kind, key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`)

	if _, err := s.db.db.ExecContext(ctx, query, s.kind, key, data, time.Now().UTC()); err != nil {
		s.db.logger.Error("Store save failed", "kind", s.kind, "key", key, "err", err)
		return fmt.Errorf("failed to save %s %s: %w", s.kind, key, err)
	}
	return nil
}

// Load retrieves the record.
func (s *Store[T]) Load(ctx context.Context, key string) (*T, error) {
	query := s.db.rebind(`SELECT data FROM promptflow_records WHERE kind = ? AND key = ?`)

	var data []byte
	err := s.db.db.QueryRowContext(ctx, query, s.kind, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s %s: %w", s.kind, key, err)
	}

	var v T
	if err := s.codec.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &v, nil
}

// Delete removes the record.
func (s *Store[T]) Delete(ctx context.Context, key string) error {
	query := s.db.rebind(`DELETE FROM promptflow_records WHERE kind = ? AND key = ?`)
	if _, err := s.db.db.ExecContext(ctx, query, s.kind, key); err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", s.kind, key, err)
	}
	return nil
}

// List returns the keys of this kind, ordered.
func (s *Store[T]) List(ctx context.Context) ([]string, error) {
	query := s.db.rebind(`SELECT key FROM promptflow_records WHERE kind = ? ORDER BY key`)
	rows, err := s.db.db.QueryContext(ctx, query, s.kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s records: %w", s.kind, err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate keys: %w", err)
	}
	return keys, nil
}
