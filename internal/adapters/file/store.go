package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/promptflow/pkg/domain"
	"github.com/aretw0/promptflow/pkg/persistence"
)

// ErrInvalidKey is returned for keys that cannot be used as file names.
var ErrInvalidKey = errors.New("invalid key")

const ext = ".json"

// Store implements ports.Store using the local filesystem.
// It stores one file per key in a configured directory.
type Store[T any] struct {
	BasePath string
	codec    persistence.Codec
}

// Option configures the Store.
type Option func(*options)

type options struct {
	codec persistence.Codec
}

// WithCodec sets the serialization used for stored files.
func WithCodec(c persistence.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".promptflow".
func New[T any](basePath string, opts ...Option) *Store[T] {
	if basePath == "" {
		basePath = ".promptflow"
	}
	o := options{codec: persistence.JSON}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{BasePath: basePath, codec: o.codec}
}

// NewFlowStore stores flow states under dir/flows.
func NewFlowStore(dir string, opts ...Option) *Store[domain.FlowState] {
	return New[domain.FlowState](filepath.Join(dir, "flows"), opts...)
}

// NewProfileStore stores profiles under dir/profiles.
func NewProfileStore(dir string, opts ...Option) *Store[domain.Profile] {
	return New[domain.Profile](filepath.Join(dir, "profiles"), opts...)
}

func (s *Store[T]) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.BasePath, key+ext), nil
}

// Save persists the record atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store[T]) Save(ctx context.Context, key string, v *T) error {
	destPath, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure store directory: %w", err)
	}

	data, err := s.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	// Same directory keeps the rename on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+key+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing file for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Load reads the record for key.
func (s *Store[T]) Load(ctx context.Context, key string) (*T, error) {
	filePath, err := s.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var v T
	if err := s.codec.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &v, nil
}

// Delete removes the file for key.
func (s *Store[T]) Delete(ctx context.Context, key string) error {
	filePath, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// List returns all stored keys.
func (s *Store[T]) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list store: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ext || strings.HasPrefix(name, "tmp-") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ext))
	}
	return keys, nil
}
