package ports

import (
	"context"

	"github.com/aretw0/promptflow/pkg/domain"
)

// Store defines the interface for persisting one record type by key.
// This allows for durable conversations, enabling "Stop & Resume" across turns.
type Store[T any] interface {
	// Save persists the record for a given key.
	Save(ctx context.Context, key string, v *T) error

	// Load retrieves the record for a given key.
	// Returns domain.ErrNotFound if the key does not exist.
	Load(ctx context.Context, key string) (*T, error)

	// Delete removes the record for a given key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the known keys.
	List(ctx context.Context) ([]string, error)
}

// FlowStore persists flow positions, keyed by conversation ID.
type FlowStore = Store[domain.FlowState]

// ProfileStore persists collected answers, keyed by user ID.
type ProfileStore = Store[domain.Profile]
