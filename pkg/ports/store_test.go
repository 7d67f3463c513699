package ports_test

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/aretw0/promptflow/pkg/domain"
	"github.com/aretw0/promptflow/pkg/ports"
)

// mockStore is a JSON-roundtripping map used to verify the contract suites themselves.
type mockStore[T any] struct {
	data map[string][]byte
}

func newMockStore[T any]() *mockStore[T] {
	return &mockStore[T]{data: make(map[string][]byte)}
}

func (m *mockStore[T]) Save(_ context.Context, key string, v *T) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = b
	return nil
}

func (m *mockStore[T]) Load(_ context.Context, key string) (*T, error) {
	b, ok := m.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (m *mockStore[T]) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *mockStore[T]) List(_ context.Context) ([]string, error) {
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func TestFlowStore_Contract(t *testing.T) {
	var store ports.FlowStore = newMockStore[domain.FlowState]()
	ports.RunFlowStoreContract(t, store)
}

func TestProfileStore_Contract(t *testing.T) {
	var store ports.ProfileStore = newMockStore[domain.Profile]()
	ports.RunProfileStoreContract(t, store)
}
