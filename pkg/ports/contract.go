package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/promptflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunFlowStoreContract runs a suite of tests to verify that a FlowStore implementation
// adheres to the defined interface contract.
func RunFlowStoreContract(t *testing.T, store FlowStore) {
	ctx := context.Background()
	key := "contract-flow-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := &domain.FlowState{
			LastQuestionAsked: "Q2",
			Pass:              3,
			UpdatedAt:         time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		}
		require.NoError(t, store.Save(ctx, key, state), "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, domain.Question("Q2"), loaded.LastQuestionAsked)
		assert.Equal(t, 3, loaded.Pass)
		assert.True(t, state.UpdatedAt.Equal(loaded.UpdatedAt))
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, &domain.FlowState{LastQuestionAsked: "Q3"}))
		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, domain.Question("Q3"), loaded.LastQuestionAsked)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, domain.NewFlowState()))
		require.NoError(t, store.Delete(ctx, key), "Delete should not return error")

		_, err := store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrNotFound, "Load after Delete should return ErrNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1, id2 := key+"-1", key+"-2"
		_ = store.Save(ctx, id1, domain.NewFlowState())
		_ = store.Save(ctx, id2, domain.NewFlowState())
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, id1)
		assert.Contains(t, keys, id2)
	})
}

// RunProfileStoreContract runs a suite of tests to verify that a ProfileStore implementation
// adheres to the defined interface contract.
func RunProfileStoreContract(t *testing.T, store ProfileStore) {
	ctx := context.Background()
	key := "contract-user-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		p := domain.NewProfile()
		require.NoError(t, p.Set("Name", domain.TextValue("Ana")))
		require.NoError(t, p.Set("Q1", domain.NumberValue(2)))
		require.NoError(t, store.Save(ctx, key, p))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, 2, loaded.Len())

		name, ok := loaded.Get("Name")
		require.True(t, ok)
		assert.Equal(t, "Ana", name.String())

		q1, ok := loaded.Get("Q1")
		require.True(t, ok)
		assert.Equal(t, domain.ValueNumber, q1.Kind)
		assert.Equal(t, 2, q1.Number)
	})

	t.Run("Stored Copy Is Isolated", func(t *testing.T) {
		p := domain.NewProfile()
		require.NoError(t, store.Save(ctx, key, p))
		require.NoError(t, p.Set("Name", domain.TextValue("mutated after save")))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.False(t, loaded.Has("Name"))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, domain.NewProfile()))
		require.NoError(t, store.Delete(ctx, key))
		_, err := store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, store.Delete(ctx, key), "deleting twice is not an error")
	})
}
