package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/promptflow/internal/adapters/file"
	"github.com/aretw0/promptflow/pkg/domain"
	"github.com/aretw0/promptflow/pkg/ports"
)

var (
	_ ports.FlowStore    = (*file.Store[domain.FlowState])(nil)
	_ ports.ProfileStore = (*file.Store[domain.Profile])(nil)
)

func TestFileFlowStore_Contract(t *testing.T) {
	ports.RunFlowStoreContract(t, file.NewFlowStore(t.TempDir()))
}

func TestFileProfileStore_Contract(t *testing.T) {
	ports.RunProfileStoreContract(t, file.NewProfileStore(t.TempDir()))
}

func TestFileStore_Layout(t *testing.T) {
	dir := t.TempDir()
	store := file.NewFlowStore(dir)

	require.NoError(t, store.Save(context.Background(), "conv-1", &domain.FlowState{LastQuestionAsked: "Name"}))

	data, err := os.ReadFile(filepath.Join(dir, "flows", "conv-1.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"last_question_asked":"Name"`)

	entries, err := os.ReadDir(filepath.Join(dir, "flows"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_InvalidKey(t *testing.T) {
	store := file.NewFlowStore(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{"", "..", "../escape", `a\b`} {
		assert.ErrorIs(t, store.Save(ctx, key, domain.NewFlowState()), file.ErrInvalidKey, key)
		_, err := store.Load(ctx, key)
		assert.ErrorIs(t, err, file.ErrInvalidKey, key)
	}
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.NewProfileStore(filepath.Join(t.TempDir(), "nope"))
	keys, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)
}
