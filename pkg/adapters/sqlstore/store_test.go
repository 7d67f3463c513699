package sqlstore_test

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/promptflow/pkg/adapters/sqlstore"
	"github.com/aretw0/promptflow/pkg/domain"
	"github.com/aretw0/promptflow/pkg/ports"
)

func openSQLite(t *testing.T) *sqlstore.DB {
	t.Helper()
	db, err := sqlstore.Open(sqlstore.SQLite, filepath.Join(t.TempDir(), "data", "promptflow.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

var (
	_ ports.FlowStore    = (*sqlstore.Store[domain.FlowState])(nil)
	_ ports.ProfileStore = (*sqlstore.Store[domain.Profile])(nil)
)

func TestSQLiteFlowStore_Contract(t *testing.T) {
	ports.RunFlowStoreContract(t, sqlstore.NewFlowStore(openSQLite(t)))
}

func TestSQLiteProfileStore_Contract(t *testing.T) {
	ports.RunProfileStoreContract(t, sqlstore.NewProfileStore(openSQLite(t)))
}

func TestSQLiteStore_KindsAreIsolated(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	flows := sqlstore.NewFlowStore(db)
	profiles := sqlstore.NewProfileStore(db)

	require.NoError(t, flows.Save(ctx, "same", domain.NewFlowState()))

	_, err := profiles.Load(ctx, "same")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	keys, err := profiles.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "promptflow.db")
	ctx := context.Background()

	db, err := sqlstore.Open(sqlstore.SQLite, path, nil)
	require.NoError(t, err)
	require.NoError(t, sqlstore.NewFlowStore(db).Save(ctx, "conv", &domain.FlowState{LastQuestionAsked: "Q1", Pass: 2}))
	require.NoError(t, db.Close())

	db, err = sqlstore.Open(sqlstore.SQLite, path, nil)
	require.NoError(t, err)
	defer db.Close()

	state, err := sqlstore.NewFlowStore(db).Load(ctx, "conv")
	require.NoError(t, err)
	assert.Equal(t, domain.Question("Q1"), state.LastQuestionAsked)
	assert.Equal(t, 2, state.Pass)
}

func TestOpen_Errors(t *testing.T) {
	_, err := sqlstore.Open(sqlstore.SQLite, "", nil)
	assert.Error(t, err)

	_, err = sqlstore.Open("oracle", "dsn", nil)
	assert.Error(t, err)
}

func TestSQLiteStore_SaveFailureLogsErr(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	db, err := sqlstore.Open(sqlstore.SQLite, filepath.Join(t.TempDir(), "promptflow.db"), logger)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	err = sqlstore.NewFlowStore(db).Save(context.Background(), "conv", domain.NewFlowState())
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "Store save failed")
	assert.Contains(t, out, "err=")
	assert.NotContains(t, out, "error=")
}
