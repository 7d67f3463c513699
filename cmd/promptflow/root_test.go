package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/promptflow/internal/config"
)

func TestLoadConfig_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("PROMPTFLOW_STORE", "file")
	t.Setenv("PROMPTFLOW_LOG_LEVEL", "debug")

	cmd := chatCmd
	require.NoError(t, cmd.ParseFlags([]string{"--store", "memory", "--env-file", t.TempDir() + "/none.env"}))
	t.Cleanup(func() {
		_ = cmd.Flags().Set("store", "")
		cmd.Flags().Lookup("store").Changed = false
	})

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, config.StoreMemory, cfg.Store)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"chat", "serve", "mcp", "session", "questions", "version"} {
		assert.True(t, names[want], want)
	}
}
