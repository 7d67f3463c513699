package tui

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "v1.2.3")

	out := buf.String()
	assert.Contains(t, out, "v1.2.3")
	assert.Contains(t, out, "|_|")
	// A buffer is not a terminal, so no escape sequences are emitted.
	assert.NotContains(t, out, "\x1b[")
}

func TestNewRenderer(t *testing.T) {
	render, err := NewRenderer()
	require.NoError(t, err)

	out, err := render("Hi **Ada**.")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "Ada"))
}

func TestIsTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, IsTerminal(f))
}
