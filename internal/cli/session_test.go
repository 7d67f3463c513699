package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/promptflow/pkg/domain"
)

func TestSessionCommands(t *testing.T) {
	app := newTestApp(t, nil)
	ctx := context.Background()
	var out bytes.Buffer

	require.NoError(t, ListSessions(ctx, &out, app.Sessions))
	assert.Contains(t, out.String(), "No active sessions found.")

	for _, text := range []string{"", "Ada"} {
		_, err := app.Sessions.HandleTurn(ctx, domain.Turn{ConversationID: "c1", Text: text})
		require.NoError(t, err)
	}

	out.Reset()
	require.NoError(t, ListSessions(ctx, &out, app.Sessions))
	assert.Contains(t, out.String(), "- c1")

	out.Reset()
	require.NoError(t, InspectSession(ctx, &out, app.Sessions, "c1", "c1"))
	assert.Contains(t, out.String(), `"conversation_id": "c1"`)
	assert.Contains(t, out.String(), `"Ada"`)

	out.Reset()
	require.NoError(t, RemoveSessions(ctx, &out, app.Sessions, []string{"c1"}, true))
	assert.Contains(t, out.String(), "Removed session 'c1'")

	_, err := app.Sessions.Profile(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInspectSession_Missing(t *testing.T) {
	app := newTestApp(t, nil)
	var out bytes.Buffer

	err := InspectSession(context.Background(), &out, app.Sessions, "nope", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
