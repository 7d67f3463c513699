package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/promptflow/pkg/domain"
	"github.com/aretw0/promptflow/pkg/flow"
)

func TestOverlay(t *testing.T) {
	app := newTestApp(t, nil)
	ctx := context.Background()
	for _, text := range []string{"", "Ada", "2"} {
		_, err := app.Sessions.HandleTurn(ctx, domain.Turn{ConversationID: "c1", Text: text})
		require.NoError(t, err)
	}

	overlay, err := Overlay(ctx, app.Sessions, "c1", "")
	require.NoError(t, err)
	assert.Equal(t, flow.QuestionTwoPlusFive, overlay.Current)
	assert.Equal(t, []domain.Question{flow.QuestionName, flow.QuestionOnePlusOne}, overlay.Answered)
}

func TestWriteGraph(t *testing.T) {
	app := newTestApp(t, nil)
	var out bytes.Buffer

	require.NoError(t, WriteGraph(context.Background(), &out, app, "", ""))
	assert.Contains(t, out.String(), "graph TD")
	assert.NotContains(t, out.String(), "classDef current")

	err := WriteGraph(context.Background(), &out, app, "missing", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
