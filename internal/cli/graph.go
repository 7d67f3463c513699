package cli

import (
	"context"
	"errors"
	"io"
	"sort"

	"github.com/aretw0/promptflow/internal/presentation/graph"
	"github.com/aretw0/promptflow/pkg/domain"
	"github.com/aretw0/promptflow/pkg/session"
)

// Overlay builds the chart overlay for a conversation: the pending question and
// the questions the user answered in the current pass.
func Overlay(ctx context.Context, mgr *session.Manager, conversationID, userID string) (*graph.Overlay, error) {
	sess, err := mgr.Inspect(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		userID = conversationID
	}

	overlay := &graph.Overlay{Current: sess.Flow.LastQuestionAsked}
	profile, err := mgr.Profile(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return overlay, nil
	}
	if err != nil {
		return nil, err
	}
	for q := range profile.Fields {
		overlay.Answered = append(overlay.Answered, q)
	}
	sort.Slice(overlay.Answered, func(i, j int) bool { return overlay.Answered[i] < overlay.Answered[j] })
	return overlay, nil
}

// WriteGraph prints the Mermaid chart of the app's sequence, highlighting the
// given conversation when conversationID is set.
func WriteGraph(ctx context.Context, w io.Writer, app *App, conversationID, userID string) error {
	var overlay *graph.Overlay
	if conversationID != "" {
		var err error
		if overlay, err = Overlay(ctx, app.Sessions, conversationID, userID); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, graph.GenerateMermaid(app.Engine.Sequence(), overlay))
	return err
}
