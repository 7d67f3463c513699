package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/promptflow/pkg/domain"
	"github.com/aretw0/promptflow/pkg/session"
)

// ErrPartialFailure is returned when some, but not all, removals failed.
var ErrPartialFailure = errors.New("some sessions could not be removed")

// ListSessions prints the known conversation IDs.
func ListSessions(ctx context.Context, w io.Writer, mgr *session.Manager) error {
	ids, err := mgr.List(ctx)
	if err != nil {
		return fmt.Errorf("error listing sessions: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, "No active sessions found.")
		return nil
	}
	fmt.Fprintln(w, "Active Sessions:")
	for _, id := range ids {
		fmt.Fprintln(w, "- "+id)
	}
	return nil
}

// sessionView is what inspect prints.
type sessionView struct {
	*session.Session
	Profile *domain.Profile `json:"profile,omitempty"`
}

// InspectSession pretty-prints a conversation's state. When userID is set the
// user's profile is included.
func InspectSession(ctx context.Context, w io.Writer, mgr *session.Manager, conversationID, userID string) error {
	sess, err := mgr.Inspect(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("error loading session '%s': %w", conversationID, err)
	}
	view := sessionView{Session: sess}
	if userID != "" {
		profile, err := mgr.Profile(ctx, userID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("error loading profile '%s': %w", userID, err)
		}
		view.Profile = profile
	}

	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// RemoveSessions resets each conversation and, with profiles set, deletes the
// profile stored under the same ID.
func RemoveSessions(ctx context.Context, w io.Writer, mgr *session.Manager, ids []string, profiles bool) error {
	failed := false
	for _, id := range ids {
		err := mgr.Reset(ctx, id)
		if err == nil && profiles {
			err = mgr.DeleteProfile(ctx, id)
		}
		if err != nil {
			fmt.Fprintf(w, "Error removing '%s': %v\n", id, err)
			failed = true
			continue
		}
		fmt.Fprintf(w, "Removed session '%s'\n", id)
	}
	if failed {
		return ErrPartialFailure
	}
	return nil
}
