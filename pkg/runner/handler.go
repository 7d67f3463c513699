package runner

import (
	"context"

	"github.com/aretw0/promptflow/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents the replies of one turn to the user.
	Output(ctx context.Context, replies []domain.Reply) error

	// Input reads the next message from the user.
	// Returns io.EOF when the user is done.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message to the user (e.g. errors, status updates).
	// This is distinct from conversation content.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer is a function that transforms the content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)
