package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aretw0/promptflow/internal/logging"
	"github.com/aretw0/promptflow/pkg/domain"
	"github.com/aretw0/promptflow/pkg/ports"
)

// Runner drives a conversation from an IOHandler: every line read is one turn,
// every turn's replies are written back.
type Runner struct {
	// Handler is the strategy for IO. Defaults to a TextHandler on Stdin/Stdout.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	ConversationID string
	UserID         string
	Greeting       string

	turns ports.TurnHandler
}

// NewRunner creates a Runner that sends turns to h (typically a session.Manager).
func NewRunner(h ports.TurnHandler, opts ...Option) *Runner {
	r := &Runner{turns: h}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(nil, nil)
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	if r.ConversationID == "" {
		r.ConversationID = uuid.NewString()
	}
	if r.UserID == "" {
		r.UserID = r.ConversationID
	}
	return r
}

// Run reads input until EOF or until ctx is canceled. Both end the loop cleanly.
// A failed turn is reported to the user and the loop continues; the failed
// message can simply be sent again.
func (r *Runner) Run(ctx context.Context) error {
	r.Logger.Debug("chat started", "conversation_id", r.ConversationID, "user_id", r.UserID)

	if r.Greeting != "" {
		if err := r.Handler.SystemOutput(ctx, r.Greeting); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}

	for {
		text, err := r.Handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				r.Logger.Debug("chat ended", "conversation_id", r.ConversationID, "reason", err)
				return nil
			}
			if IsInputError(err) {
				_ = r.Handler.SystemOutput(ctx, err.Error())
				continue
			}
			return fmt.Errorf("input error: %w", err)
		}

		res, err := r.turns.HandleTurn(ctx, domain.Turn{
			ConversationID: r.ConversationID,
			UserID:         r.UserID,
			Text:           text,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.Logger.Error("turn failed", "conversation_id", r.ConversationID, "err", err)
			if err := r.Handler.SystemOutput(ctx, "Something went wrong, please try again."); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
			continue
		}

		if err := r.Handler.Output(ctx, res.Replies); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}
}
