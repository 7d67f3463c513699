package cli

import (
	"context"
	"io"
	"os"

	"github.com/aretw0/promptflow"
	"github.com/aretw0/promptflow/internal/config"
	"github.com/aretw0/promptflow/internal/presentation/tui"
	"github.com/aretw0/promptflow/pkg/runner"
)

// ChatOptions configures an interactive session.
type ChatOptions struct {
	ConversationID string
	UserID         string

	// JSON switches to JSON-Lines IO for scripted use.
	JSON bool
	// Plain disables the banner and markdown rendering.
	Plain bool

	In  io.Reader
	Out io.Writer
}

// RunChat runs the chat loop until EOF or cancellation.
func RunChat(ctx context.Context, app *App, opts ChatOptions) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	interactive := false
	if f, ok := opts.Out.(*os.File); ok {
		interactive = tui.IsTerminal(f)
	}

	sanitizer := app.Config.Sanitizer()
	var handler runner.IOHandler
	if opts.JSON {
		handler = runner.NewJSONHandler(opts.In, opts.Out, runner.WithJSONHandlerSanitizer(sanitizer))
	} else {
		textOpts := []runner.TextHandlerOption{runner.WithTextHandlerSanitizer(sanitizer)}
		if interactive && !opts.Plain {
			tui.PrintBanner(opts.Out, promptflow.Version)
			if render, err := tui.NewRenderer(); err == nil {
				textOpts = append(textOpts, runner.WithTextHandlerRenderer(render))
			} else {
				app.Logger.Warn("markdown renderer unavailable", "err", err)
			}
		}
		handler = runner.NewTextHandler(opts.In, opts.Out, textOpts...)
	}

	runnerOpts := []runner.Option{
		runner.WithLogger(app.Logger),
		runner.WithInputHandler(handler),
		runner.WithConversationID(opts.ConversationID),
		runner.WithUserID(opts.UserID),
	}
	if !opts.JSON {
		runnerOpts = append(runnerOpts, runner.WithGreeting("Type anything to start. Ctrl+D to quit."))
	}
	r := runner.NewRunner(app.Sessions, runnerOpts...)

	err := r.Run(ctx)
	if err == nil && !opts.JSON && app.Config.Store != config.StoreMemory {
		printSystemMessage(opts.Out, "Conversation '%s' saved. Resume with --conversation %s", r.ConversationID, r.ConversationID)
	}
	return err
}
