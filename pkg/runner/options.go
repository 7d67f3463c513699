package runner

import (
	"log/slog"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithConversationID resumes (or names) a conversation.
// Without it, every Runner starts a fresh conversation with a random ID.
func WithConversationID(id string) Option {
	return func(r *Runner) {
		r.ConversationID = id
	}
}

// WithUserID sets the user whose profile collects the answers.
func WithUserID(id string) Option {
	return func(r *Runner) {
		r.UserID = id
	}
}

// WithGreeting prints a system line before the first input is read.
func WithGreeting(msg string) Option {
	return func(r *Runner) {
		r.Greeting = msg
	}
}
