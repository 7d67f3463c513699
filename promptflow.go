package promptflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aretw0/promptflow/internal/logging"
	"github.com/aretw0/promptflow/internal/runtime"
	"github.com/aretw0/promptflow/pkg/adapters/memory"
	"github.com/aretw0/promptflow/pkg/domain"
	"github.com/aretw0/promptflow/pkg/flow"
	"github.com/aretw0/promptflow/pkg/observability"
	"github.com/aretw0/promptflow/pkg/ports"
	"github.com/aretw0/promptflow/pkg/recognizers"
	"github.com/aretw0/promptflow/pkg/validation"
)

// Engine is the high-level entry point for the promptflow library.
// It loads a conversation, advances it by one message and persists the result.
type Engine struct {
	machine    *runtime.Machine
	seq        *flow.Sequence
	rules      *validation.Registry
	recognizer ports.Recognizer
	flows      ports.FlowStore
	profiles   ports.ProfileStore

	interpolator runtime.Interpolator
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	tracer       trace.Tracer
	now          func() time.Time
	locale       string
}

var _ ports.TurnHandler = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithSequence replaces the built-in question table.
func WithSequence(seq *flow.Sequence) Option {
	return func(e *Engine) {
		e.seq = seq
	}
}

// WithRecognizer sets the number and date recognizer used by the rules.
func WithRecognizer(r ports.Recognizer) Option {
	return func(e *Engine) {
		e.recognizer = r
	}
}

// WithFlowStore sets where flow positions are kept (default: in memory).
func WithFlowStore(s ports.FlowStore) Option {
	return func(e *Engine) {
		e.flows = s
	}
}

// WithProfileStore sets where collected answers are kept (default: in memory).
func WithProfileStore(s ports.ProfileStore) Option {
	return func(e *Engine) {
		e.profiles = s
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithInterpolator sets a custom interpolator for prompts and acknowledgements.
func WithInterpolator(interp runtime.Interpolator) Option {
	return func(e *Engine) {
		e.interpolator = interp
	}
}

// WithClock injects the time source used by date rules and timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLocale sets the culture passed to the recognizer.
func WithLocale(locale string) Option {
	return func(e *Engine) {
		e.locale = locale
	}
}

// WithTracer sets the tracer used for per-turn spans (default: the global provider).
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

// New initializes an Engine. Without options it runs the built-in question
// table against in-memory stores and the English recognizer.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{
		now:    time.Now,
		locale: recognizers.DefaultLocale,
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.seq == nil {
		eng.seq = flow.Default()
	}
	if eng.recognizer == nil {
		eng.recognizer = recognizers.NewEnglish()
	}
	if eng.flows == nil {
		eng.flows = memory.NewFlowStore()
	}
	if eng.profiles == nil {
		eng.profiles = memory.NewProfileStore()
	}
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.tracer == nil {
		eng.tracer = otel.Tracer(observability.TracerName)
	}

	rules, err := validation.FromSequence(eng.seq, eng.recognizer,
		validation.WithLocale(eng.locale),
		validation.WithClock(eng.now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build rules: %w", err)
	}
	eng.rules = rules
	eng.machine = runtime.NewMachine(eng.seq, rules, eng.interpolator)
	return eng, nil
}

// HandleTurn processes one incoming message.
// The flow state is keyed by conversation, the profile by user (the
// conversation ID stands in when the user is anonymous).
// Rejections are replies, not errors.
// The flow state is saved before the profile. When the profile save fails
// the previous flow state is written back, so the same answer can be sent
// again; an error that wraps "failed to restore flow state" means the
// conversation has moved on without the answer and should be reset.
func (e *Engine) HandleTurn(ctx context.Context, turn domain.Turn) (res *domain.TurnResult, err error) {
	if turn.ConversationID == "" {
		return nil, domain.ErrMissingConversation
	}
	if turn.UserID == "" {
		turn.UserID = turn.ConversationID
	}

	ctx, span := e.tracer.Start(ctx, "promptflow.turn", trace.WithAttributes(
		attribute.String("conversation.id", turn.ConversationID),
		attribute.String("user.id", turn.UserID),
	))
	defer span.End()

	start := e.now()
	event := &domain.TurnEvent{
		Timestamp:      start,
		ConversationID: turn.ConversationID,
		UserID:         turn.UserID,
	}
	if e.hooks.OnTurnStart != nil {
		e.hooks.OnTurnStart(ctx, event)
	}

	defer func() {
		event.Duration = e.now().Sub(start)
		event.Err = err
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			e.logger.Warn("turn failed",
				"conversation_id", turn.ConversationID,
				"user_id", turn.UserID,
				"err", err,
			)
		} else {
			span.SetStatus(codes.Ok, "")
		}
		if e.hooks.OnTurnEnd != nil {
			e.hooks.OnTurnEnd(ctx, event)
		}
	}()

	state, err := e.loadFlow(ctx, turn.ConversationID)
	if err != nil {
		return nil, err
	}
	profile, err := e.loadProfile(ctx, turn.UserID)
	if err != nil {
		return nil, err
	}
	event.Question = state.LastQuestionAsked

	step, err := e.machine.Step(ctx, state, profile, strings.TrimSpace(turn.Text))
	if err != nil {
		return nil, err
	}
	event.Outcome = step.Outcome
	event.Reason = string(step.Reason)
	span.SetAttributes(
		attribute.String("question", string(event.Question)),
		attribute.String("outcome", string(step.Outcome)),
	)

	step.Flow.UpdatedAt = e.now()
	if err := e.flows.Save(ctx, turn.ConversationID, step.Flow); err != nil {
		return nil, fmt.Errorf("failed to save flow state: %w", err)
	}
	if err := e.profiles.Save(ctx, turn.UserID, step.Profile); err != nil {
		err = fmt.Errorf("failed to save profile: %w", err)
		if rerr := e.flows.Save(ctx, turn.ConversationID, state); rerr != nil {
			return nil, errors.Join(err, fmt.Errorf("failed to restore flow state: %w", rerr))
		}
		return nil, err
	}

	switch step.Outcome {
	case domain.OutcomeRejected:
		if e.hooks.OnRejection != nil {
			e.hooks.OnRejection(ctx, event)
		}
	case domain.OutcomeCompleted:
		if e.hooks.OnCompletion != nil {
			e.hooks.OnCompletion(ctx, event)
		}
	}

	e.logger.Debug("turn handled",
		"conversation_id", turn.ConversationID,
		"user_id", turn.UserID,
		"question", event.Question,
		"outcome", step.Outcome,
	)

	return &domain.TurnResult{
		Replies: step.Replies,
		Flow:    step.Flow,
		Profile: step.Profile,
		Outcome: step.Outcome,
	}, nil
}

func (e *Engine) loadFlow(ctx context.Context, conversationID string) (*domain.FlowState, error) {
	state, err := e.flows.Load(ctx, conversationID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewFlowState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load flow state: %w", err)
	}
	return state, nil
}

func (e *Engine) loadProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	profile, err := e.profiles.Load(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewProfile(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return profile, nil
}

// Sequence returns the question table the engine runs.
func (e *Engine) Sequence() *flow.Sequence {
	return e.seq
}

// FlowStore returns the store holding flow positions.
func (e *Engine) FlowStore() ports.FlowStore {
	return e.flows
}

// ProfileStore returns the store holding collected answers.
func (e *Engine) ProfileStore() ports.ProfileStore {
	return e.profiles
}
