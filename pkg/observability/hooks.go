package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/promptflow/pkg/domain"
)

// Combine fans each hook out to every non-nil callback, in order.
func Combine(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	fan := func(pick func(domain.LifecycleHooks) func(context.Context, *domain.TurnEvent)) func(context.Context, *domain.TurnEvent) {
		var fns []func(context.Context, *domain.TurnEvent)
		for _, h := range all {
			if fn := pick(h); fn != nil {
				fns = append(fns, fn)
			}
		}
		if len(fns) == 0 {
			return nil
		}
		return func(ctx context.Context, e *domain.TurnEvent) {
			for _, fn := range fns {
				fn(ctx, e)
			}
		}
	}

	return domain.LifecycleHooks{
		OnTurnStart:  fan(func(h domain.LifecycleHooks) func(context.Context, *domain.TurnEvent) { return h.OnTurnStart }),
		OnTurnEnd:    fan(func(h domain.LifecycleHooks) func(context.Context, *domain.TurnEvent) { return h.OnTurnEnd }),
		OnRejection:  fan(func(h domain.LifecycleHooks) func(context.Context, *domain.TurnEvent) { return h.OnRejection }),
		OnCompletion: fan(func(h domain.LifecycleHooks) func(context.Context, *domain.TurnEvent) { return h.OnCompletion }),
	}
}

// LogHooks writes one structured line per turn event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurnEnd: func(ctx context.Context, e *domain.TurnEvent) {
			attrs := []any{
				"conversation_id", e.ConversationID,
				"user_id", e.UserID,
				"question", e.Question,
				"outcome", e.Outcome,
				"duration", e.Duration,
			}
			if e.Err != nil {
				logger.ErrorContext(ctx, "turn_failed", append(attrs, "err", e.Err)...)
				return
			}
			logger.InfoContext(ctx, "turn", attrs...)
		},
		OnRejection: func(ctx context.Context, e *domain.TurnEvent) {
			logger.InfoContext(ctx, "answer_rejected",
				"conversation_id", e.ConversationID,
				"question", e.Question,
				"reason", e.Reason,
			)
		},
		OnCompletion: func(ctx context.Context, e *domain.TurnEvent) {
			logger.InfoContext(ctx, "sequence_completed",
				"conversation_id", e.ConversationID,
				"user_id", e.UserID,
			)
		},
	}
}
