package domain

import (
	"context"
	"time"
)

// Outcome defines what a turn did to the flow.
type Outcome string

const (
	OutcomeStarted   Outcome = "started"   // First prompt emitted, no input consumed
	OutcomeAccepted  Outcome = "accepted"  // Answer stored, flow advanced
	OutcomeRejected  Outcome = "rejected"  // Answer refused, nothing changed
	OutcomeCompleted Outcome = "completed" // Last answer stored, flow reset
)

// TurnEvent describes a processed turn for observability.
type TurnEvent struct {
	Timestamp      time.Time     `json:"timestamp"`
	ConversationID string        `json:"conversation_id"`
	UserID         string        `json:"user_id"`
	Question       Question      `json:"question"`
	Outcome        Outcome       `json:"outcome,omitempty"`
	Reason         string        `json:"reason,omitempty"`
	Duration       time.Duration `json:"duration,omitempty"`
	Err            error         `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnTurnStart  func(context.Context, *TurnEvent)
	OnTurnEnd    func(context.Context, *TurnEvent)
	OnRejection  func(context.Context, *TurnEvent)
	OnCompletion func(context.Context, *TurnEvent)
}
