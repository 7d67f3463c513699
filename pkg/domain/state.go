package domain

import "time"

// FlowState represents the position of a conversation in the question sequence.
// One FlowState exists per conversation.
type FlowState struct {
	// LastQuestionAsked is the pending question, or QuestionNone.
	LastQuestionAsked Question `json:"last_question_asked"`

	// Pass counts how many times the sequence was completed in this conversation.
	Pass int `json:"pass"`

	// UpdatedAt is stamped by the engine whenever the state is persisted.
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// NewFlowState creates a state that has not asked anything yet.
func NewFlowState() *FlowState {
	return &FlowState{
		LastQuestionAsked: QuestionNone,
	}
}

// Started reports whether a question is pending.
func (s *FlowState) Started() bool {
	return !s.LastQuestionAsked.IsNone()
}

// Clone returns a copy of the state.
func (s *FlowState) Clone() *FlowState {
	c := *s
	return &c
}
