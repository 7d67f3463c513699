package runner

import "github.com/aretw0/promptflow/pkg/domain"

// Response is the wire shape of a turn for rich clients (HTTP, MCP).
type Response struct {
	Replies   []domain.Reply  `json:"replies"`
	Question  domain.Question `json:"question,omitempty"`
	Outcome   domain.Outcome  `json:"outcome"`
	Completed bool            `json:"completed"`
	Pass      int             `json:"pass"`
}

// NewResponse flattens a turn result. Question is the question now pending.
func NewResponse(res *domain.TurnResult) Response {
	out := Response{
		Replies:   res.Replies,
		Outcome:   res.Outcome,
		Completed: res.Outcome == domain.OutcomeCompleted,
	}
	if out.Replies == nil {
		out.Replies = []domain.Reply{}
	}
	if res.Flow != nil {
		out.Question = res.Flow.LastQuestionAsked
		out.Pass = res.Flow.Pass
	}
	return out
}
