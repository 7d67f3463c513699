package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/promptflow/pkg/domain"
	"github.com/aretw0/promptflow/pkg/flow"
	"github.com/aretw0/promptflow/pkg/validation"
)

// MsgFallback is sent when a rejection carries no message of its own.
const MsgFallback = "I'm sorry, I didn't understand that."

// Machine advances one conversation by one turn.
// It holds no per-conversation state: callers pass the loaded records in and
// persist the returned ones.
type Machine struct {
	seq          *flow.Sequence
	rules        *validation.Registry
	interpolator Interpolator
}

// NewMachine creates a machine over a sequence and its rules.
func NewMachine(seq *flow.Sequence, rules *validation.Registry, interp Interpolator) *Machine {
	if interp == nil {
		interp = DefaultInterpolator
	}
	return &Machine{seq: seq, rules: rules, interpolator: interp}
}

// Result is the outcome of Step. Flow and Profile are new values; the inputs are never mutated.
type Result struct {
	Replies []domain.Reply
	Flow    *domain.FlowState
	Profile *domain.Profile
	Outcome domain.Outcome

	// Question is the question the input was validated against, if any.
	Question domain.Question
	// Reason is set when Outcome is rejected.
	Reason validation.Reason
}

// TemplateData is exposed to prompt, ack and completion templates.
type TemplateData struct {
	Question string
	Value    string
	Answers  map[string]string
}

// Step processes text against the pending question.
func (m *Machine) Step(ctx context.Context, state *domain.FlowState, profile *domain.Profile, text string) (*Result, error) {
	if state == nil {
		state = domain.NewFlowState()
	}
	if profile == nil {
		profile = domain.NewProfile()
	}

	res := &Result{
		Flow:    state.Clone(),
		Profile: profile.Clone(),
	}

	if !state.Started() {
		// A new pass never inherits answers, even after an external reset.
		res.Profile = domain.NewProfile()
		first := m.seq.First()
		if err := m.prompt(ctx, res, first); err != nil {
			return nil, err
		}
		res.Flow.LastQuestionAsked = first
		res.Outcome = domain.OutcomeStarted
		return res, nil
	}

	q := state.LastQuestionAsked
	res.Question = q
	step, ok := m.seq.Step(q)
	if !ok {
		return nil, fmt.Errorf("%w: pending question %q", domain.ErrUnknownQuestion, q)
	}

	value, err := m.rules.Validate(ctx, q, text)
	if err != nil {
		rej, ok := validation.AsRejection(err)
		if !ok {
			return nil, fmt.Errorf("failed to validate %s: %w", q, err)
		}
		msg := rej.Message
		if msg == "" {
			msg = MsgFallback
		}
		res.Replies = append(res.Replies, domain.Reply{Kind: domain.ReplyRejection, Text: msg, Question: q})
		res.Outcome = domain.OutcomeRejected
		res.Reason = rej.Reason
		return res, nil
	}

	if err := res.Profile.Set(q, value); err != nil {
		return nil, err
	}

	if step.Ack != "" {
		ack, err := m.render(ctx, step.Ack, q, value.String(), res.Profile)
		if err != nil {
			return nil, err
		}
		res.Replies = append(res.Replies, domain.Reply{Kind: domain.ReplyAck, Text: ack, Question: q})
	}

	if m.seq.IsTerminal(q) {
		for _, tmpl := range m.seq.Completion() {
			msg, err := m.render(ctx, tmpl, q, value.String(), res.Profile)
			if err != nil {
				return nil, err
			}
			res.Replies = append(res.Replies, domain.Reply{Kind: domain.ReplyCompletion, Text: msg})
		}
		res.Flow.LastQuestionAsked = domain.QuestionNone
		res.Flow.Pass++
		res.Profile = domain.NewProfile()
		res.Outcome = domain.OutcomeCompleted
		return res, nil
	}

	next, ok := m.seq.Next(q)
	if !ok {
		return nil, errors.New("sequence has no successor for a non-terminal question")
	}
	if err := m.prompt(ctx, res, next); err != nil {
		return nil, err
	}
	res.Flow.LastQuestionAsked = next
	res.Outcome = domain.OutcomeAccepted
	return res, nil
}

func (m *Machine) prompt(ctx context.Context, res *Result, q domain.Question) error {
	step, ok := m.seq.Step(q)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownQuestion, q)
	}
	text, err := m.render(ctx, step.Prompt, q, "", res.Profile)
	if err != nil {
		return err
	}
	res.Replies = append(res.Replies, domain.Reply{Kind: domain.ReplyPrompt, Text: text, Question: q})
	return nil
}

func (m *Machine) render(ctx context.Context, tmpl string, q domain.Question, value string, p *domain.Profile) (string, error) {
	answers := make(map[string]string, p.Len())
	for k, v := range p.Fields {
		answers[string(k)] = v.String()
	}
	return m.interpolator(ctx, tmpl, TemplateData{
		Question: string(q),
		Value:    value,
		Answers:  answers,
	})
}
