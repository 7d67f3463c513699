package flow

import (
	"errors"
	"fmt"

	"github.com/aretw0/promptflow/pkg/domain"
)

// ErrInvalidSequence is returned when a question table fails validation.
var ErrInvalidSequence = errors.New("invalid sequence")

// Definition is the serialized form of a sequence.
type Definition struct {
	Steps      []Step   `yaml:"steps" json:"steps"`
	Completion []string `yaml:"completion" json:"completion"`
}

// Sequence is a validated, immutable question table.
type Sequence struct {
	steps      []Step
	completion []string
	index      map[domain.Question]int
}

// New validates def and builds a Sequence from it.
func New(def Definition) (*Sequence, error) {
	if len(def.Steps) == 0 {
		return nil, fmt.Errorf("%w: no steps", ErrInvalidSequence)
	}

	s := &Sequence{
		steps:      make([]Step, len(def.Steps)),
		completion: append([]string(nil), def.Completion...),
		index:      make(map[domain.Question]int, len(def.Steps)),
	}

	for i, step := range def.Steps {
		if step.Question == "" {
			return nil, fmt.Errorf("%w: step %d has no id", ErrInvalidSequence, i)
		}
		if step.Question.IsNone() {
			return nil, fmt.Errorf("%w: step %d uses reserved id %q", ErrInvalidSequence, i, domain.QuestionNone)
		}
		if _, dup := s.index[step.Question]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidSequence, step.Question)
		}
		if step.Prompt == "" {
			return nil, fmt.Errorf("%w: step %q has no prompt", ErrInvalidSequence, step.Question)
		}

		switch step.Kind {
		case KindName, KindDate:
		case KindNumber:
			if step.Expected == nil {
				return nil, fmt.Errorf("%w: number step %q needs an expected value", ErrInvalidSequence, step.Question)
			}
		case KindAge:
			if step.Min == 0 && step.Max == 0 {
				step.Min, step.Max = DefaultMinAge, DefaultMaxAge
			}
			if step.Min > step.Max {
				return nil, fmt.Errorf("%w: step %q has min %d > max %d", ErrInvalidSequence, step.Question, step.Min, step.Max)
			}
		default:
			return nil, fmt.Errorf("%w: step %q has unknown kind %q", ErrInvalidSequence, step.Question, step.Kind)
		}

		if step.Expected != nil {
			v := *step.Expected
			step.Expected = &v
		}
		s.steps[i] = step
		s.index[step.Question] = i
	}

	return s, nil
}

// First returns the first question of the sequence.
func (s *Sequence) First() domain.Question {
	return s.steps[0].Question
}

// Next returns the question that follows q.
// It returns false when q is terminal or not part of the sequence.
// The sentinel QuestionNone is followed by the first question.
func (s *Sequence) Next(q domain.Question) (domain.Question, bool) {
	if q.IsNone() {
		return s.First(), true
	}
	i, ok := s.index[q]
	if !ok || i == len(s.steps)-1 {
		return domain.QuestionNone, false
	}
	return s.steps[i+1].Question, true
}

// IsTerminal reports whether q is the last question.
func (s *Sequence) IsTerminal(q domain.Question) bool {
	i, ok := s.index[q]
	return ok && i == len(s.steps)-1
}

// Step returns the table row for q.
func (s *Sequence) Step(q domain.Question) (Step, bool) {
	i, ok := s.index[q]
	if !ok {
		return Step{}, false
	}
	return s.steps[i], true
}

// Index returns the position of q, or -1.
func (s *Sequence) Index(q domain.Question) int {
	if i, ok := s.index[q]; ok {
		return i
	}
	return -1
}

// Len returns the number of questions.
func (s *Sequence) Len() int {
	return len(s.steps)
}

// Steps returns a copy of the table in order.
func (s *Sequence) Steps() []Step {
	return append([]Step(nil), s.steps...)
}

// Completion returns the templates emitted once the terminal question is answered.
func (s *Sequence) Completion() []string {
	return append([]string(nil), s.completion...)
}

// Definition returns the serializable form of the sequence.
func (s *Sequence) Definition() Definition {
	return Definition{Steps: s.Steps(), Completion: s.Completion()}
}
