package flow

import "github.com/aretw0/promptflow/pkg/domain"

// Kind selects the validation rule applied to a step.
type Kind string

const (
	KindName   Kind = "name"
	KindNumber Kind = "number"
	KindDate   Kind = "date"
	KindAge    Kind = "age"
)

// Default bounds for age steps that do not declare their own.
const (
	DefaultMinAge = 18
	DefaultMaxAge = 120
)

// Step is one row of the question table.
type Step struct {
	Question domain.Question `yaml:"id" json:"id"`
	Prompt   string          `yaml:"prompt" json:"prompt"`
	Kind     Kind            `yaml:"kind" json:"kind"`

	// Expected is the only accepted answer of a number step.
	Expected *int `yaml:"expected,omitempty" json:"expected,omitempty"`

	// Ack is a text/template rendered after the answer is accepted.
	Ack string `yaml:"ack,omitempty" json:"ack,omitempty"`

	// Min and Max bound age steps.
	Min int `yaml:"min,omitempty" json:"min,omitempty"`
	Max int `yaml:"max,omitempty" json:"max,omitempty"`
}

// ExpectedValue returns the expected answer and whether one is set.
func (s Step) ExpectedValue() (int, bool) {
	if s.Expected == nil {
		return 0, false
	}
	return *s.Expected, true
}
