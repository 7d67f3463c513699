package validation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/promptflow/pkg/domain"
	"github.com/aretw0/promptflow/pkg/flow"
	"github.com/aretw0/promptflow/pkg/ports"
)

// Registry maps each question to its rule.
type Registry struct {
	mu    sync.RWMutex
	rules map[domain.Question]Rule
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rules: make(map[domain.Question]Rule),
	}
}

// Register adds a rule for q.
// If a rule for the same question exists, it is overwritten.
func (r *Registry) Register(q domain.Question, rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[q] = rule
}

// Get returns the rule for q.
func (r *Registry) Get(q domain.Question) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[q]
	return rule, ok
}

// Validate looks up the rule for q and runs it.
// Returns domain.ErrUnknownQuestion if no rule is registered.
func (r *Registry) Validate(ctx context.Context, q domain.Question, text string) (domain.Value, error) {
	rule, ok := r.Get(q)
	if !ok {
		return domain.Value{}, fmt.Errorf("%w: %s", domain.ErrUnknownQuestion, q)
	}
	return rule.Validate(ctx, text)
}

// Option configures rules built by FromSequence.
type Option func(*options)

type options struct {
	locale string
	now    func() time.Time
}

// WithLocale sets the culture passed to the recognizer.
func WithLocale(locale string) Option {
	return func(o *options) {
		o.locale = locale
	}
}

// WithClock injects the clock used by date rules.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// FromSequence builds one rule per step of seq.
func FromSequence(seq *flow.Sequence, recognizer ports.Recognizer, opts ...Option) (*Registry, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	reg := NewRegistry()
	for _, step := range seq.Steps() {
		switch step.Kind {
		case flow.KindName:
			reg.Register(step.Question, NameRule{})
		case flow.KindNumber:
			expected, ok := step.ExpectedValue()
			if !ok {
				return nil, fmt.Errorf("step %q: %w", step.Question, flow.ErrInvalidSequence)
			}
			reg.Register(step.Question, NumericRule{Expected: expected, Recognizer: recognizer, Locale: o.locale})
		case flow.KindAge:
			reg.Register(step.Question, AgeRule{Min: step.Min, Max: step.Max, Recognizer: recognizer, Locale: o.locale})
		case flow.KindDate:
			reg.Register(step.Question, DateRule{Recognizer: recognizer, Locale: o.locale, Now: o.now})
		default:
			return nil, fmt.Errorf("step %q: unknown kind %q", step.Question, step.Kind)
		}
	}
	return reg, nil
}
