package validation

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/aretw0/promptflow/pkg/domain"
	"github.com/aretw0/promptflow/pkg/ports"
)

// ShortDateLayout is the format of accepted dates.
const ShortDateLayout = "1/2/2006"

// DefaultMinLead is how far in the future a date answer must be.
const DefaultMinLead = time.Hour

// Rule validates the reply to one question.
type Rule interface {
	Validate(ctx context.Context, text string) (domain.Value, error)
}

// RuleFunc adapts a function to Rule.
type RuleFunc func(ctx context.Context, text string) (domain.Value, error)

func (f RuleFunc) Validate(ctx context.Context, text string) (domain.Value, error) {
	return f(ctx, text)
}

// NameRule accepts any non-blank text.
type NameRule struct{}

func (NameRule) Validate(_ context.Context, text string) (domain.Value, error) {
	name := strings.TrimSpace(text)
	if name == "" {
		return domain.Value{}, Reject(ReasonEmpty, MsgEmptyName)
	}
	return domain.TextValue(name), nil
}

// NumericRule accepts the first recognized number equal to Expected.
type NumericRule struct {
	Expected   int
	Recognizer ports.Recognizer
	Locale     string
}

func (r NumericRule) Validate(ctx context.Context, text string) (domain.Value, error) {
	results, err := r.Recognizer.RecognizeNumber(ctx, text, r.Locale)
	if err != nil || len(results) == 0 {
		return domain.Value{}, &Rejection{Reason: ReasonUninterpretable, Message: MsgUninterpretable, Err: err}
	}

	for _, res := range results {
		n, ok := asInt(res.Value)
		if !ok {
			return domain.Value{}, &Rejection{
				Reason:  ReasonUninterpretable,
				Message: MsgUninterpretable,
				Err:     fmt.Errorf("%q is not an integer", res.Text),
			}
		}
		if n == r.Expected {
			return domain.NumberValue(n), nil
		}
	}
	return domain.Value{}, Reject(ReasonWrongAnswer, MsgWrongAnswer)
}

// AgeRule accepts the first recognized integer within [Min, Max].
type AgeRule struct {
	Min, Max   int
	Recognizer ports.Recognizer
	Locale     string
}

func (r AgeRule) Validate(ctx context.Context, text string) (domain.Value, error) {
	uninterpretable := fmt.Sprintf(msgAgeUninterpreted, r.Min, r.Max)

	results, err := r.Recognizer.RecognizeNumber(ctx, text, r.Locale)
	if err != nil || len(results) == 0 {
		return domain.Value{}, &Rejection{Reason: ReasonUninterpretable, Message: uninterpretable, Err: err}
	}

	for _, res := range results {
		n, ok := asInt(res.Value)
		if !ok {
			return domain.Value{}, &Rejection{
				Reason:  ReasonUninterpretable,
				Message: uninterpretable,
				Err:     fmt.Errorf("%q is not an integer", res.Text),
			}
		}
		if n >= r.Min && n <= r.Max {
			return domain.NumberValue(n), nil
		}
	}
	return domain.Value{}, Reject(ReasonOutOfRange, fmt.Sprintf(msgAgeOutOfRange, r.Min, r.Max))
}

// DateRule accepts the first recognized date later than now + MinLead.
// Ranges contribute their start only.
type DateRule struct {
	Recognizer ports.Recognizer
	Locale     string
	Now        func() time.Time
	MinLead    time.Duration
}

func (r DateRule) Validate(ctx context.Context, text string) (domain.Value, error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	lead := r.MinLead
	if lead == 0 {
		lead = DefaultMinLead
	}

	ref := now()
	results, err := r.Recognizer.RecognizeDateTime(ctx, text, r.Locale, ref)
	if err != nil || len(results) == 0 {
		return domain.Value{}, &Rejection{Reason: ReasonUninterpretable, Message: MsgDateUninterpreted, Err: err}
	}

	earliest := ref.Add(lead)
	for _, res := range results {
		if candidate := res.Instant(); candidate.After(earliest) {
			return domain.DateValue(candidate.Format(ShortDateLayout)), nil
		}
	}
	return domain.Value{}, Reject(ReasonTooSoon, MsgDateTooSoon)
}

// asInt converts an integral float that fits in 32 bits.
func asInt(v float64) (int, bool) {
	if v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
		return 0, false
	}
	return int(v), true
}
