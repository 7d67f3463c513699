package ports

import (
	"context"
	"time"
)

// NumberResult is a numeric candidate found in the input.
type NumberResult struct {
	// Text is the matched span of the input.
	Text string `json:"text"`
	// Value is the resolved number. It may be fractional ("two and a half").
	Value float64 `json:"value"`
}

// DateTimeResult is a date/time candidate found in the input.
// It is either a single instant or a start/end range.
type DateTimeResult struct {
	Text  string    `json:"text"`
	Value time.Time `json:"value,omitempty"`
	Start time.Time `json:"start,omitempty"`
	End   time.Time `json:"end,omitempty"`
	Range bool      `json:"range,omitempty"`
}

// Instant returns the value that represents the result: the instant itself, or the range start.
func (r DateTimeResult) Instant() time.Time {
	if r.Range {
		return r.Start
	}
	return r.Value
}

// Recognizer parses free text into typed candidates, in order of appearance.
// Both operations may fail on unparseable input.
type Recognizer interface {
	RecognizeNumber(ctx context.Context, text, locale string) ([]NumberResult, error)
	RecognizeDateTime(ctx context.Context, text, locale string, ref time.Time) ([]DateTimeResult, error)
}
