package recognizers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/en"

	"github.com/aretw0/promptflow/pkg/ports"
)

// DefaultLocale is the culture used when none is given.
const DefaultLocale = "en-us"

// English recognizes numbers and dates written in English.
type English struct {
	dates *when.Parser
}

var _ ports.Recognizer = (*English)(nil)

// NewEnglish creates a recognizer for the en-us culture.
func NewEnglish() *English {
	w := when.New(nil)
	w.Add(en.All...)
	return &English{dates: w}
}

// RecognizeNumber returns every number found in text, written as digits or words.
func (e *English) RecognizeNumber(ctx context.Context, text, locale string) ([]ports.NumberResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkLocale(locale); err != nil {
		return nil, err
	}
	results := parseNumbers(text)
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoMatch, text)
	}
	return results, nil
}

// RecognizeDateTime returns the date/time found in text relative to ref.
// "from X to Y" and "between X and Y" yield a single range result.
func (e *English) RecognizeDateTime(ctx context.Context, text, locale string, ref time.Time) ([]ports.DateTimeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkLocale(locale); err != nil {
		return nil, err
	}
	results, err := e.parseDates(text, ref)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoMatch, text)
	}
	return results, nil
}

func checkLocale(locale string) error {
	l := strings.ToLower(strings.TrimSpace(locale))
	switch l {
	case "", "en", DefaultLocale:
		return nil
	}
	if strings.HasPrefix(l, "en-") || strings.HasPrefix(l, "en_") {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedLocale, locale)
}
