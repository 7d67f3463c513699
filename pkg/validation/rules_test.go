package validation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/promptflow/pkg/domain"
	"github.com/aretw0/promptflow/pkg/ports"
	"github.com/aretw0/promptflow/pkg/recognizers"
	"github.com/aretw0/promptflow/pkg/validation"
)

// MockRecognizer is a testify mock of ports.Recognizer.
type MockRecognizer struct {
	mock.Mock
}

func (m *MockRecognizer) RecognizeNumber(ctx context.Context, text, locale string) ([]ports.NumberResult, error) {
	args := m.Called(ctx, text, locale)
	res, _ := args.Get(0).([]ports.NumberResult)
	return res, args.Error(1)
}

func (m *MockRecognizer) RecognizeDateTime(ctx context.Context, text, locale string, ref time.Time) ([]ports.DateTimeResult, error) {
	args := m.Called(ctx, text, locale, ref)
	res, _ := args.Get(0).([]ports.DateTimeResult)
	return res, args.Error(1)
}

func numbers(vs ...float64) []ports.NumberResult {
	out := make([]ports.NumberResult, len(vs))
	for i, v := range vs {
		out[i] = ports.NumberResult{Value: v}
	}
	return out
}

func requireRejection(t *testing.T, err error, reason validation.Reason) *validation.Rejection {
	t.Helper()
	rej, ok := validation.AsRejection(err)
	require.True(t, ok, "expected a rejection, got %v", err)
	assert.Equal(t, reason, rej.Reason)
	return rej
}

func TestNameRule(t *testing.T) {
	v, err := validation.NameRule{}.Validate(context.Background(), "  Ada  ")
	require.NoError(t, err)
	assert.Equal(t, domain.TextValue("Ada"), v)

	for _, blank := range []string{"", "   ", "\t\n"} {
		_, err := validation.NameRule{}.Validate(context.Background(), blank)
		rej := requireRejection(t, err, validation.ReasonEmpty)
		assert.Equal(t, validation.MsgEmptyName, rej.Message)
	}
}

func TestNumericRule_FirstMatchWins(t *testing.T) {
	rec := new(MockRecognizer)
	rec.On("RecognizeNumber", mock.Anything, "3 or 7 or 7", "en-us").Return(numbers(3, 7, 7), nil)

	rule := validation.NumericRule{Expected: 7, Recognizer: rec, Locale: "en-us"}
	v, err := rule.Validate(context.Background(), "3 or 7 or 7")
	require.NoError(t, err)
	assert.Equal(t, domain.NumberValue(7), v)
	rec.AssertExpectations(t)
}

func TestNumericRule_WrongAnswer(t *testing.T) {
	rec := new(MockRecognizer)
	rec.On("RecognizeNumber", mock.Anything, "3", "").Return(numbers(3), nil)

	_, err := validation.NumericRule{Expected: 2, Recognizer: rec}.Validate(context.Background(), "3")
	rej := requireRejection(t, err, validation.ReasonWrongAnswer)
	assert.Equal(t, validation.MsgWrongAnswer, rej.Message)
}

func TestNumericRule_SignWordIsNotDropped(t *testing.T) {
	rule := validation.NumericRule{Expected: 89, Recognizer: recognizers.NewEnglish(), Locale: "en-us"}

	_, err := rule.Validate(context.Background(), "minus 89")
	requireRejection(t, err, validation.ReasonWrongAnswer)

	v, err := rule.Validate(context.Background(), "104 minus 15 is 89")
	require.NoError(t, err)
	assert.Equal(t, domain.NumberValue(89), v)
}

func TestNumericRule_RecognitionFailure(t *testing.T) {
	rec := new(MockRecognizer)
	rec.On("RecognizeNumber", mock.Anything, "banana", "").Return(nil, recognizers.ErrNoMatch)

	_, err := validation.NumericRule{Expected: 2, Recognizer: rec}.Validate(context.Background(), "banana")
	rej := requireRejection(t, err, validation.ReasonUninterpretable)
	assert.Equal(t, validation.MsgUninterpretable, rej.Message)
	assert.ErrorIs(t, err, recognizers.ErrNoMatch)
}

func TestNumericRule_EmptyResultIsUninterpretable(t *testing.T) {
	rec := new(MockRecognizer)
	rec.On("RecognizeNumber", mock.Anything, "", "").Return([]ports.NumberResult{}, nil)

	_, err := validation.NumericRule{Expected: 2, Recognizer: rec}.Validate(context.Background(), "")
	requireRejection(t, err, validation.ReasonUninterpretable)
}

func TestNumericRule_FractionBeforeMatch(t *testing.T) {
	rec := new(MockRecognizer)
	rec.On("RecognizeNumber", mock.Anything, mock.Anything, mock.Anything).Return(numbers(2.5, 2), nil)

	_, err := validation.NumericRule{Expected: 2, Recognizer: rec}.Validate(context.Background(), "2.5 or 2")
	requireRejection(t, err, validation.ReasonUninterpretable)
}

func TestNumericRule_FractionAfterMatch(t *testing.T) {
	rec := new(MockRecognizer)
	rec.On("RecognizeNumber", mock.Anything, mock.Anything, mock.Anything).Return(numbers(2, 2.5), nil)

	v, err := validation.NumericRule{Expected: 2, Recognizer: rec}.Validate(context.Background(), "2 or 2.5")
	require.NoError(t, err)
	assert.Equal(t, 2, v.Number)
}

func TestAgeRule(t *testing.T) {
	rec := recognizers.NewEnglish()
	rule := validation.AgeRule{Min: 18, Max: 120, Recognizer: rec}

	v, err := rule.Validate(context.Background(), "I am 12, no wait, thirty")
	require.NoError(t, err)
	assert.Equal(t, domain.NumberValue(30), v)

	_, err = rule.Validate(context.Background(), "5")
	rej := requireRejection(t, err, validation.ReasonOutOfRange)
	assert.Equal(t, "Please enter an age between 18 and 120.", rej.Message)

	_, err = rule.Validate(context.Background(), "old enough")
	rej = requireRejection(t, err, validation.ReasonUninterpretable)
	assert.Equal(t, "I'm sorry, I could not interpret that as an age. Please enter an age between 18 and 120.", rej.Message)
}

func TestDateRule(t *testing.T) {
	now := time.Date(2030, time.March, 10, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	t.Run("first candidate past the lead wins", func(t *testing.T) {
		rec := new(MockRecognizer)
		rec.On("RecognizeDateTime", mock.Anything, "soon", "", now).Return([]ports.DateTimeResult{
			{Value: now.Add(30 * time.Minute)},
			{Value: time.Date(2030, time.March, 12, 0, 0, 0, 0, time.UTC)},
			{Value: time.Date(2030, time.March, 20, 0, 0, 0, 0, time.UTC)},
		}, nil)

		v, err := validation.DateRule{Recognizer: rec, Now: clock}.Validate(context.Background(), "soon")
		require.NoError(t, err)
		assert.Equal(t, domain.DateValue("3/12/2030"), v)
	})

	t.Run("range uses its start", func(t *testing.T) {
		rec := new(MockRecognizer)
		rec.On("RecognizeDateTime", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]ports.DateTimeResult{
			{Range: true, Start: now.Add(10 * time.Minute), End: now.AddDate(0, 1, 0)},
		}, nil)

		_, err := validation.DateRule{Recognizer: rec, Now: clock}.Validate(context.Background(), "from now to next month")
		rej := requireRejection(t, err, validation.ReasonTooSoon)
		assert.Equal(t, validation.MsgDateTooSoon, rej.Message)
	})

	t.Run("exactly one hour is too soon", func(t *testing.T) {
		rec := new(MockRecognizer)
		rec.On("RecognizeDateTime", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]ports.DateTimeResult{
			{Value: now.Add(time.Hour)},
		}, nil)

		_, err := validation.DateRule{Recognizer: rec, Now: clock}.Validate(context.Background(), "in an hour")
		requireRejection(t, err, validation.ReasonTooSoon)
	})

	t.Run("later candidate in the same answer", func(t *testing.T) {
		rule := validation.DateRule{Recognizer: recognizers.NewEnglish(), Locale: "en-us", Now: clock}
		v, err := rule.Validate(context.Background(), "12/1/2029 or tomorrow")
		require.NoError(t, err)
		assert.Equal(t, domain.DateValue("3/11/2030"), v)
	})

	t.Run("recognition failure", func(t *testing.T) {
		rec := new(MockRecognizer)
		rec.On("RecognizeDateTime", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

		_, err := validation.DateRule{Recognizer: rec, Now: clock}.Validate(context.Background(), "whenever")
		rej := requireRejection(t, err, validation.ReasonUninterpretable)
		assert.Equal(t, validation.MsgDateUninterpreted, rej.Message)
	})
}
