package recognizers_test

import (
	"context"
	"testing"

	"github.com/aretw0/promptflow/pkg/recognizers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func values(t *testing.T, text string) []float64 {
	t.Helper()
	results, err := recognizers.NewEnglish().RecognizeNumber(context.Background(), text, "en-us")
	require.NoError(t, err, text)
	out := make([]float64, len(results))
	for i, r := range results {
		out[i] = r.Value
	}
	return out
}

func TestRecognizeNumber(t *testing.T) {
	tests := []struct {
		input string
		want  []float64
	}{
		{"2", []float64{2}},
		{"two", []float64{2}},
		{"Twelve", []float64{12}},
		{"twenty two", []float64{22}},
		{"twenty-two", []float64{22}},
		{"a dozen", []float64{12}},
		{"one hundred and four", []float64{104}},
		{"two thousand twenty four", []float64{2024}},
		{"1,000", []float64{1000}},
		{"2.5", []float64{2.5}},
		{"two and a half", []float64{2.5}},
		{"it is 7 i think", []float64{7}},
		{"maybe 3 or maybe 7", []float64{3, 7}},
		{"minus 104", []float64{-104}},
		{"negative eighty nine", []float64{-89}},
		{"25 minus 21 is 4", []float64{25, -21, 4}},
		{"one two", []float64{1, 2}},
		{"25-21", []float64{25, 21}},
		{"-4", []float64{-4}},
		{"I am thirty three years old", []float64{33}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, values(t, tt.input))
		})
	}
}

func TestRecognizeNumber_KeepsMatchedText(t *testing.T) {
	results, err := recognizers.NewEnglish().RecognizeNumber(context.Background(), "Answer: Thirty Three!", "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Thirty Three", results[0].Text)
}

func TestRecognizeNumber_NoMatch(t *testing.T) {
	_, err := recognizers.NewEnglish().RecognizeNumber(context.Background(), "banana", "en-us")
	assert.ErrorIs(t, err, recognizers.ErrNoMatch)

	_, err = recognizers.NewEnglish().RecognizeNumber(context.Background(), "minus", "en-us")
	assert.ErrorIs(t, err, recognizers.ErrNoMatch)

	_, err = recognizers.NewEnglish().RecognizeNumber(context.Background(), "", "en-us")
	assert.ErrorIs(t, err, recognizers.ErrNoMatch)
}

func TestRecognizeNumber_Locale(t *testing.T) {
	r := recognizers.NewEnglish()
	for _, locale := range []string{"", "en", "en-US", "en_GB"} {
		_, err := r.RecognizeNumber(context.Background(), "2", locale)
		assert.NoError(t, err, locale)
	}

	_, err := r.RecognizeNumber(context.Background(), "dois", "pt-br")
	assert.ErrorIs(t, err, recognizers.ErrUnsupportedLocale)
}

func TestRecognizeNumber_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := recognizers.NewEnglish().RecognizeNumber(ctx, "2", "en-us")
	assert.ErrorIs(t, err, context.Canceled)
}
