package recognizers

import "errors"

var (
	// ErrNoMatch is returned when the text contains nothing recognizable.
	ErrNoMatch = errors.New("no recognizable value")
	// ErrUnsupportedLocale is returned for locales other than English.
	ErrUnsupportedLocale = errors.New("unsupported locale")
)
