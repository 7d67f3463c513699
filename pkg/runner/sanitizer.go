package runner

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxInputSize is the byte limit of a Sanitizer without one.
const DefaultMaxInputSize = 4096

// Sanitizer errors. Transports map both to a client error.
var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// Sanitizer is the input policy every transport applies before a turn.
// The zero value uses DefaultMaxInputSize.
type Sanitizer struct {
	MaxSize int
}

// Limit returns the effective byte limit.
func (s Sanitizer) Limit() int {
	if s.MaxSize > 0 {
		return s.MaxSize
	}
	return DefaultMaxInputSize
}

// Clean rejects oversized or invalid UTF-8 input and drops control characters
// other than tab, newline and carriage return. Oversized input is never
// truncated: a cut answer could validate differently.
func (s Sanitizer) Clean(input string) (string, error) {
	if limit := s.Limit(); len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}
	if strings.IndexFunc(input, unsafeControl) < 0 {
		return input, nil
	}
	return strings.Map(func(r rune) rune {
		if unsafeControl(r) {
			return -1
		}
		return r
	}, input), nil
}

func unsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}

// IsInputError reports whether err was produced by Sanitizer.Clean.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInputTooLarge) || errors.Is(err, ErrInvalidUTF8)
}
