package domain

// Question identifies a prompt in the sequence.
type Question string

// QuestionNone is the sentinel for "no question asked yet".
// A flow sitting on QuestionNone consumes no input on its next turn.
const QuestionNone Question = "none"

// IsNone reports whether q is the not-started sentinel (or empty).
func (q Question) IsNone() bool {
	return q == "" || q == QuestionNone
}

func (q Question) String() string {
	if q == "" {
		return string(QuestionNone)
	}
	return string(q)
}
