package validation

import "errors"

// Reason classifies why an answer was refused.
type Reason string

const (
	ReasonEmpty           Reason = "empty"
	ReasonWrongAnswer     Reason = "wrong_answer"
	ReasonUninterpretable Reason = "uninterpretable"
	ReasonOutOfRange      Reason = "out_of_range"
	ReasonTooSoon         Reason = "too_soon"
)

// User-facing rejection messages.
const (
	MsgEmptyName         = "Please enter a name that contains at least one character."
	MsgWrongAnswer       = "Your input answer is wrong, Please enter the corrct answer "
	MsgUninterpretable   = "I'm sorry, I could not interpret that as an correct value. Please enter correct value"
	MsgDateTooSoon       = "I'm sorry, please enter a date at least an hour out."
	MsgDateUninterpreted = "I'm sorry, I could not interpret that as an appropriate date. Please enter a date at least an hour out."
	msgAgeOutOfRange     = "Please enter an age between %d and %d."
	msgAgeUninterpreted  = "I'm sorry, I could not interpret that as an age. Please enter an age between %d and %d."
)

// Rejection is a user-facing validation failure. It is never fatal.
type Rejection struct {
	Reason  Reason
	Message string
	// Err is the underlying recognition error, if any.
	Err error
}

func (r *Rejection) Error() string {
	return r.Message
}

func (r *Rejection) Unwrap() error {
	return r.Err
}

// Reject builds a rejection.
func Reject(reason Reason, msg string) *Rejection {
	return &Rejection{Reason: reason, Message: msg}
}

// AsRejection extracts a *Rejection from err.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}
