package domain

import (
	"fmt"
	"strconv"
)

// ValueKind describes the type carried by a Value.
type ValueKind string

const (
	ValueText   ValueKind = "text"
	ValueNumber ValueKind = "number"
	ValueDate   ValueKind = "date"
)

// Value is an accepted, typed answer.
type Value struct {
	Kind   ValueKind `json:"kind"`
	Text   string    `json:"text,omitempty"`
	Number int       `json:"number,omitempty"`
}

// TextValue builds a text answer.
func TextValue(s string) Value {
	return Value{Kind: ValueText, Text: s}
}

// NumberValue builds an integer answer.
func NumberValue(n int) Value {
	return Value{Kind: ValueNumber, Number: n}
}

// DateValue builds a formatted date answer.
func DateValue(s string) Value {
	return Value{Kind: ValueDate, Text: s}
}

// String renders the value the way it is echoed back to the user.
func (v Value) String() string {
	if v.Kind == ValueNumber {
		return strconv.Itoa(v.Number)
	}
	return v.Text
}

// Profile is the record of answers collected in the current pass, one field per question.
// A missing key means the question has not been answered yet.
type Profile struct {
	Fields map[Question]Value `json:"fields"`
}

// NewProfile creates an empty profile.
func NewProfile() *Profile {
	return &Profile{Fields: make(map[Question]Value)}
}

// Set records the answer for q. Each field can only be written once per pass.
func (p *Profile) Set(q Question, v Value) error {
	if q.IsNone() {
		return fmt.Errorf("%w: %q", ErrUnknownQuestion, q)
	}
	if p.Fields == nil {
		p.Fields = make(map[Question]Value)
	}
	if _, ok := p.Fields[q]; ok {
		return fmt.Errorf("%w: %s", ErrFieldAlreadySet, q)
	}
	p.Fields[q] = v
	return nil
}

// Get returns the answer for q, if any.
func (p *Profile) Get(q Question) (Value, bool) {
	v, ok := p.Fields[q]
	return v, ok
}

// Has reports whether q was answered.
func (p *Profile) Has(q Question) bool {
	_, ok := p.Fields[q]
	return ok
}

// Len returns the number of answered questions.
func (p *Profile) Len() int {
	return len(p.Fields)
}

// Clone returns a deep copy of the profile.
func (p *Profile) Clone() *Profile {
	c := NewProfile()
	for k, v := range p.Fields {
		c.Fields[k] = v
	}
	return c
}
