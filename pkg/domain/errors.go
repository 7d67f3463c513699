package domain

import "errors"

// ErrNotFound is returned when a key cannot be found in a store.
var ErrNotFound = errors.New("not found")

// ErrFieldAlreadySet is returned when a profile field is written twice in the same pass.
var ErrFieldAlreadySet = errors.New("profile field already set")

// ErrUnknownQuestion is returned when a question is not part of the sequence.
var ErrUnknownQuestion = errors.New("unknown question")

// ErrMissingConversation is returned for turns without a conversation ID.
var ErrMissingConversation = errors.New("conversation id is required")
