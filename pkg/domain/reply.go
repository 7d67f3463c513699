package domain

// ReplyKind classifies an outgoing message.
type ReplyKind string

const (
	ReplyPrompt     ReplyKind = "prompt"
	ReplyAck        ReplyKind = "ack"
	ReplyRejection  ReplyKind = "rejection"
	ReplyCompletion ReplyKind = "completion"
)

// Reply is a single outgoing text message produced by a turn.
// The transport is responsible for actually delivering it.
type Reply struct {
	Kind     ReplyKind `json:"kind"`
	Text     string    `json:"text"`
	Question Question  `json:"question,omitempty"`
}
