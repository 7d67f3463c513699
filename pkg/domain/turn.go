package domain

// Turn is one incoming message, scoped to a conversation and a user.
type Turn struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	Text           string `json:"text"`
}

// TurnResult is everything a turn produced: the ordered replies and the persisted records.
type TurnResult struct {
	Replies []Reply    `json:"replies"`
	Flow    *FlowState `json:"flow"`
	Profile *Profile   `json:"profile"`

	// Outcome summarizes what happened to the pending question.
	Outcome Outcome `json:"outcome"`
}

// Texts returns the reply texts in order.
func (r *TurnResult) Texts() []string {
	out := make([]string, len(r.Replies))
	for i, reply := range r.Replies {
		out[i] = reply.Text
	}
	return out
}
