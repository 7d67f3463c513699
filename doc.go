/*
Package promptflow is a turn-based engine for guided conversations: it asks a
fixed sequence of questions, validates each free-text answer and remembers the
accepted ones.

# Concept

Every incoming message is a Turn. The engine loads the conversation's FlowState
(which question is pending) and the user's Profile (answers collected so far),
validates the text against the pending question and persists both records
again. The very first message of a conversation is not consumed as an answer;
it only triggers the first prompt. After the last question the engine thanks
the user, resets the flow and starts a fresh profile.

The question table is data (see package flow). Numeric questions share one
rule that accepts digits or words ("two", "twenty five"), date questions accept
natural language ("tomorrow at 5pm") and must be at least an hour out.

The engine itself holds no locks. Hosts serialize turns per conversation with
package session, which every bundled transport (CLI, HTTP, MCP) uses.

# Usage

	eng, err := promptflow.New()
	if err != nil {
		log.Fatal(err)
	}

	res, err := eng.HandleTurn(ctx, domain.Turn{ConversationID: "c1", Text: "hi"})
	if err != nil {
		log.Fatal(err)
	}
	for _, line := range res.Texts() {
		fmt.Println(line) // Let's get started. What is your name?
	}
*/
package promptflow
