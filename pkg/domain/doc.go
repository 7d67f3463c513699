/*
Package domain contains the core domain models of the promptflow engine.

It defines the records that make a conversation stateless between turns yet
stateful overall, and the messages exchanged during a turn. This package is kept
pure and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - Question: Identifies a prompt in the sequence, or QuestionNone before the flow starts.
  - FlowState: The per-conversation position in the sequence (the last question asked).
  - Profile: The per-user record of answers collected in the current pass.
  - Reply: A single outgoing message (prompt, acknowledgment, rejection or completion).
  - Turn / TurnResult: One incoming message and everything the engine produced for it.
*/
package domain
