/*
Package ports defines the driven ports (interfaces) for the promptflow engine.

These interfaces decouple the turn logic from external implementations, allowing
the engine to work with various storage backends, recognizers and lock providers.

# Key Interfaces

  - Store: Persists one record type per key (FlowStore per conversation, ProfileStore per user).
  - Recognizer: Turns free text into ordered numeric or date/time candidates.
  - DistributedLocker: Serializes turns for the same conversation across replicas.
  - TurnHandler: The inbound port implemented by the engine and consumed by transports.
*/
package ports
