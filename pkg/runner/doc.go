/*
Package runner implements the chat loop and I/O helpers shared by the promptflow transports.

It acts as the bridge between a turn handler (the engine, usually behind a
session.Manager) and the outside world.

# Key Components

  - Runner: reads a line, sends it as a turn, writes the replies back.
  - IOHandler: decouples how messages are read and written (TextHandler, JSONHandler).
  - Sanitizer: the input policy every transport applies before a turn.
  - Response: the flattened turn result used by HTTP and MCP.

# Usage

	r := runner.NewRunner(manager,
		runner.WithUserID("ada"),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
