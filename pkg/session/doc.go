/*
Package session serializes turns per conversation and exposes session administration.

The engine core holds no locks. Hosts (HTTP, MCP, CLI) route every turn through
Manager.HandleTurn, which holds a ref-counted in-process mutex for the conversation and,
when configured, a distributed lock so replicas never interleave turns of the same
conversation.
*/
package session
