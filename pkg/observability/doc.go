/*
Package observability provides tools for monitoring the promptflow engine.

It turns engine lifecycle hooks into structured log lines and Prometheus metrics,
and installs an OpenTelemetry tracer provider for the per-turn spans the engine emits.
*/
package observability
