// Package logging wires zerolog for agentview.
//
// Loggers are built once per process from a Config, carried through
// context.Context, and narrowed per package with ComponentLogger. Every
// command invocation gets a trace ID (a ULID) that is attached to the
// context and stamped on each log line written with .Ctx(ctx).
package logging
