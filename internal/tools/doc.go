// ABOUTME: Package documentation for the tools package
// ABOUTME: Explains the executor pipeline and the result union

// Package tools implements the execution pipeline for agent tool calls:
// registry resolution, the approval gate for policy-flagged writes, prefix
// dispatch to capability handlers, and audit logging.
//
// Every call resolves to a Result with one of three statuses: success,
// error, or pending_approval. The executor never returns a Go error for a
// tool failure; failures are data the agent can reason about.
package tools
