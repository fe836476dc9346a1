// ABOUTME: Package documentation for the agent package
// ABOUTME: Explains the two-phase loop and the action feedback path

// Package agent hosts the conversation runtime. Each user turn is at most
// two model calls: the first offers the registered tool set and may come
// back with tool calls, which are executed in request order; the second
// sees every tool result and produces the reply shown to the user. View
// interactions re-enter the same loop as synthesized user messages.
package agent
