// ABOUTME: Package documentation for the approval package
// ABOUTME: Explains the pending/approved/denied state machine

// Package approval implements the human consent workflow for tool calls
// whose policy requires approval. An approval is created pending by the
// tool executor and resolved here exactly once, to approved (which executes
// the parked call) or denied (which discards it).
package approval
