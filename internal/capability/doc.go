// ABOUTME: Package documentation for the capability package
// ABOUTME: Explains capability bundles and registry semantics

// Package capability defines versioned bundles of tools, table cards, and
// skill documentation, and the registry that holds the active set.
//
// The registry is the single source of truth for what the agent is allowed
// to ask for: the agent runtime offers exactly the flattened tool list of
// the registered capabilities, and the tool executor resolves tool names
// against the same set. Tool names are globally unique; registering a
// capability whose tool name is already claimed by a different capability
// fails with ErrToolCollision.
package capability
