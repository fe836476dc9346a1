// ABOUTME: Package documentation for the weights package
// ABOUTME: The first concrete capability served by the gateway

// Package weights implements the weight tracking capability: the tool
// handler backing weight_entry_list, weight_entry_save_batch, and
// weight_entry_delete_batch, and the capability definition that registers
// them. Write tools require approval; every store operation is scoped to
// the calling user.
package weights
