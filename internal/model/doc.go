// ABOUTME: Package documentation for the model package
// ABOUTME: Provider-neutral completion types plus an OpenAI-compatible client

// Package model defines the completion client interface the agent runtime
// uses and ships a client for OpenAI-compatible chat endpoints. Keeping the
// wire format behind the Client interface lets tests substitute a scripted
// model and keeps provider details out of the agent loop.
package model
