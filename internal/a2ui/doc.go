// ABOUTME: Package documentation for the a2ui package
// ABOUTME: Explains the agent-to-UI protocol and its trust boundary

// Package a2ui implements the agent-to-UI protocol: a closed set of
// declarative components the model may emit inside a fenced json block, and
// the closed set of actions a rendered view can send back.
//
// The component vocabulary is intentionally small. Decoding is strict in
// both directions, but extraction from model output is tolerant: a response
// that contains no valid view is simply plain text, never an error.
package a2ui
