// ABOUTME: Model client abstraction: messages, tool calls, and completions
// ABOUTME: The agent runtime depends on this interface, not a provider SDK

package model

import (
	"context"
	"encoding/json"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a model-requested tool invocation.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Message is one turn of a model conversation. Tool result messages carry
// the ToolCallID of the call they answer.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolSchema advertises one callable tool to the model.
type ToolSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// Request is one completion request.
type Request struct {
	Messages []Message
	Tools    []ToolSchema
}

// Response is the model's reply: text, tool calls, or both.
type Response struct {
	Content   string
	ToolCalls []ToolCall
}

// Client completes conversations against a language model.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}
