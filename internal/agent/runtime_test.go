// ABOUTME: Tests for the agent runtime with a scripted model client
// ABOUTME: Verifies tool ordering, result wiring, and view extraction

package agent

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/trainer-gateway/internal/a2ui"
	"github.com/2389/trainer-gateway/internal/capability"
	"github.com/2389/trainer-gateway/internal/model"
	"github.com/2389/trainer-gateway/internal/tools"
)

// scriptedClient replays canned responses and records every request.
type scriptedClient struct {
	responses []*model.Response
	requests  []model.Request
}

func (c *scriptedClient) Complete(_ context.Context, req model.Request) (*model.Response, error) {
	c.requests = append(c.requests, req)
	resp := c.responses[0]
	c.responses = c.responses[1:]
	return resp, nil
}

type scriptedExecutor struct {
	calls   []string
	results map[string]tools.Result
}

func (e *scriptedExecutor) Execute(_ context.Context, _, toolName string, _ json.RawMessage) tools.Result {
	e.calls = append(e.calls, toolName)
	if res, ok := e.results[toolName]; ok {
		return res
	}
	return tools.Success(map[string]any{"ok": true})
}

type staticRegistry struct {
	defs []*capability.Definition
}

func (r *staticRegistry) List() []*capability.Definition { return r.defs }

func (r *staticRegistry) Tools() []capability.ToolDefinition {
	var out []capability.ToolDefinition
	for _, d := range r.defs {
		out = append(out, d.Tools...)
	}
	return out
}

func testRegistry() *staticRegistry {
	return &staticRegistry{defs: []*capability.Definition{{
		CapabilityID: "weights",
		Tools: []capability.ToolDefinition{
			{Name: "weight_entry_list", Description: "List entries", ArgsSchema: json.RawMessage(`{"type": "object"}`)},
			{Name: "weight_entry_save_batch", Description: "Save entries", ArgsSchema: json.RawMessage(`{"type": "object"}`)},
		},
		SkillDocs: &capability.SkillDocumentation{
			Title:        "Weight Tracking",
			Description:  "Track body weight.",
			WhenToUse:    "When the user mentions weighing in.",
			Instructions: "List before editing.",
		},
	}}}
}

func setupRuntime(client *scriptedClient) (*Runtime, *scriptedExecutor) {
	exec := &scriptedExecutor{results: map[string]tools.Result{}}
	rt := NewRuntime(client, exec, testRegistry(), slog.New(slog.DiscardHandler))
	return rt, exec
}

func TestProcessMessagePlainReply(t *testing.T) {
	client := &scriptedClient{responses: []*model.Response{
		{Content: "Keep up the good work!"},
	}}
	rt, exec := setupRuntime(client)

	resp, err := rt.ProcessMessage(context.Background(), "u1", "thanks coach", nil)
	require.NoError(t, err)
	assert.Equal(t, "Keep up the good work!", resp.Message)
	assert.Nil(t, resp.View)
	assert.Empty(t, exec.calls)

	// Single model call, tools offered, system prompt first.
	require.Len(t, client.requests, 1)
	req := client.requests[0]
	assert.Len(t, req.Tools, 2)
	require.NotEmpty(t, req.Messages)
	assert.Equal(t, model.RoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "a2ui.v1")
	assert.Contains(t, req.Messages[0].Content, "Weight Tracking")
}

func TestProcessMessageExecutesToolsInOrder(t *testing.T) {
	client := &scriptedClient{responses: []*model.Response{
		{ToolCalls: []model.ToolCall{
			{ID: "call_1", Name: "weight_entry_list", Arguments: json.RawMessage(`{"limit": 5}`)},
			{ID: "call_2", Name: "weight_entry_save_batch", Arguments: json.RawMessage(`{"entries": []}`)},
		}},
		{Content: "Saved your entries."},
	}}
	rt, exec := setupRuntime(client)

	resp, err := rt.ProcessMessage(context.Background(), "u1", "log my weight", nil)
	require.NoError(t, err)
	assert.Equal(t, "Saved your entries.", resp.Message)
	assert.Equal(t, []string{"weight_entry_list", "weight_entry_save_batch"}, exec.calls)

	// The second request carries the assistant tool calls and one tool
	// result per call, keyed by call id, and offers no tools.
	require.Len(t, client.requests, 2)
	second := client.requests[1]
	assert.Empty(t, second.Tools)

	n := len(second.Messages)
	require.GreaterOrEqual(t, n, 3)
	assistant := second.Messages[n-3]
	assert.Equal(t, model.RoleAssistant, assistant.Role)
	require.Len(t, assistant.ToolCalls, 2)

	first, secondResult := second.Messages[n-2], second.Messages[n-1]
	assert.Equal(t, model.RoleTool, first.Role)
	assert.Equal(t, "call_1", first.ToolCallID)
	assert.Equal(t, "call_2", secondResult.ToolCallID)
	assert.Contains(t, first.Content, `"status"`)
}

func TestProcessMessageCarriesPendingApprovalResult(t *testing.T) {
	client := &scriptedClient{responses: []*model.Response{
		{ToolCalls: []model.ToolCall{
			{ID: "call_1", Name: "weight_entry_save_batch", Arguments: json.RawMessage(`{}`)},
		}},
		{Content: "I've queued that change for your approval."},
	}}
	rt, exec := setupRuntime(client)
	exec.results["weight_entry_save_batch"] = tools.PendingApproval("ap1", "Execute weight_entry_save_batch with args: {}")

	_, err := rt.ProcessMessage(context.Background(), "u1", "save it", nil)
	require.NoError(t, err)

	toolMsg := client.requests[1].Messages[len(client.requests[1].Messages)-1]
	assert.Contains(t, toolMsg.Content, "pending_approval")
	assert.Contains(t, toolMsg.Content, "ap1")
}

func TestProcessMessageExtractsView(t *testing.T) {
	content := "Here's your log:\n```json\n{\"kind\": \"a2ui.v1\", \"view_id\": \"log\", \"title\": \"Log\", \"tree\": {\"type\": \"text\", \"content\": \"hi\"}}\n```"
	client := &scriptedClient{responses: []*model.Response{{Content: content}}}
	rt, _ := setupRuntime(client)

	resp, err := rt.ProcessMessage(context.Background(), "u1", "show my log", nil)
	require.NoError(t, err)
	require.NotNil(t, resp.View)
	assert.Equal(t, "log", resp.View.ViewID)
	assert.Equal(t, "Here's your log:", resp.Message)
}

func TestProcessMessageInvalidViewDegradesToText(t *testing.T) {
	content := "Here you go:\n```json\n{\"kind\": \"a2ui.v1\", \"tree\": {\"type\": \"hologram\"}}\n```"
	client := &scriptedClient{responses: []*model.Response{{Content: content}}}
	rt, _ := setupRuntime(client)

	resp, err := rt.ProcessMessage(context.Background(), "u1", "show", nil)
	require.NoError(t, err)
	assert.Nil(t, resp.View)
	assert.Equal(t, content, resp.Message)
}

func TestProcessMessageIncludesHistory(t *testing.T) {
	client := &scriptedClient{responses: []*model.Response{{Content: "ok"}}}
	rt, _ := setupRuntime(client)

	history := []HistoryMessage{
		{Role: "user", Content: "I weighed 182 today"},
		{Role: "assistant", Content: "Logged!"},
	}
	_, err := rt.ProcessMessage(context.Background(), "u1", "and 181 yesterday", history)
	require.NoError(t, err)

	msgs := client.requests[0].Messages
	require.Len(t, msgs, 4)
	assert.Equal(t, model.RoleUser, msgs[1].Role)
	assert.Equal(t, model.RoleAssistant, msgs[2].Role)
	assert.Equal(t, "and 181 yesterday", msgs[3].Content)
}

func TestProcessAction(t *testing.T) {
	client := &scriptedClient{responses: []*model.Response{{Content: "Row deleted."}}}
	rt, _ := setupRuntime(client)

	resp, err := rt.ProcessAction(context.Background(), "u1",
		a2ui.TableDeleteRow{TableID: "weights", RowID: "e1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Row deleted.", resp.Message)

	userMsg := client.requests[0].Messages[len(client.requests[0].Messages)-1]
	assert.Equal(t, "User wants to delete row e1 from table weights", userMsg.Content)
}
