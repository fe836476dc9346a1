// ABOUTME: Agent runtime: the two-phase model loop with ordered tool execution
// ABOUTME: Synthesizes view actions back into conversation messages

package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/2389/trainer-gateway/internal/a2ui"
	"github.com/2389/trainer-gateway/internal/capability"
	"github.com/2389/trainer-gateway/internal/model"
	"github.com/2389/trainer-gateway/internal/tools"
)

// Registry is the narrow capability lookup the runtime needs.
type Registry interface {
	List() []*capability.Definition
	Tools() []capability.ToolDefinition
}

// Executor runs tool calls the model requests.
type Executor interface {
	Execute(ctx context.Context, userID, toolName string, args json.RawMessage) tools.Result
}

// HistoryMessage is one prior turn supplied by the client.
type HistoryMessage struct {
	Role    string `json:"role"` // user or assistant
	Content string `json:"content"`
}

// Response is the runtime's reply to one user turn.
type Response struct {
	Message  string            `json:"message"`
	View     *a2ui.View        `json:"view,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Runtime drives the conversation loop: offer tools, execute what the
// model requests in order, then ask for the final reply.
type Runtime struct {
	client   model.Client
	exec     Executor
	registry Registry
	logger   *slog.Logger
}

// NewRuntime creates a Runtime.
func NewRuntime(client model.Client, exec Executor, registry Registry, logger *slog.Logger) *Runtime {
	return &Runtime{client: client, exec: exec, registry: registry, logger: logger}
}

const personaPrompt = `You are a supportive personal trainer. You help the user track workouts and body weight, spot trends, and stay motivated. Be concise and encouraging.

When structured data would help, emit exactly one view as a fenced json block:

` + "```json" + `
{"kind": "a2ui.v1", "view_id": "...", "title": "...", "tree": {...}}
` + "```" + `

Available components: screen, section, text, form, table_editor, button. Form fields: field.text, field.number, field.datetime, field.select.

Before any tool that changes data, show the user what will change and wait for their confirmation. Never invent entry ids; list first.`

// systemPrompt assembles the persona, skill documentation, and table cards
// of every registered capability.
func (r *Runtime) systemPrompt() string {
	var b strings.Builder
	b.WriteString(personaPrompt)

	for _, def := range r.registry.List() {
		if def.SkillDocs != nil {
			fmt.Fprintf(&b, "\n\n## Skill: %s\n", def.SkillDocs.Title)
			fmt.Fprintf(&b, "%s\n\nWhen to use: %s\n\nInstructions: %s\n",
				def.SkillDocs.Description, def.SkillDocs.WhenToUse, def.SkillDocs.Instructions)
		}
		for _, card := range def.TableCards {
			fmt.Fprintf(&b, "\n### Table: %s\n%s\n", card.TableName, card.Description)
			for _, f := range card.Fields {
				req := "optional"
				if f.Required {
					req = "required"
				}
				fmt.Fprintf(&b, "- %s (%s, %s): %s\n", f.Name, f.Type, req, f.Description)
			}
		}
	}
	return b.String()
}

// toolSchemas maps registered tool definitions into the model wire shape.
func (r *Runtime) toolSchemas() []model.ToolSchema {
	defs := r.registry.Tools()
	if len(defs) == 0 {
		return nil
	}
	schemas := make([]model.ToolSchema, 0, len(defs))
	for _, def := range defs {
		schemas = append(schemas, model.ToolSchema{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  def.ArgsSchema,
		})
	}
	return schemas
}

// ProcessMessage runs one user turn through the model loop and returns the
// final reply, with any embedded view extracted and validated.
func (r *Runtime) ProcessMessage(ctx context.Context, userID, message string, history []HistoryMessage) (*Response, error) {
	messages := []model.Message{{Role: model.RoleSystem, Content: r.systemPrompt()}}
	for _, h := range history {
		role := model.RoleUser
		if h.Role == "assistant" {
			role = model.RoleAssistant
		}
		messages = append(messages, model.Message{Role: role, Content: h.Content})
	}
	messages = append(messages, model.Message{Role: model.RoleUser, Content: message})

	first, err := r.client.Complete(ctx, model.Request{
		Messages: messages,
		Tools:    r.toolSchemas(),
	})
	if err != nil {
		return nil, fmt.Errorf("model completion: %w", err)
	}

	if len(first.ToolCalls) == 0 {
		return r.finalize(first.Content), nil
	}

	// Execute requested tools in the order the model asked for them, then
	// feed every result back keyed by call id.
	messages = append(messages, model.Message{
		Role:      model.RoleAssistant,
		Content:   first.Content,
		ToolCalls: first.ToolCalls,
	})
	for _, call := range first.ToolCalls {
		result := r.exec.Execute(ctx, userID, call.Name, call.Arguments)
		r.logger.Info("tool call completed",
			"tool", call.Name,
			"user_id", userID,
			"status", result.Status,
		)

		resultJSON, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("serializing tool result: %w", err)
		}
		messages = append(messages, model.Message{
			Role:       model.RoleTool,
			ToolCallID: call.ID,
			Content:    string(resultJSON),
		})
	}

	second, err := r.client.Complete(ctx, model.Request{Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("model completion after tools: %w", err)
	}
	return r.finalize(second.Content), nil
}

// ProcessAction converts a view interaction into its synthetic message and
// runs it through the normal loop.
func (r *Runtime) ProcessAction(ctx context.Context, userID string, action a2ui.Action, history []HistoryMessage) (*Response, error) {
	return r.ProcessMessage(ctx, userID, action.Message(), history)
}

// finalize extracts an embedded view, if any, and strips it from the text.
func (r *Runtime) finalize(content string) *Response {
	view := a2ui.ExtractView(content)
	message := content
	if view != nil {
		message = strings.TrimSpace(a2ui.StripView(content))
	}
	return &Response{Message: message, View: view}
}
