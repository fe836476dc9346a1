// ABOUTME: Tool executor: resolves tool names, gates writes behind approvals
// ABOUTME: Dispatches by tool name prefix to registered capability handlers

package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/2389/trainer-gateway/internal/capability"
	"github.com/2389/trainer-gateway/internal/store"
)

// Handler executes the tools of one capability. The executor routes a tool
// name to the handler whose registered prefix matches it. Handlers return a
// payload for Success, or an error; a *Error passes through with its code,
// anything else is classified as an execution error.
type Handler interface {
	Handle(ctx context.Context, userID, toolName string, args json.RawMessage) (any, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, userID, toolName string, args json.RawMessage) (any, error)

func (f HandlerFunc) Handle(ctx context.Context, userID, toolName string, args json.RawMessage) (any, error) {
	return f(ctx, userID, toolName, args)
}

// Registry is the narrow capability lookup the executor needs.
type Registry interface {
	FindTool(name string) (*capability.ToolDefinition, bool)
}

// Store is the narrow persistence interface the executor needs.
type Store interface {
	CreateApproval(ctx context.Context, approval *store.Approval) error
	GetApproval(ctx context.Context, id string) (*store.Approval, error)
	AppendToolAudit(ctx context.Context, entry *store.ToolAuditEntry) error
}

// Executor resolves tool calls against the registry, parks approval-gated
// calls, and dispatches the rest to capability handlers by name prefix.
type Executor struct {
	registry  Registry
	store     Store
	auditMode bool
	handlers  map[string]Handler // prefix -> handler
	logger    *slog.Logger
}

// NewExecutor creates an Executor. When auditMode is true, tools whose
// policy requires approval are parked as pending approvals instead of
// executing immediately.
func NewExecutor(registry Registry, s Store, auditMode bool, logger *slog.Logger) *Executor {
	return &Executor{
		registry:  registry,
		store:     s,
		auditMode: auditMode,
		handlers:  make(map[string]Handler),
		logger:    logger,
	}
}

// RegisterHandler routes tool names starting with prefix to the handler.
func (e *Executor) RegisterHandler(prefix string, h Handler) {
	e.handlers[prefix] = h
}

// Execute runs one tool call for a user and always returns a terminal
// Result; failures are carried in the result, not as an error.
func (e *Executor) Execute(ctx context.Context, userID, toolName string, args json.RawMessage) Result {
	def, ok := e.registry.FindTool(toolName)
	if !ok {
		res := Failure(Errorf(CodeToolNotFound, "tool '%s' is not registered", toolName))
		e.audit(ctx, userID, toolName, args, store.ToolAuditFailed, CodeToolNotFound)
		return res
	}

	if def.Policy.RequiresApproval && e.auditMode {
		approval := &store.Approval{
			ID:       uuid.New().String(),
			UserID:   userID,
			ToolName: toolName,
			ToolArgs: args,
			Status:   store.ApprovalStatusPending,
			Preview:  previewCall(toolName, args),
		}
		if err := e.store.CreateApproval(ctx, approval); err != nil {
			e.logger.Error("failed to create approval", "tool", toolName, "error", err)
			res := Failure(Errorf(CodeExecutionError, "creating approval: %v", err))
			e.audit(ctx, userID, toolName, args, store.ToolAuditFailed, CodeExecutionError)
			return res
		}

		e.logger.Info("tool call parked for approval",
			"tool", toolName,
			"user_id", userID,
			"approval_id", approval.ID,
		)
		e.audit(ctx, userID, toolName, args, store.ToolAuditPendingApproval, "")
		return PendingApproval(approval.ID, approval.Preview)
	}

	return e.dispatch(ctx, userID, toolName, args)
}

// ExecuteApproved runs the tool call carried by an already-approved
// approval, bypassing the approval gate. Callers are responsible for having
// transitioned the approval first.
func (e *Executor) ExecuteApproved(ctx context.Context, approvalID string) Result {
	approval, err := e.store.GetApproval(ctx, approvalID)
	if errors.Is(err, store.ErrNotFound) {
		return Failure(Errorf(CodeInvalidApproval, "approval '%s' not found", approvalID))
	}
	if err != nil {
		return Failure(Errorf(CodeExecutionError, "loading approval: %v", err))
	}
	if approval.Status != store.ApprovalStatusApproved {
		return Failure(Errorf(CodeInvalidApproval,
			"approval '%s' is %s, not approved", approvalID, approval.Status))
	}

	return e.dispatch(ctx, approval.UserID, approval.ToolName, approval.ToolArgs)
}

// dispatch routes by the longest matching registered prefix and classifies
// the handler outcome.
func (e *Executor) dispatch(ctx context.Context, userID, toolName string, args json.RawMessage) Result {
	handler, ok := e.findHandler(toolName)
	if !ok {
		res := Failure(Errorf(CodeToolNotFound, "no handler for tool '%s'", toolName))
		e.audit(ctx, userID, toolName, args, store.ToolAuditFailed, CodeToolNotFound)
		return res
	}

	payload, err := handler.Handle(ctx, userID, toolName, args)
	if err != nil {
		var toolErr *Error
		if !errors.As(err, &toolErr) {
			toolErr = Errorf(CodeExecutionError, "%v", err)
		}
		e.logger.Warn("tool execution failed",
			"tool", toolName,
			"user_id", userID,
			"code", toolErr.Code,
			"error", toolErr.Message,
		)
		e.audit(ctx, userID, toolName, args, store.ToolAuditFailed, toolErr.Code)
		return Failure(toolErr)
	}

	e.audit(ctx, userID, toolName, args, store.ToolAuditExecuted, "")
	return Success(payload)
}

func (e *Executor) findHandler(toolName string) (Handler, bool) {
	// Longest prefix wins so overlapping registrations stay deterministic.
	prefixes := make([]string, 0, len(e.handlers))
	for p := range e.handlers {
		prefixes = append(prefixes, p)
	}
	sort.Slice(prefixes, func(i, j int) bool { return len(prefixes[i]) > len(prefixes[j]) })

	for _, p := range prefixes {
		if strings.HasPrefix(toolName, p) {
			return e.handlers[p], true
		}
	}
	return nil, false
}

// audit appends to the tool audit log. Audit failures are logged and
// swallowed, they never change the tool outcome.
func (e *Executor) audit(ctx context.Context, userID, toolName string, args json.RawMessage, outcome, errorCode string) {
	entry := &store.ToolAuditEntry{
		ID:        uuid.New().String(),
		UserID:    userID,
		ToolName:  toolName,
		Args:      args,
		Outcome:   outcome,
		ErrorCode: errorCode,
	}
	if err := e.store.AppendToolAudit(ctx, entry); err != nil {
		e.logger.Error("failed to append tool audit entry", "tool", toolName, "error", err)
	}
}

func previewCall(toolName string, args json.RawMessage) string {
	compact := string(args)
	if len(args) > 0 {
		var buf bytes.Buffer
		if err := json.Compact(&buf, args); err == nil {
			compact = buf.String()
		}
	}
	return fmt.Sprintf("Execute %s with args: %s", toolName, compact)
}
