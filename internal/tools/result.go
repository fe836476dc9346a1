// ABOUTME: Tool result union and the structured error taxonomy
// ABOUTME: Every tool call resolves to success, error, or pending_approval

package tools

import (
	"encoding/json"
	"fmt"
)

// Result status discriminators.
const (
	StatusSuccess         = "success"
	StatusError           = "error"
	StatusPendingApproval = "pending_approval"
)

// Stable error codes surfaced to the agent and to API clients.
const (
	CodeToolNotFound       = "TOOL_NOT_FOUND"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeInvalidApproval    = "INVALID_APPROVAL"
	CodeExecutionError     = "EXECUTION_ERROR"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeUserExists         = "USER_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
)

// Error is a structured tool failure with a stable code. Handlers return
// *Error for failures they can classify; anything else is wrapped as an
// execution error at the executor boundary.
type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Errorf builds a structured error with a formatted message.
func Errorf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Result is the discriminated outcome of a tool call. Exactly one of Data,
// Err, or the approval pair is meaningful, selected by Status.
type Result struct {
	Status     string          `json:"status"`
	Data       json.RawMessage `json:"data,omitempty"`
	Err        *Error          `json:"error,omitempty"`
	ApprovalID string          `json:"approval_id,omitempty"`
	Preview    string          `json:"preview,omitempty"`
}

// Success wraps a handler payload as a successful result. A payload that
// fails to serialize is an execution error, not a panic.
func Success(data any) Result {
	raw, err := json.Marshal(data)
	if err != nil {
		return Failure(Errorf(CodeExecutionError, "serializing tool result: %v", err))
	}
	return Result{Status: StatusSuccess, Data: raw}
}

// Failure wraps a structured error as an error result.
func Failure(err *Error) Result {
	return Result{Status: StatusError, Err: err}
}

// PendingApproval signals that the call was parked behind a pending
// approval. The preview is a human-readable summary of what would run.
func PendingApproval(approvalID, preview string) Result {
	return Result{Status: StatusPendingApproval, ApprovalID: approvalID, Preview: preview}
}
