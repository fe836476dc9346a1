// ABOUTME: Human approval workflow for policy-gated tool calls
// ABOUTME: Transitions are atomic, concurrent resolutions have one winner

package approval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/2389/trainer-gateway/internal/store"
	"github.com/2389/trainer-gateway/internal/tools"
)

// ErrNotFoundOrProcessed is returned when the approval does not exist, is
// owned by another user, or was already resolved. Callers cannot tell these
// apart, which keeps foreign approval ids unprobeable.
var ErrNotFoundOrProcessed = errors.New("approval not found or already processed")

// Executor runs the tool call behind an approved approval.
type Executor interface {
	ExecuteApproved(ctx context.Context, approvalID string) tools.Result
}

// Store is the narrow persistence interface the workflow needs.
type Store interface {
	ListApprovals(ctx context.Context, userID, status string) ([]*store.Approval, error)
	TransitionApproval(ctx context.Context, id, userID, toStatus, approvedBy string) (bool, error)
}

// Workflow resolves pending approvals. The transition is a conditional
// update keyed on pending status, so a concurrent approve and deny of the
// same approval resolve to exactly one winner.
type Workflow struct {
	store  Store
	exec   Executor
	logger *slog.Logger
}

// NewWorkflow creates a Workflow.
func NewWorkflow(s Store, exec Executor, logger *slog.Logger) *Workflow {
	return &Workflow{store: s, exec: exec, logger: logger}
}

// ListPending returns the user's unresolved approvals, newest first.
func (w *Workflow) ListPending(ctx context.Context, userID string) ([]*store.Approval, error) {
	return w.store.ListApprovals(ctx, userID, store.ApprovalStatusPending)
}

// Approve transitions a pending approval to approved and executes the
// parked tool call. The approval stays approved even when execution fails;
// the failure is carried in the returned result.
func (w *Workflow) Approve(ctx context.Context, userID, approvalID string) (tools.Result, error) {
	won, err := w.store.TransitionApproval(ctx, approvalID, userID, store.ApprovalStatusApproved, userID)
	if err != nil {
		return tools.Result{}, fmt.Errorf("approving: %w", err)
	}
	if !won {
		return tools.Result{}, ErrNotFoundOrProcessed
	}

	w.logger.Info("approval granted", "approval_id", approvalID, "user_id", userID)

	result := w.exec.ExecuteApproved(ctx, approvalID)
	if result.Status == tools.StatusError {
		w.logger.Warn("approved tool call failed",
			"approval_id", approvalID,
			"code", result.Err.Code,
		)
	}
	return result, nil
}

// Deny transitions a pending approval to denied. The parked tool call is
// discarded and never runs.
func (w *Workflow) Deny(ctx context.Context, userID, approvalID string) error {
	won, err := w.store.TransitionApproval(ctx, approvalID, userID, store.ApprovalStatusDenied, userID)
	if err != nil {
		return fmt.Errorf("denying: %w", err)
	}
	if !won {
		return ErrNotFoundOrProcessed
	}

	w.logger.Info("approval denied", "approval_id", approvalID, "user_id", userID)
	return nil
}
