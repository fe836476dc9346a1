// ABOUTME: Approval record store methods implementing the pending/approved/denied state machine
// ABOUTME: Status transitions are conditional updates so concurrent decisions have exactly one winner

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateApproval inserts a new approval record. Generates ID and CreatedAt if
// not set; Status defaults to pending.
func (s *SQLiteStore) CreateApproval(ctx context.Context, approval *Approval) error {
	if approval.ID == "" {
		approval.ID = uuid.New().String()
	}
	if approval.CreatedAt.IsZero() {
		approval.CreatedAt = time.Now().UTC()
	}
	if approval.Status == "" {
		approval.Status = ApprovalStatusPending
	}

	query := `
		INSERT INTO approvals (approval_id, user_id, tool_name, tool_args, status, preview, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		approval.ID,
		approval.UserID,
		approval.ToolName,
		string(approval.ToolArgs),
		approval.Status,
		approval.Preview,
		approval.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting approval: %w", err)
	}

	s.logger.Debug("created approval",
		"approval_id", approval.ID,
		"user_id", approval.UserID,
		"tool_name", approval.ToolName,
	)
	return nil
}

// GetApproval retrieves an approval by id. Returns ErrNotFound when absent.
func (s *SQLiteStore) GetApproval(ctx context.Context, id string) (*Approval, error) {
	query := `
		SELECT approval_id, user_id, tool_name, tool_args, status, preview, created_at, approved_at, approved_by
		FROM approvals WHERE approval_id = ?
	`
	return scanApproval(s.db.QueryRowContext(ctx, query, id))
}

// ListApprovals returns approvals for a user with the given status,
// most recent first.
func (s *SQLiteStore) ListApprovals(ctx context.Context, userID, status string) ([]*Approval, error) {
	query := `
		SELECT approval_id, user_id, tool_name, tool_args, status, preview, created_at, approved_at, approved_by
		FROM approvals
		WHERE user_id = ? AND status = ?
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID, status)
	if err != nil {
		return nil, fmt.Errorf("querying approvals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var approvals []*Approval
	for rows.Next() {
		a, err := scanApproval(rows)
		if err != nil {
			return nil, err
		}
		approvals = append(approvals, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating approvals: %w", err)
	}
	return approvals, nil
}

// TransitionApproval atomically moves a pending approval owned by userID to
// toStatus. The WHERE clause carries the ownership and pending checks so two
// concurrent decisions on the same approval cannot both succeed. Returns
// false when nothing matched; the caller cannot distinguish a missing
// approval from one already resolved, which is deliberate.
func (s *SQLiteStore) TransitionApproval(ctx context.Context, id, userID, toStatus, approvedBy string) (bool, error) {
	if toStatus != ApprovalStatusApproved && toStatus != ApprovalStatusDenied {
		return false, fmt.Errorf("invalid target status %q", toStatus)
	}

	query := `
		UPDATE approvals
		SET status = ?, approved_at = ?, approved_by = ?
		WHERE approval_id = ? AND user_id = ? AND status = 'pending'
	`

	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx, query, toStatus, now, approvedBy, id, userID)
	if err != nil {
		return false, fmt.Errorf("transitioning approval: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	s.logger.Info("approval resolved",
		"approval_id", id,
		"user_id", userID,
		"status", toStatus,
	)
	return true, nil
}

// scanApproval scans one approval row from a row or rows scanner.
func scanApproval(scanner interface{ Scan(dest ...any) error }) (*Approval, error) {
	var a Approval
	var args, createdAt string
	var preview, approvedAt, approvedBy sql.NullString

	err := scanner.Scan(
		&a.ID,
		&a.UserID,
		&a.ToolName,
		&args,
		&a.Status,
		&preview,
		&createdAt,
		&approvedAt,
		&approvedBy,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning approval: %w", err)
	}

	a.ToolArgs = []byte(args)
	a.Preview = preview.String
	a.ApprovedBy = approvedBy.String
	if a.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if approvedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, approvedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parsing approved_at: %w", err)
		}
		a.ApprovedAt = &t
	}
	return &a, nil
}
