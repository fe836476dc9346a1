// ABOUTME: Tool audit log store methods recording every tool execution attempt
// ABOUTME: Captures who ran what with which outcome for compliance and debugging

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AppendToolAudit appends a new entry to the tool audit log.
// Generates ID and CreatedAt if not set.
func (s *SQLiteStore) AppendToolAudit(ctx context.Context, entry *ToolAuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO tool_audit_log (audit_id, user_id, tool_name, args_json, outcome, error_code, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.ToolName,
		string(entry.Args),
		entry.Outcome,
		entry.ErrorCode,
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting tool audit entry: %w", err)
	}

	s.logger.Debug("appended tool audit",
		"audit_id", entry.ID,
		"user_id", entry.UserID,
		"tool_name", entry.ToolName,
		"outcome", entry.Outcome,
	)
	return nil
}

// normalizeAuditLimit applies default (100) and cap (1000) to the audit limit.
func normalizeAuditLimit(limit int) int {
	switch {
	case limit <= 0:
		return 100
	case limit > 1000:
		return 1000
	default:
		return limit
	}
}

// ListToolAudit returns audit entries for a user, newest first.
func (s *SQLiteStore) ListToolAudit(ctx context.Context, userID string, limit int) ([]*ToolAuditEntry, error) {
	query := `
		SELECT audit_id, user_id, tool_name, args_json, outcome, error_code, created_at
		FROM tool_audit_log
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, userID, normalizeAuditLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying tool audit log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*ToolAuditEntry
	for rows.Next() {
		var e ToolAuditEntry
		var args, createdAt string
		if err := rows.Scan(&e.ID, &e.UserID, &e.ToolName, &args, &e.Outcome, &e.ErrorCode, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning tool audit entry: %w", err)
		}
		e.Args = []byte(args)
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tool audit entries: %w", err)
	}
	return entries, nil
}
