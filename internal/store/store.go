// ABOUTME: Store interface and data types for trainer-gateway persistence
// ABOUTME: Defines users, capabilities, approvals, weight entries, and tool audit records

package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrUserExists is returned when creating a user with an email already in use
var ErrUserExists = errors.New("user already exists")

// User represents a registered account.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	CreatedAt    time.Time
}

// CapabilityStatus constants for capability record lifecycle
const (
	CapabilityStatusDraft      = "draft"
	CapabilityStatusPublished  = "published"
	CapabilityStatusDeprecated = "deprecated"
)

// CapabilityRecord is a persisted capability definition, versioned by
// (CapabilityID, Version). Definition holds the serialized definition JSON;
// the registry owns the typed form.
type CapabilityRecord struct {
	CapabilityID string
	Version      string
	Status       string
	Definition   json.RawMessage
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ApprovalStatus constants for the approval state machine
const (
	ApprovalStatusPending  = "pending"
	ApprovalStatusApproved = "approved"
	ApprovalStatusDenied   = "denied"
)

// Approval is a durable record gating execution of a policy-flagged tool call.
// It is created pending and transitions exactly once to approved or denied.
type Approval struct {
	ID         string
	UserID     string
	ToolName   string
	ToolArgs   json.RawMessage
	Status     string
	Preview    string
	CreatedAt  time.Time
	ApprovedAt *time.Time
	ApprovedBy string
}

// WeightEntry is a single body-weight measurement owned by a user.
type WeightEntry struct {
	ID         string
	UserID     string
	MeasuredAt time.Time
	WeightLbs  float64
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ToolAuditOutcome constants for audit log entries
const (
	ToolAuditExecuted        = "executed"
	ToolAuditFailed          = "failed"
	ToolAuditPendingApproval = "pending_approval"
)

// ToolAuditEntry records one tool execution attempt for audit purposes.
type ToolAuditEntry struct {
	ID        string
	UserID    string
	ToolName  string
	Args      json.RawMessage
	Outcome   string
	ErrorCode string
	CreatedAt time.Time
}

// Store defines the persistence operations used by the gateway
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	CountUsers(ctx context.Context) (int, error)

	// Capabilities
	UpsertCapability(ctx context.Context, rec *CapabilityRecord) error
	FindLatestPublished(ctx context.Context, capabilityID string) (*CapabilityRecord, error)
	ListCapabilityRecords(ctx context.Context) ([]*CapabilityRecord, error)

	// Approvals
	CreateApproval(ctx context.Context, approval *Approval) error
	GetApproval(ctx context.Context, id string) (*Approval, error)
	ListApprovals(ctx context.Context, userID, status string) ([]*Approval, error)
	// TransitionApproval atomically moves a pending approval owned by userID
	// to the given terminal status. Returns false when no pending approval
	// matched (missing, foreign, or already resolved).
	TransitionApproval(ctx context.Context, id, userID, toStatus, approvedBy string) (bool, error)

	// Weight entries
	UpsertWeightEntry(ctx context.Context, entry *WeightEntry) error
	ListWeightEntries(ctx context.Context, userID string, limit int, cursor string) ([]*WeightEntry, error)
	DeleteWeightEntries(ctx context.Context, userID string, ids []string) (int, error)

	// Tool audit log
	AppendToolAudit(ctx context.Context, entry *ToolAuditEntry) error
	ListToolAudit(ctx context.Context, userID string, limit int) ([]*ToolAuditEntry, error)

	// Close releases any resources held by the store
	Close() error
}
