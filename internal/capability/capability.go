// ABOUTME: Capability, tool, and skill documentation types for the registry
// ABOUTME: A capability is a versioned bundle of tools, data-shape hints, and docs

package capability

import (
	"encoding/json"
	"time"
)

// PolicyKind classifies a tool as reading or writing user data.
type PolicyKind string

const (
	PolicyRead  PolicyKind = "read"
	PolicyWrite PolicyKind = "write"
)

// Policy controls how a tool may be executed. Write tools are expected to
// set RequiresApproval so the executor can gate them behind human consent.
type Policy struct {
	Kind             PolicyKind `json:"kind"`
	RequiresApproval bool       `json:"requires_approval"`
	AllowedRoles     []string   `json:"allowed_roles,omitempty"`
}

// ToolDefinition describes a single named operation the agent may request.
// Schemas are JSON-Schema documents kept as opaque validated blobs; the
// executor validates arguments at the boundary rather than typing them.
type ToolDefinition struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	ArgsSchema   json.RawMessage `json:"args_schema"`
	ResultSchema json.RawMessage `json:"result_schema"`
	Policy       Policy          `json:"policy"`
}

// SkillExample is a worked example in a capability's skill documentation.
type SkillExample struct {
	Scenario         string `json:"scenario"`
	UserInput        string `json:"user_input"`
	ExpectedBehavior string `json:"expected_behavior"`
}

// SkillDocumentation teaches the model when and how to use a capability.
type SkillDocumentation struct {
	CapabilityID string         `json:"capability_id"`
	Version      string         `json:"version,omitempty"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	WhenToUse    string         `json:"when_to_use"`
	Instructions string         `json:"instructions"`
	Examples     []SkillExample `json:"examples,omitempty"`
}

// TableCardField describes one field of a table card.
type TableCardField struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Constraints string `json:"constraints,omitempty"`
}

// TableCard is a concise, human-readable summary of a data table the
// capability operates on.
type TableCard struct {
	TableName   string           `json:"table_name"`
	Description string           `json:"description"`
	Fields      []TableCardField `json:"fields"`
	Examples    []map[string]any `json:"examples,omitempty"`
}

// Definition is a versioned bundle of tools, table cards, and skill docs.
// Identity is (CapabilityID, Version); definitions are immutable once
// registered except for version bumps.
type Definition struct {
	CapabilityID string              `json:"capability_id"`
	Version      string              `json:"version"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Tools        []ToolDefinition    `json:"tools"`
	TableCards   []TableCard         `json:"table_cards,omitempty"`
	SkillDocs    *SkillDocumentation `json:"skill_docs,omitempty"`
	CreatedAt    time.Time           `json:"created_at,omitempty"`
	UpdatedAt    time.Time           `json:"updated_at,omitempty"`
}
