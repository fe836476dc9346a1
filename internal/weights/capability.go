// ABOUTME: Capability definition for body-weight tracking
// ABOUTME: Declares the tools, schemas, policies, table card, and skill docs

package weights

import (
	"encoding/json"

	"github.com/2389/trainer-gateway/internal/capability"
)

// CapabilityID identifies the weights capability in the registry.
const CapabilityID = "weights"

const listArgsSchema = `{
	"type": "object",
	"properties": {
		"limit": {"type": "integer", "minimum": 1, "maximum": 200, "description": "Max entries to return, defaults to 30"},
		"cursor": {"type": "string", "description": "Entry id from next_cursor of the previous page"}
	},
	"additionalProperties": false
}`

const listResultSchema = `{
	"type": "object",
	"properties": {
		"entries": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"id": {"type": "string"},
					"measured_at": {"type": "string", "format": "date-time"},
					"weight_lbs": {"type": "number"},
					"notes": {"type": "string"}
				},
				"required": ["id", "measured_at", "weight_lbs"]
			}
		},
		"next_cursor": {"type": "string"}
	},
	"required": ["entries"]
}`

const saveArgsSchema = `{
	"type": "object",
	"properties": {
		"entries": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"properties": {
					"id": {"type": "string", "description": "Omit to create a new entry"},
					"measured_at": {"type": "string", "format": "date-time"},
					"weight_lbs": {"type": "number", "exclusiveMinimum": 0},
					"notes": {"type": "string"}
				},
				"required": ["measured_at", "weight_lbs"]
			}
		}
	},
	"required": ["entries"],
	"additionalProperties": false
}`

const saveResultSchema = `{
	"type": "object",
	"properties": {
		"saved": {"type": "integer"},
		"ids": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["saved", "ids"]
}`

const deleteArgsSchema = `{
	"type": "object",
	"properties": {
		"ids": {"type": "array", "minItems": 1, "items": {"type": "string"}}
	},
	"required": ["ids"],
	"additionalProperties": false
}`

const deleteResultSchema = `{
	"type": "object",
	"properties": {
		"deleted": {"type": "integer"}
	},
	"required": ["deleted"]
}`

// Capability returns the weights capability definition for registration.
func Capability() *capability.Definition {
	return &capability.Definition{
		CapabilityID: CapabilityID,
		Version:      "1.0.0",
		Title:        "Weight Tracking",
		Description:  "Record, review, and correct body-weight measurements.",
		Tools: []capability.ToolDefinition{
			{
				Name:         "weight_entry_list",
				Description:  "List the user's weight entries, newest first, with cursor pagination.",
				ArgsSchema:   json.RawMessage(listArgsSchema),
				ResultSchema: json.RawMessage(listResultSchema),
				Policy:       capability.Policy{Kind: capability.PolicyRead},
			},
			{
				Name:         "weight_entry_save_batch",
				Description:  "Create or update a batch of weight entries. Entries without an id are created.",
				ArgsSchema:   json.RawMessage(saveArgsSchema),
				ResultSchema: json.RawMessage(saveResultSchema),
				Policy:       capability.Policy{Kind: capability.PolicyWrite, RequiresApproval: true},
			},
			{
				Name:         "weight_entry_delete_batch",
				Description:  "Delete a batch of the user's weight entries by id.",
				ArgsSchema:   json.RawMessage(deleteArgsSchema),
				ResultSchema: json.RawMessage(deleteResultSchema),
				Policy:       capability.Policy{Kind: capability.PolicyWrite, RequiresApproval: true},
			},
		},
		TableCards: []capability.TableCard{
			{
				TableName:   "weight_entries",
				Description: "One row per body-weight measurement, owned by a single user.",
				Fields: []capability.TableCardField{
					{Name: "id", Type: "string", Description: "Entry id", Required: true},
					{Name: "measured_at", Type: "datetime", Description: "When the measurement was taken", Required: true},
					{Name: "weight_lbs", Type: "number", Description: "Body weight in pounds", Required: true, Constraints: "must be positive"},
					{Name: "notes", Type: "string", Description: "Free-form note", Required: false},
				},
				Examples: []map[string]any{
					{"id": "a1b2", "measured_at": "2026-08-30T08:00:00Z", "weight_lbs": 182.4, "notes": "after morning run"},
				},
			},
		},
		SkillDocs: &capability.SkillDocumentation{
			CapabilityID: CapabilityID,
			Version:      "1.0.0",
			Title:        "Weight Tracking",
			Description:  "Track the user's body weight over time.",
			WhenToUse:    "Whenever the user mentions weighing themselves, asks about weight trends, or wants to correct past entries.",
			Instructions: "Always list current entries before editing so ids are known. Present pending changes in a table editor and wait for the user to save before calling a write tool. Never guess an entry id.",
			Examples: []capability.SkillExample{
				{
					Scenario:         "Logging a new weigh-in",
					UserInput:        "I weighed 182.4 this morning",
					ExpectedBehavior: "Confirm the value and timestamp with the user, then call weight_entry_save_batch with one new entry.",
				},
				{
					Scenario:         "Reviewing recent progress",
					UserInput:        "How has my weight been trending?",
					ExpectedBehavior: "Call weight_entry_list and summarize the trend, showing entries in a table editor.",
				},
				{
					Scenario:         "Fixing a typo",
					UserInput:        "That last entry should have been 183, not 138",
					ExpectedBehavior: "List entries to find the id, show the correction for confirmation, then save the corrected entry.",
				},
			},
		},
	}
}
