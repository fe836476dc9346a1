// ABOUTME: Tests for capability registration, lookup, and tool uniqueness
// ABOUTME: Uses the real sqlite store to exercise the persistence fallback

package capability

import (
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/trainer-gateway/internal/store"
)

func setupRegistry(t *testing.T) (*Registry, *store.SQLiteStore) {
	t.Helper()

	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return NewRegistry(s, slog.New(slog.DiscardHandler)), s
}

func testDefinition(id string, toolNames ...string) *Definition {
	def := &Definition{
		CapabilityID: id,
		Version:      "1.0.0",
		Title:        id,
	}
	for _, name := range toolNames {
		def.Tools = append(def.Tools, ToolDefinition{
			Name:       name,
			ArgsSchema: json.RawMessage(`{"type": "object"}`),
			Policy:     Policy{Kind: PolicyRead},
		})
	}
	return def
}

func TestRegisterAndGet(t *testing.T) {
	r, _ := setupRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.Register(ctx, testDefinition("weights", "weight_entry_list")))

	def, err := r.Get(ctx, "weights")
	require.NoError(t, err)
	assert.Equal(t, "weights", def.CapabilityID)
	require.Len(t, def.Tools, 1)
}

func TestRegisterIdempotent(t *testing.T) {
	r, _ := setupRegistry(t)
	ctx := context.Background()

	def := testDefinition("weights", "weight_entry_list")
	require.NoError(t, r.Register(ctx, def))
	require.NoError(t, r.Register(ctx, def))

	assert.Len(t, r.List(), 1)
	assert.Len(t, r.Tools(), 1)
}

func TestRegisterToolCollision(t *testing.T) {
	r, _ := setupRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.Register(ctx, testDefinition("weights", "weight_entry_list")))

	err := r.Register(ctx, testDefinition("workouts", "weight_entry_list"))
	assert.ErrorIs(t, err, ErrToolCollision)

	// The colliding capability must not be partially registered.
	_, err = r.Get(ctx, "workouts")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegisterRequiresCapabilityID(t *testing.T) {
	r, _ := setupRegistry(t)

	err := r.Register(context.Background(), &Definition{})
	require.Error(t, err)
}

func TestGetNotFound(t *testing.T) {
	r, _ := setupRegistry(t)

	_, err := r.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetFallsBackToStore(t *testing.T) {
	r, s := setupRegistry(t)
	ctx := context.Background()

	// Persisted by an earlier process, absent from this cache.
	definition, err := json.Marshal(testDefinition("weights", "weight_entry_list"))
	require.NoError(t, err)
	require.NoError(t, s.UpsertCapability(ctx, &store.CapabilityRecord{
		CapabilityID: "weights",
		Version:      "1.0.0",
		Status:       store.CapabilityStatusPublished,
		Definition:   definition,
	}))

	def, err := r.Get(ctx, "weights")
	require.NoError(t, err)
	assert.Equal(t, "weights", def.CapabilityID)
	require.Len(t, def.Tools, 1)
	assert.Equal(t, "weight_entry_list", def.Tools[0].Name)
}

func TestListAndToolsRegistrationOrder(t *testing.T) {
	r, _ := setupRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.Register(ctx, testDefinition("weights", "weight_entry_list")))
	require.NoError(t, r.Register(ctx, testDefinition("workouts", "workout_list", "workout_save")))

	defs := r.List()
	require.Len(t, defs, 2)
	assert.Equal(t, "weights", defs[0].CapabilityID)
	assert.Equal(t, "workouts", defs[1].CapabilityID)

	tools := r.Tools()
	require.Len(t, tools, 3)
	assert.Equal(t, "weight_entry_list", tools[0].Name)
	assert.Equal(t, "workout_save", tools[2].Name)
}

func TestFindTool(t *testing.T) {
	r, _ := setupRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.Register(ctx, testDefinition("weights", "weight_entry_list")))

	def, ok := r.FindTool("weight_entry_list")
	require.True(t, ok)
	assert.Equal(t, "weight_entry_list", def.Name)

	_, ok = r.FindTool("ghost_tool")
	assert.False(t, ok)
}

func TestSkillDocs(t *testing.T) {
	r, _ := setupRegistry(t)
	ctx := context.Background()

	def := testDefinition("weights", "weight_entry_list")
	def.SkillDocs = &SkillDocumentation{
		CapabilityID: "weights",
		Title:        "Weight Tracking",
		Description:  "Track body weight.",
		WhenToUse:    "When the user weighs in.",
		Instructions: "List before editing.",
		Examples: []SkillExample{
			{Scenario: "Logging", UserInput: "I weighed 182", ExpectedBehavior: "Confirm and save."},
		},
	}
	require.NoError(t, r.Register(ctx, def))

	docs, err := r.SkillDocs(ctx, "weights")
	require.NoError(t, err)
	assert.Contains(t, docs, "# Weight Tracking")
	assert.Contains(t, docs, "## When to use")
	assert.Contains(t, docs, "### Example: Logging")
	assert.Contains(t, docs, `User: "I weighed 182"`)
}

func TestSkillDocsAbsent(t *testing.T) {
	r, _ := setupRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.Register(ctx, testDefinition("weights", "weight_entry_list")))

	_, err := r.SkillDocs(ctx, "weights")
	assert.ErrorIs(t, err, ErrNotFound)
}
