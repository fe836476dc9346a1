// ABOUTME: Tool handler for the weights capability: list, save, delete
// ABOUTME: Batch writes validate every row before touching the store

package weights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/2389/trainer-gateway/internal/store"
	"github.com/2389/trainer-gateway/internal/tools"
)

// ToolPrefix routes weight tool names to this handler.
const ToolPrefix = "weight_entry_"

const defaultListLimit = 30
const maxListLimit = 200

// Store is the narrow persistence interface the handler needs.
type Store interface {
	UpsertWeightEntry(ctx context.Context, entry *store.WeightEntry) error
	ListWeightEntries(ctx context.Context, userID string, limit int, cursor string) ([]*store.WeightEntry, error)
	DeleteWeightEntries(ctx context.Context, userID string, ids []string) (int, error)
}

// Handler implements the weight_entry_* tools.
type Handler struct {
	store  Store
	logger *slog.Logger
}

// NewHandler creates a weights Handler.
func NewHandler(s Store, logger *slog.Logger) *Handler {
	return &Handler{store: s, logger: logger}
}

// Handle dispatches one weight tool call.
func (h *Handler) Handle(ctx context.Context, userID, toolName string, args json.RawMessage) (any, error) {
	switch toolName {
	case "weight_entry_list":
		return h.list(ctx, userID, args)
	case "weight_entry_save_batch":
		return h.saveBatch(ctx, userID, args)
	case "weight_entry_delete_batch":
		return h.deleteBatch(ctx, userID, args)
	default:
		return nil, tools.Errorf(tools.CodeToolNotFound, "unknown weight tool '%s'", toolName)
	}
}

// entryJSON is the wire shape of a weight entry in tool payloads.
type entryJSON struct {
	ID         string  `json:"id,omitempty"`
	MeasuredAt string  `json:"measured_at"`
	WeightLbs  float64 `json:"weight_lbs"`
	Notes      string  `json:"notes,omitempty"`
}

func toEntryJSON(e *store.WeightEntry) entryJSON {
	return entryJSON{
		ID:         e.ID,
		MeasuredAt: e.MeasuredAt.UTC().Format(time.RFC3339),
		WeightLbs:  e.WeightLbs,
		Notes:      e.Notes,
	}
}

func (h *Handler) list(ctx context.Context, userID string, args json.RawMessage) (any, error) {
	var req struct {
		Limit  int    `json:"limit"`
		Cursor string `json:"cursor"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &req); err != nil {
			return nil, tools.Errorf(tools.CodeInvalidInput, "invalid list arguments: %v", err)
		}
	}
	if req.Limit <= 0 {
		req.Limit = defaultListLimit
	}
	if req.Limit > maxListLimit {
		req.Limit = maxListLimit
	}

	// Fetch one extra row to learn whether another page exists.
	entries, err := h.store.ListWeightEntries(ctx, userID, req.Limit+1, req.Cursor)
	if errors.Is(err, store.ErrNotFound) {
		return nil, tools.Errorf(tools.CodeInvalidInput, "unknown cursor '%s'", req.Cursor)
	}
	if err != nil {
		return nil, fmt.Errorf("listing weight entries: %w", err)
	}

	nextCursor := ""
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
		nextCursor = entries[len(entries)-1].ID
	}

	out := make([]entryJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryJSON(e))
	}

	result := map[string]any{"entries": out}
	if nextCursor != "" {
		result["next_cursor"] = nextCursor
	}
	return result, nil
}

func (h *Handler) saveBatch(ctx context.Context, userID string, args json.RawMessage) (any, error) {
	var req struct {
		Entries []entryJSON `json:"entries"`
	}
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, tools.Errorf(tools.CodeInvalidInput, "invalid save arguments: %v", err)
	}
	if len(req.Entries) == 0 {
		return nil, tools.Errorf(tools.CodeInvalidInput, "entries must not be empty")
	}

	// Validate the whole batch before the first write so a bad row cannot
	// leave a partial save behind.
	parsed := make([]*store.WeightEntry, 0, len(req.Entries))
	for i, in := range req.Entries {
		measuredAt, err := time.Parse(time.RFC3339, in.MeasuredAt)
		if err != nil {
			return nil, tools.Errorf(tools.CodeInvalidInput,
				"entry %d: measured_at must be an RFC 3339 timestamp", i)
		}
		if in.WeightLbs <= 0 {
			return nil, tools.Errorf(tools.CodeInvalidInput,
				"entry %d: weight_lbs must be positive", i)
		}
		parsed = append(parsed, &store.WeightEntry{
			ID:         in.ID,
			UserID:     userID,
			MeasuredAt: measuredAt,
			WeightLbs:  in.WeightLbs,
			Notes:      in.Notes,
		})
	}

	ids := make([]string, 0, len(parsed))
	for _, entry := range parsed {
		if err := h.store.UpsertWeightEntry(ctx, entry); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, tools.Errorf(tools.CodeInvalidInput,
					"entry '%s' does not exist or is not yours", entry.ID)
			}
			return nil, fmt.Errorf("saving weight entry: %w", err)
		}
		ids = append(ids, entry.ID)
	}

	h.logger.Info("saved weight entries", "user_id", userID, "count", len(ids))
	return map[string]any{"saved": len(ids), "ids": ids}, nil
}

func (h *Handler) deleteBatch(ctx context.Context, userID string, args json.RawMessage) (any, error) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, tools.Errorf(tools.CodeInvalidInput, "invalid delete arguments: %v", err)
	}
	if len(req.IDs) == 0 {
		return nil, tools.Errorf(tools.CodeInvalidInput, "ids must not be empty")
	}

	deleted, err := h.store.DeleteWeightEntries(ctx, userID, req.IDs)
	if err != nil {
		return nil, fmt.Errorf("deleting weight entries: %w", err)
	}

	h.logger.Info("deleted weight entries", "user_id", userID, "count", deleted)
	return map[string]any{"deleted": deleted}, nil
}
