// ABOUTME: Thread-safe registry of capability definitions with store-backed fallback
// ABOUTME: Manages registration, tool lookup, and global tool name uniqueness

package capability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/2389/trainer-gateway/internal/store"
)

// ErrNotFound indicates the requested capability is not registered or persisted.
var ErrNotFound = errors.New("capability not found")

// ErrToolCollision indicates a tool name already exists in another capability.
var ErrToolCollision = errors.New("tool name collision")

// Store is the narrow persistence interface the registry needs.
type Store interface {
	UpsertCapability(ctx context.Context, rec *store.CapabilityRecord) error
	FindLatestPublished(ctx context.Context, capabilityID string) (*store.CapabilityRecord, error)
}

// Registry is the authoritative in-process set of capabilities the agent
// runtime will offer. Registration persists the definition; reads hit the
// in-process cache first and fall back to the latest published persisted
// record. The cache is read-mostly: registration is rare and each update is
// an atomic replacement of a single entry under the write lock.
type Registry struct {
	mu    sync.RWMutex
	byID  map[string]*Definition
	order []string // capability ids in registration order

	store  Store
	logger *slog.Logger
}

// NewRegistry creates a new Registry backed by the given store.
func NewRegistry(s Store, logger *slog.Logger) *Registry {
	return &Registry{
		byID:   make(map[string]*Definition),
		store:  s,
		logger: logger,
	}
}

// Register validates, persists, and caches a capability definition.
// Upserts by (capability_id, version): registering the same definition twice
// yields the same state. Returns ErrToolCollision if any tool name is
// already claimed by a different capability.
func (r *Registry) Register(ctx context.Context, def *Definition) error {
	if def.CapabilityID == "" {
		return fmt.Errorf("capability id is required")
	}
	if def.Version == "" {
		def.Version = "latest"
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Tool names are globally unique across all active capabilities.
	for _, tool := range def.Tools {
		for otherID, other := range r.byID {
			if otherID == def.CapabilityID {
				continue
			}
			for _, existing := range other.Tools {
				if existing.Name == tool.Name {
					return fmt.Errorf("%w: tool '%s' already registered by capability '%s'",
						ErrToolCollision, tool.Name, otherID)
				}
			}
		}
	}

	definition, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("marshaling capability definition: %w", err)
	}

	rec := &store.CapabilityRecord{
		CapabilityID: def.CapabilityID,
		Version:      def.Version,
		Status:       store.CapabilityStatusPublished,
		Definition:   definition,
	}
	if err := r.store.UpsertCapability(ctx, rec); err != nil {
		return fmt.Errorf("persisting capability: %w", err)
	}

	if _, exists := r.byID[def.CapabilityID]; !exists {
		r.order = append(r.order, def.CapabilityID)
	}
	r.byID[def.CapabilityID] = def

	r.logger.Info("registered capability",
		"capability_id", def.CapabilityID,
		"version", def.Version,
		"tool_count", len(def.Tools),
	)
	return nil
}

// Get returns the active definition for a capability id. The in-process
// cache wins; on a miss the latest published persisted record is decoded.
// Returns ErrNotFound when the capability is absent everywhere.
func (r *Registry) Get(ctx context.Context, capabilityID string) (*Definition, error) {
	r.mu.RLock()
	def, ok := r.byID[capabilityID]
	r.mu.RUnlock()
	if ok {
		return def, nil
	}

	rec, err := r.store.FindLatestPublished(ctx, capabilityID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading capability: %w", err)
	}

	var loaded Definition
	if err := json.Unmarshal(rec.Definition, &loaded); err != nil {
		return nil, fmt.Errorf("decoding capability definition: %w", err)
	}
	return &loaded, nil
}

// List returns the in-process capabilities in registration order.
func (r *Registry) List() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]*Definition, 0, len(r.order))
	for _, id := range r.order {
		defs = append(defs, r.byID[id])
	}
	return defs
}

// Tools returns the flattened tool list across all active capabilities,
// in registration order.
func (r *Registry) Tools() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var tools []ToolDefinition
	for _, id := range r.order {
		tools = append(tools, r.byID[id].Tools...)
	}
	return tools
}

// FindTool looks up a tool by name across all active capabilities.
// Tool names are unique, so the first match is the only match.
func (r *Registry) FindTool(name string) (*ToolDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		for i := range r.byID[id].Tools {
			if r.byID[id].Tools[i].Name == name {
				return &r.byID[id].Tools[i], true
			}
		}
	}
	return nil, false
}

// SkillDocs renders the capability's skill documentation into a single
// prompt-ready text block. Returns ErrNotFound when the capability is absent
// or carries no documentation.
func (r *Registry) SkillDocs(ctx context.Context, capabilityID string) (string, error) {
	def, err := r.Get(ctx, capabilityID)
	if err != nil {
		return "", err
	}
	if def.SkillDocs == nil {
		return "", ErrNotFound
	}
	return renderSkillDocs(def.SkillDocs), nil
}
