// ABOUTME: HTTP API handlers for auth, chat, approvals, and capabilities
// ABOUTME: JSON in, JSON out, stable error codes in every failure body

package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"

	"github.com/2389/trainer-gateway/internal/a2ui"
	"github.com/2389/trainer-gateway/internal/agent"
	"github.com/2389/trainer-gateway/internal/approval"
	"github.com/2389/trainer-gateway/internal/auth"
	"github.com/2389/trainer-gateway/internal/capability"
	"github.com/2389/trainer-gateway/internal/store"
	"github.com/2389/trainer-gateway/internal/tools"
)

// RegisterRequest is the JSON request body for POST /api/auth/register.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest is the JSON request body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the JSON shape of a user in API responses.
type UserResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// AuthResponse is the JSON response for register and login.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// ChatRequest is the JSON request body for POST /api/agent/chat.
type ChatRequest struct {
	Message string                 `json:"message"`
	History []agent.HistoryMessage `json:"history,omitempty"`
}

// ActionRequest is the JSON request body for POST /api/agent/action.
// Action carries a kind-tagged a2ui action payload.
type ActionRequest struct {
	Action  json.RawMessage        `json:"action"`
	History []agent.HistoryMessage `json:"history,omitempty"`
}

// ApprovalResponse is the JSON shape of an approval in API responses.
type ApprovalResponse struct {
	ID        string          `json:"id"`
	ToolName  string          `json:"tool_name"`
	ToolArgs  json.RawMessage `json:"tool_args"`
	Status    string          `json:"status"`
	Preview   string          `json:"preview"`
	CreatedAt string          `json:"created_at"`
}

func toUserResponse(u *store.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toApprovalResponse(a *store.Approval) ApprovalResponse {
	return ApprovalResponse{
		ID:        a.ID,
		ToolName:  a.ToolName,
		ToolArgs:  a.ToolArgs,
		Status:    a.Status,
		Preview:   a.Preview,
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// writeJSON writes a JSON response with the given status code.
func (g *Gateway) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		g.logger.Error("failed to encode response", "error", err)
	}
}

// sendJSONError writes a JSON error response with a stable code.
func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, code, message string) {
	g.writeJSON(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	g.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (g *Gateway) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, tools.CodeInvalidInput, "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		g.sendJSONError(w, http.StatusBadRequest, tools.CodeInvalidInput, "email and password are required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, tools.CodeInvalidInput, err.Error())
		return
	}

	user := &store.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: hash,
		DisplayName:  req.DisplayName,
	}
	if err := g.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			g.sendJSONError(w, http.StatusConflict, tools.CodeUserExists, "email already registered")
			return
		}
		g.logger.Error("failed to create user", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, tools.CodeExecutionError, "internal server error")
		return
	}

	token, err := g.verifier.Generate(user.ID, g.config.Auth.TokenTTL)
	if err != nil {
		g.logger.Error("failed to generate token", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, tools.CodeExecutionError, "internal server error")
		return
	}

	g.logger.Info("user registered", "user_id", user.ID)
	g.writeJSON(w, http.StatusCreated, AuthResponse{Token: token, User: toUserResponse(user)})
}

func (g *Gateway) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, tools.CodeInvalidInput, "invalid JSON body")
		return
	}

	user, err := g.store.GetUserByEmail(r.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		g.sendJSONError(w, http.StatusUnauthorized, tools.CodeInvalidCredentials, "invalid email or password")
		return
	}
	if err != nil {
		g.logger.Error("failed to load user", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, tools.CodeExecutionError, "internal server error")
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		g.sendJSONError(w, http.StatusUnauthorized, tools.CodeInvalidCredentials, "invalid email or password")
		return
	}

	token, err := g.verifier.Generate(user.ID, g.config.Auth.TokenTTL)
	if err != nil {
		g.logger.Error("failed to generate token", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, tools.CodeExecutionError, "internal server error")
		return
	}

	g.writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: toUserResponse(user)})
}

func (g *Gateway) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := g.store.GetUser(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		g.sendJSONError(w, http.StatusInternalServerError, tools.CodeExecutionError, "internal server error")
		return
	}
	g.writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (g *Gateway) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, tools.CodeInvalidInput, "invalid JSON body")
		return
	}
	if req.Message == "" {
		g.sendJSONError(w, http.StatusBadRequest, tools.CodeInvalidInput, "message is required")
		return
	}

	resp, err := g.runtime.ProcessMessage(r.Context(), auth.UserID(r.Context()), req.Message, req.History)
	if err != nil {
		g.logger.Error("chat turn failed", "error", err)
		g.sendJSONError(w, http.StatusBadGateway, tools.CodeExecutionError, "agent is unavailable")
		return
	}
	g.writeJSON(w, http.StatusOK, resp)
}

func (g *Gateway) handleAction(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, tools.CodeInvalidInput, "invalid JSON body")
		return
	}

	action, err := a2ui.DecodeAction(req.Action)
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, tools.CodeInvalidInput, err.Error())
		return
	}

	resp, err := g.runtime.ProcessAction(r.Context(), auth.UserID(r.Context()), action, req.History)
	if err != nil {
		g.logger.Error("action turn failed", "error", err)
		g.sendJSONError(w, http.StatusBadGateway, tools.CodeExecutionError, "agent is unavailable")
		return
	}
	g.writeJSON(w, http.StatusOK, resp)
}

func (g *Gateway) handleListPendingApprovals(w http.ResponseWriter, r *http.Request) {
	approvals, err := g.workflow.ListPending(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		g.logger.Error("failed to list approvals", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, tools.CodeExecutionError, "internal server error")
		return
	}

	out := make([]ApprovalResponse, 0, len(approvals))
	for _, a := range approvals {
		out = append(out, toApprovalResponse(a))
	}
	g.writeJSON(w, http.StatusOK, map[string]any{"approvals": out})
}

func (g *Gateway) handleApprove(w http.ResponseWriter, r *http.Request) {
	result, err := g.workflow.Approve(r.Context(), auth.UserID(r.Context()), r.PathValue("id"))
	if errors.Is(err, approval.ErrNotFoundOrProcessed) {
		g.sendJSONError(w, http.StatusNotFound, tools.CodeInvalidApproval, "approval not found or already processed")
		return
	}
	if err != nil {
		g.logger.Error("approve failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, tools.CodeExecutionError, "internal server error")
		return
	}
	g.writeJSON(w, http.StatusOK, map[string]any{"result": result})
}

func (g *Gateway) handleDeny(w http.ResponseWriter, r *http.Request) {
	err := g.workflow.Deny(r.Context(), auth.UserID(r.Context()), r.PathValue("id"))
	if errors.Is(err, approval.ErrNotFoundOrProcessed) {
		g.sendJSONError(w, http.StatusNotFound, tools.CodeInvalidApproval, "approval not found or already processed")
		return
	}
	if err != nil {
		g.logger.Error("deny failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, tools.CodeExecutionError, "internal server error")
		return
	}
	g.writeJSON(w, http.StatusOK, map[string]string{"status": "denied"})
}

func (g *Gateway) handleListWeights(w http.ResponseWriter, r *http.Request) {
	limit := 30
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			g.sendJSONError(w, http.StatusBadRequest, tools.CodeInvalidInput, "limit must be a positive integer")
			return
		}
		limit = min(parsed, 200)
	}
	cursor := r.URL.Query().Get("cursor")

	entries, err := g.store.ListWeightEntries(r.Context(), auth.UserID(r.Context()), limit+1, cursor)
	if errors.Is(err, store.ErrNotFound) {
		g.sendJSONError(w, http.StatusBadRequest, tools.CodeInvalidInput, "unknown cursor")
		return
	}
	if err != nil {
		g.logger.Error("failed to list weights", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, tools.CodeExecutionError, "internal server error")
		return
	}

	nextCursor := ""
	if len(entries) > limit {
		entries = entries[:limit]
		nextCursor = entries[len(entries)-1].ID
	}

	type entryResponse struct {
		ID         string  `json:"id"`
		MeasuredAt string  `json:"measured_at"`
		WeightLbs  float64 `json:"weight_lbs"`
		Notes      string  `json:"notes,omitempty"`
	}
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryResponse{
			ID:         e.ID,
			MeasuredAt: e.MeasuredAt.UTC().Format(time.RFC3339),
			WeightLbs:  e.WeightLbs,
			Notes:      e.Notes,
		})
	}

	resp := map[string]any{"entries": out}
	if nextCursor != "" {
		resp["next_cursor"] = nextCursor
	}
	g.writeJSON(w, http.StatusOK, resp)
}

func (g *Gateway) handleListCapabilities(w http.ResponseWriter, r *http.Request) {
	g.writeJSON(w, http.StatusOK, map[string]any{"capabilities": g.registry.List()})
}

// handleCapabilityDocs renders a capability's skill documentation as HTML.
func (g *Gateway) handleCapabilityDocs(w http.ResponseWriter, r *http.Request) {
	docs, err := g.registry.SkillDocs(r.Context(), r.PathValue("id"))
	if errors.Is(err, capability.ErrNotFound) {
		g.sendJSONError(w, http.StatusNotFound, tools.CodeToolNotFound, "capability not found")
		return
	}
	if err != nil {
		g.logger.Error("failed to render docs", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, tools.CodeExecutionError, "internal server error")
		return
	}

	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(docs), &buf); err != nil {
		g.logger.Error("markdown conversion failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, tools.CodeExecutionError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
