// ABOUTME: HTTP API tests covering auth, chat, approvals, and capabilities
// ABOUTME: Runs the real gateway against a scripted model endpoint

package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/trainer-gateway/internal/config"
)

// scriptedModel serves canned chat/completions responses in order.
type scriptedModel struct {
	mu        sync.Mutex
	responses []string
}

func (m *scriptedModel) push(body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, body)
}

func (m *scriptedModel) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.responses) == 0 {
		http.Error(w, `{"error": {"message": "script exhausted"}}`, http.StatusInternalServerError)
		return
	}
	body := m.responses[0]
	m.responses = m.responses[1:]
	_, _ = w.Write([]byte(body))
}

func textCompletion(content string) string {
	msg, _ := json.Marshal(map[string]any{"role": "assistant", "content": content})
	return fmt.Sprintf(`{"choices": [{"message": %s}]}`, msg)
}

func toolCallCompletion(id, name, args string) string {
	return fmt.Sprintf(`{"choices": [{"message": {
		"role": "assistant", "content": "",
		"tool_calls": [{"id": %q, "type": "function", "function": {"name": %q, "arguments": %q}}]
	}}]}`, id, name, args)
}

type testEnv struct {
	server *httptest.Server
	model  *scriptedModel
	token  string
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	m := &scriptedModel{}
	modelSrv := httptest.NewServer(m)
	t.Cleanup(modelSrv.Close)

	cfg := &config.Config{}
	cfg.Server.HTTPAddr = ":0"
	cfg.Database.Path = filepath.Join(t.TempDir(), "test.db")
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTL = time.Hour
	cfg.Model.BaseURL = modelSrv.URL
	cfg.Model.Model = "test-model"
	cfg.Agent.AuditMode = true

	g, err := New(cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { g.store.Close() })

	srv := httptest.NewServer(g.routes())
	t.Cleanup(srv.Close)

	env := &testEnv{server: srv, model: m}
	env.token = env.register(t, "coach@example.com", "hunter2hunter2")
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, data
}

func (e *testEnv) register(t *testing.T, email, password string) string {
	t.Helper()

	resp, body := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var out AuthResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out.Token
}

func TestRegisterLoginMe(t *testing.T) {
	env := setupEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "coach@example.com",
		"password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var login AuthResponse
	require.NoError(t, json.Unmarshal(body, &login))
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, "coach@example.com", login.User.Email)

	resp, body = env.do(t, http.MethodGet, "/api/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me UserResponse
	require.NoError(t, json.Unmarshal(body, &me))
	assert.Equal(t, login.User.ID, me.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := setupEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "coach@example.com",
		"password": "anotherpassword",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "USER_EXISTS")
}

func TestLoginWrongPassword(t *testing.T) {
	env := setupEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "coach@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(body), "INVALID_CREDENTIALS")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := setupEnv(t)

	resp, _ := env.do(t, http.MethodGet, "/api/weights", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/agent/chat", "", map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestChatPlainReply(t *testing.T) {
	env := setupEnv(t)
	env.model.push(textCompletion("You're doing great!"))

	resp, body := env.do(t, http.MethodPost, "/api/agent/chat", env.token, map[string]any{
		"message": "how am I doing?",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out struct {
		Message string          `json:"message"`
		View    json.RawMessage `json:"view"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "You're doing great!", out.Message)
	assert.Empty(t, out.View)
}

// TestApprovalLifecycle drives the full path: a chat turn parks a write
// behind an approval, the approval shows up as pending, approving executes
// the save, and the entry becomes visible.
func TestApprovalLifecycle(t *testing.T) {
	env := setupEnv(t)

	args := `{"entries": [{"measured_at": "2026-08-30T08:00:00Z", "weight_lbs": 182.4}]}`
	env.model.push(toolCallCompletion("call_1", "weight_entry_save_batch", args))
	env.model.push(textCompletion("I've queued that for your approval."))

	resp, body := env.do(t, http.MethodPost, "/api/agent/chat", env.token, map[string]any{
		"message": "log 182.4 for this morning",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = env.do(t, http.MethodGet, "/api/approvals/pending", env.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var pending struct {
		Approvals []ApprovalResponse `json:"approvals"`
	}
	require.NoError(t, json.Unmarshal(body, &pending))
	require.Len(t, pending.Approvals, 1)
	approvalID := pending.Approvals[0].ID
	assert.Equal(t, "weight_entry_save_batch", pending.Approvals[0].ToolName)

	resp, body = env.do(t, http.MethodPost, "/api/approvals/"+approvalID+"/approve", env.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"saved":1`)

	// Approving again is a 404, the approval is already processed.
	resp, _ = env.do(t, http.MethodPost, "/api/approvals/"+approvalID+"/approve", env.token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = env.do(t, http.MethodGet, "/api/weights", env.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "182.4")
}

func TestDenyDiscardsWrite(t *testing.T) {
	env := setupEnv(t)

	args := `{"entries": [{"measured_at": "2026-08-30T08:00:00Z", "weight_lbs": 182.4}]}`
	env.model.push(toolCallCompletion("call_1", "weight_entry_save_batch", args))
	env.model.push(textCompletion("Waiting on your approval."))

	resp, _ := env.do(t, http.MethodPost, "/api/agent/chat", env.token, map[string]any{"message": "log it"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body := env.do(t, http.MethodGet, "/api/approvals/pending", env.token, nil)
	var pending struct {
		Approvals []ApprovalResponse `json:"approvals"`
	}
	require.NoError(t, json.Unmarshal(body, &pending))
	require.Len(t, pending.Approvals, 1)

	resp, _ = env.do(t, http.MethodPost, "/api/approvals/"+pending.Approvals[0].ID+"/deny", env.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = env.do(t, http.MethodGet, "/api/weights", env.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, string(body), "182.4")
}

func TestActionEndpoint(t *testing.T) {
	env := setupEnv(t)
	env.model.push(textCompletion("Got it, row removed from the draft."))

	resp, body := env.do(t, http.MethodPost, "/api/agent/action", env.token, map[string]any{
		"action": map[string]any{
			"kind":     "table.delete_row",
			"table_id": "weights",
			"row_id":   "e1",
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), "row removed")
}

func TestActionEndpointRejectsUnknownKind(t *testing.T) {
	env := setupEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/agent/action", env.token, map[string]any{
		"action": map[string]any{"kind": "teleport"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "INVALID_INPUT")
}

func TestListCapabilities(t *testing.T) {
	env := setupEnv(t)

	resp, body := env.do(t, http.MethodGet, "/api/capabilities", env.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "weight_entry_list")
	assert.Contains(t, string(body), "weight_entry_save_batch")
}

func TestCapabilityDocsRendered(t *testing.T) {
	env := setupEnv(t)

	resp, body := env.do(t, http.MethodGet, "/api/capabilities/weights/docs", env.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.True(t, strings.Contains(string(body), "<h1>") || strings.Contains(string(body), "<h2>"))
}

func TestCapabilityDocsNotFound(t *testing.T) {
	env := setupEnv(t)

	resp, _ := env.do(t, http.MethodGet, "/api/capabilities/nonexistent/docs", env.token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	env := setupEnv(t)

	resp, body := env.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status": "ok"}`, string(body))
}
