// ABOUTME: Tests for configuration loading, env expansion, and validation
// ABOUTME: Uses temp files so each case starts from a clean config

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validConfig = `
server:
  http_addr: ":8080"
database:
  path: "/tmp/trainer.db"
auth:
  jwt_secret: "test-secret"
  token_ttl: "12h"
model:
  base_url: "http://localhost:11434/v1"
  model: "llama3"
agent:
  audit_mode: true
logging:
  level: "debug"
  format: "text"
`

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, "/tmp/trainer.db", cfg.Database.Path)
	assert.Equal(t, "test-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "llama3", cfg.Model.Model)
	assert.True(t, cfg.Agent.AuditMode)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadDefaultTokenTTL(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  http_addr: ":8080"
database:
  path: "/tmp/trainer.db"
auth:
  jwt_secret: "s"
model:
  base_url: "http://localhost/v1"
  model: "m"
`))
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_JWT_SECRET", "from-env")

	cfg, err := Load(writeConfig(t, `
server:
  http_addr: ":8080"
database:
  path: "/tmp/trainer.db"
auth:
  jwt_secret: "${TEST_JWT_SECRET}"
model:
  base_url: "http://localhost/v1"
  model: "m"
`))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
}

func TestLoadMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{
			name:    "missing http addr",
			config:  "database:\n  path: \"/tmp/t.db\"\nauth:\n  jwt_secret: \"s\"\nmodel:\n  base_url: \"u\"\n  model: \"m\"\n",
			wantErr: "server.http_addr",
		},
		{
			name:    "missing database path",
			config:  "server:\n  http_addr: \":8080\"\nauth:\n  jwt_secret: \"s\"\nmodel:\n  base_url: \"u\"\n  model: \"m\"\n",
			wantErr: "database.path",
		},
		{
			name:    "missing jwt secret",
			config:  "server:\n  http_addr: \":8080\"\ndatabase:\n  path: \"/tmp/t.db\"\nmodel:\n  base_url: \"u\"\n  model: \"m\"\n",
			wantErr: "auth.jwt_secret",
		},
		{
			name:    "missing model base url",
			config:  "server:\n  http_addr: \":8080\"\ndatabase:\n  path: \"/tmp/t.db\"\nauth:\n  jwt_secret: \"s\"\nmodel:\n  model: \"m\"\n",
			wantErr: "model.base_url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.config))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadBadDuration(t *testing.T) {
	_, err := Load(writeConfig(t, `
server:
  http_addr: ":8080"
database:
  path: "/tmp/t.db"
auth:
  jwt_secret: "s"
  token_ttl: "eventually"
model:
  base_url: "u"
  model: "m"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token_ttl")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
