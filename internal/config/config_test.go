package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Sandbox.VCPUs)
	assert.Equal(t, "node22", cfg.Sandbox.Runtime)
	assert.Equal(t, 30*time.Minute, cfg.Sandbox.SessionTimeoutDuration())
	assert.Equal(t, 10*time.Minute, cfg.Sandbox.ProvisionTimeoutDuration())
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
sandbox:
  team_id: team_abc
  project_id: prj_123
  token: tok_xyz
  vcpus: 8
  session_timeout: 45m
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "team_abc", cfg.Sandbox.TeamID)
	assert.Equal(t, "prj_123", cfg.Sandbox.ProjectID)
	assert.Equal(t, "tok_xyz", cfg.Sandbox.Token)
	assert.Equal(t, 8, cfg.Sandbox.VCPUs)
	assert.Equal(t, 45*time.Minute, cfg.Sandbox.SessionTimeoutDuration())
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Sandbox.VCPUs)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sandbox: [nope"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("credentials", func(t *testing.T) {
		t.Setenv("SANDBOX_TEAM_ID", "team_env")
		t.Setenv("SANDBOX_PROJECT_ID", "prj_env")
		t.Setenv("SANDBOX_TOKEN", "tok_env")

		cfg := &Config{Sandbox: SandboxConfig{TeamID: "file"}}
		cfg.applyEnvOverrides()

		assert.Equal(t, "team_env", cfg.Sandbox.TeamID)
		assert.Equal(t, "prj_env", cfg.Sandbox.ProjectID)
		assert.Equal(t, "tok_env", cfg.Sandbox.Token)
	})

	t.Run("empty env does not clobber file values", func(t *testing.T) {
		t.Setenv("SANDBOX_TEAM_ID", "")

		cfg := &Config{Sandbox: SandboxConfig{TeamID: "file"}}
		cfg.applyEnvOverrides()

		assert.Equal(t, "file", cfg.Sandbox.TeamID)
	})

	t.Run("log level", func(t *testing.T) {
		t.Setenv("GHSEARCH_LOG_LEVEL", "debug")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "debug", cfg.Logging.Level)
	})
}

func TestParseDurationFallbacks(t *testing.T) {
	s := SandboxConfig{SessionTimeout: "not-a-duration", ProvisionTimeout: "-5m"}
	assert.Equal(t, 30*time.Minute, s.SessionTimeoutDuration())
	assert.Equal(t, 10*time.Minute, s.ProvisionTimeoutDuration())
}
