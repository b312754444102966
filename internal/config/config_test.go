package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warden-dev/warden/internal/policy"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	workspace := t.TempDir()

	settings, err := Load(workspace)
	require.NoError(t, err)

	// Fresh workspaces start fully locked down.
	assert.Empty(t, settings.Policy.ExecAllowlist)
	assert.Empty(t, settings.Policy.PathAllowlist)
	assert.True(t, settings.Policy.RequireConfirmation)
	assert.NotEmpty(t, settings.Policy.PathDenylist)

	gate := policy.NewGate(&settings.Policy)
	decision := gate.Evaluate(policy.Action{Risk: policy.RiskWrite, Scope: []string{"any.txt"}}, nil)
	assert.False(t, decision.Allowed)
}

func TestLoadParsesYAML(t *testing.T) {
	workspace := t.TempDir()
	require.NoError(t, os.MkdirAll(AppDir(workspace), 0o700))
	require.NoError(t, os.WriteFile(PolicyPath(workspace), []byte(`
policy:
  exec_allowlist:
    - git
    - npm test
  path_allowlist:
    - "src/**"
  path_denylist:
    - "**/.env*"
  require_confirmation: false
log_level: debug
`), 0o600))

	settings, err := Load(workspace)
	require.NoError(t, err)

	assert.Equal(t, []string{"git", "npm test"}, settings.Policy.ExecAllowlist)
	assert.Equal(t, []string{"src/**"}, settings.Policy.PathAllowlist)
	assert.False(t, settings.Policy.RequireConfirmation)
	assert.Equal(t, "debug", settings.LogLevel)
}

func TestLoadRejectsInvalidPolicy(t *testing.T) {
	workspace := t.TempDir()
	require.NoError(t, os.MkdirAll(AppDir(workspace), 0o700))
	require.NoError(t, os.WriteFile(PolicyPath(workspace), []byte(`
policy:
  path_allowlist:
    - "[unterminated"
`), 0o600))

	_, err := Load(workspace)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid policy")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	workspace := t.TempDir()
	require.NoError(t, os.MkdirAll(AppDir(workspace), 0o700))
	require.NoError(t, os.WriteFile(PolicyPath(workspace), []byte("policy: ["), 0o600))

	_, err := Load(workspace)
	assert.Error(t, err)
}

func TestWriteRoundTrip(t *testing.T) {
	workspace := t.TempDir()

	in := &Settings{
		Policy: policy.Config{
			ExecAllowlist:       []string{"go"},
			PathAllowlist:       []string{"**"},
			RequireConfirmation: true,
		},
	}
	require.NoError(t, Write(workspace, in))
	assert.FileExists(t, filepath.Join(workspace, AppDirName, PolicyFileName))

	out, err := Load(workspace)
	require.NoError(t, err)
	assert.Equal(t, in.Policy, out.Policy)
}
