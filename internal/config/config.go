// Package config loads per-workspace settings. The core components
// consume the parsed policy configuration and never parse files
// themselves.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/warden-dev/warden/internal/policy"
)

// AppDirName is the workspace-local directory holding warden state.
const AppDirName = ".warden"

// PolicyFileName is the policy file inside the app directory.
const PolicyFileName = "policy.yaml"

// Settings is the on-disk configuration shape.
type Settings struct {
	// Policy is the access control configuration for this workspace.
	Policy policy.Config `yaml:"policy"`

	// LogLevel sets the minimum structured log level.
	LogLevel string `yaml:"log_level,omitempty"`
}

// AppDir returns the warden state directory for a workspace.
func AppDir(workspace string) string {
	return filepath.Join(workspace, AppDirName)
}

// AuditDir returns the audit log directory for a workspace.
func AuditDir(workspace string) string {
	return filepath.Join(AppDir(workspace), "audit")
}

// PolicyPath returns the policy file path for a workspace.
func PolicyPath(workspace string) string {
	return filepath.Join(AppDir(workspace), PolicyFileName)
}

// DefaultPolicy returns the baseline policy: reads allowed except for
// sensitive paths, all writes and executions denied until explicitly
// allowlisted, confirmation required.
func DefaultPolicy() *policy.Config {
	return &policy.Config{
		ExecAllowlist: []string{},
		PathAllowlist: []string{},
		PathDenylist: []string{
			"**/.env*",
			"**/.ssh/**",
			"**/.aws/**",
			"**/secrets/**",
			"**/*.pem",
			"**/*.key",
		},
		RequireConfirmation: true,
	}
}

// Load reads the workspace settings. A missing policy file yields the
// default policy rather than an error, so a fresh workspace starts in
// the most restrictive posture.
func Load(workspace string) (*Settings, error) {
	path := PolicyPath(workspace)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Settings{Policy: *DefaultPolicy()}, nil
		}
		return nil, fmt.Errorf("read policy file: %w", err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := settings.Policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy in %s: %w", path, err)
	}

	return &settings, nil
}

// Write persists settings to the workspace policy file, creating the
// app directory if needed.
func Write(workspace string, settings *Settings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.MkdirAll(AppDir(workspace), 0o700); err != nil {
		return fmt.Errorf("create app directory: %w", err)
	}

	if err := os.WriteFile(PolicyPath(workspace), data, 0o600); err != nil {
		return fmt.Errorf("write policy file: %w", err)
	}
	return nil
}
