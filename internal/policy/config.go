package policy

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Config holds the process-wide policy configuration. It is loaded once
// per session by the configuration layer and injected into the gate
// constructor, so tests can run with distinct configurations concurrently.
type Config struct {
	// ExecAllowlist lists command patterns that may be executed.
	// Entries containing '*' are matched as globs against the command's
	// leading token; other entries match the token exactly or the full
	// command as a prefix. Empty list denies all execution.
	ExecAllowlist []string `yaml:"exec_allowlist" json:"exec_allowlist"`

	// PathAllowlist lists glob patterns for writable paths.
	// Empty list denies all writes.
	PathAllowlist []string `yaml:"path_allowlist" json:"path_allowlist"`

	// PathDenylist lists glob patterns that are never readable or
	// writable. Denylist takes precedence over the allowlist.
	PathDenylist []string `yaml:"path_denylist" json:"path_denylist"`

	// RequireConfirmation is the global default for whether allowed
	// write and exec actions still need user confirmation.
	RequireConfirmation bool `yaml:"require_confirmation" json:"require_confirmation"`
}

// Validate checks that every configured pattern is a valid glob.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	for _, pattern := range c.PathAllowlist {
		if err := validatePattern(pattern); err != nil {
			return fmt.Errorf("path_allowlist: %w", err)
		}
	}
	for _, pattern := range c.PathDenylist {
		if err := validatePattern(pattern); err != nil {
			return fmt.Errorf("path_denylist: %w", err)
		}
	}
	for _, pattern := range c.ExecAllowlist {
		if pattern == "" {
			return fmt.Errorf("exec_allowlist: empty pattern not allowed")
		}
	}
	return nil
}

func validatePattern(pattern string) error {
	if pattern == "" {
		return fmt.Errorf("empty pattern not allowed")
	}
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("invalid glob pattern %q", pattern)
	}
	return nil
}
