// Package cli builds the warden command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/warden-dev/warden/internal/commands/shared"
)

// Version information (injected via ldflags at build time).
var (
	version = "dev"
	commit  = "unknown"
)

// SetVersion sets build-time version information.
func SetVersion(v, c string) {
	version = v
	commit = c
}

// NewRootCommand creates the root cobra command for warden.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "warden",
		Short: "warden - policy-gated mutations for a local coding assistant",
		Long: `Warden mediates every side-effecting action of a local coding
assistant: file reads and writes, shell commands and network access all
pass through a risk-classified policy gate, a secret scanner, and an
append-only audit log before anything touches disk or spawns a process.`,
		Version:       version + " (" + commit + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	verbose, jsonOut, yes, workspace := shared.RegisterFlagPointers()
	cmd.PersistentFlags().BoolVarP(verbose, "verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().BoolVar(jsonOut, "json", false, "Output in JSON format")
	cmd.PersistentFlags().BoolVarP(yes, "yes", "y", false, "Auto-approve confirmation prompts")
	cmd.PersistentFlags().StringVarP(workspace, "workspace", "w", "", "Workspace root (default: current directory)")

	return cmd
}

// HandleExitError handles command errors with proper exit codes.
func HandleExitError(err error) {
	shared.HandleExitError(err)
}
