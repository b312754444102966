// Package execcmd implements the sandboxed command execution command.
package execcmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/warden-dev/warden/internal/cli/prompt"
	"github.com/warden-dev/warden/internal/commands/shared"
	"github.com/warden-dev/warden/internal/config"
	"github.com/warden-dev/warden/internal/pipeline"
	"github.com/warden-dev/warden/internal/sandbox"
)

// NewCommand creates the exec command.
func NewCommand() *cobra.Command {
	var (
		dir     string
		timeout time.Duration
		stream  bool
	)

	cmd := &cobra.Command{
		Use:   "exec -- <command>...",
		Short: "Run a shell command through the sandbox",
		Long: `Exec runs a command under the workspace policy: the command must
match the exec allowlist, the child environment is scrubbed of
credential-shaped variables, execution is bounded by a timeout, and the
outcome is audited. Obviously destructive commands are refused before
the allowlist is even consulted.`,
		Example: `  # Run the test suite
  warden exec -- npm test

  # Stream output as it arrives, with a tight deadline
  warden exec --stream --timeout 30s -- go test ./...`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, strings.Join(args, " "), sandbox.Options{Dir: dir, Timeout: timeout}, stream)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Working directory for the command")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Kill the command after this duration")
	cmd.Flags().BoolVar(&stream, "stream", false, "Stream output as it arrives")
	return cmd
}

func runExec(cmd *cobra.Command, command string, opts sandbox.Options, stream bool) error {
	workspace := shared.Workspace()
	settings, err := config.Load(workspace)
	if err != nil {
		return err
	}

	logger := shared.NewLogger(settings.LogLevel)
	p := pipeline.New(&settings.Policy, workspace, logger, prompt.NewConfirmer(shared.AssumeYes()))

	var result sandbox.Result
	if stream {
		result = p.ExecStream(cmd.Context(), command, opts, func(name string, chunk []byte) {
			if name == sandbox.StreamStderr {
				cmd.ErrOrStderr().Write(chunk)
				return
			}
			cmd.OutOrStdout().Write(chunk)
		})
	} else {
		result = p.Exec(cmd.Context(), command, opts)
		fmt.Fprint(cmd.OutOrStdout(), result.Stdout)
		fmt.Fprint(cmd.ErrOrStderr(), result.Stderr)
	}

	if result.Err != nil {
		return result.Err
	}
	return nil
}
