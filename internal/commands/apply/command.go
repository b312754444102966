// Package apply implements the gated file mutation command.
package apply

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/warden-dev/warden/internal/cli/prompt"
	"github.com/warden-dev/warden/internal/commands/shared"
	"github.com/warden-dev/warden/internal/config"
	"github.com/warden-dev/warden/internal/patch"
	"github.com/warden-dev/warden/internal/pipeline"
)

// NewCommand creates the apply command.
func NewCommand() *cobra.Command {
	var (
		fromFile string
		backup   bool
		dryRun   bool
		preview  bool
	)

	cmd := &cobra.Command{
		Use:   "apply <file>",
		Short: "Apply a gated content change to a file",
		Long: `Apply diffs the target file against new content (from --from or
stdin) and commits the change through the mutation pipeline: the write
is checked against the workspace policy, the new content is scanned for
secrets, the change can require confirmation, and the outcome is
audited.

With --backup the original is copied to a .backup sibling first and
left on disk afterwards. With --dry-run the patch is validated against
the current content without writing anything.`,
		Example: `  # Replace a file's content from another file, keeping a backup
  warden apply src/main.go --from /tmp/main.go.new --backup

  # Pipe new content in and show the diff before applying
  cat new.txt | warden apply notes.txt --preview

  # Validate that the change still applies cleanly
  warden apply notes.txt --from new.txt --dry-run`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, args[0], fromFile, patch.Options{Backup: backup, DryRun: dryRun}, preview)
		},
	}

	cmd.Flags().StringVar(&fromFile, "from", "", "File holding the new content (default: stdin)")
	cmd.Flags().BoolVar(&backup, "backup", false, "Copy the original to a .backup sibling before writing")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate without writing")
	cmd.Flags().BoolVar(&preview, "preview", false, "Print the diff before applying")
	return cmd
}

func runApply(cmd *cobra.Command, target, fromFile string, opts patch.Options, preview bool) error {
	newContent, err := readNewContent(cmd, fromFile)
	if err != nil {
		return err
	}

	workspace := shared.Workspace()
	settings, err := config.Load(workspace)
	if err != nil {
		return err
	}

	logger := shared.NewLogger(settings.LogLevel)
	p := pipeline.New(&settings.Policy, workspace, logger, prompt.NewConfirmer(shared.AssumeYes()))

	if preview {
		diff, err := p.Engine().DiffFromDisk(target, newContent)
		if err != nil {
			return err
		}
		for _, line := range patch.Preview(diff) {
			fmt.Fprintln(cmd.OutOrStdout(), shared.RenderDiffLine(line))
		}
	}

	result := p.WriteFile(target, newContent, opts)
	if result.Err != nil {
		return result.Err
	}

	switch {
	case opts.DryRun:
		fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK(target+": patch applies cleanly"))
	case result.BackupPath != "":
		fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK(
			fmt.Sprintf("%s updated (backup at %s)", target, result.BackupPath)))
	default:
		fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK(target+" updated"))
	}
	return nil
}

func readNewContent(cmd *cobra.Command, fromFile string) (string, error) {
	if fromFile != "" {
		data, err := os.ReadFile(fromFile)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", fromFile, err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}
