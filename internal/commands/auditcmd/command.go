// Package auditcmd implements the audit log inspection command.
package auditcmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/warden-dev/warden/internal/audit"
	"github.com/warden-dev/warden/internal/commands/shared"
	"github.com/warden-dev/warden/internal/config"
)

// NewCommand creates the audit command.
func NewCommand() *cobra.Command {
	var (
		date   string
		action string
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the workspace audit log",
		Long: `Audit prints the append-only record of gate decisions and action
outcomes for one calendar day (default: today). Entries can be filtered
by action prefix, e.g. "exec:" or "policy:violation".`,
		Example: `  # Today's entries
  warden audit

  # Denied actions on a specific day
  warden audit --date 2026-08-20 --action policy:violation

  # Machine-readable
  warden audit --json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd, date, action)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day to show, YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&action, "action", "", "Only show entries whose action has this prefix")
	return cmd
}

func runAudit(cmd *cobra.Command, date, action string) error {
	day := time.Now().UTC()
	if date != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", date, err)
		}
		day = parsed
	}

	entries, err := audit.ReadDay(config.AuditDir(shared.Workspace()), day)
	if err != nil {
		return err
	}

	if action != "" {
		filtered := entries[:0]
		for _, e := range entries {
			if strings.HasPrefix(e.Action, action) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	if shared.JSON() {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), shared.Muted.Render("no audit entries"))
		return nil
	}
	for _, e := range entries {
		fmt.Fprintln(cmd.OutOrStdout(), renderEntry(e))
	}
	return nil
}

func renderEntry(e audit.Entry) string {
	stamp := shared.Muted.Render(e.Timestamp.Format(time.RFC3339))
	line := fmt.Sprintf("%s %s %s", stamp, e.Action, string(e.Status))
	switch e.Status {
	case audit.StatusSuccess:
		return shared.RenderOK(line)
	case audit.StatusDenied:
		return shared.RenderError(line)
	default:
		return shared.RenderWarn(line)
	}
}
