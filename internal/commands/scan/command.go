// Package scan implements the secret scanning command.
package scan

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/warden-dev/warden/internal/commands/shared"
	"github.com/warden-dev/warden/internal/secrets"
)

// NewCommand creates the scan command.
func NewCommand() *cobra.Command {
	var redact bool

	cmd := &cobra.Command{
		Use:   "scan <file>...",
		Short: "Scan files for secrets and PII",
		Long: `Scan reads each file and reports detected secrets: API keys, cloud
credentials, private key markers, passwords, emails and card numbers.
Files matching the exclusion veto (.env*, *.pem, *.key, credentials*,
ssh private keys, secrets/ directories) are refused outright.

With --redact, the redacted content is written to stdout with each
detection replaced by a classification token like [REDACTED_PASSWORD].`,
		Example: `  # Report secrets in a file
  warden scan config.yaml

  # Machine-readable results
  warden scan config.yaml --json

  # Print the file with secrets replaced
  warden scan notes.md --redact`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args, redact)
		},
	}

	cmd.Flags().BoolVar(&redact, "redact", false, "Write redacted content to stdout")
	return cmd
}

func runScan(cmd *cobra.Command, paths []string, redact bool) error {
	scanner := secrets.NewScanner()
	found := false

	for _, path := range paths {
		if secrets.ShouldExclude(path) {
			fmt.Fprintln(cmd.ErrOrStderr(), shared.RenderWarn(path+": excluded from scanning"))
			found = true
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		if redact {
			result := scanner.Redact(string(data))
			fmt.Fprint(cmd.OutOrStdout(), result.RedactedText)
			if result.HasSecrets {
				found = true
			}
			continue
		}

		result := scanner.Scan(string(data))
		if shared.JSON() {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return err
			}
		} else {
			reportMatches(cmd, path, result)
		}
		if result.HasSecrets {
			found = true
		}
	}

	if found && !redact {
		return fmt.Errorf("secrets detected")
	}
	return nil
}

func reportMatches(cmd *cobra.Command, path string, result *secrets.Result) {
	if !result.HasSecrets {
		fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK(path+": clean"))
		return
	}
	for _, m := range result.Matches {
		fmt.Fprintln(cmd.OutOrStdout(), shared.RenderError(
			fmt.Sprintf("%s:%d:%d %s (%s)", path, m.Line, m.Column, m.Type, m.Pattern)))
	}
}
