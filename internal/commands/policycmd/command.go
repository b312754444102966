// Package policycmd implements the policy inspection command.
package policycmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/warden-dev/warden/internal/commands/shared"
	"github.com/warden-dev/warden/internal/config"
)

// NewCommand creates the policy command.
func NewCommand() *cobra.Command {
	var initialize bool

	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Show the effective workspace policy",
		Long: `Policy prints the configuration the gate enforces for this
workspace. A workspace without a policy file runs with the restrictive
defaults: no writes, no command execution, confirmation required.

With --init the current effective policy is written to
` + "`.warden/policy.yaml`" + ` as a starting point for editing.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPolicy(cmd, initialize)
		},
	}

	cmd.Flags().BoolVar(&initialize, "init", false, "Write the effective policy to the workspace policy file")
	return cmd
}

func runPolicy(cmd *cobra.Command, initialize bool) error {
	workspace := shared.Workspace()
	settings, err := config.Load(workspace)
	if err != nil {
		return err
	}

	if initialize {
		if err := config.Write(workspace, settings); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK("wrote "+config.PolicyPath(workspace)))
		return nil
	}

	if shared.JSON() {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(settings)
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}
