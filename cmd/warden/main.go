package main

import (
	"github.com/warden-dev/warden/internal/cli"
	"github.com/warden-dev/warden/internal/commands/apply"
	"github.com/warden-dev/warden/internal/commands/auditcmd"
	"github.com/warden-dev/warden/internal/commands/execcmd"
	"github.com/warden-dev/warden/internal/commands/policycmd"
	"github.com/warden-dev/warden/internal/commands/scan"
)

// Version information (injected via ldflags at build time)
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	cli.SetVersion(version, commit)

	rootCmd := cli.NewRootCommand()
	rootCmd.AddCommand(scan.NewCommand())
	rootCmd.AddCommand(apply.NewCommand())
	rootCmd.AddCommand(execcmd.NewCommand())
	rootCmd.AddCommand(auditcmd.NewCommand())
	rootCmd.AddCommand(policycmd.NewCommand())

	if err := rootCmd.Execute(); err != nil {
		cli.HandleExitError(err)
	}
}
