// Package cmd implements the pushnotification CLI commands.
//
// The root command runs the interactive shell; subcommands press a single
// button (permission, send) or inspect host state (status, reset).
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-drift/pushnotification/internal/cache"
	"github.com/go-drift/pushnotification/pkg/host"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath    string
	cacheDir      string
	authorization string
	verbose       bool

	// presenter replaces the system presenter when set.
	presenter host.Presenter
}

func newRootCmd() *cobra.Command {
	return newRootCmdWithOptions(&globalOptions{})
}

func newRootCmdWithOptions(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pushnotification",
		Short: "Push Notifications in Go",
		Long: `pushnotification demonstrates requesting notification permission and
scheduling a local notification three seconds in the future.

Without a subcommand it opens the interactive shell with two buttons:
"Request Permission" and "Send Local Notification".`,
		Version:       fmt.Sprintf("%s (built %s)", Version, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.cacheDir != "" {
				cache.SetCacheDir(opts.cacheDir)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to pushnotification.yaml (default: project root)")
	flags.StringVar(&opts.cacheDir, "cache-dir", "", "Override cache directory (default: ~/.pushnotification, env "+cache.EnvVar+")")
	flags.StringVar(&opts.authorization, "authorization", "", "Host authorization policy: prompt, grant, deny or restricted")
	flags.BoolVar(&opts.verbose, "verbose", false, "Report framework errors with kind, channel and stack trace")

	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newPermissionCmd(opts))
	cmd.AddCommand(newSendCmd(opts))
	cmd.AddCommand(newStatusCmd(opts))
	cmd.AddCommand(newResetCmd(opts))
	return cmd
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRunCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Open the interactive shell (default)",
		Long: `Open the interactive shell.

Type p and press Enter to request permission, s to send the test
notification, q to quit. When the host asks for permission, answer y or n.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, opts)
		},
	}
}
