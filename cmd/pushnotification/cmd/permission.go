package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-drift/pushnotification/pkg/host"
)

func newPermissionCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "permission",
		Short: "Request notification permission",
		Long: `Press "Request Permission" once: ask the host for alert, sound and
badge authorization and print the outcome.

The host only asks once per app ID. Use "pushnotification reset" to be asked
again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts, appDeps{
				prompter: &host.TerminalPrompter{In: cmd.InOrStdin(), Out: cmd.ErrOrStderr()},
				stderr:   cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			defer a.Close()

			granted, err := a.requester.Request(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), describeGranted(granted))
			return err
		},
	}
}
