package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget the stored authorization decision",
		Long: `Forget the host's stored authorization decision for this app so the
next permission request asks again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts, appDeps{stderr: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.host.ResetAuthorization(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Authorization reset for %s.\n", a.cfg.AppID)
			return nil
		},
	}
}
