package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-drift/pushnotification/pkg/platform"
)

// deliveryGrace is how long send waits past the trigger before giving up.
const deliveryGrace = 5 * time.Second

func newSendCmd(opts *globalOptions) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Schedule the test notification",
		Long: `Press "Send Local Notification" once: schedule the test notification
and, with --wait (the default), stay running until the host delivers it.

The host lives in this process, so with --wait=false the request is only
validated and dropped on exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts, appDeps{stderr: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer a.Close()

			delivered := make(chan platform.NotificationEvent, 1)
			unsubscribe := platform.Notifications.Deliveries().Listen(func(e platform.NotificationEvent) {
				select {
				case delivered <- e:
				default:
				}
			})
			defer unsubscribe()

			req := a.scheduler.Template
			if err := a.scheduler.Schedule(cmd.Context()); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Notification scheduled in %s.\n", req.Delay)
			if !wait {
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), req.Delay+deliveryGrace)
			defer cancel()
			select {
			case e := <-delivered:
				fmt.Fprintf(out, "Delivered: %s\n", strings.TrimSpace(e.Title+" "+e.Body))
				return nil
			case <-ctx.Done():
			}

			settings, err := platform.Notifications.Settings(context.Background())
			if err != nil {
				return fmt.Errorf("notification was not delivered: %w", err)
			}
			fmt.Fprintf(out, "Not delivered: notifications are %s.\n", settings.Status)
			return nil
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", true, "Wait for delivery before exiting")
	return cmd
}
