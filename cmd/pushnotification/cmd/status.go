package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-drift/pushnotification/pkg/platform"
)

func newStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show notification settings",
		Long: `Show the app identity and the host's stored authorization.

Pending notifications live in the process that scheduled them; press i in
the interactive shell to list them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts, appDeps{stderr: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer a.Close()

			settings, err := platform.Notifications.Settings(cmd.Context())
			if err != nil {
				return err
			}

			store := "memory"
			if a.cfg.Keyring {
				store = "keyring"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "App:           %s (%s)\n", a.cfg.AppName, a.cfg.AppID)
			fmt.Fprintf(out, "Policy:        %s (decisions stored in %s)\n", a.cfg.Authorization, store)
			fmt.Fprintf(out, "Authorization: %s\n", settings.Status)
			fmt.Fprintf(out, "  alerts:      %s\n", onOff(settings.AlertsEnabled))
			fmt.Fprintf(out, "  sounds:      %s\n", onOff(settings.SoundsEnabled))
			fmt.Fprintf(out, "  badges:      %s\n", onOff(settings.BadgesEnabled))
			return nil
		},
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// describePending summarizes the settings and the pending requests of the
// running host for the shell.
func describePending(settings platform.NotificationSettings, pending []platform.PendingNotification, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Authorization: %s (alerts %s, sounds %s, badges %s)\n",
		settings.Status, onOff(settings.AlertsEnabled), onOff(settings.SoundsEnabled), onOff(settings.BadgesEnabled))
	fmt.Fprintf(&b, "Pending: %d", len(pending))
	for _, p := range pending {
		fmt.Fprintf(&b, "\n  %s %q in %s", p.ID, p.Title, p.FireAt.Sub(now).Round(time.Second))
	}
	return b.String()
}
