package notify

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coldchain-go/coldchain/internal/coldchain"
	"github.com/coldchain-go/coldchain/internal/conf"
	"github.com/coldchain-go/coldchain/internal/notification"
)

// Command returns a cobra command that sends a test email through the
// configured SMTP relay.
func Command(settings *conf.Settings) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Send a test alert email",
		Long: `Send a test email through the configured relay to check the notification settings.

Example:
  coldchain notify --to ops@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := coldchain.Reading{Email: to}
			if err := r.ValidateEmail(); err != nil {
				return err
			}

			n, err := notification.NewAlertNotifier(settings, nil)
			if err != nil {
				return err
			}
			if err := n.SendTest(cmd.Context(), r.Email); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Test email sent to %s\n", r.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Recipient address")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
