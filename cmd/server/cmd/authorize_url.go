package cmd

import (
	"fmt"

	"github.com/MariHpf/oauth-app-marius-test/internal/config"
	"github.com/MariHpf/oauth-app-marius-test/oauth2"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(authorizeURLCmd)
}

var authorizeURLCmd = &cobra.Command{
	Use:   "authorize-url",
	Short: "Print the install URL for the configured app",
	Long:  "Print the install URL for the configured app. The URL carries no state, so the callback only accepts it while OAUTH_REQUIRE_STATE is off.",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := config.New()
		if c.GetClientID() == "" {
			return fmt.Errorf("CLIENT_ID is not set")
		}
		fmt.Fprintln(cmd.OutOrStdout(), oauth2.NewExchangeClient(c, nil).AuthCodeURL(""))
		return nil
	},
}
