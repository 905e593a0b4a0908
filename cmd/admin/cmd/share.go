package cmd

import (
	"fmt"
	"time"

	"fleetreport/internal/domain/share"

	"github.com/spf13/cobra"
)

var (
	shareCustomer string
	shareDays     int
)

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Issue and verify customer share links",
}

var shareIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a link scoped to one customer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		link, err := shares().Issue(shareCustomer, shareDays)
		if err != nil {
			return err
		}

		ok(cmd.OutOrStdout(), "%s\n", link.URL)
		fmt.Fprintf(cmd.OutOrStdout(), "  token:   %s\n", link.Token)
		fmt.Fprintf(cmd.OutOrStdout(), "  expires: %s (%d days)\n", link.Expires.Format(time.RFC3339), link.ExpiresInDays)
		return nil
	},
}

var shareVerifyCmd = &cobra.Command{
	Use:   "verify TOKEN",
	Short: "Check a share token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		claims, err := shares().Verify(args[0])
		if err != nil {
			return err
		}

		ok(cmd.OutOrStdout(), "Valid\n")
		fmt.Fprintf(cmd.OutOrStdout(), "  customer: %s\n", claims.CustomerID)
		fmt.Fprintf(cmd.OutOrStdout(), "  expires:  %s\n", claims.Expires)
		return nil
	},
}

func shares() *share.Service {
	return share.NewService(cfg.Share.Secret, cfg.Share.PublicBaseURL)
}

func init() {
	shareIssueCmd.Flags().StringVar(&shareCustomer, "customer", "", "customer id the link is scoped to")
	shareIssueCmd.Flags().IntVar(&shareDays, "days", share.DefaultDays, "validity in days (1-365)")
	_ = shareIssueCmd.MarkFlagRequired("customer")

	shareCmd.AddCommand(shareIssueCmd, shareVerifyCmd)
}
