package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var paymentsCmd = &cobra.Command{
	Use:   "payments",
	Short: "Payment processing (coming soon)",
	RunE:  protected(comingSoon("Payment processing")),
}

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Reports (coming soon)",
	RunE:  protected(comingSoon("Reports")),
}

func init() {
	rootCmd.AddCommand(paymentsCmd)
	rootCmd.AddCommand(reportsCmd)
}

func comingSoon(feature string) runWithDeps {
	return func(cmd *cobra.Command, args []string, d *deps) error {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is coming soon.\n", feature)
		return nil
	}
}
