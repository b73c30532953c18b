package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// persistent flag values
var (
	flagAPIURL   string
	flagLogLevel string
	flagOutput   string
	flagConfig   string
)

var rootCmd = &cobra.Command{
	Use:   "boss",
	Short: "BOSS back-office console",
	Long: `boss is the operator console for the BOSS back office.

It signs operators in against the BOSS API, keeps the session in
~/.boss/credentials.json and gives access to members, the dashboard and
the interactive console.

Examples:
  boss auth login
  boss members list --status active
  boss dashboard --chart --period weekly
  boss console`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx, which is cancelled on interrupt
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "BOSS API base URL (overrides BOSS_API_URL and the config file)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "", "output format: text, json, yaml")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default is $HOME/.boss/config.yaml)")
}
