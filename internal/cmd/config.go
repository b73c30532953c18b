package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/boss/internal/config"
	"github.com/felixgeelhaar/boss/internal/ux"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the configuration boss runs with.

Values are resolved from built-in defaults, ~/.boss/config.yaml, a .env
file, BOSS_* environment variables and finally command-line flags.

Examples:
  boss config view
  boss config view -o yaml
  boss config path`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Display the effective configuration",
	RunE:  runConfigView,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the configuration file path",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configViewCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigView(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	redacted := cfg.Redacted()
	view := ux.KeyValues{
		{"api_url", redacted.APIURL},
		{"timeout", redacted.Timeout.String()},
		{"max_retries", fmt.Sprint(redacted.MaxRetries)},
		{"credential_dir", redacted.CredentialDir},
		{"credential_key", orUnset(redacted.CredentialKey)},
		{"log_level", redacted.LogLevel},
		{"log_format", redacted.LogFormat},
		{"output", redacted.Output},
	}
	return render(cmd, cfg, redacted, view)
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path := flagConfig
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return err
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
