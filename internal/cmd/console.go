package cmd

import (
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/boss/internal/notify"
	"github.com/felixgeelhaar/boss/internal/session"
	"github.com/felixgeelhaar/boss/internal/tui"
)

// ConsoleLogFile receives logs while the console owns the terminal
const ConsoleLogFile = "console.log"

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Open the interactive console",
	Long: `Open the interactive back-office console.

Keys:
  1-4 / tab   switch between dashboard, members, payments and reports
  r           reload the current view
  L           log out
  q, ctrl+c   quit

Logs are written to ~/.boss/console.log while the console is open.`,
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

func runConsole(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.CredentialDir, 0o700); err != nil {
		return err
	}
	logFile, err := os.OpenFile(filepath.Join(cfg.CredentialDir, ConsoleLogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return err
	}
	defer logFile.Close()

	toasts := notify.NewQueue(notify.DefaultTTL, 5)
	events := tui.NewEvents()

	d, err := newDeps(cmd, depsOptions{
		notifier:  toasts,
		logOutput: logFile,
		session:   []session.Option{session.WithNavigator(events)},
	})
	if err != nil {
		return err
	}
	defer d.close()

	app := tui.NewApp(cmd.Context(), d.ctrl, d.client, events, toasts)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	_, err = p.Run()
	return err
}
