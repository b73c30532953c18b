package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/boss/internal/config"
	"github.com/felixgeelhaar/boss/internal/ux"
)

// render writes a command result. Text output uses view; json and yaml
// encode data as returned by the API.
func render(cmd *cobra.Command, cfg *config.Config, data interface{}, view interface{}) error {
	f, err := ux.NewFormatter(cfg.Output, &ux.FormatterOptions{
		Writer:  cmd.OutOrStdout(),
		NoColor: noColor(),
	})
	if err != nil {
		return err
	}

	if cfg.Output == config.OutputText {
		return f.Format(view)
	}
	return f.Format(data)
}
