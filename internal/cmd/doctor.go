package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/boss/internal/errors"
	"github.com/felixgeelhaar/boss/internal/health"
	"github.com/felixgeelhaar/boss/internal/ux"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the API, stored credential and session",
	Long: `Run diagnostics: whether the API answers its health endpoint, whether
the stored credential is private to you, and whether the API still
accepts the stored session.

Exits non-zero when any check is unhealthy.`,
	RunE: public(runDoctor),
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// doctorReport is the json/yaml shape of the doctor command
type doctorReport struct {
	Status health.Status    `json:"status" yaml:"status"`
	Checks []*health.Result `json:"checks" yaml:"checks"`
}

func runDoctor(cmd *cobra.Command, args []string, d *deps) error {
	// revalidating the session may delete the credential file
	results := health.CheckInOrder(cmd.Context(),
		health.NewManager(
			health.NewAPIChecker(d.client, d.cfg.APIURL),
			health.NewCredentialFileChecker(d.store.Path(), d.store.Sealed()),
		),
		health.NewManager(health.NewSessionChecker(d.ctrl)),
	)
	report := doctorReport{Status: health.OverallStatus(results), Checks: results}

	view := ux.Table{
		Head:   []string{"Check", "Status", "Message"},
		Footer: "Overall: " + string(report.Status),
	}
	for _, r := range results {
		msg := r.Message
		if fix, ok := r.Details["fix"].(string); ok {
			msg += " (fix: " + fix + ")"
		}
		view.Body = append(view.Body, []string{r.Name, string(r.Status), msg})
	}

	if err := render(cmd, d.cfg, report, view); err != nil {
		return err
	}

	if report.Status == health.StatusUnhealthy {
		var failed []string
		for _, r := range results {
			if r.Status == health.StatusUnhealthy {
				failed = append(failed, r.Name)
			}
		}
		return errors.New(errors.ErrCodeUnhealthy, errors.KindInternal,
			fmt.Sprintf("unhealthy: %s", strings.Join(failed, ", ")))
	}
	return nil
}
