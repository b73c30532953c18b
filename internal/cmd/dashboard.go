package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/boss/internal/api"
	"github.com/felixgeelhaar/boss/internal/errors"
	"github.com/felixgeelhaar/boss/internal/ux"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the back-office dashboard",
	Long: `Show sales, member counters and alerts.

Examples:
  boss dashboard
  boss dashboard --chart --period weekly
  boss dashboard -o json`,
	RunE: protected(runDashboard),
}

func init() {
	dashboardCmd.Flags().Bool("chart", false, "include the sales and members time series")
	dashboardCmd.Flags().String("period", api.PeriodMonthly, "chart period: daily, weekly, monthly")

	rootCmd.AddCommand(dashboardCmd)
}

// dashboardResult is the json/yaml shape of the dashboard command
type dashboardResult struct {
	Stats *api.DashboardStats `json:"stats" yaml:"stats"`
	Chart *api.ChartData      `json:"chart,omitempty" yaml:"chart,omitempty"`
}

// dashboardText renders several tables one after another
type dashboardText []ux.Tabular

func (d dashboardText) String() string {
	var out string
	for i, t := range d {
		if i > 0 {
			out += "\n"
		}
		out += ux.RenderTable(t, noColor())
	}
	return out
}

func runDashboard(cmd *cobra.Command, args []string, d *deps) error {
	ctx := cmd.Context()
	withChart, _ := cmd.Flags().GetBool("chart")
	period, _ := cmd.Flags().GetString("period")

	switch period {
	case api.PeriodDaily, api.PeriodWeekly, api.PeriodMonthly:
	default:
		return errors.New(errors.ErrCodeInvalidField, errors.KindValidation,
			fmt.Sprintf("unknown period %q", period)).
			WithSuggestion("Use --period daily, weekly or monthly")
	}

	stats, err := d.client.DashboardStats(ctx)
	if err != nil {
		return err
	}
	result := dashboardResult{Stats: stats}
	text := dashboardText{statsView(stats)}

	if len(stats.Alerts) > 0 {
		alerts := ux.Table{Head: []string{"Alert", "Message"}}
		for _, a := range stats.Alerts {
			alerts.Body = append(alerts.Body, []string{string(a.Type), a.Message})
		}
		text = append(text, alerts)
	}

	if withChart {
		chart, err := d.client.ChartData(ctx, period)
		if err != nil {
			return err
		}
		result.Chart = chart
		text = append(text, chartView(chart))
	}

	return render(cmd, d.cfg, result, text)
}

func statsView(s *api.DashboardStats) ux.KeyValues {
	return ux.KeyValues{
		{"Monthly sales", money(s.MonthlySales) + growth(s.GrowthRates.Sales)},
		{"Total revenue", money(s.TotalRevenue) + growth(s.GrowthRates.Revenue)},
		{"Active members", strconv.Itoa(s.ActiveMembers) + growth(s.GrowthRates.ActiveMembers)},
		{"Suspended", strconv.Itoa(s.SuspendedMembers) + growth(s.GrowthRates.SuspendedMembers)},
		{"Withdrawn", strconv.Itoa(s.WithdrawnMembers) + growth(s.GrowthRates.WithdrawnMembers)},
		{"Unpaid", strconv.Itoa(s.UnpaidCount)},
	}
}

func chartView(c *api.ChartData) ux.Table {
	t := ux.Table{Head: []string{"Period", "Sales", "Members"}}
	for i, label := range c.Labels {
		row := []string{label, "", ""}
		if i < len(c.Sales) {
			row[1] = money(c.Sales[i])
		}
		if i < len(c.Members) {
			row[2] = strconv.Itoa(c.Members[i])
		}
		t.Body = append(t.Body, row)
	}
	return t
}

func money(v float64) string {
	return "¥" + strconv.FormatFloat(v, 'f', 0, 64)
}

func growth(rate float64) string {
	if rate == 0 {
		return ""
	}
	return fmt.Sprintf(" (%+.1f%%)", rate)
}
