package api

import (
	"context"
	"net/http"
	"net/url"
)

// Chart periods accepted by the dashboard chart endpoint
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

// DashboardStats returns the aggregate dashboard counters
func (c *Client) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	req := request{method: http.MethodGet, path: "/dashboard/stats", authenticated: true}

	var stats DashboardStats
	if err := c.do(ctx, req, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ChartData returns the dashboard time series for period
func (c *Client) ChartData(ctx context.Context, period string) (*ChartData, error) {
	if period == "" {
		period = PeriodMonthly
	}
	req := request{
		method:        http.MethodGet,
		path:          "/dashboard/chart-data",
		query:         url.Values{"period": {period}},
		authenticated: true,
	}

	var data ChartData
	if err := c.do(ctx, req, &data); err != nil {
		return nil, err
	}
	return &data, nil
}
