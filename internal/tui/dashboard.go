package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/boss/internal/api"
)

type dashboardStatsMsg struct {
	seq   int
	stats *api.DashboardStats
	err   error
}

func (m dashboardStatsMsg) viewSeq() int { return m.seq }

type memberStatsMsg struct {
	seq   int
	stats *api.MemberStats
	err   error
}

func (m memberStatsMsg) viewSeq() int { return m.seq }

// dashboardView shows the aggregate counters. Both requests run
// concurrently and each half renders as soon as it arrives.
type dashboardView struct {
	ctx    context.Context
	data   Backend
	seq    int
	styles Styles

	stats      *api.DashboardStats
	statsErr   error
	members    *api.MemberStats
	membersErr error
}

func newDashboardView(ctx context.Context, data Backend, seq int, styles Styles) dashboardView {
	return dashboardView{ctx: ctx, data: data, seq: seq, styles: styles}
}

func (v dashboardView) Init() tea.Cmd {
	ctx, data, seq := v.ctx, v.data, v.seq
	return tea.Batch(
		func() tea.Msg {
			stats, err := data.DashboardStats(ctx)
			return dashboardStatsMsg{seq: seq, stats: stats, err: err}
		},
		func() tea.Msg {
			stats, err := data.MemberStats(ctx)
			return memberStatsMsg{seq: seq, stats: stats, err: err}
		},
	)
}

func (v dashboardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardStatsMsg:
		v.stats, v.statsErr = msg.stats, msg.err
	case memberStatsMsg:
		v.members, v.membersErr = msg.stats, msg.err
	}
	return v, nil
}

func (v dashboardView) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Dashboard"))
	b.WriteString("\n")

	switch {
	case v.statsErr != nil:
		b.WriteString(v.styles.Error.Render("Could not load dashboard: " + errorText(v.statsErr)))
	case v.stats == nil:
		b.WriteString(v.styles.Muted.Render("Loading dashboard..."))
	default:
		s := v.stats
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			v.card("Monthly sales", formatYen(s.MonthlySales), s.GrowthRates.Sales),
			v.card("Total revenue", formatYen(s.TotalRevenue), s.GrowthRates.Revenue),
			v.card("Unpaid", strconv.Itoa(s.UnpaidCount), 0),
		))
		b.WriteString("\n")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			v.card("Active members", formatCount(s.ActiveMembers), s.GrowthRates.ActiveMembers),
			v.card("Suspended", formatCount(s.SuspendedMembers), s.GrowthRates.SuspendedMembers),
			v.card("Withdrawn", formatCount(s.WithdrawnMembers), s.GrowthRates.WithdrawnMembers),
		))
		if len(s.Alerts) > 0 {
			b.WriteString("\n")
			b.WriteString(v.styles.Subtitle.Render("Alerts"))
			for _, alert := range s.Alerts {
				b.WriteString("\n")
				b.WriteString(v.styles.alertStyle(alert.Type).Render("• " + alert.Message))
			}
		}
	}

	b.WriteString("\n\n")
	switch {
	case v.membersErr != nil:
		b.WriteString(v.styles.Error.Render("Could not load member statistics: " + errorText(v.membersErr)))
	case v.members == nil:
		b.WriteString(v.styles.Muted.Render("Loading member statistics..."))
	default:
		m := v.members
		b.WriteString(v.styles.Subtitle.Render("Members"))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("Total %s · Pending %s · New this month %s",
			formatCount(m.TotalMembers), formatCount(m.PendingMembers), formatCount(m.NewRegistrationsThisMonth)))
	}

	return b.String()
}

func (v dashboardView) card(title, value string, growth float64) string {
	body := v.styles.CardTitle.Render(title) + "\n" + v.styles.CardValue.Render(value)
	if growth != 0 {
		style := v.styles.Success
		if growth < 0 {
			style = v.styles.Error
		}
		body += "\n" + style.Render(formatGrowth(growth))
	}
	return v.styles.Card.Render(body)
}

// formatYen renders an amount as whole yen with thousands separators
func formatYen(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := "¥" + groupDigits(strconv.FormatInt(int64(amount+0.5), 10))
	if neg {
		return "-" + s
	}
	return s
}

func formatCount(n int) string {
	if n < 0 {
		return "-" + groupDigits(strconv.Itoa(-n))
	}
	return groupDigits(strconv.Itoa(n))
}

func groupDigits(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func formatGrowth(rate float64) string {
	return fmt.Sprintf("%+.1f%%", rate)
}
