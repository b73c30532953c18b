package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/boss/internal/api"
	"github.com/felixgeelhaar/boss/internal/notify"
)

// Styles contains lipgloss styles for the console
type Styles struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Error       lipgloss.Style
	Success     lipgloss.Style
	Warning     lipgloss.Style
	Info        lipgloss.Style
	Muted       lipgloss.Style
	Border      lipgloss.Style
	Highlighted lipgloss.Style
	Help        lipgloss.Style
	Key         lipgloss.Style
	KeyDesc     lipgloss.Style

	Sidebar     lipgloss.Style
	NavItem     lipgloss.Style
	NavActive   lipgloss.Style
	Card        lipgloss.Style
	CardTitle   lipgloss.Style
	CardValue   lipgloss.Style
	Toast       lipgloss.Style
	ContentPane lipgloss.Style
}

// DefaultStyles returns the default lipgloss styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")). // Purple
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")). // Gray
			MarginBottom(1),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")), // Green
		Warning: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226")), // Yellow
		Info: lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")), // Cyan
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1, 2),
		Highlighted: lipgloss.NewStyle().
			Background(lipgloss.Color("63")).
			Foreground(lipgloss.Color("230")).
			Bold(true).
			Padding(0, 1),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1),
		Key: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")),
		KeyDesc: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),

		Sidebar: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 2, 0, 1).
			Width(22),
		NavItem: lipgloss.NewStyle().
			Padding(0, 1),
		NavActive: lipgloss.NewStyle().
			Background(lipgloss.Color("63")).
			Foreground(lipgloss.Color("230")).
			Bold(true).
			Padding(0, 1),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 2).
			Width(24),
		CardTitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		CardValue: lipgloss.NewStyle().
			Bold(true),
		Toast: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1),
		ContentPane: lipgloss.NewStyle().
			Padding(0, 2),
	}
}

// toastColor returns the border color of a toast
func toastColor(level notify.Level) lipgloss.Color {
	switch level {
	case notify.LevelSuccess:
		return lipgloss.Color("46")
	case notify.LevelWarning:
		return lipgloss.Color("226")
	case notify.LevelError:
		return lipgloss.Color("196")
	default:
		return lipgloss.Color("86")
	}
}

// statusStyle colors a member status
func (s Styles) statusStyle(status api.MemberStatus) lipgloss.Style {
	switch status {
	case api.StatusActive:
		return s.Success
	case api.StatusSuspended:
		return s.Warning
	case api.StatusWithdrawn:
		return s.Error
	default:
		return s.Muted
	}
}

// alertStyle colors a dashboard alert
func (s Styles) alertStyle(t api.AlertType) lipgloss.Style {
	switch t {
	case api.AlertError:
		return s.Error
	case api.AlertWarning:
		return s.Warning
	default:
		return s.Info
	}
}
