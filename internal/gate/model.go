package gate

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/boss/internal/session"
)

// RedirectMsg asks the application to navigate away from a gated view
type RedirectMsg struct {
	Route string
}

// Model gates a bubbletea model. The wrapped model is not initialized,
// updated or rendered until the session is authenticated.
type Model struct {
	src        StateSource
	inner      tea.Model
	spinner    spinner.Model
	text       string
	started    bool
	redirected bool
}

// NewModel wraps inner behind the session held by src
func NewModel(src StateSource, inner tea.Model) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

	return Model{
		src:     src,
		inner:   inner,
		spinner: s,
		text:    LoadingText,
	}
}

// Inner returns the wrapped model
func (m Model) Inner() tea.Model {
	return m.inner
}

// Decision returns the current gate decision
func (m Model) Decision() Decision {
	return Decide(m.src.Snapshot())
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.Decision() {
	case Loading:
		m.redirected = false
		if tick, ok := msg.(spinner.TickMsg); ok {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(tick)
			return m, cmd
		}
		return m, nil

	case Redirect:
		if m.redirected {
			return m, nil
		}
		m.redirected = true
		return m, func() tea.Msg { return RedirectMsg{Route: session.RouteLogin} }
	}

	m.redirected = false
	var cmds []tea.Cmd
	if !m.started {
		m.started = true
		cmds = append(cmds, m.inner.Init())
	}
	if _, ok := msg.(spinner.TickMsg); !ok {
		var cmd tea.Cmd
		m.inner, cmd = m.inner.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View implements tea.Model
func (m Model) View() string {
	switch m.Decision() {
	case Render:
		if !m.started {
			return m.spinner.View() + " " + m.text
		}
		return m.inner.View()
	case Redirect:
		return ""
	default:
		return m.spinner.View() + " " + m.text
	}
}
