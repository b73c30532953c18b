package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/boss/internal/errors"
)

// placeholderView stands in for routes the back office does not serve yet
type placeholderView struct {
	title   string
	message string
	styles  Styles
}

func newPlaceholderView(title, message string, styles Styles) placeholderView {
	return placeholderView{title: title, message: message, styles: styles}
}

func (v placeholderView) Init() tea.Cmd { return nil }

func (v placeholderView) Update(tea.Msg) (tea.Model, tea.Cmd) { return v, nil }

func (v placeholderView) View() string {
	return v.styles.Title.Render(v.title) + "\n" + v.styles.Muted.Render(v.message)
}

// errorText is the operator-facing part of err
func errorText(err error) string {
	if e, ok := errors.As(err); ok && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
