package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/boss/internal/session"
)

// Events carries session transitions and navigation requests from the
// session controller into the bubbletea program. It implements
// session.Navigator.
type Events struct {
	ch chan tea.Msg
}

// NewEvents creates an event channel
func NewEvents() *Events {
	return &Events{ch: make(chan tea.Msg, 32)}
}

// Navigate implements session.Navigator
func (e *Events) Navigate(route string) {
	e.send(navigateMsg{route: route})
}

// Publish forwards a session snapshot; suitable for Controller.Subscribe
func (e *Events) Publish(snap session.Snapshot) {
	e.send(sessionMsg{snap: snap})
}

func (e *Events) send(msg tea.Msg) {
	select {
	case e.ch <- msg:
	default:
		// the program is not draining; a later snapshot supersedes this one
	}
}

// wait returns a command that delivers the next event
func (e *Events) wait() tea.Cmd {
	return func() tea.Msg {
		return <-e.ch
	}
}

type navigateMsg struct {
	route string
}

type sessionMsg struct {
	snap session.Snapshot
}
