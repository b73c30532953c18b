// Package notify delivers short user-facing notifications ("toasts").
//
// The API client and the session controller report outcomes through a
// Notifier; the CLI prints them to stderr and the console shows them in a
// toast stack.
package notify

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Level is the severity of a notification
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notifier receives user-facing notifications.
// Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(level Level, message string)
}

// Func adapts a plain function to Notifier
type Func func(level Level, message string)

// Notify calls f
func (f Func) Notify(level Level, message string) {
	f(level, message)
}

// Discard drops every notification
var Discard Notifier = Func(func(Level, string) {})

// Multi fans a notification out to several notifiers
func Multi(notifiers ...Notifier) Notifier {
	return Func(func(level Level, message string) {
		for _, n := range notifiers {
			if n != nil {
				n.Notify(level, message)
			}
		}
	})
}

// Printer writes styled notification lines to a writer
type Printer struct {
	mu     sync.Mutex
	w      io.Writer
	styles map[Level]lipgloss.Style
}

// NewPrinter creates a Printer writing to w
func NewPrinter(w io.Writer) *Printer {
	return &Printer{
		w: w,
		styles: map[Level]lipgloss.Style{
			LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
			LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
			LevelWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
			LevelError:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		},
	}
}

// Notify writes one line for the notification
func (p *Printer) Notify(level Level, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, p.styles[level].Render(Icon(level)+" "+message))
}

// Icon returns the glyph shown in front of a notification
func Icon(level Level) string {
	switch level {
	case LevelSuccess:
		return "✓"
	case LevelWarning:
		return "!"
	case LevelError:
		return "✗"
	default:
		return "i"
	}
}

// Toast is a notification as it was received
type Toast struct {
	Level   Level
	Message string
	At      time.Time
}

// Recorder keeps every notification; useful in tests
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

// Notify records the notification
func (r *Recorder) Notify(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, Toast{Level: level, Message: message, At: time.Now()})
}

// Toasts returns a copy of the recorded notifications
func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Toast, len(r.toasts))
	copy(out, r.toasts)
	return out
}

// Count returns how many notifications of the given level were recorded
func (r *Recorder) Count(level Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.toasts {
		if t.Level == level {
			n++
		}
	}
	return n
}

// Reset forgets all recorded notifications
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = nil
}
