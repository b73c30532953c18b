// Package gate decides what a protected view may show for the current
// session: a neutral loading indicator, a redirect to login, or the view.
package gate

import (
	"github.com/felixgeelhaar/boss/internal/session"
)

// Decision is the outcome of evaluating a session against a protected view
type Decision int

const (
	// Loading means the session is not settled yet; show nothing protected
	Loading Decision = iota
	// Redirect means nobody is logged in
	Redirect
	// Render means the protected view may be shown
	Render
)

// String returns the string representation of the decision
func (d Decision) String() string {
	switch d {
	case Loading:
		return "loading"
	case Redirect:
		return "redirect"
	case Render:
		return "render"
	default:
		return "unknown"
	}
}

// StateSource exposes the current session
type StateSource interface {
	Snapshot() session.Snapshot
}

// Decide maps a session snapshot to a decision. Render is only returned for
// an authenticated, settled session.
func Decide(s session.Snapshot) Decision {
	switch {
	case s.IsLoading():
		return Loading
	case s.IsAuthenticated():
		return Render
	default:
		return Redirect
	}
}

// LoadingText is the default neutral loading indicator
const LoadingText = "Loading..."

// RenderFunc produces a view
type RenderFunc func() string

type options struct {
	loading  RenderFunc
	redirect func()
}

// Option configures Wrap
type Option func(*options)

// WithLoading replaces the loading indicator
func WithLoading(fn RenderFunc) Option {
	return func(o *options) { o.loading = fn }
}

// WithRedirect sets the hook run when the session is anonymous
func WithRedirect(fn func()) Option {
	return func(o *options) { o.redirect = fn }
}

// Wrap gates protected behind the session held by src
func Wrap(src StateSource, protected RenderFunc, opts ...Option) RenderFunc {
	o := options{
		loading:  func() string { return LoadingText },
		redirect: func() {},
	}
	for _, opt := range opts {
		opt(&o)
	}

	return func() string {
		switch Decide(src.Snapshot()) {
		case Render:
			return protected()
		case Redirect:
			o.redirect()
			return ""
		default:
			return o.loading()
		}
	}
}
