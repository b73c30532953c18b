package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/boss/internal/errors"
	"github.com/felixgeelhaar/boss/internal/session"
)

// Login form messages
const (
	MessageInvalidCredentials = "Invalid email or password"
	MessageLoginFailed        = "Login failed"
	MessageSigningIn          = "Signing in..."
)

type loginResultMsg struct {
	err error
}

type loginFields struct {
	email    string
	password string
}

// loginView is the public login route. It submits through the session
// controller; the controller navigates away on success.
type loginView struct {
	ctx        context.Context
	ctrl       Session
	styles     Styles
	fields     *loginFields
	form       *huh.Form
	submitting bool
	errText    string
}

func newLoginView(ctx context.Context, ctrl Session, styles Styles) loginView {
	v := loginView{
		ctx:    ctx,
		ctrl:   ctrl,
		styles: styles,
		fields: &loginFields{},
	}
	v.form = v.newForm()
	return v
}

func (v loginView) newForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			emailField(&v.fields.email),
			passwordField(&v.fields.password),
		),
	).WithShowHelp(false)
}

// reset clears the password and any error, keeping the typed email
func (v loginView) reset() loginView {
	v.fields.password = ""
	v.submitting = false
	v.errText = ""
	v.form = v.newForm()
	return v
}

func (v loginView) Init() tea.Cmd {
	return v.form.Init()
}

func (v loginView) Update(msg tea.Msg) (loginView, tea.Cmd) {
	if result, ok := msg.(loginResultMsg); ok {
		v.submitting = false
		if result.err == nil {
			v.fields.password = ""
			v.errText = ""
			return v, nil
		}
		v.errText = loginErrorText(result.err)
		v.fields.password = ""
		v.form = v.newForm()
		return v, v.form.Init()
	}

	if v.submitting {
		return v, nil
	}

	model, cmd := v.form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		v.form = f
	}

	if v.form.State != huh.StateCompleted {
		return v, cmd
	}

	creds := session.Credentials{
		Email:    strings.TrimSpace(v.fields.email),
		Password: v.fields.password,
	}
	if err := creds.Validate(); err != nil {
		v.errText = err.Error()
		if e, ok := errors.As(err); ok {
			v.errText = e.Message
		}
		v.form = v.newForm()
		return v, v.form.Init()
	}

	v.submitting = true
	v.errText = ""
	ctx, ctrl := v.ctx, v.ctrl
	return v, func() tea.Msg {
		return loginResultMsg{err: ctrl.Login(ctx, creds)}
	}
}

// loginErrorText distinguishes rejected credentials from every other failure
func loginErrorText(err error) string {
	if session.IsInvalidCredentials(err) || errors.Is(err, errors.KindUnauthorized) {
		return MessageInvalidCredentials
	}
	if e, ok := errors.As(err); ok && e.Message != "" {
		return MessageLoginFailed + ": " + e.Message
	}
	return MessageLoginFailed
}

func (v loginView) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Sign in"))
	b.WriteString("\n")

	if v.submitting {
		b.WriteString(v.styles.Muted.Render(MessageSigningIn))
	} else {
		b.WriteString(v.form.View())
	}

	if v.errText != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Error.Render(v.errText))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(v.styles.Border.Render(b.String()))
}
