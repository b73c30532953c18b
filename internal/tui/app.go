// Package tui implements the interactive BOSS console and the terminal
// prompts used by the CLI.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/boss/internal/api"
	"github.com/felixgeelhaar/boss/internal/gate"
	"github.com/felixgeelhaar/boss/internal/notify"
	"github.com/felixgeelhaar/boss/internal/session"
)

// Console routes
const (
	RouteLogin     = session.RouteLogin
	RouteDashboard = session.RouteHome
	RouteMembers   = "/members"
	RoutePayments  = "/payments"
	RouteReports   = "/reports"
)

type navEntry struct {
	route string
	label string
}

var navigation = []navEntry{
	{RouteDashboard, "Dashboard"},
	{RouteMembers, "Members"},
	{RoutePayments, "Payments"},
	{RouteReports, "Reports"},
}

// Session is the part of the session controller the console needs
type Session interface {
	gate.StateSource
	Bootstrap(ctx context.Context) error
	Login(ctx context.Context, creds session.Credentials) error
	Logout()
	Subscribe(fn func(session.Snapshot)) (unsubscribe func())
}

// Backend is the data the console views read and change
type Backend interface {
	DashboardStats(ctx context.Context) (*api.DashboardStats, error)
	MemberStats(ctx context.Context) (*api.MemberStats, error)
	ListMembers(ctx context.Context, params api.ListMembersParams) (*api.ListResponse[api.Member], error)
	UpdateMember(ctx context.Context, id int, in api.MemberUpdate) (*api.Member, error)
	DeleteMember(ctx context.Context, id int) error
}

// appKeyMap defines the global keyboard shortcuts
type appKeyMap struct {
	Quit    key.Binding
	Next    key.Binding
	Prev    key.Binding
	Refresh key.Binding
	Logout  key.Binding
}

var appKeys = appKeyMap{
	Quit:    key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	Next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
	Prev:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Logout:  key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
}

// scoped is implemented by results that belong to one visit of a route.
// Results from an earlier visit are dropped.
type scoped interface {
	viewSeq() int
}

// inputCapturer is implemented by views that are currently reading text
type inputCapturer interface {
	capturesInput() bool
}

// enteredMsg is sent to a view right after it becomes active
type enteredMsg struct{}

type toastTickMsg time.Time

type bootstrapMsg struct {
	err error
}

// App is the root console model
type App struct {
	ctx    context.Context
	ctrl   Session
	data   Backend
	events *Events
	toasts *notify.Queue
	styles Styles

	snap   session.Snapshot
	route  string
	seq    int
	active tea.Model
	login  loginView

	width    int
	height   int
	quitting bool
}

// NewApp creates the console. events must be the navigator the controller
// was created with and toasts the queue its notifier writes to.
func NewApp(ctx context.Context, ctrl Session, data Backend, events *Events, toasts *notify.Queue) *App {
	styles := DefaultStyles()
	a := &App{
		ctx:    ctx,
		ctrl:   ctrl,
		data:   data,
		events: events,
		toasts: toasts,
		styles: styles,
		snap:   ctrl.Snapshot(),
		login:  newLoginView(ctx, ctrl, styles),
	}
	a.route = RouteDashboard
	a.active = a.newView(RouteDashboard)
	return a
}

// Route returns the active route
func (a *App) Route() string {
	return a.route
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	a.ctrl.Subscribe(a.events.Publish)

	return tea.Batch(
		a.events.wait(),
		a.bootstrap(),
		a.active.Init(),
		toastTick(),
	)
}

func (a *App) bootstrap() tea.Cmd {
	return func() tea.Msg {
		return bootstrapMsg{err: a.ctrl.Bootstrap(a.ctx)}
	}
}

func toastTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return toastTickMsg(t) })
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.route == RouteLogin {
			return a.updateLogin(msg)
		}
		return a.updateActive(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.quitting = true
			return a, tea.Quit
		}
		if a.route == RouteLogin {
			return a.updateLogin(msg)
		}
		if !a.activeCapturesInput() {
			if cmd, handled := a.handleKey(msg); handled {
				return a, cmd
			}
		}
		return a.updateActive(msg)

	case sessionMsg:
		a.snap = msg.snap
		cmds := []tea.Cmd{a.events.wait()}
		switch {
		case a.snap.State == session.StateAnonymous && a.route != RouteLogin:
			cmds = append(cmds, a.navigate(RouteLogin))
		case a.snap.IsAuthenticated() && a.route == RouteLogin:
			cmds = append(cmds, a.navigate(RouteDashboard))
		case a.route != RouteLogin:
			_, cmd := a.updateActive(msg)
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case navigateMsg:
		return a, tea.Batch(a.events.wait(), a.navigate(msg.route))

	case gate.RedirectMsg:
		return a, a.navigate(msg.Route)

	case bootstrapMsg:
		return a, nil

	case toastTickMsg:
		return a, toastTick()

	case loginResultMsg:
		return a.updateLogin(msg)
	}

	if s, ok := msg.(scoped); ok && s.viewSeq() != a.seq {
		return a, nil
	}
	if a.route == RouteLogin {
		return a.updateLogin(msg)
	}
	return a.updateActive(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, appKeys.Quit):
		a.quitting = true
		return tea.Quit, true
	case key.Matches(msg, appKeys.Next):
		return a.navigate(a.neighbour(1)), true
	case key.Matches(msg, appKeys.Prev):
		return a.navigate(a.neighbour(-1)), true
	case key.Matches(msg, appKeys.Refresh):
		return a.reload(), true
	case key.Matches(msg, appKeys.Logout):
		a.ctrl.Logout()
		return nil, true
	}

	if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		if i := int(s[0] - '1'); i < len(navigation) {
			return a.navigate(navigation[i].route), true
		}
	}
	return nil, false
}

func (a *App) neighbour(step int) string {
	for i, entry := range navigation {
		if entry.route == a.route {
			return navigation[(i+step+len(navigation))%len(navigation)].route
		}
	}
	return RouteDashboard
}

func (a *App) activeCapturesInput() bool {
	inner := a.active
	if gm, ok := inner.(gate.Model); ok {
		inner = gm.Inner()
	}
	if c, ok := inner.(inputCapturer); ok {
		return c.capturesInput()
	}
	return false
}

// navigate activates route. Navigating to the active route is a no-op.
func (a *App) navigate(route string) tea.Cmd {
	if route == a.route && a.active != nil {
		return nil
	}
	if route == RouteLogin {
		a.route = RouteLogin
		a.seq++
		a.active = nil
		a.login = a.login.reset()
		return a.login.Init()
	}
	return a.enter(route)
}

// reload re-creates the active view, refetching its data
func (a *App) reload() tea.Cmd {
	if a.route == RouteLogin {
		return nil
	}
	return a.enter(a.route)
}

func (a *App) enter(route string) tea.Cmd {
	a.route = route
	a.seq++
	a.active = a.newView(route)

	initCmd := a.active.Init()
	var cmd tea.Cmd
	a.active, cmd = a.active.Update(enteredMsg{})
	if a.width > 0 {
		var sizeCmd tea.Cmd
		a.active, sizeCmd = a.active.Update(tea.WindowSizeMsg{Width: a.contentWidth(), Height: a.height})
		cmd = tea.Batch(cmd, sizeCmd)
	}
	return tea.Batch(initCmd, cmd)
}

func (a *App) newView(route string) tea.Model {
	var inner tea.Model
	switch route {
	case RouteMembers:
		inner = newMembersView(a.ctx, a.data, a.notifier(), a.seq, a.styles)
	case RoutePayments:
		inner = newPlaceholderView("Payments", "Payment processing is coming soon.", a.styles)
	case RouteReports:
		inner = newPlaceholderView("Reports", "Reports are coming soon.", a.styles)
	default:
		inner = newDashboardView(a.ctx, a.data, a.seq, a.styles)
	}
	return gate.NewModel(a.ctrl, inner)
}

func (a *App) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.active == nil {
		return a, nil
	}
	var cmd tea.Cmd
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		size.Width = a.contentWidth()
		msg = size
	}
	a.active, cmd = a.active.Update(msg)
	return a, cmd
}

func (a *App) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.login, cmd = a.login.Update(msg)
	return a, cmd
}

func (a *App) contentWidth() int {
	w := a.width - lipgloss.Width(a.styles.Sidebar.Render("")) - 4
	if w < 40 {
		return a.width
	}
	return w
}

// View implements tea.Model
func (a *App) View() string {
	if a.quitting {
		return ""
	}

	var body string
	if a.route == RouteLogin {
		body = a.login.View()
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			a.renderSidebar(),
			a.styles.ContentPane.Render(a.active.View()),
		)
	}

	parts := []string{a.renderHeader()}
	if toasts := a.renderToasts(); toasts != "" {
		parts = append(parts, toasts)
	}
	parts = append(parts, body, a.renderHelpLine())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a *App) renderHeader() string {
	title := a.styles.Title.Render("BOSS Back Office")
	if !a.snap.IsAuthenticated() {
		return title
	}
	u := a.snap.User
	name := u.FullName
	if name == "" {
		name = u.Email
	}
	who := a.styles.Muted.Render(fmt.Sprintf("%s <%s> · %s", name, u.Email, u.Role))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", who)
}

func (a *App) renderSidebar() string {
	var b strings.Builder
	for i, entry := range navigation {
		label := fmt.Sprintf("%d %s", i+1, entry.label)
		if entry.route == a.route {
			b.WriteString(a.styles.NavActive.Render(label))
		} else {
			b.WriteString(a.styles.NavItem.Render(label))
		}
		b.WriteString("\n")
	}
	return a.styles.Sidebar.Render(strings.TrimRight(b.String(), "\n"))
}

func (a *App) renderToasts() string {
	if a.toasts == nil {
		return ""
	}
	active := a.toasts.Active()
	if len(active) == 0 {
		return ""
	}
	lines := make([]string, 0, len(active))
	for _, t := range active {
		style := a.styles.Toast.BorderForeground(toastColor(t.Level))
		lines = append(lines, style.Render(notify.Icon(t.Level)+" "+t.Message))
	}
	return lipgloss.JoinVertical(lipgloss.Right, lines...)
}

func (a *App) renderHelpLine() string {
	if a.route == RouteLogin {
		return a.styles.Help.Render(a.styles.Key.Render("enter") + " " + a.styles.KeyDesc.Render("submit") + "  " +
			a.styles.Key.Render("ctrl+c") + " " + a.styles.KeyDesc.Render("quit"))
	}
	bindings := []key.Binding{appKeys.Next, appKeys.Refresh, appKeys.Logout, appKeys.Quit}
	parts := []string{a.styles.Key.Render("1-4") + " " + a.styles.KeyDesc.Render("switch")}
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, a.styles.Key.Render(h.Key)+" "+a.styles.KeyDesc.Render(h.Desc))
	}
	if hv, ok := a.innerView().(interface{ helpLine() string }); ok {
		if extra := hv.helpLine(); extra != "" {
			parts = append(parts, extra)
		}
	}
	return a.styles.Help.Render(strings.Join(parts, "  "))
}

func (a *App) innerView() tea.Model {
	if gm, ok := a.active.(gate.Model); ok {
		return gm.Inner()
	}
	return a.active
}

func (a *App) notifier() notify.Notifier {
	if a.toasts == nil {
		return notify.Discard
	}
	return a.toasts
}
