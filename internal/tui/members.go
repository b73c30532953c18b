package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/boss/internal/api"
	"github.com/felixgeelhaar/boss/internal/notify"
)

// MembersPageSize is the number of members shown per page
const MembersPageSize = 10

// Member action messages
const (
	MessageMemberUpdated = "Member updated"
	MessageMemberDeleted = "Member deleted"
)

// statusFilters cycles through "all" and then every status
var statusFilters = append([]api.MemberStatus{""}, api.MemberStatuses...)

type memberKeyMap struct {
	Filter   key.Binding
	Next     key.Binding
	Prev     key.Binding
	Search   key.Binding
	Activate key.Binding
	Suspend  key.Binding
	Withdraw key.Binding
	Delete   key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
	Submit   key.Binding
}

var memberKeys = memberKeyMap{
	Filter:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "status filter")),
	Next:     key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n/p", "page")),
	Prev:     key.NewBinding(key.WithKeys("p", "left")),
	Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Activate: key.NewBinding(key.WithKeys("A"), key.WithHelp("A/U/W", "activate/suspend/withdraw")),
	Suspend:  key.NewBinding(key.WithKeys("U")),
	Withdraw: key.NewBinding(key.WithKeys("W")),
	Delete:   key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete")),
	Confirm:  key.NewBinding(key.WithKeys("y", "Y")),
	Cancel:   key.NewBinding(key.WithKeys("esc")),
	Submit:   key.NewBinding(key.WithKeys("enter")),
}

type membersLoadedMsg struct {
	seq  int
	page *api.ListResponse[api.Member]
	err  error
}

func (m membersLoadedMsg) viewSeq() int { return m.seq }

type memberChangedMsg struct {
	seq     int
	message string
	err     error
}

func (m memberChangedMsg) viewSeq() int { return m.seq }

// memberAction is a pending mutation waiting for confirmation
type memberAction struct {
	member api.Member
	status api.MemberStatus
	delete bool
}

func (a memberAction) prompt() string {
	if a.delete {
		return fmt.Sprintf("Delete %s (%s)? [y/N]", a.member.FullName(), a.member.MemberCode)
	}
	return fmt.Sprintf("Set %s (%s) to %s? [y/N]", a.member.FullName(), a.member.MemberCode, a.status)
}

// membersView lists members page by page with search and status filter
type membersView struct {
	ctx      context.Context
	data     Backend
	notifier notify.Notifier
	seq      int
	styles   Styles

	table     table.Model
	search    textinput.Model
	searching bool
	query     string
	filter    int
	page      int
	total     int
	items     []api.Member
	loading   bool
	err       error
	confirm   *memberAction
}

func newMembersView(ctx context.Context, data Backend, notifier notify.Notifier, seq int, styles Styles) membersView {
	if notifier == nil {
		notifier = notify.Discard
	}

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Code", Width: 10},
			{Title: "Name", Width: 20},
			{Title: "Email", Width: 26},
			{Title: "Status", Width: 10},
			{Title: "Level", Width: 6},
			{Title: "Sales", Width: 12},
		}),
		table.WithFocused(true),
		table.WithHeight(MembersPageSize),
	)

	search := textinput.New()
	search.Placeholder = "name, code or email"
	search.Prompt = "/ "
	search.CharLimit = 100

	return membersView{
		ctx:      ctx,
		data:     data,
		notifier: notifier,
		seq:      seq,
		styles:   styles,
		table:    t,
		search:   search,
		loading:  true,
	}
}

func (v membersView) Init() tea.Cmd {
	return v.load()
}

func (v membersView) params() api.ListMembersParams {
	return api.ListMembersParams{
		Skip:   v.page * MembersPageSize,
		Limit:  MembersPageSize,
		Search: v.query,
		Status: statusFilters[v.filter],
	}
}

func (v membersView) load() tea.Cmd {
	ctx, data, seq, params := v.ctx, v.data, v.seq, v.params()
	return func() tea.Msg {
		page, err := data.ListMembers(ctx, params)
		return membersLoadedMsg{seq: seq, page: page, err: err}
	}
}

func (v membersView) capturesInput() bool {
	return v.searching || v.confirm != nil
}

func (v membersView) helpLine() string {
	if v.searching {
		return v.styles.Key.Render("enter") + " " + v.styles.KeyDesc.Render("search") + "  " +
			v.styles.Key.Render("esc") + " " + v.styles.KeyDesc.Render("cancel")
	}
	bindings := []key.Binding{memberKeys.Filter, memberKeys.Next, memberKeys.Search, memberKeys.Activate, memberKeys.Delete}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, v.styles.Key.Render(h.Key)+" "+v.styles.KeyDesc.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}

func (v membersView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case membersLoadedMsg:
		v.loading = false
		v.err = msg.err
		if msg.err != nil {
			v.items = nil
			v.table.SetRows(nil)
			return v, nil
		}
		v.items = msg.page.Items
		v.total = msg.page.Total
		v.table.SetRows(memberRows(v.items))
		v.table.SetCursor(0)
		return v, nil

	case memberChangedMsg:
		if msg.err != nil {
			// the client has already reported the failure
			return v, nil
		}
		v.notifier.Notify(notify.LevelSuccess, msg.message)
		v.loading = true
		return v, v.load()

	case tea.KeyMsg:
		switch {
		case v.confirm != nil:
			return v.updateConfirm(msg)
		case v.searching:
			return v.updateSearch(msg)
		}
		return v.updateKeys(msg)
	}

	return v, nil
}

func (v membersView) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := *v.confirm
	v.confirm = nil
	if !key.Matches(msg, memberKeys.Confirm) {
		return v, nil
	}
	return v, v.apply(action)
}

func (v membersView) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, memberKeys.Submit):
		v.searching = false
		v.search.Blur()
		v.query = strings.TrimSpace(v.search.Value())
		v.page = 0
		v.loading = true
		return v, v.load()
	case key.Matches(msg, memberKeys.Cancel):
		v.searching = false
		v.search.Blur()
		v.search.SetValue(v.query)
		return v, nil
	}

	var cmd tea.Cmd
	v.search, cmd = v.search.Update(msg)
	return v, cmd
}

func (v membersView) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, memberKeys.Filter):
		v.filter = (v.filter + 1) % len(statusFilters)
		v.page = 0
		v.loading = true
		return v, v.load()

	case key.Matches(msg, memberKeys.Next):
		if (v.page+1)*MembersPageSize >= v.total {
			return v, nil
		}
		v.page++
		v.loading = true
		return v, v.load()

	case key.Matches(msg, memberKeys.Prev):
		if v.page == 0 {
			return v, nil
		}
		v.page--
		v.loading = true
		return v, v.load()

	case key.Matches(msg, memberKeys.Search):
		v.searching = true
		return v, v.search.Focus()

	case key.Matches(msg, memberKeys.Activate):
		return v.ask(memberAction{status: api.StatusActive}), nil
	case key.Matches(msg, memberKeys.Suspend):
		return v.ask(memberAction{status: api.StatusSuspended}), nil
	case key.Matches(msg, memberKeys.Withdraw):
		return v.ask(memberAction{status: api.StatusWithdrawn}), nil
	case key.Matches(msg, memberKeys.Delete):
		return v.ask(memberAction{delete: true}), nil
	}

	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, cmd
}

// ask queues action against the selected member
func (v membersView) ask(action memberAction) membersView {
	member, ok := v.selected()
	if !ok {
		return v
	}
	action.member = member
	v.confirm = &action
	return v
}

func (v membersView) selected() (api.Member, bool) {
	i := v.table.Cursor()
	if i < 0 || i >= len(v.items) {
		return api.Member{}, false
	}
	return v.items[i], true
}

func (v membersView) apply(action memberAction) tea.Cmd {
	ctx, data, seq := v.ctx, v.data, v.seq
	id := action.member.ID

	if action.delete {
		return func() tea.Msg {
			err := data.DeleteMember(ctx, id)
			return memberChangedMsg{seq: seq, message: MessageMemberDeleted, err: err}
		}
	}

	status := action.status
	return func() tea.Msg {
		_, err := data.UpdateMember(ctx, id, api.MemberUpdate{Status: &status})
		return memberChangedMsg{seq: seq, message: MessageMemberUpdated, err: err}
	}
}

func memberRows(members []api.Member) []table.Row {
	rows := make([]table.Row, 0, len(members))
	for _, m := range members {
		rows = append(rows, table.Row{
			m.MemberCode,
			m.FullName(),
			m.Email,
			string(m.Status),
			fmt.Sprintf("%d", m.OrganizationLevel),
			formatYen(m.TotalSales),
		})
	}
	return rows
}

func (v membersView) pages() int {
	if v.total == 0 {
		return 1
	}
	return (v.total + MembersPageSize - 1) / MembersPageSize
}

func (v membersView) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Members"))
	b.WriteString("\n")

	filter := "all"
	if s := statusFilters[v.filter]; s != "" {
		filter = string(s)
	}
	summary := fmt.Sprintf("Status: %s", filter)
	if v.query != "" {
		summary += fmt.Sprintf(" · Search: %q", v.query)
	}
	b.WriteString(v.styles.Muted.Render(summary))
	b.WriteString("\n")

	if v.searching {
		b.WriteString(v.search.View())
		b.WriteString("\n")
	}

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Could not load members: " + errorText(v.err)))
	case v.loading && v.items == nil:
		b.WriteString(v.styles.Muted.Render("Loading members..."))
	case len(v.items) == 0:
		b.WriteString(v.styles.Muted.Render("No members found."))
	default:
		b.WriteString(v.table.View())
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("Page %d of %d · %s members",
			v.page+1, v.pages(), formatCount(v.total))))
	}

	if v.confirm != nil {
		b.WriteString("\n")
		b.WriteString(v.styles.Warning.Render(v.confirm.prompt()))
	}

	return b.String()
}
