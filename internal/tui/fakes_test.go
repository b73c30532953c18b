package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/boss/internal/api"
	"github.com/felixgeelhaar/boss/internal/session"
)

var operator = &api.User{ID: 2, Email: "op@example.com", FullName: "Op Erator", Role: api.RoleOperator, IsActive: true}

type fakeSession struct {
	snap    session.Snapshot
	logins  []session.Credentials
	loginFn func(session.Credentials) error
	logouts int
}

func (f *fakeSession) Snapshot() session.Snapshot { return f.snap }
func (f *fakeSession) Bootstrap(context.Context) error { return nil }
func (f *fakeSession) Subscribe(func(session.Snapshot)) func() { return func() {} }

func (f *fakeSession) Login(_ context.Context, creds session.Credentials) error {
	f.logins = append(f.logins, creds)
	if f.loginFn != nil {
		return f.loginFn(creds)
	}
	return nil
}

func (f *fakeSession) Logout() {
	f.logouts++
	f.snap = session.Snapshot{State: session.StateAnonymous}
}

func authenticated() *fakeSession {
	return &fakeSession{snap: session.Snapshot{State: session.StateAuthenticated, User: operator}}
}

type fakeBackend struct {
	stats       *api.DashboardStats
	memberStats *api.MemberStats
	page        *api.ListResponse[api.Member]
	err         error

	params  []api.ListMembersParams
	updates map[int]api.MemberUpdate
	deleted []int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{updates: map[int]api.MemberUpdate{}}
}

func (f *fakeBackend) DashboardStats(context.Context) (*api.DashboardStats, error) {
	return f.stats, f.err
}

func (f *fakeBackend) MemberStats(context.Context) (*api.MemberStats, error) {
	return f.memberStats, f.err
}

func (f *fakeBackend) ListMembers(_ context.Context, params api.ListMembersParams) (*api.ListResponse[api.Member], error) {
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	if f.page == nil {
		return &api.ListResponse[api.Member]{}, nil
	}
	return f.page, nil
}

func (f *fakeBackend) UpdateMember(_ context.Context, id int, in api.MemberUpdate) (*api.Member, error) {
	f.updates[id] = in
	return &api.Member{ID: id}, f.err
}

func (f *fakeBackend) DeleteMember(_ context.Context, id int) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run executes cmd and flattens batches. Only pass commands that do not
// sleep; ticks would block the test.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}
