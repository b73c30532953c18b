package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/boss/internal/api"
	"github.com/felixgeelhaar/boss/internal/notify"
)

func memberPage(total int, members ...api.Member) *api.ListResponse[api.Member] {
	return &api.ListResponse[api.Member]{Items: members, Total: total}
}

var (
	hanako = api.Member{ID: 7, MemberCode: "M0007", FamilyName: "Yamada", GivenName: "Hanako", Email: "hanako@example.com", Status: api.StatusActive, TotalSales: 120000}
	taro   = api.Member{ID: 9, MemberCode: "M0009", FamilyName: "Suzuki", GivenName: "Taro", Email: "taro@example.com", Status: api.StatusPending}
)

// loadedMembers returns a members view with its first page applied
func loadedMembers(t *testing.T, backend *fakeBackend, rec *notify.Recorder) membersView {
	t.Helper()

	v := newMembersView(context.Background(), backend, rec, 1, DefaultStyles())
	msgs := run(v.Init())
	require.Len(t, msgs, 1)

	model, _ := v.Update(msgs[0])
	return model.(membersView)
}

func press(t *testing.T, v membersView, msg tea.KeyMsg) (membersView, tea.Cmd) {
	t.Helper()
	model, cmd := v.Update(msg)
	return model.(membersView), cmd
}

func TestMembersFirstPage(t *testing.T) {
	backend := newFakeBackend()
	backend.page = memberPage(25, hanako, taro)

	v := loadedMembers(t, backend, &notify.Recorder{})

	require.Len(t, backend.params, 1)
	assert.Equal(t, api.ListMembersParams{Skip: 0, Limit: MembersPageSize}, backend.params[0])
	assert.Contains(t, v.View(), "M0007")
	assert.Contains(t, v.View(), "Yamada Hanako")
	assert.Contains(t, v.View(), "Page 1 of 3")
}

func TestMembersPaging(t *testing.T) {
	backend := newFakeBackend()
	backend.page = memberPage(25, hanako)
	v := loadedMembers(t, backend, &notify.Recorder{})

	v, cmd := press(t, v, runes("n"))
	run(cmd)
	assert.Equal(t, MembersPageSize, backend.params[len(backend.params)-1].Skip)

	v, cmd = press(t, v, runes("n"))
	run(cmd)
	assert.Equal(t, 2*MembersPageSize, backend.params[len(backend.params)-1].Skip)

	calls := len(backend.params)
	v, cmd = press(t, v, runes("n"))
	assert.Nil(t, cmd, "no page past the end")
	assert.Len(t, backend.params, calls)

	_, cmd = press(t, v, runes("p"))
	run(cmd)
	assert.Equal(t, MembersPageSize, backend.params[len(backend.params)-1].Skip)
}

func TestMembersStatusFilterCycles(t *testing.T) {
	backend := newFakeBackend()
	backend.page = memberPage(1, hanako)
	v := loadedMembers(t, backend, &notify.Recorder{})

	for _, want := range append(api.MemberStatuses, "") {
		var cmd tea.Cmd
		v, cmd = press(t, v, runes("s"))
		run(cmd)
		got := backend.params[len(backend.params)-1]
		assert.Equal(t, want, got.Status)
		assert.Zero(t, got.Skip)
	}
}

func TestMembersSearch(t *testing.T) {
	backend := newFakeBackend()
	backend.page = memberPage(1, hanako)
	v := loadedMembers(t, backend, &notify.Recorder{})

	v, _ = press(t, v, runes("/"))
	assert.True(t, v.capturesInput())

	v, _ = press(t, v, runes("yama"))
	v, cmd := press(t, v, tea.KeyMsg{Type: tea.KeyEnter})
	run(cmd)

	assert.False(t, v.capturesInput())
	assert.Equal(t, "yama", backend.params[len(backend.params)-1].Search)
	assert.Contains(t, v.View(), `Search: "yama"`)
}

func TestMembersSearchCancelKeepsQuery(t *testing.T) {
	backend := newFakeBackend()
	v := loadedMembers(t, backend, &notify.Recorder{})

	v, _ = press(t, v, runes("/"))
	v, _ = press(t, v, runes("abc"))
	v, cmd := press(t, v, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Nil(t, cmd)
	assert.False(t, v.capturesInput())
	assert.Empty(t, v.query)
	assert.Len(t, backend.params, 1)
}

func TestMembersDeleteConfirmed(t *testing.T) {
	backend := newFakeBackend()
	backend.page = memberPage(1, hanako)
	rec := &notify.Recorder{}
	v := loadedMembers(t, backend, rec)

	v, cmd := press(t, v, runes("D"))
	assert.Nil(t, cmd)
	assert.True(t, v.capturesInput())
	assert.Contains(t, v.View(), "Delete Yamada Hanako (M0007)?")

	v, cmd = press(t, v, runes("y"))
	msgs := run(cmd)
	require.Len(t, msgs, 1)
	assert.Equal(t, []int{hanako.ID}, backend.deleted)

	model, cmd := v.Update(msgs[0])
	require.NotNil(t, cmd, "list reloads after a change")
	assert.False(t, model.(membersView).capturesInput())

	toasts := rec.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.LevelSuccess, toasts[0].Level)
	assert.Equal(t, MessageMemberDeleted, toasts[0].Message)
}

func TestMembersActionCancelled(t *testing.T) {
	backend := newFakeBackend()
	backend.page = memberPage(1, hanako)
	v := loadedMembers(t, backend, &notify.Recorder{})

	v, _ = press(t, v, runes("W"))
	v, cmd := press(t, v, runes("n"))

	assert.Nil(t, cmd)
	assert.False(t, v.capturesInput())
	assert.Empty(t, backend.updates)
}

func TestMembersStatusChange(t *testing.T) {
	backend := newFakeBackend()
	backend.page = memberPage(2, hanako, taro)
	rec := &notify.Recorder{}
	v := loadedMembers(t, backend, rec)

	v, _ = press(t, v, tea.KeyMsg{Type: tea.KeyDown})
	v, _ = press(t, v, runes("U"))
	v, cmd := press(t, v, runes("y"))
	msgs := run(cmd)
	require.Len(t, msgs, 1)

	update, ok := backend.updates[taro.ID]
	require.True(t, ok)
	require.NotNil(t, update.Status)
	assert.Equal(t, api.StatusSuspended, *update.Status)

	v.Update(msgs[0])
	assert.Equal(t, 1, rec.Count(notify.LevelSuccess))
	assert.Equal(t, MessageMemberUpdated, rec.Toasts()[0].Message)
}

func TestMembersFailedChangeHasNoSuccessToast(t *testing.T) {
	backend := newFakeBackend()
	rec := &notify.Recorder{}
	v := loadedMembers(t, backend, rec)

	_, cmd := v.Update(memberChangedMsg{seq: 1, message: MessageMemberUpdated, err: assert.AnError})
	assert.Nil(t, cmd)
	assert.Zero(t, rec.Count(notify.LevelSuccess))
}

func TestMembersEmptyAndError(t *testing.T) {
	backend := newFakeBackend()
	v := loadedMembers(t, backend, &notify.Recorder{})
	assert.Contains(t, v.View(), "No members found.")

	model, _ := v.Update(membersLoadedMsg{seq: 1, err: assert.AnError})
	assert.Contains(t, model.View(), "Could not load members")
}
