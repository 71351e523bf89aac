package inbox

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/venuebook/internal/keys"
	"github.com/nhle/venuebook/internal/model"
)

type fakeManager struct {
	items      []model.Notification
	unreadOnly []bool
	read       []string
}

func (f *fakeManager) List(_ context.Context, _ string, unreadOnly bool) ([]model.Notification, error) {
	f.unreadOnly = append(f.unreadOnly, unreadOnly)
	var out []model.Notification
	for _, n := range f.items {
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeManager) MarkRead(_ context.Context, id, _ string) (*model.Notification, error) {
	f.read = append(f.read, id)
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Read = true
			return &f.items[i], nil
		}
	}
	return nil, model.ErrNotFound
}

func (f *fakeManager) Delete(context.Context, string, string) error { return nil }

func runCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())
	return m
}

func TestInboxMarksSelectedRead(t *testing.T) {
	mgr := &fakeManager{items: []model.Notification{
		{ID: "n1", Title: "Booking created", Read: true},
		{ID: "n2", Title: "New booking request"},
	}}
	m := New(mgr, keys.DefaultKeyMap(), "owner-1", 80, 20)
	m = runCmd(t, m, m.Load())
	assert.Equal(t, 2, m.Len())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "n2", sel.ID)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = m.Update(cmd())
	assert.Equal(t, []string{"n2"}, mgr.read)
	assert.Contains(t, m.View(), "Marked as read")

	// Already read: nothing to do.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestInboxTogglesUnreadOnly(t *testing.T) {
	mgr := &fakeManager{items: []model.Notification{
		{ID: "n1", Read: true},
		{ID: "n2"},
	}}
	m := New(mgr, keys.DefaultKeyMap(), "owner-1", 80, 20)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("H")})
	m = runCmd(t, m, cmd)
	assert.Equal(t, []bool{true}, mgr.unreadOnly)
	assert.Equal(t, 1, m.Len())
	assert.Contains(t, m.View(), "(unread)")
}

func TestInboxEscCloses(t *testing.T) {
	m := New(&fakeManager{}, keys.DefaultKeyMap(), "owner-1", 80, 20)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, CloseMsg{}, cmd())
}

func TestInboxDismissAsksFirst(t *testing.T) {
	mgr := &fakeManager{items: []model.Notification{{ID: "n1", Title: "Booking confirmed"}}}
	m := New(mgr, keys.DefaultKeyMap(), "requester-1", 80, 20)
	m = runCmd(t, m, m.Load())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("D")})
	assert.True(t, m.Confirming())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.Confirming())
}
