package inbox

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/venuebook/internal/keys"
	"github.com/nhle/venuebook/internal/model"
	"github.com/nhle/venuebook/internal/theme"
)

// Manager reads and updates one user's notifications.
type Manager interface {
	List(ctx context.Context, recipientID string, unreadOnly bool) ([]model.Notification, error)
	MarkRead(ctx context.Context, id, recipientID string) (*model.Notification, error)
	Delete(ctx context.Context, id, recipientID string) error
}

// CloseMsg signals the parent to close the inbox.
type CloseMsg struct{}

// ChangedMsg signals that a notification was read or dismissed.
type ChangedMsg struct{}

type inboxMode int

const (
	modeList inboxMode = iota
	modeConfirmDismiss
)

type loadedMsg struct {
	notifications []model.Notification
	err           error
}

type updatedMsg struct {
	status string
	err    error
}

// Model is the Bubble Tea model for the notification inbox.
type Model struct {
	mode          inboxMode
	manager       Manager
	keys          *keys.KeyMap
	userID        string
	notifications []model.Notification
	selectedIdx   int
	unreadOnly    bool
	confirmForm   *huh.Form
	confirm       *bool
	statusMsg     string
	width         int
	height        int
}

// New creates an inbox for userID.
func New(mgr Manager, k *keys.KeyMap, userID string, width, height int) Model {
	return Model{
		mode:    modeList,
		manager: mgr,
		keys:    k,
		userID:  userID,
		confirm: new(bool),
		width:   width, height: height,
	}
}

// Load fetches the notifications.
func (m Model) Load() tea.Cmd {
	mgr, user, unreadOnly := m.manager, m.userID, m.unreadOnly
	if mgr == nil {
		return nil
	}
	return func() tea.Msg {
		ns, err := mgr.List(context.Background(), user, unreadOnly)
		return loadedMsg{notifications: ns, err: err}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.notifications = msg.notifications
		if m.selectedIdx >= len(m.notifications) {
			m.selectedIdx = max(len(m.notifications)-1, 0)
		}
		return m, nil

	case updatedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.statusMsg = msg.status
		}
		m.mode = modeList
		return m, tea.Batch(m.Load(), func() tea.Msg { return ChangedMsg{} })

	case tea.KeyMsg:
		if m.mode == modeConfirmDismiss {
			return m.updateConfirm(msg)
		}
		return m.handleListKey(msg)
	}

	if m.mode == modeConfirmDismiss {
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(m.notifications) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.notifications)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.notifications) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.notifications) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleAll):
		m.unreadOnly = !m.unreadOnly
		m.selectedIdx = 0
		return m, m.Load()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.Load()

	case key.Matches(msg, m.keys.Select):
		n, ok := m.Selected()
		if !ok || n.Read {
			return m, nil
		}
		return m, m.markRead(n.ID)

	case key.Matches(msg, m.keys.Delete):
		if _, ok := m.Selected(); !ok {
			return m, nil
		}
		*m.confirm = false
		m.confirmForm = m.buildConfirmForm()
		m.mode = modeConfirmDismiss
		return m, m.confirmForm.Init()
	}
	return m, nil
}

func (m Model) buildConfirmForm() *huh.Form {
	n, _ := m.Selected()
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Dismiss %q?", n.Title)).
				Affirmative("Yes, dismiss").
				Negative("Keep").
				Value(m.confirm),
		),
	).WithKeyMap(confirmKeyMap()).WithWidth(m.formWidth())
}

func confirmKeyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "keep"))
	return km
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		m.mode = modeList
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	switch m.confirmForm.State {
	case huh.StateCompleted:
		n, ok := m.Selected()
		if *m.confirm && ok {
			return m, m.dismiss(n.ID)
		}
		m.mode = modeList
		return m, nil
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

// Selected returns the highlighted notification.
func (m Model) Selected() (model.Notification, bool) {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.notifications) {
		return model.Notification{}, false
	}
	return m.notifications[m.selectedIdx], true
}

// Len returns the number of listed notifications.
func (m Model) Len() int { return len(m.notifications) }

// Confirming reports whether the dismiss prompt is open.
func (m Model) Confirming() bool { return m.mode == modeConfirmDismiss }

// View renders the inbox.
func (m Model) View() string {
	if m.mode == modeConfirmDismiss && m.confirmForm != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.confirmForm.View())
	}

	var b strings.Builder

	title := "Notifications"
	if m.unreadOnly {
		title += " (unread)"
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).Render(title))
	b.WriteString("\n\n")

	if len(m.notifications) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true).Render("Nothing here."))
	}
	for i, n := range m.notifications {
		marker := "  "
		if !n.Read {
			marker = "● "
		}
		label := fmt.Sprintf("%s%s  %s  from %s",
			marker, n.CreatedAt.UTC().Format("Jan 02 15:04"), n.Title, n.SenderID)
		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(label))
		} else {
			b.WriteString(theme.ListItemStyle.Render(label))
		}
		b.WriteString("\n")
	}

	if n, ok := m.Selected(); ok {
		b.WriteString("\n")
		b.WriteString(theme.PanelStyle.Width(max(m.width-8, 20)).Render(n.Message))
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) markRead(id string) tea.Cmd {
	mgr, user := m.manager, m.userID
	return func() tea.Msg {
		_, err := mgr.MarkRead(context.Background(), id, user)
		return updatedMsg{status: "Marked as read", err: err}
	}
}

func (m Model) dismiss(id string) tea.Cmd {
	mgr, user := m.manager, m.userID
	return func() tea.Msg {
		err := mgr.Delete(context.Background(), id, user)
		return updatedMsg{status: "Dismissed", err: err}
	}
}
