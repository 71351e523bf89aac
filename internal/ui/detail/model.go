// Package detail shows a single reservation and the notifications the
// current user received about it.
package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/venuebook/internal/keys"
	"github.com/nhle/venuebook/internal/model"
	"github.com/nhle/venuebook/internal/theme"
)

// BackMsg signals the parent to navigate back to the agenda.
type BackMsg struct{}

// LoadedMsg carries the reservation to display.
type LoadedMsg struct {
	Reservation   *model.Reservation
	Notifications []model.Notification
	Err           error
}

// Model is the reservation detail view.
type Model struct {
	reservation   *model.Reservation
	notifications []model.Notification
	err           error
	viewport      viewport.Model
	keys          *keys.KeyMap
	width         int
	height        int
}

// New creates a new detail view model.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{
		viewport: viewport.New(width, height),
		keys:     k,
		width:    width,
		height:   height,
	}
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.reservation = msg.Reservation
		m.notifications = msg.Notifications
		m.err = msg.Err
		m.viewport.SetContent(m.renderContent())
		m.viewport.GotoTop()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Back) {
			return m, func() tea.Msg { return BackMsg{} }
		}
	}

	// Delegate to viewport for scrolling.
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	if m.reservation == nil {
		text := "Loading reservation..."
		if m.err != nil {
			text = m.err.Error()
		}
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render(text)
	}
	return m.viewport.View()
}

// Current returns the displayed reservation, if any.
func (m Model) Current() (model.Reservation, bool) {
	if m.reservation == nil {
		return model.Reservation{}, false
	}
	return *m.reservation, true
}

// Reset clears the view before loading another reservation.
func (m *Model) Reset() {
	m.reservation = nil
	m.notifications = nil
	m.err = nil
}

func (m Model) renderContent() string {
	r := m.reservation
	if r == nil {
		return ""
	}

	row := func(label, value string) string {
		return theme.LabelStyle.Render(label) + value
	}

	sections := []string{
		lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).Render("Reservation " + r.ID),
		theme.StatusStyle(r.Status).Render(string(r.Status)),
		"",
		row("Resource", r.ResourceID),
		row("Requester", r.RequesterID),
		row("Starts", r.Interval.Start.UTC().Format("Mon 2006-01-02 15:04 MST")),
		row("Ends", r.Interval.End.UTC().Format("Mon 2006-01-02 15:04 MST")),
		row("Duration", fmt.Sprintf("%.2gh", r.Interval.Hours())),
		row("Cost", fmt.Sprintf("%.2f", r.Cost)),
		row("Created", r.CreatedAt.UTC().Format("2006-01-02 15:04")),
		row("Updated", r.UpdatedAt.UTC().Format("2006-01-02 15:04")),
	}

	if len(m.notifications) > 0 {
		sep := lipgloss.NewStyle().
			Foreground(theme.ColorSubtle).
			Render(strings.Repeat("─", min(max(m.width-4, 1), 80)))
		sections = append(sections, "", sep, "",
			lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("Notifications (%d)", len(m.notifications))),
			"")

		when := lipgloss.NewStyle().Foreground(theme.ColorGray)
		for _, n := range m.notifications {
			title := n.Title
			if !n.Read {
				title = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue).Render(title)
			}
			sections = append(sections,
				title+"  "+when.Render(n.CreatedAt.UTC().Format("Jan 02 15:04")),
				n.Message,
				"")
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.viewport.SetContent(m.renderContent())
}
