// Package agenda is the reservation list view of one resource.
package agenda

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/venuebook/internal/keys"
	"github.com/nhle/venuebook/internal/model"
	"github.com/nhle/venuebook/internal/theme"
)

// Lister loads a resource's reservations.
type Lister interface {
	ListForResource(ctx context.Context, resourceID string, statuses ...model.ReservationStatus) ([]model.Reservation, error)
}

// ReservationsLoadedMsg is sent when reservations have been loaded.
type ReservationsLoadedMsg struct {
	Reservations []model.Reservation
	Err          error
}

// SelectedReservationMsg is sent when the user opens a reservation.
type SelectedReservationMsg struct {
	Reservation model.Reservation
}

// Model is the agenda list view.
type Model struct {
	list       list.Model
	lister     Lister
	keys       *keys.KeyMap
	resourceID string
	showAll    bool
	err        error
	width      int
	height     int
}

// New creates an agenda for resourceID showing live reservations.
func New(l Lister, k *keys.KeyMap, resourceID string, width, height int) Model {
	lm := list.New([]list.Item{}, ItemDelegate{}, width, height)
	lm.Title = "Reservations"
	lm.SetShowStatusBar(true)
	lm.SetShowHelp(false)
	lm.SetFilteringEnabled(false)
	lm.DisableQuitKeybindings()
	lm.Styles.Title = theme.HeaderStyle

	return Model{
		list:       lm,
		lister:     l,
		keys:       k,
		resourceID: resourceID,
		width:      width,
		height:     height,
	}
}

// Init returns a command that loads the reservations.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Update handles messages for the agenda.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ReservationsLoadedMsg:
		m.err = msg.Err
		items := make([]list.Item, len(msg.Reservations))
		for i, r := range msg.Reservations {
			items[i] = ReservationItem{Reservation: r}
		}
		return m, m.list.SetItems(items)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Select):
			r, ok := m.Selected()
			if !ok {
				return m, nil
			}
			return m, func() tea.Msg { return SelectedReservationMsg{Reservation: r} }

		case key.Matches(msg, m.keys.ToggleAll):
			m.showAll = !m.showAll
			return m, m.Load()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the list, or a hint when it is empty.
func (m Model) View() string {
	if m.err != nil || len(m.list.Items()) == 0 {
		style := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		if m.err != nil {
			return style.Foreground(theme.ColorRed).Render(fmt.Sprintf("Could not load reservations:\n%v", m.err))
		}
		return style.Render("No reservations.\n\nPress n to book a slot.")
	}
	return m.list.View()
}

// Load returns a tea.Cmd that fetches the reservations to show.
func (m Model) Load() tea.Cmd {
	l, resourceID := m.lister, m.resourceID
	var statuses []model.ReservationStatus
	if !m.showAll {
		statuses = model.LiveStatuses
	}
	return func() tea.Msg {
		rs, err := l.ListForResource(context.Background(), resourceID, statuses...)
		return ReservationsLoadedMsg{Reservations: rs, Err: err}
	}
}

// Selected returns the highlighted reservation.
func (m Model) Selected() (model.Reservation, bool) {
	item, ok := m.list.SelectedItem().(ReservationItem)
	if !ok {
		return model.Reservation{}, false
	}
	return item.Reservation, true
}

// SetShowAll switches between live and all reservations and reloads.
func (m *Model) SetShowAll(all bool) tea.Cmd {
	m.showAll = all
	return m.Load()
}

// ShowAll reports whether finished reservations are listed.
func (m Model) ShowAll() bool { return m.showAll }

// Len returns the number of listed reservations.
func (m Model) Len() int { return len(m.list.Items()) }

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height)
}
