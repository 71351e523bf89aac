// Package bookingform is the form for requesting a new reservation.
package bookingform

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/venuebook/internal/theme"
	"github.com/nhle/venuebook/internal/timeslot"
)

// SubmittedMsg is dispatched when the form is completed.
type SubmittedMsg struct {
	Date          string
	StartTime     string
	DurationHours float64
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

// formBindings holds field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	date      string
	startTime string
	duration  string
}

// Model is the Bubble Tea model for the booking form.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	width  int
	height int
}

// New creates a booking form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start resets the fields, pre-filling the date, and builds the form.
func (m *Model) Start(day time.Time) tea.Cmd {
	m.fb.date = day.UTC().Format("2006-01-02")
	m.fb.startTime = ""
	m.fb.duration = "1"
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&m.fb.date).
				Validate(validateDate),
			huh.NewInput().
				Title("Start time").
				Placeholder("HH:MM (UTC)").
				Value(&m.fb.startTime).
				Validate(validateClock),
			huh.NewInput().
				Title("Duration (hours)").
				Placeholder("1.5").
				Value(&m.fb.duration).
				Validate(validateDuration),
		),
	).WithKeyMap(keyMap()).WithWidth(m.formWidth()).WithHeight(m.formHeight())
	return m.form.Init()
}

// Update handles messages for the form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		hours, _ := strconv.ParseFloat(strings.TrimSpace(m.fb.duration), 64)
		out := SubmittedMsg{
			Date:          strings.TrimSpace(m.fb.date),
			StartTime:     strings.TrimSpace(m.fb.startTime),
			DurationHours: hours,
		}
		m.form = nil
		return m, func() tea.Msg { return out }
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("New Booking")

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(title + "\n" + m.form.View())
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// keyMap lets esc abort the form.
func keyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel"))
	return km
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 80)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func validateDate(s string) error {
	if _, err := time.Parse("2006-01-02", strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}
	return nil
}

func validateClock(s string) error {
	if _, err := timeslot.ParseClock(s); err != nil {
		return fmt.Errorf("use HH:MM")
	}
	return nil
}

func validateDuration(s string) error {
	hours, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || hours <= 0 {
		return fmt.Errorf("enter a positive number of hours")
	}
	return nil
}
