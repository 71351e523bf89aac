package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/venuebook/internal/theme"
)

// Names lists the commands the palette understands.
var Names = []string{"book", "refresh", "sweep", "inbox", "all", "live", "help", "quit"}

// CommandMsg is emitted when the user executes a command.
type CommandMsg string

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = strings.Join(Names, ", ")
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions(Names)

	m := Model{input: ti}
	m.SetSize(width, height)
	return m
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		cmd := strings.ToLower(strings.TrimSpace(m.input.Value()))
		m.input.Reset()
		if cmd == "" {
			return m, nil
		}
		return m, func() tea.Msg { return CommandMsg(cmd) }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Command Palette")

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, m.input.View()))
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	m.input.Reset()
	return m.input.Focus()
}
