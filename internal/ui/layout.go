package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/venuebook/internal/theme"
)

// Layout holds the terminal dimensions and splits them into a one-line
// header, the content area, and a one-line status bar.
type Layout struct {
	Width  int
	Height int
}

// NewLayout creates a Layout with the given terminal dimensions.
func NewLayout(width, height int) Layout {
	return Layout{Width: width, Height: height}
}

// ContentHeight returns the rows left for the active view.
func (l Layout) ContentHeight() int {
	if l.Height < 2 {
		return 0
	}
	return l.Height - 2
}

// RenderHeader renders the title on the left and status on the right.
func (l Layout) RenderHeader(title, status string) string {
	return l.bar(theme.HeaderStyle, title, status)
}

// RenderStatusBar renders keyboard hints, or msg in the error style when
// isErr is set.
func (l Layout) RenderStatusBar(msg string, isErr bool) string {
	style := theme.StatusBarStyle
	if isErr {
		style = theme.ErrorBarStyle
	}
	return l.bar(style, msg, "")
}

// bar pads left and right across the full width using style's background.
func (l Layout) bar(style lipgloss.Style, left, right string) string {
	leftRendered := style.Render(left)
	rightRendered := ""
	if right != "" {
		rightRendered = style.Render(right)
	}

	gap := l.Width - lipgloss.Width(leftRendered) - lipgloss.Width(rightRendered)
	if gap < 0 {
		gap = 0
	}
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, leftRendered, filler, rightRendered)
}

// Frame stacks header, content and status bar.
func (l Layout) Frame(header, content, statusBar string) string {
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}
