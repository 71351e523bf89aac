package agenda

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/venuebook/internal/model"
	"github.com/nhle/venuebook/internal/theme"
)

// ReservationItem wraps a model.Reservation so it can be used in a bubbles/list.
type ReservationItem struct {
	Reservation model.Reservation
}

// FilterValue returns the string used for fuzzy filtering.
func (i ReservationItem) FilterValue() string { return i.Reservation.RequesterID }

// Title returns the reservation interval.
func (i ReservationItem) Title() string { return formatInterval(i.Reservation.Interval) }

// Description returns the requester and status.
func (i ReservationItem) Description() string {
	return fmt.Sprintf("%s | %s", i.Reservation.RequesterID, i.Reservation.Status)
}

// ItemDelegate renders one reservation per line.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single reservation line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ri, ok := item.(ReservationItem)
	if !ok {
		return
	}
	r := ri.Reservation

	marker := "●"
	if !r.IsLive() {
		marker = "○"
	}

	statusBadge := theme.StatusStyle(r.Status).Render(fmt.Sprintf("%-9s", r.Status))
	cost := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(fmt.Sprintf("%8.2f", r.Cost))

	line := fmt.Sprintf("%s %s %s %-16s %s",
		marker, formatInterval(r.Interval), statusBadge, r.RequesterID, cost)

	if !r.IsLive() {
		line = theme.DimmedStyle.Render(line)
	}
	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// formatInterval renders "Mon Jan 02 15:04-17:00", spelling out the end date
// when the interval crosses midnight.
func formatInterval(iv model.Interval) string {
	start, end := iv.Start.UTC(), iv.End.UTC()
	endLayout := "15:04"
	if start.YearDay() != end.YearDay() || start.Year() != end.Year() {
		endLayout = "Jan 02 15:04"
	}
	return start.Format("Mon Jan 02 15:04") + "-" + end.Format(endLayout)
}
