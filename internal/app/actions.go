package app

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/venuebook/internal/booking"
	"github.com/nhle/venuebook/internal/model"
	"github.com/nhle/venuebook/internal/ui/bookingform"
	"github.com/nhle/venuebook/internal/ui/detail"
)

// act returns a command running the reservation action bound to msg.
func (m Model) act(msg tea.KeyMsg, id string) tea.Cmd {
	b, user := m.opts.Bookings, m.opts.UserID

	var (
		action, done string
		run          func(ctx context.Context) (model.Reservation, error)
	)
	switch {
	case key.Matches(msg, m.keys.Confirm):
		action, done = "confirm", "confirmed"
		run = func(ctx context.Context) (model.Reservation, error) { return b.Confirm(ctx, user, id) }
	case key.Matches(msg, m.keys.Cancel):
		action, done = "cancel", "canceled"
		run = func(ctx context.Context) (model.Reservation, error) { return b.Cancel(ctx, user, id) }
	case key.Matches(msg, m.keys.Complete):
		action, done = "complete", "completed"
		run = func(ctx context.Context) (model.Reservation, error) { return b.Complete(ctx, user, id) }
	case key.Matches(msg, m.keys.Delete):
		action, done = "delete", "deleted"
		run = func(ctx context.Context) (model.Reservation, error) {
			return model.Reservation{ID: id}, b.Delete(ctx, user, id)
		}
	default:
		return nil
	}

	return func() tea.Msg {
		r, err := run(context.Background())
		return actionResultMsg{action: action, done: done, reservation: r, err: err}
	}
}

// book returns a command that submits the form as a booking request.
func (m Model) book(msg bookingform.SubmittedMsg) tea.Cmd {
	b := m.opts.Bookings
	req := booking.BookingRequest{
		ResourceID:    m.opts.ResourceID,
		RequesterID:   m.opts.UserID,
		Date:          msg.Date,
		StartTime:     msg.StartTime,
		DurationHours: msg.DurationHours,
	}
	return func() tea.Msg {
		r, err := b.Book(context.Background(), req)
		return actionResultMsg{action: "book", done: "booked", reservation: r, err: err}
	}
}

// openForm switches to the booking form, pre-filled with today's date.
func (m *Model) openForm() tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewForm
	return m.form.Start(m.opts.Bookings.Now())
}

// loadDetail fetches a reservation and the user's notifications about it.
func (m Model) loadDetail(id string) tea.Cmd {
	b, inbox, user := m.opts.Bookings, m.opts.Inbox, m.opts.UserID
	return func() tea.Msg {
		ctx := context.Background()
		r, err := b.Get(ctx, id)
		if err != nil {
			return detail.LoadedMsg{Err: err}
		}
		out := detail.LoadedMsg{Reservation: r}
		if inbox == nil {
			return out
		}
		all, err := inbox.List(ctx, user, false)
		if err != nil {
			return out
		}
		for _, n := range all {
			if n.ReservationID == id {
				out.Notifications = append(out.Notifications, n)
			}
		}
		return out
	}
}

// fetchUnreadCount returns a tea.Cmd that counts the user's unread
// notifications.
func (m Model) fetchUnreadCount() tea.Cmd {
	inbox, user := m.opts.Inbox, m.opts.UserID
	if inbox == nil {
		return nil
	}
	return func() tea.Msg {
		count, err := inbox.UnreadCount(context.Background(), user)
		if err != nil {
			return unreadCountMsg{count: 0}
		}
		return unreadCountMsg{count: count}
	}
}

// openInbox switches to the notification inbox and reloads it.
func (m *Model) openInbox() tea.Cmd {
	if m.opts.Inbox == nil {
		m.setFlash("no inbox", true)
		return nil
	}
	m.previousView = m.currentView
	m.currentView = ViewInbox
	return m.inboxView.Load()
}

// triggerSweep asks the sweeper for an immediate run.
func (m *Model) triggerSweep() tea.Cmd {
	if m.opts.Sweeper == nil {
		m.setFlash("sweeper disabled", true)
		return nil
	}
	m.opts.Sweeper.Trigger()
	m.setFlash("sweep requested", false)
	return nil
}

// executeCommand handles a command string from the command palette.
func (m Model) executeCommand(name string) (tea.Model, tea.Cmd) {
	switch name {
	case "book", "new":
		cmd := m.openForm()
		return m, cmd
	case "refresh":
		return m, m.agenda.Load()
	case "sweep":
		cmd := m.triggerSweep()
		return m, cmd
	case "inbox":
		cmd := m.openInbox()
		return m, cmd
	case "all", "live":
		load := m.agenda.SetShowAll(name == "all")
		return m, load
	case "help":
		m.previousView = ViewAgenda
		m.currentView = ViewHelp
		return m, nil
	case "quit", "q":
		m.stop()
		return m, tea.Quit
	default:
		m.setFlash("unknown command: "+name, true)
		return m, nil
	}
}
