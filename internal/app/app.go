// Package app is the root Bubble Tea model of the agenda TUI.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/venuebook/internal/booking"
	"github.com/nhle/venuebook/internal/keys"
	"github.com/nhle/venuebook/internal/model"
	"github.com/nhle/venuebook/internal/sweep"
	"github.com/nhle/venuebook/internal/ui"
	"github.com/nhle/venuebook/internal/ui/agenda"
	"github.com/nhle/venuebook/internal/ui/bookingform"
	"github.com/nhle/venuebook/internal/ui/command"
	"github.com/nhle/venuebook/internal/ui/detail"
	"github.com/nhle/venuebook/internal/ui/inbox"
	helpview "github.com/nhle/venuebook/internal/ui/help"
)

// Bookings is the booking service as the agenda drives it.
type Bookings interface {
	agenda.Lister
	Get(ctx context.Context, id string) (*model.Reservation, error)
	Book(ctx context.Context, req booking.BookingRequest) (model.Reservation, error)
	Confirm(ctx context.Context, actorID, id string) (model.Reservation, error)
	Cancel(ctx context.Context, actorID, id string) (model.Reservation, error)
	Complete(ctx context.Context, actorID, id string) (model.Reservation, error)
	Delete(ctx context.Context, actorID, id string) error
	Now() time.Time
}

// Inbox reads and updates the current user's notifications.
type Inbox interface {
	inbox.Manager
	UnreadCount(ctx context.Context, recipientID string) (int, error)
}

// Options wires the agenda to its services. Sweeper may be nil.
type Options struct {
	ResourceID string
	UserID     string
	Bookings   Bookings
	Inbox      Inbox
	Sweeper    *sweep.Sweeper
}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewAgenda ViewState = iota
	ViewDetail
	ViewForm
	ViewHelp
	ViewCommand
	ViewInbox
)

// unreadCountMsg carries the number of unread notifications to the UI.
type unreadCountMsg struct {
	count int
}

// actionResultMsg reports the outcome of a reservation action.
type actionResultMsg struct {
	action      string
	done        string
	reservation model.Reservation
	err         error
}

// Model is the root Bubble Tea model that manages view routing and
// access to the booking service.
type Model struct {
	opts         Options
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap
	agenda       agenda.Model
	detail       detail.Model
	form         bookingform.Model
	helpView     helpview.Model
	commandView  command.Model
	inboxView    inbox.Model
	ready        bool
	unreadCount  int
	flash        string
	flashErr     bool
}

// New creates the root model for one resource and user.
func New(opts Options) Model {
	k := keys.DefaultKeyMap()
	return Model{
		opts:        opts,
		currentView: ViewAgenda,
		keys:        k,
		agenda:      agenda.New(opts.Bookings, k, opts.ResourceID, 80, 22),
		detail:      detail.New(k, 80, 22),
		form:        bookingform.New(80, 22),
		helpView:    helpview.New(k, 80, 22),
		commandView: command.New(80, 22),
		inboxView:   inbox.New(opts.Inbox, k, opts.UserID, 80, 22),
	}
}

// Init loads the agenda and starts the completion sweeper.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.agenda.Init(), m.fetchUnreadCount()}
	if m.opts.Sweeper != nil {
		cmds = append(cmds, m.opts.Sweeper.Start())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := msg.Width, m.layout.ContentHeight()
		m.agenda.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.form.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		m.inboxView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case agenda.ReservationsLoadedMsg:
		var cmd tea.Cmd
		m.agenda, cmd = m.agenda.Update(msg)
		return m, tea.Batch(cmd, m.fetchUnreadCount())

	case unreadCountMsg:
		m.unreadCount = msg.count
		return m, nil

	case sweep.ResultMsg:
		if msg.Error != nil {
			m.setFlash(fmt.Sprintf("sweep failed: %v", msg.Error), true)
		} else if n := len(msg.Completed); n > 0 {
			m.setFlash(fmt.Sprintf("%d reservation(s) completed", n), false)
		}
		return m, tea.Batch(m.agenda.Load(), m.opts.Sweeper.WaitForNextResult())

	case actionResultMsg:
		if msg.err != nil {
			m.setFlash(fmt.Sprintf("could not %s: %v", msg.action, msg.err), true)
			return m, nil
		}
		m.setFlash(fmt.Sprintf("%s %s", msg.done, shortID(msg.reservation.ID)), false)
		cmds := []tea.Cmd{m.agenda.Load()}
		if m.currentView == ViewDetail && msg.action == "delete" {
			m.currentView = ViewAgenda
		}
		if m.currentView == ViewDetail {
			cmds = append(cmds, m.loadDetail(msg.reservation.ID))
		}
		return m, tea.Batch(cmds...)

	case agenda.SelectedReservationMsg:
		m.previousView = m.currentView
		m.currentView = ViewDetail
		m.detail.Reset()
		return m, m.loadDetail(msg.Reservation.ID)

	case detail.BackMsg:
		m.currentView = ViewAgenda
		return m, nil

	case bookingform.SubmittedMsg:
		m.currentView = ViewAgenda
		return m, m.book(msg)

	case inbox.CloseMsg:
		m.currentView = ViewAgenda
		return m, m.fetchUnreadCount()

	case inbox.ChangedMsg:
		return m, m.fetchUnreadCount()

	case bookingform.CancelMsg:
		m.currentView = ViewAgenda
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m.executeCommand(string(msg))

	case tea.KeyMsg:
		if next, cmd, handled := m.handleGlobalKey(msg); handled {
			return next, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that are not meant for the active view.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		m.stop()
		return m, tea.Quit, true
	}

	// Forms, the palette and the inbox own every other key while open.
	if m.currentView == ViewInbox && !m.inboxView.Confirming() && key.Matches(msg, m.keys.Help) {
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true
	}
	if m.currentView == ViewForm || m.currentView == ViewCommand || m.currentView == ViewInbox {
		if m.currentView == ViewCommand && key.Matches(msg, m.keys.Back) {
			m.currentView = m.previousView
			return m, nil, true
		}
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case m.currentView == ViewHelp && key.Matches(msg, m.keys.Back):
		m.currentView = m.previousView
		return m, nil, true

	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		cmd := m.commandView.Focus()
		return m, cmd, true
	}

	if m.currentView == ViewHelp {
		return m, nil, true
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.currentView == ViewAgenda {
			m.stop()
			return m, tea.Quit, true
		}

	case key.Matches(msg, m.keys.Refresh):
		return m, m.agenda.Load(), true

	case key.Matches(msg, m.keys.Book):
		cmd := m.openForm()
		return m, cmd, true

	case key.Matches(msg, m.keys.Sweep):
		cmd := m.triggerSweep()
		return m, cmd, true

	case key.Matches(msg, m.keys.Inbox):
		cmd := m.openInbox()
		return m, cmd, true

	case key.Matches(msg, m.keys.Confirm),
		key.Matches(msg, m.keys.Cancel),
		key.Matches(msg, m.keys.Complete),
		key.Matches(msg, m.keys.Delete):
		r, ok := m.target()
		if !ok {
			return m, nil, true
		}
		return m, m.act(msg, r.ID), true
	}

	return m, nil, false
}

// target is the reservation an action key applies to in the current view.
func (m Model) target() (model.Reservation, bool) {
	if m.currentView == ViewDetail {
		return m.detail.Current()
	}
	return m.agenda.Selected()
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewAgenda:
		m.agenda, cmd = m.agenda.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewForm:
		m.form, cmd = m.form.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewInbox:
		m.inboxView, cmd = m.inboxView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	title := "venuebook · " + m.opts.ResourceID
	if m.unreadCount > 0 {
		title = fmt.Sprintf("%s [%d new]", title, m.unreadCount)
	}
	header := m.layout.RenderHeader(title, m.sweepStatus())

	hints := m.keyHints()
	if m.flash != "" {
		hints = m.flash
	}
	return m.layout.Frame(header, m.renderContent(), m.layout.RenderStatusBar(hints, m.flashErr))
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewDetail:
		return m.detail.View()
	case ViewForm:
		return m.form.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewInbox:
		return m.inboxView.View()
	default:
		return m.agenda.View()
	}
}

// sweepStatus returns a short string describing the sweeper state.
func (m Model) sweepStatus() string {
	if m.opts.Sweeper == nil {
		return m.opts.UserID
	}
	st := m.opts.Sweeper.Status()
	switch {
	case st.State == sweep.Running:
		return "sweeping"
	case st.LastRun.IsZero():
		return m.opts.UserID
	default:
		return fmt.Sprintf("%s · swept %s", m.opts.UserID, st.LastRun.UTC().Format("15:04"))
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewDetail:
		return "esc back | c confirm | x cancel | f complete | D delete"
	case ViewForm:
		return "enter next | esc cancel"
	case ViewInbox:
		return fmt.Sprintf("%d shown | enter mark read | D dismiss | H unread only | esc back", m.inboxView.Len())
	default:
		scope := "live"
		if m.agenda.ShowAll() {
			scope = "all"
		}
		return fmt.Sprintf("%s: %d | n book | c confirm | x cancel | f complete | i inbox | ? help | q quit",
			scope, m.agenda.Len())
	}
}

func (m *Model) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashErr = isErr
}

func (m Model) stop() {
	if m.opts.Sweeper != nil {
		m.opts.Sweeper.Stop()
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
