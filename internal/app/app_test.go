package app

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/venuebook/internal/booking"
	"github.com/nhle/venuebook/internal/model"
	"github.com/nhle/venuebook/internal/ui/agenda"
	"github.com/nhle/venuebook/internal/ui/bookingform"
	"github.com/nhle/venuebook/internal/ui/command"
)

type fakeBookings struct {
	reservations []model.Reservation
	calls        []string
	bookErr      error
	lastRequest  booking.BookingRequest
}

func (f *fakeBookings) ListForResource(context.Context, string, ...model.ReservationStatus) ([]model.Reservation, error) {
	return f.reservations, nil
}

func (f *fakeBookings) Get(_ context.Context, id string) (*model.Reservation, error) {
	for _, r := range f.reservations {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, model.ErrNotFound
}

func (f *fakeBookings) Book(_ context.Context, req booking.BookingRequest) (model.Reservation, error) {
	f.lastRequest = req
	if f.bookErr != nil {
		return model.Reservation{}, f.bookErr
	}
	return model.Reservation{ID: "new-reservation", Status: model.StatusPending}, nil
}

func (f *fakeBookings) transition(verb, id string, status model.ReservationStatus) (model.Reservation, error) {
	f.calls = append(f.calls, verb+" "+id)
	return model.Reservation{ID: id, Status: status}, nil
}

func (f *fakeBookings) Confirm(_ context.Context, _, id string) (model.Reservation, error) {
	return f.transition("confirm", id, model.StatusConfirmed)
}

func (f *fakeBookings) Cancel(_ context.Context, _, id string) (model.Reservation, error) {
	return f.transition("cancel", id, model.StatusCanceled)
}

func (f *fakeBookings) Complete(_ context.Context, _, id string) (model.Reservation, error) {
	return f.transition("complete", id, model.StatusCompleted)
}

func (f *fakeBookings) Delete(_ context.Context, _, id string) error {
	f.calls = append(f.calls, "delete "+id)
	return nil
}

func (f *fakeBookings) Now() time.Time {
	return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, fb *fakeBookings) tea.Model {
	t.Helper()
	var m tea.Model = New(Options{ResourceID: "court-1", UserID: "owner-1", Bookings: fb})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	m, _ = m.Update(agenda.ReservationsLoadedMsg{Reservations: fb.reservations})
	return m
}

func TestActionKeysRunAgainstSelectedReservation(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	fb := &fakeBookings{reservations: []model.Reservation{{
		ID:          "reservation-1",
		ResourceID:  "court-1",
		RequesterID: "alice",
		Interval:    model.Interval{Start: start, End: start.Add(2 * time.Hour)},
		Status:      model.StatusPending,
	}}}
	m := newTestModel(t, fb)
	assert.Contains(t, m.View(), "alice")

	for _, k := range []string{"c", "x", "f", "D"} {
		var cmd tea.Cmd
		m, cmd = m.Update(keyPress(k))
		require.NotNil(t, cmd, "key %s", k)
		m, _ = m.Update(cmd())
	}

	assert.Equal(t, []string{
		"confirm reservation-1",
		"cancel reservation-1",
		"complete reservation-1",
		"delete reservation-1",
	}, fb.calls)
	assert.Contains(t, m.View(), "deleted reservat")
}

func TestBookingFormSubmission(t *testing.T) {
	fb := &fakeBookings{bookErr: &model.ConflictError{
		ResourceID:    "court-1",
		ReservationID: "taken",
		Existing: model.Interval{
			Start: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
	}}
	m := newTestModel(t, fb)

	m, _ = m.Update(keyPress("n"))
	assert.Equal(t, ViewForm, m.(Model).currentView)

	m, cmd := m.Update(bookingform.SubmittedMsg{Date: "2025-06-01", StartTime: "11:00", DurationHours: 2})
	assert.Equal(t, ViewAgenda, m.(Model).currentView)
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())

	assert.Equal(t, "owner-1", fb.lastRequest.RequesterID)
	assert.Equal(t, "court-1", fb.lastRequest.ResourceID)
	assert.Equal(t, 2.0, fb.lastRequest.DurationHours)

	view := m.View()
	assert.Contains(t, view, "could not book")
	assert.True(t, strings.Contains(view, "conflict with reservation taken"), view)
}

func TestHelpToggle(t *testing.T) {
	m := newTestModel(t, &fakeBookings{})

	m, _ = m.Update(keyPress("?"))
	assert.Equal(t, ViewHelp, m.(Model).currentView)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	m, _ = m.Update(keyPress("?"))
	assert.Equal(t, ViewAgenda, m.(Model).currentView)
}

func TestUnknownCommand(t *testing.T) {
	m := newTestModel(t, &fakeBookings{})

	m, _ = m.Update(keyPress(":"))
	assert.Equal(t, ViewCommand, m.(Model).currentView)

	m, _ = m.Update(commandMsg("teleport"))
	assert.Equal(t, ViewAgenda, m.(Model).currentView)
	assert.Contains(t, m.View(), "unknown command: teleport")
}

func commandMsg(s string) tea.Msg {
	return command.CommandMsg(s)
}

type fakeInbox struct {
	items []model.Notification
	read  []string
}

func (f *fakeInbox) List(context.Context, string, bool) ([]model.Notification, error) {
	return f.items, nil
}

func (f *fakeInbox) MarkRead(_ context.Context, id, _ string) (*model.Notification, error) {
	f.read = append(f.read, id)
	return &model.Notification{ID: id, Read: true}, nil
}

func (f *fakeInbox) Delete(context.Context, string, string) error { return nil }

func (f *fakeInbox) UnreadCount(context.Context, string) (int, error) {
	return len(f.items) - len(f.read), nil
}

func TestInboxOpensAndCloses(t *testing.T) {
	fi := &fakeInbox{items: []model.Notification{
		{ID: "n1", Title: "New booking request", SenderID: "alice", Message: "alice wants court-1"},
	}}
	var m tea.Model = New(Options{ResourceID: "court-1", UserID: "owner-1", Bookings: &fakeBookings{}, Inbox: fi})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})

	m, cmd := m.Update(keyPress("i"))
	require.NotNil(t, cmd)
	assert.Equal(t, ViewInbox, m.(Model).currentView)

	m, _ = m.Update(cmd())
	assert.Contains(t, m.View(), "New booking request")

	// Action keys belong to the inbox here, not to reservations.
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())
	assert.Equal(t, []string{"n1"}, fi.read)

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())
	assert.Equal(t, ViewAgenda, m.(Model).currentView)
}
