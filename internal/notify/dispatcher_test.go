package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/venuebook/internal/model"
	"github.com/nhle/venuebook/internal/notify"
	"github.com/nhle/venuebook/tests/testutil"
)

var errSinkDown = errors.New("sink down")

// fakeSink records notifications and fails a configurable number of times
// per recipient.
type fakeSink struct {
	mu       sync.Mutex
	failures map[string]int
	calls    map[string]int
	saved    []model.Notification
	block    chan struct{}
}

func newFakeSink() *fakeSink {
	return &fakeSink{failures: map[string]int{}, calls: map[string]int{}}
}

func (f *fakeSink) CreateNotification(_ context.Context, n model.Notification) (model.Notification, error) {
	if f.block != nil {
		<-f.block
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[n.RecipientID]++
	if f.failures[n.RecipientID] != 0 {
		if f.failures[n.RecipientID] > 0 {
			f.failures[n.RecipientID]--
		}
		return model.Notification{}, errSinkDown
	}
	n.CreatedAt = time.Now().UTC()
	f.saved = append(f.saved, n)
	return n, nil
}

func (f *fakeSink) savedFor(recipient string) []model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Notification
	for _, n := range f.saved {
		if n.RecipientID == recipient {
			out = append(out, n)
		}
	}
	return out
}

func (f *fakeSink) callsFor(recipient string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[recipient]
}

func newDispatcher(t *testing.T, sink notify.Sink, attempts int) *notify.Dispatcher {
	t.Helper()
	d := notify.NewDispatcher(sink, notify.Options{Workers: 2, QueueSize: 4, MaxAttempts: attempts})
	t.Cleanup(d.Close)
	return d
}

func bookingEvents() []notify.Event {
	return []notify.Event{
		{
			RecipientID: "alice", SenderID: "alice", Type: model.NotificationBookingCreated,
			Title: "Booking created", Body: "pending", ResourceID: "court-1", ReservationID: "r-1",
		},
		{
			RecipientID: "owner", SenderID: "alice", Type: model.NotificationBookingCreated,
			Title: "New booking request", Body: "requested", ResourceID: "court-1", ReservationID: "r-1",
		},
	}
}

func TestDispatch(t *testing.T) {
	sink := newFakeSink()
	d := newDispatcher(t, sink, 1)

	n, err := d.Dispatch(context.Background(), bookingEvents()[0])
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "alice", n.RecipientID)
	assert.Equal(t, model.NotificationBookingCreated, n.Type)
	assert.Equal(t, "Booking created", n.Title)
	assert.Equal(t, "pending", n.Message)
	assert.Equal(t, "r-1", n.ReservationID)
	assert.False(t, n.Read)
}

func TestDispatch_EmptyRecipient(t *testing.T) {
	sink := newFakeSink()
	d := newDispatcher(t, sink, 3)

	_, err := d.Dispatch(context.Background(), notify.Event{Title: "x"})
	_, ok := model.AsValidation(err)
	assert.True(t, ok)
	assert.Empty(t, sink.saved)
}

func TestDispatch_Retries(t *testing.T) {
	sink := newFakeSink()
	sink.failures["alice"] = 2
	d := newDispatcher(t, sink, 3)

	_, err := d.Dispatch(context.Background(), bookingEvents()[0])
	require.NoError(t, err)
	assert.Equal(t, 3, sink.callsFor("alice"))
	assert.Len(t, sink.savedFor("alice"), 1)
}

func TestDispatch_GivesUp(t *testing.T) {
	sink := newFakeSink()
	sink.failures["alice"] = -1
	d := newDispatcher(t, sink, 2)

	_, err := d.Dispatch(context.Background(), bookingEvents()[0])
	assert.ErrorIs(t, err, errSinkDown)
	assert.Equal(t, 2, sink.callsFor("alice"))
}

func TestDispatch_StopsRetryingOnCancel(t *testing.T) {
	sink := newFakeSink()
	sink.failures["alice"] = -1
	d := notify.NewDispatcher(sink, notify.Options{MaxAttempts: 5, RetryDelay: time.Hour})
	t.Cleanup(d.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := d.Dispatch(ctx, bookingEvents()[0])
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, sink.callsFor("alice"))
}

func TestDispatchAll_IndependentFailures(t *testing.T) {
	sink := newFakeSink()
	sink.failures["owner"] = -1
	d := newDispatcher(t, sink, 1)

	results := d.DispatchAll(context.Background(), bookingEvents())
	require.Len(t, results, 2)

	assert.NoError(t, results[0].Err)
	assert.Equal(t, "alice", results[0].Notification.RecipientID)
	assert.ErrorIs(t, results[1].Err, errSinkDown)

	assert.Len(t, sink.savedFor("alice"), 1)
	assert.Empty(t, sink.savedFor("owner"))
}

func TestDispatchAll_Empty(t *testing.T) {
	d := newDispatcher(t, newFakeSink(), 1)
	assert.Nil(t, d.DispatchAll(context.Background(), nil))
}

func TestSubmit_DeliversInBackground(t *testing.T) {
	sink := newFakeSink()
	d := newDispatcher(t, sink, 1)

	ctx, cancel := context.WithCancel(context.Background())
	require.True(t, d.Submit(ctx, bookingEvents()...))
	// The batch must not depend on the submitter's context.
	cancel()

	d.Flush()
	assert.Len(t, sink.savedFor("alice"), 1)
	assert.Len(t, sink.savedFor("owner"), 1)
}

func TestSubmit_DropsWhenQueueFull(t *testing.T) {
	sink := newFakeSink()
	sink.block = make(chan struct{})
	d := notify.NewDispatcher(sink, notify.Options{Workers: 1, QueueSize: 1, MaxAttempts: 1})

	ctx := context.Background()
	ev := bookingEvents()[:1]

	// The worker picks up the first batch and blocks in the sink; the
	// second fills the queue; the third has nowhere to go.
	require.True(t, d.Submit(ctx, ev...))
	require.Eventually(t, func() bool {
		return d.Submit(ctx, ev...)
	}, time.Second, time.Millisecond)

	dropped := false
	for i := 0; i < 3 && !dropped; i++ {
		dropped = !d.Submit(ctx, ev...)
	}
	assert.True(t, dropped)
	assert.GreaterOrEqual(t, d.Dropped(), 1)

	close(sink.block)
	d.Close()
}

func TestClose_RejectsLateSubmit(t *testing.T) {
	sink := newFakeSink()
	d := notify.NewDispatcher(sink, notify.Options{MaxAttempts: 1})

	require.True(t, d.Submit(context.Background(), bookingEvents()...))
	d.Close()
	d.Close()

	assert.Len(t, sink.savedFor("owner"), 1, "queued batches are drained on close")
	assert.False(t, d.Submit(context.Background(), bookingEvents()...))
	assert.Equal(t, 1, d.Dropped())
}

func TestDispatcher_WithStore(t *testing.T) {
	s := testutil.NewTestStore(t)
	d := newDispatcher(t, s, 1)
	inbox := notify.NewInbox(s)
	ctx := context.Background()

	results := d.DispatchAll(ctx, bookingEvents())
	for _, r := range results {
		require.NoError(t, r.Err)
	}

	list, err := inbox.List(ctx, "owner", false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "New booking request", list[0].Title)

	count, err := inbox.UnreadCount(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = inbox.MarkRead(ctx, list[0].ID, "alice")
	assert.ErrorIs(t, err, model.ErrNotFound, "recipients only see their own notifications")

	read, err := inbox.MarkRead(ctx, list[0].ID, "owner")
	require.NoError(t, err)
	assert.True(t, read.Read)

	unread, err := inbox.List(ctx, "owner", true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	require.NoError(t, inbox.Delete(ctx, list[0].ID, "owner"))
	assert.ErrorIs(t, inbox.Delete(ctx, list[0].ID, "owner"), model.ErrNotFound)
}
