package sweep_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/venuebook/internal/booking"
	"github.com/nhle/venuebook/internal/directory"
	"github.com/nhle/venuebook/internal/model"
	"github.com/nhle/venuebook/internal/sweep"
	"github.com/nhle/venuebook/internal/timeslot"
	"github.com/nhle/venuebook/tests/testutil"
)

type countingCompleter struct {
	mu    sync.Mutex
	calls []time.Time
	err   error
}

func (c *countingCompleter) CompleteElapsed(_ context.Context, now time.Time) ([]model.Reservation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, now)
	return []model.Reservation{{ID: "r-1"}}, c.err
}

func (c *countingCompleter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func receive(t *testing.T, s *sweep.Sweeper) sweep.ResultMsg {
	t.Helper()
	select {
	case msg := <-s.Results():
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for sweep result")
		return sweep.ResultMsg{}
	}
}

func TestSweeper_RunsImmediatelyAndOnTrigger(t *testing.T) {
	c := &countingCompleter{}
	now := testutil.Day.Add(12 * time.Hour)
	s := sweep.New(c, timeslot.FixedClock(now), time.Hour, nil)

	require.NotNil(t, s.Start())
	assert.Nil(t, s.Start(), "starting twice is a no-op")
	t.Cleanup(s.Stop)

	first := receive(t, s)
	require.NoError(t, first.Error)
	assert.Len(t, first.Completed, 1)

	s.Trigger()
	receive(t, s)
	assert.Equal(t, 2, c.count())

	c.mu.Lock()
	assert.Equal(t, now, c.calls[0])
	c.mu.Unlock()

	st := s.Status()
	assert.Equal(t, sweep.Idle, st.State)
	assert.Equal(t, 1, st.Completed)
	assert.Equal(t, now, st.LastRun)
}

func TestSweeper_RecordsFailure(t *testing.T) {
	c := &countingCompleter{err: errors.New("database locked")}
	s := sweep.New(c, timeslot.FixedClock(testutil.Day), time.Hour, nil)

	msg := s.RunOnce(context.Background())
	assert.Error(t, msg.Error)

	st := s.Status()
	assert.Equal(t, sweep.Failed, st.State)
	assert.EqualError(t, st.Error, "database locked")
	assert.Equal(t, "failed", st.State.String())
}

func TestSweeper_StopIsIdempotent(t *testing.T) {
	c := &countingCompleter{}
	s := sweep.New(c, timeslot.FixedClock(testutil.Day), time.Hour, nil)

	s.Start()
	receive(t, s)
	s.Stop()
	s.Stop()

	calls := c.count()
	s.Trigger()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, c.count(), "stopped sweeper does not run")
}

func TestSweeper_StopClosesResults(t *testing.T) {
	c := &countingCompleter{}
	s := sweep.New(c, timeslot.FixedClock(testutil.Day), time.Hour, nil)

	wait := s.Start()
	require.NotNil(t, wait)
	receive(t, s)
	s.Stop()

	deadline := time.After(2 * time.Second)
	for closed := false; !closed; {
		select {
		case _, ok := <-s.Results():
			closed = !ok
		case <-deadline:
			t.Fatal("results channel still open after Stop")
		}
	}

	assert.Nil(t, s.WaitForNextResult()(), "pending command returns once stopped")
	assert.Nil(t, s.Start(), "a stopped sweeper does not restart")
}

func TestSweeper_CompletesElapsedReservations(t *testing.T) {
	st := testutil.NewTestStore(t)
	testutil.AddResource(t, st, "court-1", "owner-1", 40)
	svc := booking.NewService(st, directory.New(st), nil, booking.Options{})
	ctx := context.Background()

	r, err := svc.Create(ctx, booking.NewReservation{
		ResourceID: "court-1", RequesterID: "alice", Interval: testutil.Hours(9, 10),
	})
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, "owner-1", r.ID)
	require.NoError(t, err)

	s := sweep.New(svc, timeslot.FixedClock(testutil.Day.Add(10*time.Hour)), time.Hour, nil)
	msg := s.RunOnce(ctx)
	require.NoError(t, msg.Error)
	require.Len(t, msg.Completed, 1)

	got, err := svc.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
}
