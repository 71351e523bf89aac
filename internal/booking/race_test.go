package booking_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/venuebook/internal/booking"
	"github.com/nhle/venuebook/internal/conflict"
	"github.com/nhle/venuebook/internal/model"
	"github.com/nhle/venuebook/internal/store"
	"github.com/nhle/venuebook/tests/testutil"
)

// The naive booking path reads the live set, decides, then writes in a
// separate step. Here both goroutines finish reading before either writes,
// which is the interleaving that breaks it.
func TestCheckThenInsertWithoutTransactionDoubleBooks(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	resourceID := "court-1"

	var readDone, wg sync.WaitGroup
	readDone.Add(2)
	errs := make([]error, 2)

	for i, requester := range []string{"alice", "bob"} {
		wg.Add(1)
		go func() {
			defer wg.Done()

			live, err := s.ListReservations(ctx, store.ReservationFilter{
				ResourceID: &resourceID,
				Statuses:   model.LiveStatuses,
			})
			readDone.Done()
			if err != nil {
				errs[i] = err
				return
			}
			readDone.Wait()

			candidate := testutil.Hours(10, 12)
			if existing, found := conflict.FindReservation(candidate, live); found {
				errs[i] = &model.ConflictError{ResourceID: resourceID, ReservationID: existing.ID, Existing: existing.Interval}
				return
			}
			_, errs[i] = s.InsertReservation(ctx, model.Reservation{
				ResourceID: resourceID, RequesterID: requester, Interval: candidate,
			})
		}()
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	live, err := s.ListReservations(ctx, store.ReservationFilter{
		ResourceID: &resourceID,
		Statuses:   model.LiveStatuses,
	})
	require.NoError(t, err)
	require.Len(t, live, 2)
	assert.True(t, conflict.Overlaps(live[0].Interval, live[1].Interval),
		"both requests saw an empty calendar and both were written")
}

func TestCreateConcurrentOverlappingRequests(t *testing.T) {
	f := newFixture(t, model.BookingConfig{})
	ctx := context.Background()

	const requests = 12
	var (
		wg        sync.WaitGroup
		start     = make(chan struct{})
		successes = make([]model.Reservation, 0, 1)
		conflicts int
		mu        sync.Mutex
	)

	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			// 09:00-11:00 and 10:00-12:00 overlap each other.
			r, err := f.svc.Create(ctx, booking.NewReservation{
				ResourceID:  "court-1",
				RequesterID: "requester",
				Interval:    testutil.Hours(9+i%2, 11+i%2),
			})

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes = append(successes, r)
				return
			}
			if _, ok := model.AsConflict(err); ok {
				conflicts++
				return
			}
			t.Errorf("unexpected error: %v", err)
		}()
	}
	close(start)
	wg.Wait()

	require.Len(t, successes, 1)
	assert.Equal(t, requests-1, conflicts)

	live, err := f.svc.ListForResource(ctx, "court-1", model.LiveStatuses...)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, successes[0].ID, live[0].ID)
}
