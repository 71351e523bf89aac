package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/nhle/venuebook/internal/conflict"
	"github.com/nhle/venuebook/internal/model"
	"github.com/nhle/venuebook/internal/timeslot"
)

// Check reports whether iv is free on the resource right now. It returns a
// ConflictError naming the earliest overlapping live reservation. The answer
// is advisory: only Create decides atomically.
func (s *Service) Check(ctx context.Context, resourceID string, iv model.Interval) error {
	if err := timeslot.Validate(iv); err != nil {
		return err
	}
	live, err := s.ListForResource(ctx, resourceID, model.LiveStatuses...)
	if err != nil {
		return fmt.Errorf("loading reservations of %s: %w", resourceID, err)
	}

	if r, found := conflict.NewIndex(live).Find(timeslot.Normalize(iv)); found {
		return &model.ConflictError{
			ResourceID:    resourceID,
			ReservationID: r.ID,
			Existing:      r.Interval,
		}
	}
	return nil
}

// FreeSlots returns the gaps between live reservations inside window, in
// order. Gaps shorter than minLength are left out.
func (s *Service) FreeSlots(
	ctx context.Context,
	resourceID string,
	window model.Interval,
	minLength time.Duration,
) ([]model.Interval, error) {
	if err := timeslot.Validate(window); err != nil {
		return nil, err
	}
	live, err := s.ListForResource(ctx, resourceID, model.LiveStatuses...)
	if err != nil {
		return nil, fmt.Errorf("loading reservations of %s: %w", resourceID, err)
	}
	conflict.SortByStart(live)

	var free []model.Interval
	cursor := window.Start
	for _, r := range live {
		if !conflict.Overlaps(window, r.Interval) {
			continue
		}
		if r.Interval.Start.After(cursor) {
			free = appendGap(free, model.Interval{Start: cursor, End: r.Interval.Start}, minLength)
		}
		if r.Interval.End.After(cursor) {
			cursor = r.Interval.End
		}
	}
	if window.End.After(cursor) {
		free = appendGap(free, model.Interval{Start: cursor, End: window.End}, minLength)
	}
	return free, nil
}

// FreeSlotsOn returns the free gaps of at least minLength during the
// resource's opening hours on date ("YYYY-MM-DD").
func (s *Service) FreeSlotsOn(
	ctx context.Context,
	resourceID, date string,
	minLength time.Duration,
) ([]model.Interval, error) {
	res, err := s.dir.Get(ctx, resourceID)
	if err != nil {
		return nil, fmt.Errorf("looking up resource %s: %w", resourceID, err)
	}
	window, err := timeslot.DayWindow(date, res.OpeningTime, res.ClosingTime)
	if err != nil {
		return nil, err
	}
	return s.FreeSlots(ctx, res.ID, window, minLength)
}

func appendGap(free []model.Interval, gap model.Interval, minLength time.Duration) []model.Interval {
	if gap.Duration() < minLength {
		return free
	}
	return append(free, gap)
}
