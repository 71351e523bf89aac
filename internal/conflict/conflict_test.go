package conflict

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/venuebook/internal/model"
)

func span(startHour, endHour int) model.Interval {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return model.Interval{
		Start: day.Add(time.Duration(startHour) * time.Hour),
		End:   day.Add(time.Duration(endHour) * time.Hour),
	}
}

func reservation(id string, iv model.Interval, status model.ReservationStatus) model.Reservation {
	return model.Reservation{ID: id, ResourceID: "court-1", Interval: iv, Status: status}
}

func TestOverlaps(t *testing.T) {
	existing := span(10, 12)

	tests := []struct {
		name      string
		candidate model.Interval
		want      bool
	}{
		{"straddles end", span(11, 13), true},
		{"straddles start", span(9, 11), true},
		{"inside", span(10, 11), true},
		{"contains", span(9, 13), true},
		{"identical", span(10, 12), true},
		{"back to back after", span(12, 14), false},
		{"back to back before", span(8, 10), false},
		{"disjoint", span(14, 15), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.candidate, existing))
			assert.Equal(t, tt.want, Overlaps(existing, tt.candidate))
		})
	}
}

func TestFindReservation_SkipsNonLive(t *testing.T) {
	existing := []model.Reservation{
		reservation("canceled", span(10, 12), model.StatusCanceled),
		reservation("completed", span(10, 12), model.StatusCompleted),
		reservation("confirmed", span(11, 13), model.StatusConfirmed),
	}

	got, ok := FindReservation(span(10, 11), existing)
	assert.False(t, ok, "got %s", got.ID)

	got, ok = FindReservation(span(12, 14), existing)
	require.True(t, ok)
	assert.Equal(t, "confirmed", got.ID)
}

func TestSortByStart(t *testing.T) {
	rs := []model.Reservation{
		reservation("c", span(14, 15), model.StatusPending),
		reservation("b", span(10, 11), model.StatusPending),
		reservation("a", span(10, 11), model.StatusPending),
	}
	SortByStart(rs)
	assert.Equal(t, []string{"a", "b", "c"}, []string{rs[0].ID, rs[1].ID, rs[2].ID})
}

func TestIndex_MatchesLinearScan(t *testing.T) {
	var live []model.Reservation
	for h := 0; h < 22; h += 3 {
		live = append(live, reservation(fmt.Sprintf("r%02d", h), span(h, h+2), model.StatusConfirmed))
	}
	live = append(live, reservation("gone", span(2, 3), model.StatusCanceled))
	idx := NewIndex(live)
	assert.Equal(t, 8, idx.Len())

	for start := 0; start < 23; start++ {
		for end := start + 1; end <= 24; end++ {
			candidate := span(start, end)
			want, wantOK := FindReservation(candidate, live)
			got, gotOK := idx.Find(candidate)
			require.Equal(t, wantOK, gotOK, "candidate %d-%d", start, end)
			if wantOK {
				assert.Equal(t, want.ID, got.ID, "candidate %d-%d", start, end)
			}
		}
	}
}
