// Package conflict decides whether a candidate interval overlaps any of the
// live intervals already booked on a resource.
//
// Intervals are half-open: [a,b) and [c,d) overlap iff a < d && c < b, so
// back-to-back bookings that merely touch do not conflict.
package conflict

import (
	"sort"

	"github.com/nhle/venuebook/internal/model"
)

// Overlaps reports whether two half-open intervals share any instant.
func Overlaps(a, b model.Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// FindReservation scans live reservations in order and returns the first
// whose interval overlaps candidate. Non-live reservations are skipped.
func FindReservation(candidate model.Interval, existing []model.Reservation) (model.Reservation, bool) {
	for _, r := range existing {
		if !r.IsLive() {
			continue
		}
		if Overlaps(candidate, r.Interval) {
			return r, true
		}
	}
	return model.Reservation{}, false
}

// SortByStart orders reservations by interval start, then by ID, so the
// reported conflict is deterministic.
func SortByStart(rs []model.Reservation) {
	sort.SliceStable(rs, func(i, j int) bool {
		if !rs[i].Interval.Start.Equal(rs[j].Interval.Start) {
			return rs[i].Interval.Start.Before(rs[j].Interval.Start)
		}
		return rs[i].ID < rs[j].ID
	})
}

// Index holds the live, mutually non-overlapping intervals of one resource
// sorted by start, answering overlap queries in O(log n).
type Index struct {
	entries []model.Reservation
}

// NewIndex builds an index over the live reservations in rs.
func NewIndex(rs []model.Reservation) *Index {
	entries := make([]model.Reservation, 0, len(rs))
	for _, r := range rs {
		if r.IsLive() {
			entries = append(entries, r)
		}
	}
	SortByStart(entries)
	return &Index{entries: entries}
}

// Len returns the number of indexed reservations.
func (x *Index) Len() int { return len(x.entries) }

// Find returns the earliest-starting indexed reservation that overlaps
// candidate.
//
// Because indexed intervals never overlap each other, their end times are
// sorted too, so the first entry ending after candidate.Start is the only
// one that needs checking.
func (x *Index) Find(candidate model.Interval) (model.Reservation, bool) {
	i := sort.Search(len(x.entries), func(i int) bool {
		return x.entries[i].Interval.End.After(candidate.Start)
	})
	if i < len(x.entries) && Overlaps(candidate, x.entries[i].Interval) {
		return x.entries[i], true
	}
	return model.Reservation{}, false
}
