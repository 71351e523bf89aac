package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/nhle/venuebook/internal/model"
	"github.com/nhle/venuebook/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(store.MemoryPath)
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// AddResource registers a venue owned by ownerID charging rate per hour.
func AddResource(t *testing.T, s store.Store, id, ownerID string, rate float64) model.Resource {
	t.Helper()

	res, err := s.UpsertResource(context.Background(), model.Resource{
		ID:         id,
		Name:       "Court " + id,
		OwnerID:    ownerID,
		HourlyRate: rate,
	})
	if err != nil {
		t.Fatalf("adding resource %s: %v", id, err)
	}
	return res
}

// Day is the reference date used by tests: 2025-06-01 00:00 UTC.
var Day = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

// Hours returns the interval [Day+start, Day+end) in whole hours.
func Hours(start, end int) model.Interval {
	return model.Interval{
		Start: Day.Add(time.Duration(start) * time.Hour),
		End:   Day.Add(time.Duration(end) * time.Hour),
	}
}
