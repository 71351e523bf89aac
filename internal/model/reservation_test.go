package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/venuebook/internal/model"
)

func TestReservationStatusPredicates(t *testing.T) {
	tests := []struct {
		status   model.ReservationStatus
		live     bool
		terminal bool
		valid    bool
	}{
		{model.StatusPending, true, false, true},
		{model.StatusConfirmed, true, false, true},
		{model.StatusCanceled, false, true, true},
		{model.StatusCompleted, false, true, true},
		{"archived", false, false, false},
		{"", false, false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.live, tt.status.IsLive())
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
			assert.Equal(t, tt.valid, tt.status.Valid())
		})
	}
}

func TestIntervalLength(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	iv := model.Interval{Start: start, End: start.Add(90 * time.Minute)}

	assert.True(t, iv.Valid())
	assert.Equal(t, 90*time.Minute, iv.Duration())
	assert.InDelta(t, 1.5, iv.Hours(), 1e-9)

	assert.False(t, model.Interval{Start: start, End: start}.Valid())
}
