package timeslot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/venuebook/internal/model"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 3, 14, hour, minute, 0, 0, time.UTC)
}

func TestResolve(t *testing.T) {
	iv, err := Resolve("2025-03-14", "10:30", 2)
	require.NoError(t, err)
	assert.Equal(t, at(10, 30), iv.Start)
	assert.Equal(t, at(12, 30), iv.End)

	iv, err = Resolve("2025-03-14", "23:00", 1.5)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 30, 0, 0, time.UTC), iv.End)
}

func TestResolve_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		date  string
		start string
		hours float64
		field string
	}{
		{"bad date", "14/03/2025", "10:00", 1, "date"},
		{"bad time", "2025-03-14", "10am", 1, "start time"},
		{"zero duration", "2025-03-14", "10:00", 0, "duration"},
		{"negative duration", "2025-03-14", "10:00", -2, "duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.date, tt.start, tt.hours)
			ve, ok := model.AsValidation(err)
			require.True(t, ok, "expected ValidationError, got %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(model.Interval{Start: at(10, 0), End: at(11, 0)}))
	assert.Error(t, Validate(model.Interval{Start: at(11, 0), End: at(11, 0)}))
	assert.Error(t, Validate(model.Interval{Start: at(12, 0), End: at(11, 0)}))
	assert.Error(t, Validate(model.Interval{}))
}

func TestCost(t *testing.T) {
	two := model.Interval{Start: at(10, 0), End: at(12, 0)}
	assert.Equal(t, 100.0, Cost(50, two))

	ninety := model.Interval{Start: at(10, 0), End: at(11, 30)}
	assert.Equal(t, 37.5, Cost(25, ninety))

	assert.Equal(t, 0.0, Cost(0, two))
	assert.Equal(t, 0.0, Cost(50, model.Interval{Start: at(12, 0), End: at(10, 0)}))
}

func TestWithinOperatingHours(t *testing.T) {
	day := model.Interval{Start: at(10, 0), End: at(12, 0)}
	assert.NoError(t, WithinOperatingHours(day, "", ""))
	assert.NoError(t, WithinOperatingHours(day, "08:00", "22:00"))
	assert.NoError(t, WithinOperatingHours(model.Interval{Start: at(20, 0), End: at(22, 0)}, "08:00", "22:00"))

	early := model.Interval{Start: at(7, 0), End: at(9, 0)}
	assert.Error(t, WithinOperatingHours(early, "08:00", "22:00"))

	late := model.Interval{Start: at(21, 0), End: at(23, 0)}
	assert.Error(t, WithinOperatingHours(late, "08:00", "22:00"))
}

func TestWithinOperatingHours_Overnight(t *testing.T) {
	evening := model.Interval{Start: at(23, 0), End: at(23, 0).Add(2 * time.Hour)}
	assert.NoError(t, WithinOperatingHours(evening, "18:00", "02:00"))

	afterMidnight := model.Interval{Start: at(0, 30), End: at(1, 30)}
	assert.NoError(t, WithinOperatingHours(afterMidnight, "18:00", "02:00"))

	midday := model.Interval{Start: at(12, 0), End: at(13, 0)}
	assert.Error(t, WithinOperatingHours(midday, "18:00", "02:00"))
}

func TestFixedClock(t *testing.T) {
	c := FixedClock(at(9, 0))
	assert.Equal(t, at(9, 0), c.Now())
}

func TestDayWindow(t *testing.T) {
	tests := []struct {
		name             string
		opening, closing string
		start, end       time.Time
	}{
		{"always open", "", "", at(0, 0), at(0, 0).Add(24 * time.Hour)},
		{"daytime", "08:00", "20:30", at(8, 0), at(20, 30)},
		{"opens only", "09:00", "", at(9, 0), at(0, 0).Add(24 * time.Hour)},
		{"overnight", "18:00", "02:00", at(18, 0), at(0, 0).Add(26 * time.Hour)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iv, err := DayWindow("2025-03-14", tt.opening, tt.closing)
			require.NoError(t, err)
			assert.Equal(t, tt.start, iv.Start)
			assert.Equal(t, tt.end, iv.End)
		})
	}

	_, err := DayWindow("14/03/2025", "", "")
	_, isValidation := model.AsValidation(err)
	assert.True(t, isValidation)

	_, err = DayWindow("2025-03-14", "8am", "")
	assert.ErrorContains(t, err, "opening time")
}
