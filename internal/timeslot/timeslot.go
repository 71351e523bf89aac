// Package timeslot converts booking requests expressed as a calendar date,
// a local start time and a duration into absolute UTC intervals, and derives
// the cost of an interval from an hourly rate.
package timeslot

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/nhle/venuebook/internal/model"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Clock abstracts the current time so sweeps and tests can pin it.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant.
type FixedClock time.Time

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time { return time.Time(c) }

// Resolve builds the interval starting at date ("YYYY-MM-DD") and
// startTime ("HH:MM"), both read as UTC, lasting durationHours.
// Fractional hours are allowed; the result is truncated to whole seconds.
func Resolve(date, startTime string, durationHours float64) (model.Interval, error) {
	day, err := time.Parse(dateLayout, strings.TrimSpace(date))
	if err != nil {
		return model.Interval{}, model.Invalid("date", "%q is not a YYYY-MM-DD date", date)
	}

	minutes, err := ParseClock(startTime)
	if err != nil {
		return model.Interval{}, err
	}

	if math.IsNaN(durationHours) || math.IsInf(durationHours, 0) || durationHours <= 0 {
		return model.Interval{}, model.Invalid("duration", "must be a positive number of hours, got %v", durationHours)
	}

	start := day.UTC().Add(time.Duration(minutes) * time.Minute)
	length := time.Duration(durationHours * float64(time.Hour)).Truncate(time.Second)
	if length <= 0 {
		return model.Interval{}, model.Invalid("duration", "%v hours rounds down to zero", durationHours)
	}

	return model.Interval{Start: start, End: start.Add(length)}, nil
}

// DayWindow returns the bookable window of date ("YYYY-MM-DD") for a
// resource open from opening to closing ("HH:MM", UTC). Empty bounds mean
// midnight to midnight; a closing time at or before the opening time runs
// into the next day.
func DayWindow(date, opening, closing string) (model.Interval, error) {
	day, err := time.Parse(dateLayout, strings.TrimSpace(date))
	if err != nil {
		return model.Interval{}, model.Invalid("date", "%q is not a YYYY-MM-DD date", date)
	}

	open, closeAt := 0, 24*60
	if opening != "" {
		if open, err = ParseClock(opening); err != nil {
			return model.Interval{}, fmt.Errorf("resource opening time: %w", err)
		}
	}
	if closing != "" {
		if closeAt, err = ParseClock(closing); err != nil {
			return model.Interval{}, fmt.Errorf("resource closing time: %w", err)
		}
	}

	start := day.UTC().Add(time.Duration(open) * time.Minute)
	return model.Interval{Start: start, End: start.Add(windowLength(open, closeAt))}, nil
}

// Validate checks that iv is a non-empty interval.
func Validate(iv model.Interval) error {
	if iv.Start.IsZero() || iv.End.IsZero() {
		return model.Invalid("interval", "start and end are required")
	}
	if !iv.Valid() {
		return model.Invalid("interval", "start %s must be before end %s",
			iv.Start.UTC().Format(time.RFC3339), iv.End.UTC().Format(time.RFC3339))
	}
	return nil
}

// Normalize returns iv in UTC truncated to whole seconds, matching what the
// store persists.
func Normalize(iv model.Interval) model.Interval {
	return model.Interval{
		Start: iv.Start.UTC().Truncate(time.Second),
		End:   iv.End.UTC().Truncate(time.Second),
	}
}

// Cost returns rate per hour times the interval length, rounded to cents.
func Cost(hourlyRate float64, iv model.Interval) float64 {
	if hourlyRate <= 0 || !iv.Valid() {
		return 0
	}
	return math.Round(hourlyRate*iv.Hours()*100) / 100
}

// ParseClock parses "HH:MM" into minutes after midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse(timeLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, model.Invalid("start time", "%q is not an HH:MM time", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// WithinOperatingHours checks that iv falls inside the daily window
// [opening, closing) of the day it starts on. Empty bounds mean the resource
// never closes. A closing time at or before the opening time is read as
// closing after midnight.
func WithinOperatingHours(iv model.Interval, opening, closing string) error {
	if opening == "" && closing == "" {
		return nil
	}

	open := 0
	if opening != "" {
		m, err := ParseClock(opening)
		if err != nil {
			return fmt.Errorf("resource opening time: %w", err)
		}
		open = m
	}
	closeAt := 24 * 60
	if closing != "" {
		m, err := ParseClock(closing)
		if err != nil {
			return fmt.Errorf("resource closing time: %w", err)
		}
		closeAt = m
	}

	start := iv.Start.UTC()
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)

	windowStart := day.Add(time.Duration(open) * time.Minute)
	if start.Before(windowStart) {
		// An overnight window opened the previous day may still cover start.
		windowStart = windowStart.Add(-24 * time.Hour)
	}
	windowEnd := windowStart.Add(windowLength(open, closeAt))

	if start.Before(windowStart) || iv.End.After(windowEnd) {
		return model.Invalid("interval", "%s is outside operating hours %s-%s",
			iv, clockOrDefault(opening, "00:00"), clockOrDefault(closing, "24:00"))
	}
	return nil
}

func windowLength(open, closeAt int) time.Duration {
	length := closeAt - open
	if length <= 0 {
		length += 24 * 60
	}
	return time.Duration(length) * time.Minute
}

func clockOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
