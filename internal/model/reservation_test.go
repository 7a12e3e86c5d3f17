package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func datetime(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func TestReservation_EndTime(t *testing.T) {
	r := Reservation{
		StartTime:       datetime(2026, 3, 10, 9, 0),
		DurationMinutes: 45,
	}
	assert.Equal(t, datetime(2026, 3, 10, 9, 45), r.EndTime())
}

func TestReservation_HoldsCalendar(t *testing.T) {
	holding := []string{StatusPending, StatusConfirmed, StatusInProgress}
	for _, st := range holding {
		r := Reservation{Status: st}
		assert.True(t, r.HoldsCalendar(), st)
		assert.False(t, r.IsTerminal(), st)
	}

	terminal := []string{StatusCompleted, StatusCanceled, StatusNoShow}
	for _, st := range terminal {
		r := Reservation{Status: st}
		assert.False(t, r.HoldsCalendar(), st)
		assert.True(t, r.IsTerminal(), st)
	}
}

func TestReservation_OverlapsInterval(t *testing.T) {
	existing := Reservation{
		StartTime:       datetime(2026, 3, 10, 9, 0),
		DurationMinutes: 45,
	}

	// Touching endpoints do not overlap (half-open intervals).
	assert.False(t, existing.OverlapsInterval(datetime(2026, 3, 10, 8, 0), datetime(2026, 3, 10, 9, 0)))
	assert.False(t, existing.OverlapsInterval(datetime(2026, 3, 10, 9, 45), datetime(2026, 3, 10, 10, 30)))

	// Candidate ending inside the existing interval.
	assert.True(t, existing.OverlapsInterval(datetime(2026, 3, 10, 8, 30), datetime(2026, 3, 10, 9, 15)))

	// Identical interval.
	assert.True(t, existing.OverlapsInterval(datetime(2026, 3, 10, 9, 0), datetime(2026, 3, 10, 9, 45)))

	// Candidate starting inside the existing interval.
	assert.True(t, existing.OverlapsInterval(datetime(2026, 3, 10, 9, 30), datetime(2026, 3, 10, 10, 15)))

	// Fully after.
	assert.False(t, existing.OverlapsInterval(datetime(2026, 3, 10, 10, 0), datetime(2026, 3, 10, 10, 45)))
}

func TestReservation_OverlapsWith(t *testing.T) {
	a := Reservation{StartTime: datetime(2026, 3, 10, 10, 0), DurationMinutes: 60}
	b := Reservation{StartTime: datetime(2026, 3, 10, 10, 30), DurationMinutes: 60}
	c := Reservation{StartTime: datetime(2026, 3, 10, 11, 0), DurationMinutes: 30}

	assert.True(t, a.OverlapsWith(&b))
	assert.True(t, b.OverlapsWith(&a))
	assert.False(t, a.OverlapsWith(&c))
}

func TestBarber_HoursFor(t *testing.T) {
	b := Barber{
		ID: "b1",
		Hours: []WorkingHours{
			{Weekday: time.Monday, Start: "08:00", End: "18:00", Active: true},
			{Weekday: time.Tuesday, Start: "10:00", End: "20:00", Active: false},
		},
	}

	wh, ok := b.HoursFor(time.Monday)
	assert.True(t, ok)
	assert.Equal(t, "08:00", wh.Start)

	wh, ok = b.HoursFor(time.Tuesday)
	assert.True(t, ok)
	assert.False(t, wh.Active)

	_, ok = b.HoursFor(time.Sunday)
	assert.False(t, ok)
}
