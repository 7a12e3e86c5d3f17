// Package slots computes bookable time slots for a barber's day.
package slots

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"turnero/internal/model"
)

const (
	// DefaultGranularityMinutes is the step between candidate slot starts.
	DefaultGranularityMinutes = 30

	// DefaultServiceMinutes is the assumed service length when no specific
	// service has been selected yet.
	DefaultServiceMinutes = 45
)

// Calculator produces bookable slots for a date given working hours and
// existing reservations. It is a pure query; it never mutates anything.
type Calculator struct {
	granularityMinutes int
	defaultMinutes     int
}

// NewCalculator creates a calculator. Non-positive arguments fall back to
// the defaults.
func NewCalculator(granularityMinutes, defaultServiceMinutes int) *Calculator {
	if granularityMinutes <= 0 {
		granularityMinutes = DefaultGranularityMinutes
	}
	if defaultServiceMinutes <= 0 {
		defaultServiceMinutes = DefaultServiceMinutes
	}
	return &Calculator{
		granularityMinutes: granularityMinutes,
		defaultMinutes:     defaultServiceMinutes,
	}
}

// ComputeSlots enumerates candidate starts at the configured granularity
// inside the working window for date and keeps those whose would-be interval
// overlaps no calendar-holding reservation. serviceMinutes selects the
// interval length; pass 0 to use the default. Output is sorted ascending.
func (c *Calculator) ComputeSlots(date time.Time, hours model.WorkingHours, existing []model.Reservation, serviceMinutes int) ([]time.Time, error) {
	if !hours.Active {
		return nil, nil
	}
	if serviceMinutes <= 0 {
		serviceMinutes = c.defaultMinutes
	}

	open, err := parseTimeOnDate(date, hours.Start)
	if err != nil {
		return nil, fmt.Errorf("parse open time: %w", err)
	}
	close, err := parseTimeOnDate(date, hours.End)
	if err != nil {
		return nil, fmt.Errorf("parse close time: %w", err)
	}

	step := time.Duration(c.granularityMinutes) * time.Minute
	length := time.Duration(serviceMinutes) * time.Minute

	var out []time.Time
	for cursor := open; cursor.Before(close); cursor = cursor.Add(step) {
		slotEnd := cursor.Add(length)

		blocked := false
		for i := range existing {
			r := &existing[i]
			if !r.HoldsCalendar() {
				continue
			}
			if r.OverlapsInterval(cursor, slotEnd) {
				blocked = true
				break
			}
		}
		if !blocked {
			out = append(out, cursor)
		}
	}
	return out, nil
}

func parseTimeOnDate(date time.Time, timeStr string) (time.Time, error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) < 2 {
		return time.Time{}, fmt.Errorf("invalid time format: %s", timeStr)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid hour: %w", err)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid minute: %w", err)
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("time out of range: %s", timeStr)
	}

	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location()), nil
}
