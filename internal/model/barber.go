package model

import "time"

// WorkingHours describes a barber's working window for one weekday.
// Start and End are local times of day in "15:04" format.
type WorkingHours struct {
	Weekday time.Weekday `json:"weekday"`
	Start   string       `json:"start"`
	End     string       `json:"end"`
	Active  bool         `json:"active"`
}

// Barber is an immutable snapshot of a barber supplied by the
// barber-management collaborator.
type Barber struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Hours []WorkingHours `json:"hours"`
}

// HoursFor returns the working window for the given weekday, if any.
// At most one entry per weekday is honored; the first match wins.
func (b *Barber) HoursFor(day time.Weekday) (WorkingHours, bool) {
	for _, wh := range b.Hours {
		if wh.Weekday == day {
			return wh, true
		}
	}
	return WorkingHours{}, false
}

// Service is an immutable snapshot of a catalog service.
type Service struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	Price           int64  `json:"price"`
}
