package model

import "time"

// Reservation statuses.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCanceled   = "canceled"
	StatusNoShow     = "no_show"
)

// Reservation represents a scheduled appointment with a barber.
type Reservation struct {
	ID              string    `json:"id"`
	ClientID        string    `json:"client_id"`
	BarberID        string    `json:"barber_id"`
	ServiceID       string    `json:"service_id"`
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          string    `json:"status"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// EndTime returns the exclusive end of the reservation interval.
func (r *Reservation) EndTime() time.Time {
	return r.StartTime.Add(time.Duration(r.DurationMinutes) * time.Minute)
}

// HoldsCalendar reports whether the reservation occupies the barber's
// timeline and must be conflict-checked against.
func (r *Reservation) HoldsCalendar() bool {
	switch r.Status {
	case StatusPending, StatusConfirmed, StatusInProgress:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are permitted.
func (r *Reservation) IsTerminal() bool {
	switch r.Status {
	case StatusCompleted, StatusCanceled, StatusNoShow:
		return true
	}
	return false
}

// OverlapsInterval checks the reservation against an arbitrary half-open
// interval [start, end). Touching endpoints do not overlap.
func (r *Reservation) OverlapsInterval(start, end time.Time) bool {
	return r.StartTime.Before(end) && start.Before(r.EndTime())
}

// OverlapsWith checks if this reservation overlaps with another.
func (r *Reservation) OverlapsWith(other *Reservation) bool {
	return r.OverlapsInterval(other.StartTime, other.EndTime())
}
