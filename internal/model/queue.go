package model

import (
	"sort"
	"time"
)

// Queue entry statuses.
const (
	QueueWaiting   = "waiting"
	QueueInService = "in_service"
	QueueServed    = "served"
	QueueCanceled  = "canceled"
)

// QueueEntry represents a walk-in client waiting for service.
type QueueEntry struct {
	ID                   string     `json:"id"`
	ClientID             string     `json:"client_id"`
	ServiceID            string     `json:"service_id,omitempty"`
	PreferredBarberID    string     `json:"preferred_barber_id,omitempty"`
	Position             int        `json:"position"`
	EstimatedWaitMinutes int        `json:"estimated_wait_minutes"`
	Status               string     `json:"status"`
	JoinedAt             time.Time  `json:"joined_at"`
	ServedAt             *time.Time `json:"served_at,omitempty"`
}

// IsActive reports whether the entry still occupies the queue.
func (e *QueueEntry) IsActive() bool {
	return e.Status == QueueWaiting || e.Status == QueueInService
}

// Renumber reassigns dense 1-based positions to waiting entries ordered by
// join time and recomputes the wait estimate from the new position. It
// mutates the entries in place and returns the same slice sorted.
func Renumber(waiting []QueueEntry, averageServiceMinutes int) []QueueEntry {
	sort.SliceStable(waiting, func(i, j int) bool {
		if !waiting[i].JoinedAt.Equal(waiting[j].JoinedAt) {
			return waiting[i].JoinedAt.Before(waiting[j].JoinedAt)
		}
		return waiting[i].Position < waiting[j].Position
	})

	for i := range waiting {
		waiting[i].Position = i + 1
		waiting[i].EstimatedWaitMinutes = i * averageServiceMinutes
	}
	return waiting
}
