package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"turnero/internal/events"
	"turnero/internal/metrics"
	"turnero/internal/model"
)

// RunNoShowSweeper periodically marks overdue confirmed reservations as
// no-shows and offers the freed slots to the walk-in queue. Blocks until
// the context is canceled.
func (s *Service) RunNoShowSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", interval).Msg("no-show sweeper started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("no-show sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.SweepNoShows(ctx); err != nil {
				s.logger.Error().Err(err).Msg("no-show sweep")
			}
		}
	}
}

// SweepNoShows marks confirmed reservations whose start passed more than the
// configured tolerance ago as NO_SHOW and tries to reassign each freed slot
// to the head of the queue. Returns how many reservations were marked.
func (s *Service) SweepNoShows(ctx context.Context) (int, error) {
	cutoff := s.clock.Now().Add(-s.cfg.NoShowTolerance)
	overdue, err := s.db.ListOverdueConfirmed(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	swept := 0
	for i := range overdue {
		r := overdue[i]
		if _, err := s.transition(ctx, r.ID, model.StatusNoShow); err != nil {
			// Someone may have started or canceled it between the
			// listing and the guard; skip and move on.
			s.logger.Warn().Err(err).Str("reservation_id", r.ID).Msg("no-show mark skipped")
			continue
		}
		swept++
		metrics.IncNoShowSwept()

		if err := s.promoteFromQueue(ctx, &r); err != nil {
			s.logger.Error().Err(err).Str("reservation_id", r.ID).Msg("queue promotion")
		}
	}
	return swept, nil
}

// promoteFromQueue offers a freed slot to the first waiting client whose
// barber preference matches. The new reservation is created first; the queue
// entry is only closed once the slot is secured.
func (s *Service) promoteFromQueue(ctx context.Context, freed *model.Reservation) error {
	if err := s.queueLock.acquire(ctx, s.cfg.LockTimeout); err != nil {
		return err
	}
	defer s.queueLock.release()

	waiting, err := s.db.ListWaiting(ctx)
	if err != nil {
		return err
	}

	var candidate *model.QueueEntry
	for i := range waiting {
		if waiting[i].PreferredBarberID == "" || waiting[i].PreferredBarberID == freed.BarberID {
			candidate = &waiting[i]
			break
		}
	}
	if candidate == nil {
		return nil
	}

	serviceID := candidate.ServiceID
	if serviceID == "" {
		serviceID = freed.ServiceID
	}
	now := s.clock.Now()
	r := &model.Reservation{
		ID:              uuid.NewString(),
		ClientID:        candidate.ClientID,
		BarberID:        freed.BarberID,
		ServiceID:       serviceID,
		StartTime:       freed.StartTime,
		DurationMinutes: freed.DurationMinutes,
		Status:          model.StatusPending,
		Notes:           "reassigned from walk-in queue",
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	release, err := s.barberLocks.acquire(ctx, freed.BarberID, s.cfg.LockTimeout)
	if err != nil {
		return err
	}
	inserted, err := s.db.CreateReservationIfFree(ctx, r)
	release()
	if err != nil {
		return err
	}
	if !inserted {
		// The slot was taken in the meantime; the client keeps waiting.
		return nil
	}

	candidate.Status = model.QueueServed
	candidate.ServedAt = &now

	remaining := make([]model.QueueEntry, 0, len(waiting))
	for _, w := range waiting {
		if w.ID != candidate.ID {
			remaining = append(remaining, w)
		}
	}
	renumbered := model.Renumber(remaining, s.cfg.AverageServiceMinutes)
	if err := s.db.ApplyQueueChange(ctx, candidate, renumbered); err != nil {
		return err
	}

	metrics.IncReservationStatus(r.Status)
	s.bus.Publish(events.Event{
		Type: events.TypeReservationCreated,
		Payload: events.ReservationChange{
			ReservationID: r.ID,
			BarberID:      r.BarberID,
			ClientID:      r.ClientID,
			To:            r.Status,
		},
		CreatedAt: now,
	})
	s.publishQueueChanged(ctx, "promote")
	s.logger.Info().
		Str("client_id", candidate.ClientID).
		Str("reservation_id", r.ID).
		Str("barber_id", freed.BarberID).
		Msg("queue client promoted into freed slot")

	return nil
}
