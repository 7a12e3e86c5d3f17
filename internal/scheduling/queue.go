package scheduling

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"turnero/internal/events"
	"turnero/internal/metrics"
	"turnero/internal/model"
)

// JoinQueue appends a client to the walk-in queue. A client may hold at most
// one waiting entry at a time.
func (s *Service) JoinQueue(ctx context.Context, clientID, serviceID, preferredBarberID string) (*model.QueueEntry, error) {
	if clientID == "" {
		return nil, fmt.Errorf("client_id is required: %w", ErrValidation)
	}

	if err := s.queueLock.acquire(ctx, s.cfg.LockTimeout); err != nil {
		return nil, err
	}
	defer s.queueLock.release()

	existing, err := s.db.GetQueueEntryByClient(ctx, clientID, model.QueueWaiting)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("client %s: %w", clientID, ErrAlreadyQueued)
	}

	waiting, err := s.db.ListWaiting(ctx)
	if err != nil {
		return nil, err
	}

	entry := &model.QueueEntry{
		ID:                   uuid.NewString(),
		ClientID:             clientID,
		ServiceID:            serviceID,
		PreferredBarberID:    preferredBarberID,
		Position:             len(waiting) + 1,
		EstimatedWaitMinutes: len(waiting) * s.cfg.AverageServiceMinutes,
		Status:               model.QueueWaiting,
		JoinedAt:             s.clock.Now(),
	}
	if err := s.db.InsertQueueEntry(ctx, entry); err != nil {
		return nil, err
	}

	metrics.IncQueueJoined()
	s.publishQueueChanged(ctx, "join")
	s.logger.Info().
		Str("client_id", clientID).
		Int("position", entry.Position).
		Msg("client joined queue")

	return entry, nil
}

// LeaveQueue removes a client's waiting entry and closes the position gap.
func (s *Service) LeaveQueue(ctx context.Context, clientID string) error {
	if err := s.queueLock.acquire(ctx, s.cfg.LockTimeout); err != nil {
		return err
	}
	defer s.queueLock.release()

	entry, err := s.db.GetQueueEntryByClient(ctx, clientID, model.QueueWaiting)
	if err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("client %s: %w", clientID, ErrNotQueued)
	}

	waiting, err := s.db.ListWaiting(ctx)
	if err != nil {
		return err
	}
	remaining := make([]model.QueueEntry, 0, len(waiting))
	for _, w := range waiting {
		if w.ID != entry.ID {
			remaining = append(remaining, w)
		}
	}

	entry.Status = model.QueueCanceled
	renumbered := model.Renumber(remaining, s.cfg.AverageServiceMinutes)
	if err := s.db.ApplyQueueChange(ctx, entry, renumbered); err != nil {
		return err
	}

	s.publishQueueChanged(ctx, "leave")
	s.logger.Info().Str("client_id", clientID).Msg("client left queue")
	return nil
}

// AdvanceQueue takes the head of the queue into service and shifts everyone
// else up one position. Returns nil without error when the queue is empty.
func (s *Service) AdvanceQueue(ctx context.Context) (*model.QueueEntry, error) {
	if err := s.queueLock.acquire(ctx, s.cfg.LockTimeout); err != nil {
		return nil, err
	}
	defer s.queueLock.release()

	waiting, err := s.db.ListWaiting(ctx)
	if err != nil {
		return nil, err
	}
	if len(waiting) == 0 {
		return nil, nil
	}

	head := waiting[0]
	now := s.clock.Now()
	head.Status = model.QueueInService
	head.ServedAt = &now

	renumbered := model.Renumber(waiting[1:], s.cfg.AverageServiceMinutes)
	if err := s.db.ApplyQueueChange(ctx, &head, renumbered); err != nil {
		return nil, err
	}

	s.publishQueueChanged(ctx, "advance")
	s.logger.Info().
		Str("client_id", head.ClientID).
		Str("entry_id", head.ID).
		Msg("queue advanced")

	return &head, nil
}

// FinishQueueService marks a client's in-service entry as served.
func (s *Service) FinishQueueService(ctx context.Context, clientID string) error {
	if err := s.queueLock.acquire(ctx, s.cfg.LockTimeout); err != nil {
		return err
	}
	defer s.queueLock.release()

	entry, err := s.db.GetQueueEntryByClient(ctx, clientID, model.QueueInService)
	if err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("client %s: %w", clientID, ErrNotInService)
	}

	entry.Status = model.QueueServed
	if err := s.db.ApplyQueueChange(ctx, entry, nil); err != nil {
		return err
	}

	s.publishQueueChanged(ctx, "finish")
	s.logger.Info().Str("client_id", clientID).Msg("queue service finished")
	return nil
}

// GetMyQueuePosition returns the client's waiting entry, or nil when the
// client is not queued.
func (s *Service) GetMyQueuePosition(ctx context.Context, clientID string) (*model.QueueEntry, error) {
	return s.db.GetQueueEntryByClient(ctx, clientID, model.QueueWaiting)
}

// ListQueue returns the waiting entries in position order.
func (s *Service) ListQueue(ctx context.Context) ([]model.QueueEntry, error) {
	return s.db.ListWaiting(ctx)
}

// publishQueueChanged reads the current waiting set and fans it out. The
// caller must hold the queue guard so the snapshot matches the change.
func (s *Service) publishQueueChanged(ctx context.Context, reason string) {
	waiting, err := s.db.ListWaiting(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("queue snapshot after change")
		return
	}
	metrics.SetQueueLength(len(waiting))
	s.bus.Publish(events.Event{
		Type:      events.TypeQueueChanged,
		Payload:   events.QueueChange{Reason: reason, Waiting: waiting},
		CreatedAt: s.clock.Now(),
	})
}
