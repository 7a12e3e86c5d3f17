// Package scheduling implements the appointment and walk-in queue core:
// availability queries, the reservation lifecycle and the ordered queue,
// behind per-resource guards.
package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"turnero/internal/clock"
	"turnero/internal/events"
	"turnero/internal/metrics"
	"turnero/internal/model"
	"turnero/internal/slots"
	"turnero/internal/store"
)

// BarberDirectory supplies barber snapshots from the barber-management
// collaborator.
type BarberDirectory interface {
	Barber(id string) (*model.Barber, bool)
}

// ServiceCatalog supplies service metadata from the catalog collaborator.
type ServiceCatalog interface {
	Service(id string) (*model.Service, bool)
}

// Config holds tunables for the scheduling core.
type Config struct {
	SlotGranularityMinutes int
	DefaultServiceMinutes  int
	AverageServiceMinutes  int
	MinServiceMinutes      int
	LockTimeout            time.Duration
	NoShowTolerance        time.Duration
}

func (c *Config) applyDefaults() {
	if c.SlotGranularityMinutes <= 0 {
		c.SlotGranularityMinutes = 30
	}
	if c.DefaultServiceMinutes <= 0 {
		c.DefaultServiceMinutes = 45
	}
	if c.AverageServiceMinutes <= 0 {
		c.AverageServiceMinutes = 45
	}
	if c.MinServiceMinutes <= 0 {
		c.MinServiceMinutes = 30
	}
	if c.LockTimeout <= 0 {
		c.LockTimeout = 3 * time.Second
	}
	if c.NoShowTolerance <= 0 {
		c.NoShowTolerance = 10 * time.Minute
	}
}

// Service composes the availability calculator, the reservation store and
// the queue manager behind the operations exposed to callers.
type Service struct {
	db      *store.DB
	calc    *slots.Calculator
	barbers BarberDirectory
	catalog ServiceCatalog
	clock   clock.Clock
	bus     *events.Bus
	cfg     Config

	lifecycle   *lifecycle
	barberLocks *keyedLocks
	queueLock   semaphore

	logger *zerolog.Logger
}

// New creates the scheduling service.
func New(db *store.DB, barbers BarberDirectory, catalog ServiceCatalog, clk clock.Clock, bus *events.Bus, cfg Config, logger *zerolog.Logger) *Service {
	cfg.applyDefaults()
	if clk == nil {
		clk = clock.System()
	}
	if bus == nil {
		bus = events.NewBus()
	}
	return &Service{
		db:          db,
		calc:        slots.NewCalculator(cfg.SlotGranularityMinutes, cfg.DefaultServiceMinutes),
		barbers:     barbers,
		catalog:     catalog,
		clock:       clk,
		bus:         bus,
		cfg:         cfg,
		lifecycle:   newLifecycle(),
		barberLocks: newKeyedLocks(),
		queueLock:   newSemaphore(),
		logger:      logger,
	}
}

// DayAvailability holds the bookable slots for one date.
type DayAvailability struct {
	Date  time.Time   `json:"date"`
	Slots []time.Time `json:"slots"`
}

// GetAvailability returns the bookable slot starts for the barber on the
// given date, using the default service length.
func (s *Service) GetAvailability(ctx context.Context, barberID string, date time.Time) ([]time.Time, error) {
	return s.availability(ctx, barberID, date, 0)
}

// GetAvailabilityForService returns the bookable slot starts sized for the
// requested service.
func (s *Service) GetAvailabilityForService(ctx context.Context, barberID, serviceID string, date time.Time) ([]time.Time, error) {
	svc, ok := s.catalog.Service(serviceID)
	if !ok {
		return nil, fmt.Errorf("service %s: %w", serviceID, ErrNotFound)
	}
	return s.availability(ctx, barberID, date, s.effectiveDuration(svc.DurationMinutes))
}

// GetAvailabilityRange returns per-date availability for consecutive days
// starting at from.
func (s *Service) GetAvailabilityRange(ctx context.Context, barberID string, from time.Time, days int) ([]DayAvailability, error) {
	if days <= 0 {
		days = 7
	}
	out := make([]DayAvailability, 0, days)
	for i := 0; i < days; i++ {
		date := from.AddDate(0, 0, i)
		slotsForDay, err := s.availability(ctx, barberID, date, 0)
		if err != nil {
			return nil, err
		}
		out = append(out, DayAvailability{Date: date, Slots: slotsForDay})
	}
	return out, nil
}

func (s *Service) availability(ctx context.Context, barberID string, date time.Time, serviceMinutes int) ([]time.Time, error) {
	barber, ok := s.barbers.Barber(barberID)
	if !ok {
		return nil, fmt.Errorf("barber %s: %w", barberID, ErrNotFound)
	}

	hours, ok := barber.HoursFor(date.Weekday())
	if !ok {
		return nil, nil
	}

	existing, err := s.db.ListCalendarHolding(ctx, barberID)
	if err != nil {
		return nil, err
	}

	return s.calc.ComputeSlots(date, hours, existing, serviceMinutes)
}

// CreateReservationInput carries the fields for a new reservation.
type CreateReservationInput struct {
	ClientID        string
	BarberID        string
	ServiceID       string
	StartTime       time.Time
	DurationMinutes int
	Notes           string
}

// CreateReservation validates the input, re-checks the interval against all
// calendar-holding reservations for the barber and inserts a PENDING record.
// The check and insert run under the barber's guard; concurrent conflicting
// calls cannot both succeed.
func (s *Service) CreateReservation(ctx context.Context, in CreateReservationInput) (*model.Reservation, error) {
	if in.ClientID == "" || in.BarberID == "" || in.ServiceID == "" {
		return nil, fmt.Errorf("client_id, barber_id and service_id are required: %w", ErrValidation)
	}
	if in.DurationMinutes < 0 {
		return nil, fmt.Errorf("duration must not be negative: %w", ErrValidation)
	}
	if _, ok := s.barbers.Barber(in.BarberID); !ok {
		return nil, fmt.Errorf("barber %s: %w", in.BarberID, ErrNotFound)
	}
	if !in.StartTime.After(s.clock.Now()) {
		return nil, fmt.Errorf("start time must be in the future: %w", ErrValidation)
	}

	duration := in.DurationMinutes
	if duration == 0 {
		if svc, ok := s.catalog.Service(in.ServiceID); ok {
			duration = svc.DurationMinutes
		} else {
			duration = s.cfg.DefaultServiceMinutes
		}
	}
	duration = s.effectiveDuration(duration)

	now := s.clock.Now()
	r := &model.Reservation{
		ID:              uuid.NewString(),
		ClientID:        in.ClientID,
		BarberID:        in.BarberID,
		ServiceID:       in.ServiceID,
		StartTime:       in.StartTime,
		DurationMinutes: duration,
		Status:          model.StatusPending,
		Notes:           in.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	release, err := s.barberLocks.acquire(ctx, in.BarberID, s.cfg.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer release()

	return s.createLocked(ctx, r)
}

// createLocked inserts the reservation; the caller must hold the barber's
// guard.
func (s *Service) createLocked(ctx context.Context, r *model.Reservation) (*model.Reservation, error) {
	inserted, err := s.db.CreateReservationIfFree(ctx, r)
	if err != nil {
		return nil, err
	}
	if !inserted {
		metrics.IncSlotConflict()
		return nil, fmt.Errorf("barber %s at %s: %w",
			r.BarberID, r.StartTime.Format("2006-01-02 15:04"), ErrSlotConflict)
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
		CreatedAt: s.clock.Now(),
	})
	s.logger.Info().
		Str("reservation_id", r.ID).
		Str("barber_id", r.BarberID).
		Time("start", r.StartTime).
		Msg("reservation created")

	return r, nil
}

// ConfirmReservation moves a PENDING reservation to CONFIRMED.
func (s *Service) ConfirmReservation(ctx context.Context, id string) (*model.Reservation, error) {
	return s.transition(ctx, id, model.StatusConfirmed)
}

// StartReservation moves a CONFIRMED reservation to IN_PROGRESS.
func (s *Service) StartReservation(ctx context.Context, id string) (*model.Reservation, error) {
	return s.transition(ctx, id, model.StatusInProgress)
}

// FinishReservation moves an IN_PROGRESS reservation to COMPLETED.
func (s *Service) FinishReservation(ctx context.Context, id string) (*model.Reservation, error) {
	return s.transition(ctx, id, model.StatusCompleted)
}

// CancelReservation cancels a PENDING or CONFIRMED reservation.
func (s *Service) CancelReservation(ctx context.Context, id string) (*model.Reservation, error) {
	return s.transition(ctx, id, model.StatusCanceled)
}

// MarkNoShow marks a CONFIRMED reservation as NO_SHOW.
func (s *Service) MarkNoShow(ctx context.Context, id string) (*model.Reservation, error) {
	return s.transition(ctx, id, model.StatusNoShow)
}

func (s *Service) transition(ctx context.Context, id, to string) (*model.Reservation, error) {
	r, err := s.db.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("reservation %s: %w", id, ErrNotFound)
	}

	release, err := s.barberLocks.acquire(ctx, r.BarberID, s.cfg.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer release()

	// Re-read inside the guard; the status may have moved.
	r, err = s.db.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("reservation %s: %w", id, ErrNotFound)
	}

	if !s.lifecycle.CanTransition(r.Status, to) {
		return nil, fmt.Errorf("%s -> %s: %w", r.Status, to, ErrInvalidTransition)
	}

	now := s.clock.Now()
	if err := s.db.UpdateReservationStatus(ctx, id, to, now); err != nil {
		return nil, err
	}

	from := r.Status
	r.Status = to
	r.UpdatedAt = now

	metrics.IncReservationStatus(to)
	s.bus.Publish(events.Event{
		Type: events.TypeReservationStatusChanged,
		Payload: events.ReservationChange{
			ReservationID: r.ID,
			BarberID:      r.BarberID,
			ClientID:      r.ClientID,
			From:          from,
			To:            to,
		},
		CreatedAt: now,
	})
	s.logger.Info().
		Str("reservation_id", r.ID).
		Str("from", from).
		Str("to", to).
		Msg("reservation status changed")

	return r, nil
}

// ListReservationsByBarberAndDate returns the barber's reservations for the
// calendar day containing date.
func (s *Service) ListReservationsByBarberAndDate(ctx context.Context, barberID string, date time.Time) ([]model.Reservation, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return s.db.ListByBarberAndDay(ctx, barberID, dayStart, dayStart.AddDate(0, 0, 1))
}

// ListReservationsByClient returns all reservations for a client.
func (s *Service) ListReservationsByClient(ctx context.Context, clientID string) ([]model.Reservation, error) {
	return s.db.ListByClient(ctx, clientID)
}

func (s *Service) effectiveDuration(minutes int) int {
	if minutes < s.cfg.MinServiceMinutes {
		return s.cfg.MinServiceMinutes
	}
	return minutes
}
