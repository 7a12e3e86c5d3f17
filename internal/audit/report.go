package audit

import (
	"context"
	"fmt"
	"io"
	"time"

	"turnero/internal/model"
	"turnero/internal/store"
)

// BarberNames resolves barber ids for display.
type BarberNames interface {
	Barber(id string) (*model.Barber, bool)
}

// ServiceNames resolves service ids for display.
type ServiceNames interface {
	Service(id string) (*model.Service, bool)
}

// Reporter builds day reports from the reservation and queue tables.
type Reporter struct {
	db      *store.DB
	barbers BarberNames
	catalog ServiceNames
}

// NewReporter creates a Reporter.
func NewReporter(db *store.DB, barbers BarberNames, catalog ServiceNames) *Reporter {
	return &Reporter{db: db, barbers: barbers, catalog: catalog}
}

// WriteDayReport writes an xlsx workbook for the calendar day containing
// date: one sheet with every reservation, one with every queue entry.
func (r *Reporter) WriteDayReport(ctx context.Context, date time.Time, out io.Writer) error {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	reservations, err := r.db.ListByDay(ctx, dayStart, dayEnd)
	if err != nil {
		return fmt.Errorf("day report reservations: %w", err)
	}
	queue, err := r.db.ListQueueByDay(ctx, dayStart, dayEnd)
	if err != nil {
		return fmt.Errorf("day report queue: %w", err)
	}

	w := newSheetWriter()
	defer w.close()

	if err := w.addSheet("Reservations"); err != nil {
		return err
	}
	if err := w.writeHeader([]string{"Start", "Client", "Barber", "Service", "Duration (min)", "Status", "Notes"}); err != nil {
		return err
	}
	for _, res := range reservations {
		row := []any{
			res.StartTime.Format("15:04"),
			res.ClientID,
			r.barberName(res.BarberID),
			r.serviceName(res.ServiceID),
			res.DurationMinutes,
			res.Status,
			res.Notes,
		}
		if err := w.writeRow(row); err != nil {
			return err
		}
	}

	if err := w.addSheet("Walk-in queue"); err != nil {
		return err
	}
	if err := w.writeHeader([]string{"Joined", "Client", "Service", "Preferred barber", "Status", "Served at"}); err != nil {
		return err
	}
	for _, entry := range queue {
		servedAt := ""
		if entry.ServedAt != nil {
			servedAt = entry.ServedAt.Format("15:04")
		}
		row := []any{
			entry.JoinedAt.Format("15:04"),
			entry.ClientID,
			r.serviceName(entry.ServiceID),
			r.barberName(entry.PreferredBarberID),
			entry.Status,
			servedAt,
		}
		if err := w.writeRow(row); err != nil {
			return err
		}
	}

	return w.save(out)
}

func (r *Reporter) barberName(id string) string {
	if id == "" {
		return ""
	}
	if b, ok := r.barbers.Barber(id); ok {
		return b.Name
	}
	return id
}

func (r *Reporter) serviceName(id string) string {
	if id == "" {
		return ""
	}
	if s, ok := r.catalog.Service(id); ok {
		return s.Name
	}
	return id
}
