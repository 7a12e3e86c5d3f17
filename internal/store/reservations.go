package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"turnero/internal/model"
)

const reservationColumns = `id, client_id, barber_id, service_id, start_time,
	duration_minutes, status, notes, created_at, updated_at`

// CreateReservationIfFree inserts the reservation unless its interval
// overlaps a calendar-holding reservation for the same barber. The overlap
// check and the insert run in one transaction; inserted reports whether the
// row was written.
func (db *DB) CreateReservationIfFree(ctx context.Context, r *model.Reservation) (inserted bool, err error) {
	err = db.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT `+reservationColumns+`
			FROM reservations
			WHERE barber_id = ? AND status IN ('pending', 'confirmed', 'in_progress')`,
			r.BarberID,
		)
		if err != nil {
			return fmt.Errorf("query holding reservations: %w", err)
		}
		existing, err := scanReservations(rows)
		if err != nil {
			return err
		}

		for i := range existing {
			if existing[i].OverlapsWith(r) {
				return nil // leave inserted false
			}
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO reservations (`+reservationColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.ClientID, r.BarberID, r.ServiceID, r.StartTime,
			r.DurationMinutes, r.Status, r.Notes, r.CreatedAt, r.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
		inserted = true
		return nil
	})
	return inserted, err
}

// GetReservation returns the reservation by id, or nil if absent.
func (db *DB) GetReservation(ctx context.Context, id string) (*model.Reservation, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations WHERE id = ?`, id)

	r, err := scanReservation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return r, nil
}

// UpdateReservationStatus sets a new status for the reservation.
func (db *DB) UpdateReservationStatus(ctx context.Context, id, status string, updatedAt time.Time) error {
	res, err := db.ExecContext(ctx,
		`UPDATE reservations SET status = ?, updated_at = ? WHERE id = ?`,
		status, updatedAt, id,
	)
	if err != nil {
		return fmt.Errorf("update reservation status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListCalendarHolding returns all reservations occupying the barber's
// timeline, ordered by start time.
func (db *DB) ListCalendarHolding(ctx context.Context, barberID string) ([]model.Reservation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE barber_id = ? AND status IN ('pending', 'confirmed', 'in_progress')
		ORDER BY start_time`,
		barberID,
	)
	if err != nil {
		return nil, fmt.Errorf("list holding reservations: %w", err)
	}
	return scanReservations(rows)
}

// ListByBarberAndDay returns the barber's reservations starting within
// [dayStart, dayEnd), ordered by start time.
func (db *DB) ListByBarberAndDay(ctx context.Context, barberID string, dayStart, dayEnd time.Time) ([]model.Reservation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE barber_id = ? AND start_time >= ? AND start_time < ?
		ORDER BY start_time`,
		barberID, dayStart, dayEnd,
	)
	if err != nil {
		return nil, fmt.Errorf("list reservations by day: %w", err)
	}
	return scanReservations(rows)
}

// ListByDay returns all reservations starting within [dayStart, dayEnd)
// across every barber, ordered by start time.
func (db *DB) ListByDay(ctx context.Context, dayStart, dayEnd time.Time) ([]model.Reservation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE start_time >= ? AND start_time < ?
		ORDER BY start_time`,
		dayStart, dayEnd,
	)
	if err != nil {
		return nil, fmt.Errorf("list reservations by day: %w", err)
	}
	return scanReservations(rows)
}

// ListByClient returns all reservations for a client, newest first.
func (db *DB) ListByClient(ctx context.Context, clientID string) ([]model.Reservation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE client_id = ?
		ORDER BY start_time DESC`,
		clientID,
	)
	if err != nil {
		return nil, fmt.Errorf("list reservations by client: %w", err)
	}
	return scanReservations(rows)
}

// ListOverdueConfirmed returns confirmed reservations whose start time is
// before the cutoff, ordered by start time.
func (db *DB) ListOverdueConfirmed(ctx context.Context, cutoff time.Time) ([]model.Reservation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE status = 'confirmed' AND start_time < ?
		ORDER BY start_time`,
		cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("list overdue reservations: %w", err)
	}
	return scanReservations(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*model.Reservation, error) {
	var r model.Reservation
	var notes sql.NullString
	err := row.Scan(
		&r.ID, &r.ClientID, &r.BarberID, &r.ServiceID, &r.StartTime,
		&r.DurationMinutes, &r.Status, &notes, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Notes = notes.String
	return &r, nil
}

func scanReservations(rows *sql.Rows) ([]model.Reservation, error) {
	defer rows.Close()

	var out []model.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}
