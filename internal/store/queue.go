package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"turnero/internal/model"
)

const queueColumns = `id, client_id, service_id, preferred_barber_id, position,
	estimated_wait_minutes, status, joined_at, served_at`

// InsertQueueEntry appends a new queue entry.
func (db *DB) InsertQueueEntry(ctx context.Context, e *model.QueueEntry) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO queue_entries (`+queueColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ClientID, nullIfEmpty(e.ServiceID), nullIfEmpty(e.PreferredBarberID),
		e.Position, e.EstimatedWaitMinutes, e.Status, e.JoinedAt, e.ServedAt,
	)
	if err != nil {
		return fmt.Errorf("insert queue entry: %w", err)
	}
	return nil
}

// ListWaiting returns all waiting entries ordered by position.
func (db *DB) ListWaiting(ctx context.Context) ([]model.QueueEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+queueColumns+`
		FROM queue_entries
		WHERE status = 'waiting'
		ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("list waiting entries: %w", err)
	}
	return scanQueueEntries(rows)
}

// GetQueueEntryByClient returns the client's entry with the given status,
// or nil if none exists.
func (db *DB) GetQueueEntryByClient(ctx context.Context, clientID, status string) (*model.QueueEntry, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+queueColumns+`
		FROM queue_entries
		WHERE client_id = ? AND status = ?
		LIMIT 1`,
		clientID, status,
	)

	e, err := scanQueueEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get queue entry: %w", err)
	}
	return e, nil
}

// ListQueueByDay returns entries that joined within [dayStart, dayEnd),
// in join order, regardless of status.
func (db *DB) ListQueueByDay(ctx context.Context, dayStart, dayEnd time.Time) ([]model.QueueEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+queueColumns+`
		FROM queue_entries
		WHERE joined_at >= ? AND joined_at < ?
		ORDER BY joined_at`,
		dayStart, dayEnd,
	)
	if err != nil {
		return nil, fmt.Errorf("list queue by day: %w", err)
	}
	return scanQueueEntries(rows)
}

// ApplyQueueChange writes a mutated entry and the renumbered waiting set
// in a single transaction, so readers never observe a partially renumbered
// queue.
func (db *DB) ApplyQueueChange(ctx context.Context, changed *model.QueueEntry, renumbered []model.QueueEntry) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if changed != nil {
			if err := updateQueueEntry(ctx, tx, changed); err != nil {
				return err
			}
		}
		for i := range renumbered {
			if err := updateQueueEntry(ctx, tx, &renumbered[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func updateQueueEntry(ctx context.Context, tx *sql.Tx, e *model.QueueEntry) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE queue_entries
		SET position = ?, estimated_wait_minutes = ?, status = ?, served_at = ?
		WHERE id = ?`,
		e.Position, e.EstimatedWaitMinutes, e.Status, e.ServedAt, e.ID,
	)
	if err != nil {
		return fmt.Errorf("update queue entry %s: %w", e.ID, err)
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

func scanQueueEntry(row rowScanner) (*model.QueueEntry, error) {
	var e model.QueueEntry
	var serviceID, preferred sql.NullString
	var servedAt sql.NullTime
	err := row.Scan(
		&e.ID, &e.ClientID, &serviceID, &preferred, &e.Position,
		&e.EstimatedWaitMinutes, &e.Status, &e.JoinedAt, &servedAt,
	)
	if err != nil {
		return nil, err
	}
	e.ServiceID = serviceID.String
	e.PreferredBarberID = preferred.String
	if servedAt.Valid {
		t := servedAt.Time
		e.ServedAt = &t
	}
	return &e, nil
}

func scanQueueEntries(rows *sql.Rows) ([]model.QueueEntry, error) {
	defer rows.Close()

	var out []model.QueueEntry
	for rows.Next() {
		e, err := scanQueueEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan queue entry: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
