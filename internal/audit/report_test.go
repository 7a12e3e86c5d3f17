package audit

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"turnero/internal/model"
	"turnero/internal/store"
)

type fixedNames struct{}

func (fixedNames) Barber(id string) (*model.Barber, bool) {
	if id == "barber-1" {
		return &model.Barber{ID: id, Name: "Luis"}, true
	}
	return nil, false
}

func (fixedNames) Service(id string) (*model.Service, bool) {
	if id == "svc-cut" {
		return &model.Service{ID: id, Name: "Corte"}, true
	}
	return nil, false
}

func TestWriteDayReport(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	inserted, err := db.CreateReservationIfFree(ctx, &model.Reservation{
		ID: "res-1", ClientID: "c1", BarberID: "barber-1", ServiceID: "svc-cut",
		StartTime: day.Add(10 * time.Hour), DurationMinutes: 45,
		Status: model.StatusCompleted, Notes: "regular",
		CreatedAt: day, UpdatedAt: day,
	})
	require.NoError(t, err)
	require.True(t, inserted)

	servedAt := day.Add(11 * time.Hour)
	entry := &model.QueueEntry{
		ID: "q-1", ClientID: "c2", ServiceID: "svc-cut",
		Position: 1, Status: model.QueueServed,
		JoinedAt: day.Add(10*time.Hour + 30*time.Minute), ServedAt: &servedAt,
	}
	require.NoError(t, db.InsertQueueEntry(ctx, entry))

	var buf bytes.Buffer
	reporter := NewReporter(db, fixedNames{}, fixedNames{})
	require.NoError(t, reporter.WriteDayReport(ctx, day, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Reservations", "Walk-in queue"}, f.GetSheetList())

	rows, err := f.GetRows("Reservations")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Start", "Client", "Barber", "Service", "Duration (min)", "Status", "Notes"}, rows[0])
	assert.Equal(t, []string{"10:00", "c1", "Luis", "Corte", "45", "completed", "regular"}, rows[1])

	queueRows, err := f.GetRows("Walk-in queue")
	require.NoError(t, err)
	require.Len(t, queueRows, 2)
	assert.Equal(t, "c2", queueRows[1][1])
	assert.Equal(t, "served", queueRows[1][4])
	assert.Equal(t, "11:00", queueRows[1][5])
}

func TestWriteDayReportEmptyDay(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var buf bytes.Buffer
	reporter := NewReporter(db, fixedNames{}, fixedNames{})
	require.NoError(t, reporter.WriteDayReport(context.Background(), time.Now(), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Reservations")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
