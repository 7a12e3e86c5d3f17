package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turnero/internal/audit"
	"turnero/internal/clock"
	"turnero/internal/model"
	"turnero/internal/scheduling"
	"turnero/internal/store"
)

type testCatalog struct {
	barbers  map[string]model.Barber
	services map[string]model.Service
}

func (c testCatalog) Barber(id string) (*model.Barber, bool) {
	b, ok := c.barbers[id]
	if !ok {
		return nil, false
	}
	return &b, true
}

func (c testCatalog) Service(id string) (*model.Service, bool) {
	s, ok := c.services[id]
	if !ok {
		return nil, false
	}
	return &s, true
}

func (c testCatalog) Barbers() []model.Barber {
	out := make([]model.Barber, 0, len(c.barbers))
	for _, b := range c.barbers {
		out = append(out, b)
	}
	return out
}

func (c testCatalog) Services() []model.Service {
	out := make([]model.Service, 0, len(c.services))
	for _, s := range c.services {
		out = append(out, s)
	}
	return out
}

var testDay = time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*httptest.Server, *clock.Fake) {
	t.Helper()

	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	hours := make([]model.WorkingHours, 0, 7)
	for day := time.Sunday; day <= time.Saturday; day++ {
		hours = append(hours, model.WorkingHours{Weekday: day, Start: "08:00", End: "18:00", Active: true})
	}
	cat := testCatalog{
		barbers: map[string]model.Barber{
			"barber-1": {ID: "barber-1", Name: "Luis", Hours: hours},
		},
		services: map[string]model.Service{
			"svc-cut": {ID: "svc-cut", Name: "Corte", DurationMinutes: 45, Price: 1500},
		},
	}

	clk := clock.NewFake(testDay)
	logger := zerolog.Nop()
	svc := scheduling.New(db, cat, cat, clk, nil, scheduling.Config{}, &logger)
	reporter := audit.NewReporter(db, cat, cat)

	server := NewHTTPServer(svc, reporter, cat, 0, 0, &logger)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts, clk
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeResp(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func startOn(day time.Time, hour, minute int) string {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC).Format(time.RFC3339)
}

func TestReservationEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/reservations", map[string]any{
		"client_id":  "c1",
		"barber_id":  "barber-1",
		"service_id": "svc-cut",
		"start_time": startOn(testDay, 10, 0),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created model.Reservation
	decodeResp(t, resp, &created)
	assert.Equal(t, model.StatusPending, created.Status)
	assert.Equal(t, 45, created.DurationMinutes)

	// Conflicting booking.
	resp = postJSON(t, ts.URL+"/api/reservations", map[string]any{
		"client_id":  "c2",
		"barber_id":  "barber-1",
		"service_id": "svc-cut",
		"start_time": startOn(testDay, 10, 30),
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Missing fields.
	resp = postJSON(t, ts.URL+"/api/reservations", map[string]any{
		"barber_id": "barber-1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Unknown barber.
	resp = postJSON(t, ts.URL+"/api/reservations", map[string]any{
		"client_id":  "c1",
		"barber_id":  "ghost",
		"service_id": "svc-cut",
		"start_time": startOn(testDay, 11, 0),
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Unknown body fields are rejected.
	resp = postJSON(t, ts.URL+"/api/reservations", map[string]any{
		"client_id": "c1",
		"surprise":  true,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Confirm, then an illegal jump.
	resp = postJSON(t, ts.URL+"/api/reservations/confirm", map[string]any{"id": created.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var confirmed model.Reservation
	decodeResp(t, resp, &confirmed)
	assert.Equal(t, model.StatusConfirmed, confirmed.Status)

	resp = postJSON(t, ts.URL+"/api/reservations/finish", map[string]any{"id": created.ID})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/reservations/confirm", map[string]any{"id": "nope"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Listing by barber and day.
	listResp, err := http.Get(fmt.Sprintf("%s/api/reservations?barber_id=barber-1&date=%s",
		ts.URL, testDay.Format("2006-01-02")))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	var listing struct {
		Reservations []model.Reservation `json:"reservations"`
	}
	decodeResp(t, listResp, &listing)
	assert.Len(t, listing.Reservations, 1)
}

func TestAvailabilityEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(fmt.Sprintf("%s/api/availability?barber_id=barber-1&date=%s",
		ts.URL, testDay.Format("2006-01-02")))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Slots []time.Time `json:"slots"`
	}
	decodeResp(t, resp, &out)
	assert.Len(t, out.Slots, 20)

	resp, err = http.Get(ts.URL + "/api/availability")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/api/availability?barber_id=ghost&date=2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/api/availability?barber_id=barber-1&date=2025-03-10&days=3")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ranged struct {
		Days []scheduling.DayAvailability `json:"days"`
	}
	decodeResp(t, resp, &ranged)
	assert.Len(t, ranged.Days, 3)

	resp, err = http.Get(ts.URL + "/api/availability?barber_id=barber-1&days=99")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestQueueEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/queue/join", map[string]any{"client_id": "c1", "service_id": "svc-cut"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var entry model.QueueEntry
	decodeResp(t, resp, &entry)
	assert.Equal(t, 1, entry.Position)

	resp = postJSON(t, ts.URL+"/api/queue/join", map[string]any{"client_id": "c2"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Double join conflicts.
	resp = postJSON(t, ts.URL+"/api/queue/join", map[string]any{"client_id": "c1"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Position lookup.
	posResp, err := http.Get(ts.URL + "/api/queue/position?client_id=c2")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, posResp.StatusCode)
	var pos model.QueueEntry
	decodeResp(t, posResp, &pos)
	assert.Equal(t, 2, pos.Position)
	assert.Equal(t, 45, pos.EstimatedWaitMinutes)

	posResp, err = http.Get(ts.URL + "/api/queue/position?client_id=ghost")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, posResp.StatusCode)
	posResp.Body.Close()

	// Advance the head into service and finish it.
	resp = postJSON(t, ts.URL+"/api/queue/advance", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var advanced struct {
		Entry *model.QueueEntry `json:"entry"`
	}
	decodeResp(t, resp, &advanced)
	require.NotNil(t, advanced.Entry)
	assert.Equal(t, "c1", advanced.Entry.ClientID)

	resp = postJSON(t, ts.URL+"/api/queue/finish", map[string]any{"client_id": "c1"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/queue/finish", map[string]any{"client_id": "c1"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Leave with the one remaining client, then advance on empty.
	resp = postJSON(t, ts.URL+"/api/queue/leave", map[string]any{"client_id": "c2"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/queue/advance", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var empty struct {
		Entry *model.QueueEntry `json:"entry"`
	}
	decodeResp(t, resp, &empty)
	assert.Nil(t, empty.Entry)

	listResp, err := http.Get(ts.URL + "/api/queue")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	var listing struct {
		Waiting []model.QueueEntry `json:"waiting"`
	}
	decodeResp(t, listResp, &listing)
	assert.Empty(t, listing.Waiting)
}

func TestDayReportEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/reports/day?date=2025-03-10")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "day-report-2025-03-10.xlsx")

	resp, err = http.Get(ts.URL + "/api/reports/day?date=bad")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cat := testCatalog{}
	logger := zerolog.Nop()
	svc := scheduling.New(db, cat, cat, nil, nil, scheduling.Config{}, &logger)
	server := NewHTTPServer(svc, audit.NewReporter(db, cat, cat), cat, 1, 1, &logger)

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	limited := false
	for i := 0; i < 5; i++ {
		resp, err := http.Get(ts.URL + "/healthz")
		require.NoError(t, err)
		resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			limited = true
		}
	}
	assert.True(t, limited, "burst of requests should trip the limiter")
}
