package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"turnero/internal/metrics"
	"turnero/internal/model"
	"turnero/internal/scheduling"
)

// MaxAvailabilityDays is the largest days window an availability request
// may ask for.
const MaxAvailabilityDays = 30

// handleAvailability returns bookable slots for a barber.
// GET /api/availability?barber_id=X&date=YYYY-MM-DD[&service_id=Y][&days=N]
func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	barberID := r.URL.Query().Get("barber_id")
	if barberID == "" {
		writeError(w, http.StatusBadRequest, "barber_id is required")
		return
	}

	dateStr := r.URL.Query().Get("date")
	var date time.Time
	var err error
	if dateStr != "" {
		date, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}
	} else {
		date = time.Now()
	}

	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		days, err := strconv.Atoi(daysStr)
		if err != nil || days <= 0 || days > MaxAvailabilityDays {
			writeError(w, http.StatusBadRequest, "days must be between 1 and 30")
			return
		}
		rangeOut, err := s.svc.GetAvailabilityRange(r.Context(), barberID, date, days)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"days": rangeOut})
		return
	}

	var slots []time.Time
	if serviceID := r.URL.Query().Get("service_id"); serviceID != "" {
		slots, err = s.svc.GetAvailabilityForService(r.Context(), barberID, serviceID, date)
	} else {
		slots, err = s.svc.GetAvailability(r.Context(), barberID, date)
	}
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"barber_id": barberID,
		"date":      date.Format("2006-01-02"),
		"slots":     slots,
	})
}

// CreateReservationRequest is the body of POST /api/reservations.
type CreateReservationRequest struct {
	ClientID        string    `json:"client_id"`
	BarberID        string    `json:"barber_id"`
	ServiceID       string    `json:"service_id"`
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes,omitempty"`
	Notes           string    `json:"notes,omitempty"`
}

// handleReservations creates or lists reservations.
// POST /api/reservations
// GET  /api/reservations?barber_id=X&date=YYYY-MM-DD
// GET  /api/reservations?client_id=X
func (s *HTTPServer) handleReservations(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reservations")
	switch r.Method {
	case http.MethodPost:
		s.createReservation(w, r)
	case http.MethodGet:
		s.listReservations(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) createReservation(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.svc.CreateReservation(r.Context(), scheduling.CreateReservationInput{
		ClientID:        req.ClientID,
		BarberID:        req.BarberID,
		ServiceID:       req.ServiceID,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

func (s *HTTPServer) listReservations(w http.ResponseWriter, r *http.Request) {
	if clientID := r.URL.Query().Get("client_id"); clientID != "" {
		out, err := s.svc.ListReservationsByClient(r.Context(), clientID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"reservations": out})
		return
	}

	barberID := r.URL.Query().Get("barber_id")
	if barberID == "" {
		writeError(w, http.StatusBadRequest, "barber_id or client_id is required")
		return
	}
	date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	out, err := s.svc.ListReservationsByBarberAndDate(r.Context(), barberID, date)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservations": out})
}

// TransitionRequest is the body of the reservation transition endpoints.
type TransitionRequest struct {
	ID string `json:"id"`
}

func (s *HTTPServer) transitionHandler(name string, fn func(context.Context, string) (*model.Reservation, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics.IncHTTP("reservations_" + name)
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var req TransitionRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.ID == "" {
			writeError(w, http.StatusBadRequest, "id is required")
			return
		}

		res, err := fn(r.Context(), req.ID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
