// Package api exposes the scheduling core over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"turnero/internal/audit"
	"turnero/internal/model"
	"turnero/internal/scheduling"
)

// Catalog lists the configured barbers and services.
type Catalog interface {
	Barbers() []model.Barber
	Services() []model.Service
}

// HTTPServer serves the scheduling API.
type HTTPServer struct {
	svc      *scheduling.Service
	reporter *audit.Reporter
	catalog  Catalog
	limiter  *rate.Limiter
	logger   *zerolog.Logger
}

// NewHTTPServer creates the API server. rps <= 0 disables rate limiting.
func NewHTTPServer(svc *scheduling.Service, reporter *audit.Reporter, catalog Catalog, rps float64, burst int, logger *zerolog.Logger) *HTTPServer {
	var limiter *rate.Limiter
	if rps > 0 {
		if burst <= 0 {
			burst = int(rps)
			if burst == 0 {
				burst = 1
			}
		}
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return &HTTPServer{
		svc:      svc,
		reporter: reporter,
		catalog:  catalog,
		limiter:  limiter,
		logger:   logger,
	}
}

// Handler returns the routed HTTP handler.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/availability", s.handleAvailability)
	mux.HandleFunc("/api/barbers", s.handleBarbers)
	mux.HandleFunc("/api/services", s.handleServices)

	mux.HandleFunc("/api/reservations", s.handleReservations)
	mux.HandleFunc("/api/reservations/confirm", s.transitionHandler("confirm", s.svc.ConfirmReservation))
	mux.HandleFunc("/api/reservations/start", s.transitionHandler("start", s.svc.StartReservation))
	mux.HandleFunc("/api/reservations/finish", s.transitionHandler("finish", s.svc.FinishReservation))
	mux.HandleFunc("/api/reservations/cancel", s.transitionHandler("cancel", s.svc.CancelReservation))
	mux.HandleFunc("/api/reservations/no-show", s.transitionHandler("no_show", s.svc.MarkNoShow))

	mux.HandleFunc("/api/queue", s.handleQueue)
	mux.HandleFunc("/api/queue/join", s.handleQueueJoin)
	mux.HandleFunc("/api/queue/leave", s.handleQueueLeave)
	mux.HandleFunc("/api/queue/advance", s.handleQueueAdvance)
	mux.HandleFunc("/api/queue/finish", s.handleQueueFinish)
	mux.HandleFunc("/api/queue/position", s.handleQueuePosition)

	mux.HandleFunc("/api/reports/day", s.handleDayReport)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return s.rateLimit(mux)
}

func (s *HTTPServer) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps the scheduling error taxonomy onto HTTP statuses.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scheduling.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, scheduling.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, scheduling.ErrSlotConflict),
		errors.Is(err, scheduling.ErrInvalidTransition),
		errors.Is(err, scheduling.ErrAlreadyQueued),
		errors.Is(err, scheduling.ErrNotQueued),
		errors.Is(err, scheduling.ErrNotInService):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, scheduling.ErrBusy):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

// handleBarbers lists the configured barbers.
// GET /api/barbers
func (s *HTTPServer) handleBarbers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"barbers": s.catalog.Barbers()})
}

// handleServices lists the configured services.
// GET /api/services
func (s *HTTPServer) handleServices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": s.catalog.Services()})
}
