package api

import (
	"net/http"

	"turnero/internal/metrics"
)

// JoinQueueRequest is the body of POST /api/queue/join.
type JoinQueueRequest struct {
	ClientID          string `json:"client_id"`
	ServiceID         string `json:"service_id,omitempty"`
	PreferredBarberID string `json:"preferred_barber_id,omitempty"`
}

// ClientRequest is the body of the queue endpoints keyed by client.
type ClientRequest struct {
	ClientID string `json:"client_id"`
}

// handleQueue lists the waiting queue in position order.
// GET /api/queue
func (s *HTTPServer) handleQueue(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("queue")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	waiting, err := s.svc.ListQueue(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"waiting": waiting})
}

// handleQueueJoin appends a client to the queue.
// POST /api/queue/join
func (s *HTTPServer) handleQueueJoin(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("queue_join")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req JoinQueueRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := s.svc.JoinQueue(r.Context(), req.ClientID, req.ServiceID, req.PreferredBarberID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// handleQueueLeave removes a client from the queue.
// POST /api/queue/leave
func (s *HTTPServer) handleQueueLeave(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("queue_leave")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ClientRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ClientID == "" {
		writeError(w, http.StatusBadRequest, "client_id is required")
		return
	}

	if err := s.svc.LeaveQueue(r.Context(), req.ClientID); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

// handleQueueAdvance takes the next waiting client into service.
// POST /api/queue/advance
func (s *HTTPServer) handleQueueAdvance(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("queue_advance")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entry, err := s.svc.AdvanceQueue(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if entry == nil {
		writeJSON(w, http.StatusOK, map[string]any{"entry": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entry": entry})
}

// handleQueueFinish marks a client's walk-in service as done.
// POST /api/queue/finish
func (s *HTTPServer) handleQueueFinish(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("queue_finish")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ClientRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ClientID == "" {
		writeError(w, http.StatusBadRequest, "client_id is required")
		return
	}

	if err := s.svc.FinishQueueService(r.Context(), req.ClientID); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "served"})
}

// handleQueuePosition returns a client's current place in line.
// GET /api/queue/position?client_id=X
func (s *HTTPServer) handleQueuePosition(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("queue_position")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		writeError(w, http.StatusBadRequest, "client_id is required")
		return
	}

	entry, err := s.svc.GetMyQueuePosition(r.Context(), clientID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if entry == nil {
		writeError(w, http.StatusNotFound, "client is not in the queue")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
