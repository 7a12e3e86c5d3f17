package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"turnero/internal/metrics"
)

// handleDayReport streams the xlsx day report.
// GET /api/reports/day?date=YYYY-MM-DD
func (s *HTTPServer) handleDayReport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("day_report")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
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

	var buf bytes.Buffer
	if err := s.reporter.WriteDayReport(r.Context(), date, &buf); err != nil {
		s.logger.Error().Err(err).Msg("day report")
		writeError(w, http.StatusInternalServerError, "report generation failed")
		return
	}

	filename := fmt.Sprintf("day-report-%s.xlsx", date.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
