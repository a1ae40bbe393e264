package http

import (
	"net/http"
	"strings"

	"billtrack/internal/core"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Summary())
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Analytics())
}

// handlePaymentsInRange returns payments with paid dates inside the
// inclusive [start, end] range.
func (s *Server) handlePaymentsInRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := core.ParseDate(strings.TrimSpace(q.Get("start")))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "start must be a YYYY-MM-DD date"})
		return
	}
	end, err := core.ParseDate(strings.TrimSpace(q.Get("end")))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "end must be a YYYY-MM-DD date"})
		return
	}
	if end.Before(start.Time) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "end must not precede start"})
		return
	}

	payments, err := s.svc.PaymentsInRange(r.Context(), start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if payments == nil {
		payments = []core.PaymentRecord{}
	}
	writeJSON(w, http.StatusOK, payments)
}
