package http

import (
	"net/http"
	"strconv"
	"strings"

	"billtrack/internal/core"
	"billtrack/internal/service"

	"github.com/shopspring/decimal"
)

type billRequest struct {
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	DueDate   core.Date       `json:"dueDate"`
	Category  core.Category   `json:"category"`
	Frequency core.Frequency  `json:"frequency"`
	Notes     string          `json:"notes"`
}

type billUpdateRequest struct {
	Name      *string          `json:"name"`
	Amount    *decimal.Decimal `json:"amount"`
	DueDate   *core.Date       `json:"dueDate"`
	Category  *core.Category   `json:"category"`
	Frequency *core.Frequency  `json:"frequency"`
	Notes     *string          `json:"notes"`
}

type paymentRequest struct {
	Amount   decimal.Decimal    `json:"amount"`
	PaidDate core.Date          `json:"paidDate"`
	Method   core.PaymentMethod `json:"paymentMethod"`
	Notes    string             `json:"notes"`
}

type payRequest struct {
	Method core.PaymentMethod `json:"paymentMethod"`
}

// handleListBills lists bills, optionally narrowed by a free-text query
// and by status, category, dueSoon or overdue filters.
func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if query := strings.TrimSpace(q.Get("q")); query != "" {
		writeJSON(w, http.StatusOK, s.svc.SearchBills(query))
		return
	}

	var f service.Filter
	for _, v := range q["status"] {
		f.Statuses = append(f.Statuses, core.Status(v))
	}
	for _, v := range q["category"] {
		f.Categories = append(f.Categories, core.Category(v))
	}
	f.DueSoon = q.Get("dueSoon") == "true"
	f.Overdue = q.Get("overdue") == "true"

	if len(f.Statuses) > 0 || len(f.Categories) > 0 || f.DueSoon || f.Overdue {
		writeJSON(w, http.StatusOK, s.svc.FilterBills(f))
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Bills())
}

func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	b, err := s.svc.GetBill(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	b, err := s.svc.AddBill(r.Context(), core.Bill{
		Name:      strings.TrimSpace(req.Name),
		Amount:    req.Amount,
		DueDate:   req.DueDate,
		Category:  req.Category,
		Frequency: req.Frequency,
		Notes:     req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
	var req billUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	b, err := s.svc.UpdateBill(r.Context(), r.PathValue("id"), service.BillUpdate{
		Name:      req.Name,
		Amount:    req.Amount,
		DueDate:   req.DueDate,
		Category:  req.Category,
		Frequency: req.Frequency,
		Notes:     req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteBill(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBillPayments(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.svc.GetBill(id); err != nil {
		writeError(w, r, err)
		return
	}
	payments, err := s.svc.PaymentsForBill(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if payments == nil {
		payments = []core.PaymentRecord{}
	}
	writeJSON(w, http.StatusOK, payments)
}

func (s *Server) handleAddPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	p, err := s.svc.AddPayment(r.Context(), r.PathValue("id"), service.PaymentInput{
		Amount:   req.Amount,
		PaidDate: req.PaidDate,
		Method:   req.Method,
		Notes:    req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleMarkAsPaid(w http.ResponseWriter, r *http.Request) {
	var req payRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	id := r.PathValue("id")
	if err := s.svc.MarkAsPaid(r.Context(), id, req.Method); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.svc.GetBill(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleGenerateNext(w http.ResponseWriter, r *http.Request) {
	b, err := s.svc.GenerateNextBill(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleUpcomingBills(w http.ResponseWriter, r *http.Request) {
	days := s.upcomingDays
	if v := strings.TrimSpace(r.URL.Query().Get("days")); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil || d < 1 || d > 365 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "days must be between 1 and 365"})
			return
		}
		days = d
	}
	bills := s.svc.UpcomingBills(days)
	if bills == nil {
		bills = []core.Bill{}
	}
	writeJSON(w, http.StatusOK, bills)
}

func (s *Server) handleOverdueBills(w http.ResponseWriter, r *http.Request) {
	bills := s.svc.OverdueBills()
	if bills == nil {
		bills = []core.Bill{}
	}
	writeJSON(w, http.StatusOK, bills)
}
