package analytics

import (
	"time"

	"billtrack/internal/core"

	"github.com/shopspring/decimal"
)

// BillSummary is the dashboard rollup of a bill collection.
//
// The amount buckets are keyed on status: a partial bill contributes to
// none of them, so paid+pending+overdue is not a partition of totalAmount.
type BillSummary struct {
	TotalBills    int             `json:"totalBills"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PaidAmount    decimal.Decimal `json:"paidAmount"`
	PendingAmount decimal.Decimal `json:"pendingAmount"`
	OverdueAmount decimal.Decimal `json:"overdueAmount"`
	UpcomingCount int             `json:"upcomingCount"`
	OverdueCount  int             `json:"overdueCount"`
}

// Summarize rolls up a status-normalized bill list. Recomputed from the
// snapshot on every call; no side effects.
func Summarize(bills []core.Bill, now time.Time) BillSummary {
	s := BillSummary{
		TotalBills:    len(bills),
		TotalAmount:   decimal.Zero,
		PaidAmount:    decimal.Zero,
		PendingAmount: decimal.Zero,
		OverdueAmount: decimal.Zero,
	}
	for _, b := range bills {
		s.TotalAmount = s.TotalAmount.Add(b.Amount)
		switch b.Status {
		case core.StatusPaid:
			s.PaidAmount = s.PaidAmount.Add(b.Amount)
		case core.StatusPending:
			s.PendingAmount = s.PendingAmount.Add(b.Amount)
		case core.StatusOverdue:
			s.OverdueAmount = s.OverdueAmount.Add(b.Amount)
			s.OverdueCount++
		}
		if b.Status != core.StatusPaid && core.IsDueSoon(b.DueDate, now, DueSoonWindowDays) {
			s.UpcomingCount++
		}
	}
	return s
}
