// Package analytics derives bill lifecycle statuses, dashboard summaries
// and time-windowed spending analytics from an in-memory snapshot of bills
// and payment records. Every function is pure: it takes its inputs as
// parameters, never mutates them, and returns fresh outputs. Missing or
// empty data degrades to zero values, never to an error.
package analytics

import (
	"time"

	"billtrack/internal/core"
)

// DueSoonWindowDays is the dashboard window for upcoming bills.
const DueSoonWindowDays = 7

// DeriveStatus computes a bill's lifecycle status from its amount, payment
// history and due date. Paying the exact amount counts as fully paid.
func DeriveStatus(b core.Bill, now time.Time) core.Status {
	totalPaid := b.TotalPaid()
	switch {
	case totalPaid.GreaterThanOrEqual(b.Amount):
		return core.StatusPaid
	case totalPaid.IsPositive():
		return core.StatusPartial
	case core.IsOverdue(b.DueDate, now):
		return core.StatusOverdue
	default:
		return core.StatusPending
	}
}

// Normalize returns a fresh copy of bills with every status re-derived.
// Applied at read and query boundaries so a stored status is never trusted
// beyond the most recent derivation.
func Normalize(bills []core.Bill, now time.Time) []core.Bill {
	out := make([]core.Bill, len(bills))
	for i, b := range bills {
		nb := b.Clone()
		nb.Status = DeriveStatus(b, now)
		out[i] = nb
	}
	return out
}
