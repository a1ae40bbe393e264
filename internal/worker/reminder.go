// Package worker runs background jobs alongside the HTTP server.
package worker

import (
	"context"
	"log/slog"
	"time"

	"billtrack/internal/service"
)

// Reminder periodically surfaces due-soon and overdue bills in the log,
// so an operator tailing the service sees payment deadlines without
// polling the API.
type Reminder struct {
	svc        *service.BillService
	interval   time.Duration
	windowDays int
}

func NewReminder(svc *service.BillService, interval time.Duration, windowDays int) *Reminder {
	return &Reminder{
		svc:        svc,
		interval:   interval,
		windowDays: windowDays,
	}
}

// Run emits one reminder sweep immediately and then one per interval,
// until ctx is cancelled.
func (r *Reminder) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.sweep(ctx)
	for {
		select {
		case <-ticker.C:
			r.sweep(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}

func (r *Reminder) sweep(ctx context.Context) {
	upcoming := r.svc.UpcomingBills(r.windowDays)
	overdue := r.svc.OverdueBills()

	for _, b := range overdue {
		slog.WarnContext(ctx, "Bill overdue",
			"bill", b.Name,
			"amount", b.Amount,
			"due_date", b.DueDate.String())
	}
	for _, b := range upcoming {
		slog.InfoContext(ctx, "Bill due soon",
			"bill", b.Name,
			"amount", b.Amount,
			"due_date", b.DueDate.String())
	}

	slog.DebugContext(ctx, "Reminder sweep completed",
		"upcoming", len(upcoming),
		"overdue", len(overdue))
}
