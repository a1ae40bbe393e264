// Package store defines the persistence ports for bills and payment
// records, plus an in-memory implementation.
package store

import (
	"context"

	"billtrack/internal/core"
)

// Ports for outbound persistence adapters. Writes replace the full list;
// the persistence medium and its failure modes are opaque to callers, who
// treat any write failure as recoverable by restoring their previous
// in-memory snapshot.
type (
	BillStore interface {
		GetBills(ctx context.Context) ([]core.Bill, error)
		SaveBills(ctx context.Context, bills []core.Bill) error
	}

	PaymentStore interface {
		GetPayments(ctx context.Context) ([]core.PaymentRecord, error)
		SavePayments(ctx context.Context, payments []core.PaymentRecord) error
		// GetPaymentsByDateRange returns payments whose paid date falls in
		// [start, end], both ends inclusive at day granularity.
		GetPaymentsByDateRange(ctx context.Context, start, end core.Date) ([]core.PaymentRecord, error)
		GetPaymentsByBillID(ctx context.Context, billID string) ([]core.PaymentRecord, error)
	}

	// Store combines both ports; every provided backend implements it.
	Store interface {
		BillStore
		PaymentStore
	}
)
