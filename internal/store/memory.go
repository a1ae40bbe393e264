package store

import (
	"context"
	"sync"

	"billtrack/internal/core"
)

// Memory is a mutex-guarded in-memory store. Reads return copies so
// callers can never mutate the stored snapshot in place. FailWrites makes
// every save return the given error, which tests use to exercise rollback
// paths.
type Memory struct {
	mu       sync.Mutex
	bills    []core.Bill
	payments []core.PaymentRecord
	writeErr error
}

func NewMemory() *Memory {
	return &Memory{}
}

// FailWrites forces subsequent saves to fail with err; nil restores
// normal operation.
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

func (m *Memory) GetBills(_ context.Context) ([]core.Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.Bill, len(m.bills))
	for i, b := range m.bills {
		out[i] = b.Clone()
	}
	return out, nil
}

func (m *Memory) SaveBills(_ context.Context, bills []core.Bill) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	stored := make([]core.Bill, len(bills))
	for i, b := range bills {
		stored[i] = b.Clone()
	}
	m.bills = stored
	return nil
}

func (m *Memory) GetPayments(_ context.Context) ([]core.PaymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.PaymentRecord, len(m.payments))
	copy(out, m.payments)
	return out, nil
}

func (m *Memory) SavePayments(_ context.Context, payments []core.PaymentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	stored := make([]core.PaymentRecord, len(payments))
	copy(stored, payments)
	m.payments = stored
	return nil
}

func (m *Memory) GetPaymentsByDateRange(_ context.Context, start, end core.Date) ([]core.PaymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.PaymentRecord
	for _, p := range m.payments {
		if !p.PaidDate.Before(start.Time) && !p.PaidDate.After(end.Time) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Memory) GetPaymentsByBillID(_ context.Context, billID string) ([]core.PaymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.PaymentRecord
	for _, p := range m.payments {
		if p.BillID == billID {
			out = append(out, p)
		}
	}
	return out, nil
}
