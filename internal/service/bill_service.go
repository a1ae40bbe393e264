// Package service orchestrates bill and payment operations over the
// persistence ports, deriving statuses at every read boundary.
//
// The payment store is the single source of truth for payment data;
// Bill.PaymentHistory is materialized from it on load and after every
// mutation, so there is exactly one write path for payments. Any failed
// store write restores the previous in-memory snapshot before the error
// is returned.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"billtrack/internal/analytics"
	"billtrack/internal/backup"
	"billtrack/internal/cache"
	"billtrack/internal/core"
	"billtrack/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StorageError wraps a failed persistence write. The in-memory snapshot
// has already been restored by the time the caller sees it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }

// BillUpdate carries a partial bill mutation; nil fields are untouched.
type BillUpdate struct {
	Name      *string
	Amount    *decimal.Decimal
	DueDate   *core.Date
	Category  *core.Category
	Frequency *core.Frequency
	Notes     *string
}

// PaymentInput is the caller-supplied part of a new payment.
type PaymentInput struct {
	Amount   decimal.Decimal
	PaidDate core.Date
	Method   core.PaymentMethod
	Notes    string
}

// Filter selects bills by status, category and due-date condition.
type Filter struct {
	Statuses   []core.Status
	Categories []core.Category
	DueSoon    bool
	Overdue    bool
}

type BillService struct {
	store store.Store
	now   func() time.Time

	mu       sync.Mutex
	bills    []core.Bill
	payments []core.PaymentRecord
	revision uint64

	summaries *cache.LRU[analytics.BillSummary]
	reports   *cache.LRU[analytics.Report]
}

func New(s store.Store, cacheSize int, cacheTTL time.Duration) *BillService {
	return &BillService{
		store:     s,
		now:       time.Now,
		summaries: cache.NewLRU[analytics.BillSummary](cacheSize, cacheTTL),
		reports:   cache.NewLRU[analytics.Report](cacheSize, cacheTTL),
	}
}

// Load reads both stores and materializes payment histories. Must be
// called before any other method.
func (s *BillService) Load(ctx context.Context) error {
	bills, err := s.store.GetBills(ctx)
	if err != nil {
		return fmt.Errorf("load bills: %w", err)
	}
	payments, err := s.store.GetPayments(ctx)
	if err != nil {
		return fmt.Errorf("load payments: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments = payments
	s.bills = materialize(bills, payments)
	s.bump()

	slog.InfoContext(ctx, "Snapshot loaded", "bills", len(bills), "payments", len(payments))
	return nil
}

// Bills returns the current snapshot with statuses freshly derived.
func (s *BillService) Bills() []core.Bill {
	s.mu.Lock()
	defer s.mu.Unlock()
	return analytics.Normalize(s.bills, s.now())
}

// GetBill returns one status-normalized bill.
func (s *BillService) GetBill(id string) (core.Bill, error) {
	for _, b := range s.Bills() {
		if b.ID == id {
			return b, nil
		}
	}
	return core.Bill{}, fmt.Errorf("bill %s: %w", id, core.ErrNotFound)
}

// AddBill creates a bill from the caller-supplied fields. Identity,
// timestamps and lifecycle fields are assigned here.
func (s *BillService) AddBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	now := s.now()
	b.ID = uuid.NewString()
	b.Amount = core.RoundToCents(b.Amount)
	b.Status = core.StatusPending
	b.PaymentHistory = nil
	b.CreatedAt = now
	b.UpdatedAt = now
	if err := b.Validate(); err != nil {
		return core.Bill{}, fmt.Errorf("validate bill: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(cloneBills(s.bills), b)
	if err := s.store.SaveBills(ctx, next); err != nil {
		return core.Bill{}, &StorageError{Op: "save bills", Err: err}
	}
	s.bills = next
	s.bump()
	return b.Clone(), nil
}

// UpdateBill applies a partial update. Returns ErrNotFound for an
// unknown id; bumps updatedAt on success.
func (s *BillService) UpdateBill(ctx context.Context, id string, upd BillUpdate) (core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOf(s.bills, id)
	if idx < 0 {
		return core.Bill{}, fmt.Errorf("bill %s: %w", id, core.ErrNotFound)
	}

	next := cloneBills(s.bills)
	b := &next[idx]
	if upd.Name != nil {
		b.Name = *upd.Name
	}
	if upd.Amount != nil {
		b.Amount = core.RoundToCents(*upd.Amount)
	}
	if upd.DueDate != nil {
		b.DueDate = *upd.DueDate
	}
	if upd.Category != nil {
		b.Category = *upd.Category
	}
	if upd.Frequency != nil {
		b.Frequency = *upd.Frequency
	}
	if upd.Notes != nil {
		b.Notes = *upd.Notes
	}
	b.UpdatedAt = s.now()
	if err := b.Validate(); err != nil {
		return core.Bill{}, fmt.Errorf("validate bill: %w", err)
	}

	if err := s.store.SaveBills(ctx, next); err != nil {
		return core.Bill{}, &StorageError{Op: "save bills", Err: err}
	}
	s.bills = next
	s.bump()
	return b.Clone(), nil
}

// DeleteBill removes a bill and cascades deletion of its payments.
func (s *BillService) DeleteBill(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOf(s.bills, id)
	if idx < 0 {
		return fmt.Errorf("bill %s: %w", id, core.ErrNotFound)
	}

	nextBills := append(cloneBills(s.bills[:idx]), cloneBills(s.bills[idx+1:])...)
	nextPayments := make([]core.PaymentRecord, 0, len(s.payments))
	for _, p := range s.payments {
		if p.BillID != id {
			nextPayments = append(nextPayments, p)
		}
	}

	if err := s.store.SaveBills(ctx, nextBills); err != nil {
		return &StorageError{Op: "save bills", Err: err}
	}
	if err := s.store.SavePayments(ctx, nextPayments); err != nil {
		// Put the bill list back so both stores stay consistent.
		if rbErr := s.store.SaveBills(ctx, cloneBills(s.bills)); rbErr != nil {
			slog.ErrorContext(ctx, "Rollback after failed payment save failed", "error", rbErr)
		}
		return &StorageError{Op: "save payments", Err: err}
	}

	s.bills = nextBills
	s.payments = nextPayments
	s.bump()
	return nil
}

// AddPayment appends a payment record to the payment store and refreshes
// the bill's materialized history. This is the only payment write path.
func (s *BillService) AddPayment(ctx context.Context, billID string, in PaymentInput) (core.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOf(s.bills, billID)
	if idx < 0 {
		return core.PaymentRecord{}, fmt.Errorf("bill %s: %w", billID, core.ErrNotFound)
	}

	p := core.PaymentRecord{
		ID:       uuid.NewString(),
		BillID:   billID,
		Amount:   core.RoundToCents(in.Amount),
		PaidDate: in.PaidDate,
		Method:   in.Method,
		Notes:    in.Notes,
	}
	if err := p.Validate(); err != nil {
		return core.PaymentRecord{}, fmt.Errorf("validate payment: %w", err)
	}

	nextPayments := append(clonePayments(s.payments), p)
	nextBills := materialize(cloneBills(s.bills), nextPayments)
	nextBills[idx].UpdatedAt = s.now()

	if err := s.store.SavePayments(ctx, nextPayments); err != nil {
		return core.PaymentRecord{}, &StorageError{Op: "save payments", Err: err}
	}
	if err := s.store.SaveBills(ctx, nextBills); err != nil {
		if rbErr := s.store.SavePayments(ctx, clonePayments(s.payments)); rbErr != nil {
			slog.ErrorContext(ctx, "Rollback after failed bill save failed", "error", rbErr)
		}
		return core.PaymentRecord{}, &StorageError{Op: "save bills", Err: err}
	}

	s.payments = nextPayments
	s.bills = nextBills
	s.bump()
	return p, nil
}

// MarkAsPaid records a payment for the bill's exact remaining balance.
// A bill with nothing left to pay is left untouched.
func (s *BillService) MarkAsPaid(ctx context.Context, billID string, method core.PaymentMethod) error {
	b, err := s.GetBill(billID)
	if err != nil {
		return err
	}
	remaining := b.Remaining()
	if !remaining.IsPositive() {
		return nil
	}
	_, err = s.AddPayment(ctx, billID, PaymentInput{
		Amount:   remaining,
		PaidDate: core.DateOf(s.now()),
		Method:   method,
	})
	return err
}

// GenerateNextBill creates the next occurrence of a recurring bill with
// the due date advanced by its frequency.
func (s *BillService) GenerateNextBill(ctx context.Context, billID string) (core.Bill, error) {
	b, err := s.GetBill(billID)
	if err != nil {
		return core.Bill{}, err
	}
	return s.AddBill(ctx, core.Bill{
		Name:      b.Name,
		Amount:    b.Amount,
		DueDate:   core.NextDueDate(b.DueDate, b.Frequency),
		Category:  b.Category,
		Frequency: b.Frequency,
		Notes:     b.Notes,
	})
}

// SearchBills matches name, category or notes, case-insensitively.
func (s *BillService) SearchBills(query string) []core.Bill {
	bills := s.Bills()
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return bills
	}
	var out []core.Bill
	for _, b := range bills {
		if strings.Contains(strings.ToLower(b.Name), query) ||
			strings.Contains(strings.ToLower(string(b.Category)), query) ||
			strings.Contains(strings.ToLower(b.Notes), query) {
			out = append(out, b)
		}
	}
	return out
}

// FilterBills applies every set condition conjunctively.
func (s *BillService) FilterBills(f Filter) []core.Bill {
	now := s.now()
	var out []core.Bill
	for _, b := range s.Bills() {
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, b.Status) {
			continue
		}
		if len(f.Categories) > 0 && !containsCategory(f.Categories, b.Category) {
			continue
		}
		if f.DueSoon && !core.IsDueSoon(b.DueDate, now, analytics.DueSoonWindowDays) {
			continue
		}
		if f.Overdue && !core.IsOverdue(b.DueDate, now) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// UpcomingBills lists unpaid bills due within the window, soonest first.
func (s *BillService) UpcomingBills(windowDays int) []core.Bill {
	now := s.now()
	var out []core.Bill
	for _, b := range s.Bills() {
		if b.Status != core.StatusPaid && core.IsDueSoon(b.DueDate, now, windowDays) {
			out = append(out, b)
		}
	}
	sortByDueDate(out)
	return out
}

// OverdueBills lists overdue bills, oldest due date first.
func (s *BillService) OverdueBills() []core.Bill {
	var out []core.Bill
	for _, b := range s.Bills() {
		if b.Status == core.StatusOverdue {
			out = append(out, b)
		}
	}
	sortByDueDate(out)
	return out
}

// Summary returns the dashboard rollup, memoized per snapshot revision
// and calendar day.
func (s *BillService) Summary() analytics.BillSummary {
	now := s.now()
	key := s.cacheKey(now)
	if sum, ok := s.summaries.Get(key); ok {
		return sum
	}
	sum := analytics.Summarize(s.Bills(), now)
	s.summaries.Set(key, sum)
	return sum
}

// Analytics returns the full derived report, memoized per snapshot
// revision and calendar day.
func (s *BillService) Analytics() analytics.Report {
	now := s.now()
	key := s.cacheKey(now)
	if rep, ok := s.reports.Get(key); ok {
		return rep
	}
	s.mu.Lock()
	bills := analytics.Normalize(s.bills, now)
	payments := clonePayments(s.payments)
	s.mu.Unlock()

	rep := analytics.BuildReport(bills, payments, now)
	s.reports.Set(key, rep)
	return rep
}

// PaymentsInRange queries the payment store for records paid within
// [start, end].
func (s *BillService) PaymentsInRange(ctx context.Context, start, end core.Date) ([]core.PaymentRecord, error) {
	payments, err := s.store.GetPaymentsByDateRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("payments by date range: %w", err)
	}
	return payments, nil
}

// PaymentsForBill queries the payment store for one bill's records.
func (s *BillService) PaymentsForBill(ctx context.Context, billID string) ([]core.PaymentRecord, error) {
	payments, err := s.store.GetPaymentsByBillID(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("payments by bill id: %w", err)
	}
	return payments, nil
}

// Export serializes the full dataset.
func (s *BillService) Export(ctx context.Context) ([]byte, error) {
	return backup.Export(ctx, s.store)
}

// Import replaces the dataset from a backup document and reloads the
// in-memory snapshot. On failure the stores keep their prior data.
func (s *BillService) Import(ctx context.Context, raw []byte) (backup.ImportStats, error) {
	stats, err := backup.Import(ctx, s.store, raw)
	if err != nil {
		return stats, err
	}
	if err := s.Load(ctx); err != nil {
		return stats, fmt.Errorf("reload after import: %w", err)
	}
	return stats, nil
}

// bump invalidates memoized views. Callers hold s.mu.
func (s *BillService) bump() {
	s.revision++
	s.summaries.Purge()
	s.reports.Purge()
}

func (s *BillService) cacheKey(now time.Time) string {
	s.mu.Lock()
	rev := s.revision
	s.mu.Unlock()
	return fmt.Sprintf("%d:%s", rev, core.DateOf(now))
}

// materialize rebuilds each bill's payment history from the payment
// store, preserving recording order.
func materialize(bills []core.Bill, payments []core.PaymentRecord) []core.Bill {
	byBill := make(map[string][]core.PaymentRecord)
	for _, p := range payments {
		byBill[p.BillID] = append(byBill[p.BillID], p)
	}
	out := make([]core.Bill, len(bills))
	for i, b := range bills {
		nb := b.Clone()
		nb.PaymentHistory = byBill[b.ID]
		out[i] = nb
	}
	return out
}

func indexOf(bills []core.Bill, id string) int {
	for i, b := range bills {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func cloneBills(bills []core.Bill) []core.Bill {
	out := make([]core.Bill, len(bills))
	for i, b := range bills {
		out[i] = b.Clone()
	}
	return out
}

func clonePayments(payments []core.PaymentRecord) []core.PaymentRecord {
	out := make([]core.PaymentRecord, len(payments))
	copy(out, payments)
	return out
}

func sortByDueDate(bills []core.Bill) {
	sort.SliceStable(bills, func(i, j int) bool {
		return bills[i].DueDate.Before(bills[j].DueDate.Time)
	})
}

func containsStatus(list []core.Status, s core.Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsCategory(list []core.Category, c core.Category) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}
