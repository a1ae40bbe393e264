package analytics

import (
	"testing"
	"time"

	"billtrack/internal/core"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func bill(id string, amount string, due core.Date, paid ...string) core.Bill {
	b := core.Bill{
		ID:        id,
		Name:      "Bill " + id,
		Amount:    dec(amount),
		DueDate:   due,
		Category:  core.CategoryUtilities,
		Frequency: core.Monthly,
	}
	for i, p := range paid {
		b.PaymentHistory = append(b.PaymentHistory, core.PaymentRecord{
			ID:       id + "-p" + string(rune('1'+i)),
			BillID:   id,
			Amount:   dec(p),
			PaidDate: due,
			Method:   core.MethodBankTransfer,
		})
	}
	return b
}

func TestDeriveStatus(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	past := core.NewDate(2026, time.March, 1)
	future := core.NewDate(2026, time.March, 25)

	tests := []struct {
		name string
		bill core.Bill
		want core.Status
	}{
		{"no payments, future due", bill("a", "100", future), core.StatusPending},
		{"no payments, due today", bill("b", "100", core.NewDate(2026, time.March, 15)), core.StatusPending},
		{"no payments, past due", bill("c", "100", past), core.StatusOverdue},
		{"partial payment, past due", bill("d", "100", past, "40"), core.StatusPartial},
		{"partial payment, future due", bill("e", "100", future, "40"), core.StatusPartial},
		{"exact payment counts as paid", bill("f", "100", past, "100"), core.StatusPaid},
		{"split payments reaching total", bill("g", "100", past, "60", "40"), core.StatusPaid},
		{"overpaid", bill("h", "100", future, "150"), core.StatusPaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveStatus(tt.bill, now); got != tt.want {
				t.Errorf("DeriveStatus = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	now := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	in := []core.Bill{
		bill("a", "100", core.NewDate(2026, time.March, 1)),
		bill("b", "100", core.NewDate(2026, time.March, 20), "100"),
	}
	in[0].Status = core.StatusPending // stale stored status

	out := Normalize(in, now)
	if out[0].Status != core.StatusOverdue {
		t.Errorf("out[0].Status = %s, want overdue", out[0].Status)
	}
	if out[1].Status != core.StatusPaid {
		t.Errorf("out[1].Status = %s, want paid", out[1].Status)
	}

	// Input must stay untouched.
	if in[0].Status != core.StatusPending {
		t.Error("Normalize mutated its input")
	}

	out[1].PaymentHistory[0].Amount = dec("1")
	if !in[1].PaymentHistory[0].Amount.Equal(dec("100")) {
		t.Error("output shares payment history backing array with input")
	}
}
