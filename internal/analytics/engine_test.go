package analytics

import (
	"testing"
	"time"

	"billtrack/internal/core"

	"github.com/shopspring/decimal"
)

func payment(id, billID, amount string, date core.Date) core.PaymentRecord {
	return core.PaymentRecord{
		ID:       id,
		BillID:   billID,
		Amount:   dec(amount),
		PaidDate: date,
		Method:   core.MethodCreditCard,
	}
}

func TestCategoryBreakdown(t *testing.T) {
	now := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	electricity := bill("elec", "50", core.NewDate(2026, time.March, 20))
	water := bill("water", "70", core.NewDate(2026, time.March, 25))
	rent := bill("rent", "900", core.NewDate(2026, time.March, 1))
	rent.Category = core.CategoryRent

	payments := []core.PaymentRecord{
		payment("p1", "elec", "50", core.NewDate(2026, time.March, 10)),
		// Outside the current month, must not count as paid-in-month.
		payment("p2", "water", "70", core.NewDate(2026, time.February, 10)),
	}
	electricity.PaymentHistory = payments[:1]
	water.PaymentHistory = payments[1:]

	out := CategoryBreakdown([]core.Bill{electricity, water, rent}, payments, now)

	if len(out) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(out))
	}
	// Sorted by total amount, largest first.
	if out[0].Category != core.CategoryRent {
		t.Errorf("out[0].Category = %s, want rent", out[0].Category)
	}

	util := out[1]
	if util.Category != core.CategoryUtilities {
		t.Fatalf("out[1].Category = %s, want utilities", util.Category)
	}
	if !util.TotalAmount.Equal(dec("120")) {
		t.Errorf("TotalAmount = %s, want 120", util.TotalAmount)
	}
	if util.BillCount != 2 {
		t.Errorf("BillCount = %d, want 2", util.BillCount)
	}
	if !util.PaidAmount.Equal(dec("50")) {
		t.Errorf("PaidAmount = %s, want 50", util.PaidAmount)
	}
	// Water is fully paid historically, so only electricity's balance is
	// zero and water's is zero too; pending comes from remaining balances.
	if !util.PendingAmount.Equal(dec("0")) {
		t.Errorf("PendingAmount = %s, want 0", util.PendingAmount)
	}
}

func TestCategoryBreakdownPendingBalances(t *testing.T) {
	now := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	a := bill("a", "50", core.NewDate(2026, time.March, 20))
	b := bill("b", "70", core.NewDate(2026, time.March, 25))
	payments := []core.PaymentRecord{
		payment("p1", "a", "50", core.NewDate(2026, time.March, 10)),
	}
	a.PaymentHistory = payments

	out := CategoryBreakdown([]core.Bill{a, b}, payments, now)
	if len(out) != 1 {
		t.Fatalf("expected 1 category, got %d", len(out))
	}
	if !out[0].PaidAmount.Equal(dec("50")) {
		t.Errorf("PaidAmount = %s, want 50", out[0].PaidAmount)
	}
	if !out[0].PendingAmount.Equal(dec("70")) {
		t.Errorf("PendingAmount = %s, want 70", out[0].PendingAmount)
	}
}

func TestMonthlyTrends(t *testing.T) {
	now := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	b := bill("b1", "60", core.NewDate(2026, time.March, 20))

	payments := []core.PaymentRecord{
		payment("p1", "b1", "60", core.NewDate(2026, time.March, 5)),
		payment("p2", "b1", "60", core.NewDate(2026, time.February, 5)),
		payment("p3", "b1", "60", core.NewDate(2026, time.January, 5)),
		// Orphaned payment: counts toward the total, no category.
		payment("p4", "gone", "40", core.NewDate(2026, time.March, 7)),
	}

	trends := MonthlyTrends([]core.Bill{b}, payments, now)

	if len(trends) != TrendMonths {
		t.Fatalf("expected %d entries, got %d", TrendMonths, len(trends))
	}
	if trends[0].Month.String() != "2026-03" {
		t.Errorf("trends[0].Month = %s, want 2026-03 (current month first)", trends[0].Month)
	}
	if !trends[0].TotalSpent.Equal(dec("100")) {
		t.Errorf("trends[0].TotalSpent = %s, want 100", trends[0].TotalSpent)
	}
	if trends[0].TotalBills != 2 {
		t.Errorf("trends[0].TotalBills = %d, want 2 distinct bills", trends[0].TotalBills)
	}
	if len(trends[0].CategoryBreakdown) != 1 {
		t.Fatalf("expected 1 category for current month, got %d", len(trends[0].CategoryBreakdown))
	}
	if !trends[0].CategoryBreakdown[0].TotalAmount.Equal(dec("60")) {
		t.Errorf("category total = %s, want 60 (orphan excluded)", trends[0].CategoryBreakdown[0].TotalAmount)
	}
	if !trends[0].AveragePerBill.Equal(dec("50")) {
		t.Errorf("AveragePerBill = %s, want 50", trends[0].AveragePerBill)
	}

	// Months with no payments still appear, zero-valued.
	for i := 3; i < TrendMonths; i++ {
		if !trends[i].TotalSpent.IsZero() || trends[i].TotalBills != 0 {
			t.Errorf("trends[%d] should be empty, got %+v", i, trends[i])
		}
	}
}

func TestComputeSpendingTrend(t *testing.T) {
	tests := []struct {
		name             string
		current, prev    string
		wantChange       string
		wantPct          string
		wantIsIncreasing bool
	}{
		{"increase", "150", "100", "50", "50", true},
		{"decrease", "80", "100", "-20", "-20", false},
		{"flat", "100", "100", "0", "0", false},
		{"zero previous skips percentage", "100", "0", "100", "0", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trends := []MonthlyAnalytics{
				{TotalSpent: dec(tt.current)},
				{TotalSpent: dec(tt.prev)},
			}
			got := ComputeSpendingTrend(trends)
			if !got.Change.Equal(dec(tt.wantChange)) {
				t.Errorf("Change = %s, want %s", got.Change, tt.wantChange)
			}
			if !got.PercentageChange.Equal(dec(tt.wantPct)) {
				t.Errorf("PercentageChange = %s, want %s", got.PercentageChange, tt.wantPct)
			}
			if got.IsIncreasing != tt.wantIsIncreasing {
				t.Errorf("IsIncreasing = %v, want %v", got.IsIncreasing, tt.wantIsIncreasing)
			}
		})
	}

	t.Run("too little data", func(t *testing.T) {
		got := ComputeSpendingTrend([]MonthlyAnalytics{{TotalSpent: dec("100")}})
		if !got.Change.IsZero() || !got.PercentageChange.IsZero() || got.IsIncreasing {
			t.Errorf("expected zero trend, got %+v", got)
		}
	})
}

func TestTopCategories(t *testing.T) {
	breakdown := []CategorySummary{
		{Category: core.CategoryRent, PaidAmount: dec("900")},
		{Category: core.CategoryUtilities, PaidAmount: dec("50")},
		{Category: core.CategoryInternet, PaidAmount: dec("30")},
		{Category: core.CategoryPhone, PaidAmount: dec("10")},
		{Category: core.CategoryFood, PaidAmount: dec("5")},
		{Category: core.CategoryOther, PaidAmount: dec("5")},
	}

	top := TopCategories(breakdown)
	if len(top) != 5 {
		t.Fatalf("expected top 5, got %d", len(top))
	}
	if top[0].Category != core.CategoryRent {
		t.Errorf("top[0] = %s, want rent", top[0].Category)
	}
	if top[0].Percentage != 90 {
		t.Errorf("top[0].Percentage = %d, want 90", top[0].Percentage)
	}
	// Percentage shares are computed over all categories, including the
	// one cut from the top 5.
	if top[1].Percentage != 5 {
		t.Errorf("top[1].Percentage = %d, want 5", top[1].Percentage)
	}

	if got := TopCategories(nil); len(got) != 0 {
		t.Errorf("expected empty result, got %d entries", len(got))
	}
}

func TestTopCategoriesZeroPaid(t *testing.T) {
	top := TopCategories([]CategorySummary{
		{Category: core.CategoryRent, PaidAmount: decimal.Zero},
	})
	if top[0].Percentage != 0 {
		t.Errorf("Percentage = %d, want 0 when nothing was paid", top[0].Percentage)
	}
}

func TestAverageMonthlySpending(t *testing.T) {
	trends := []MonthlyAnalytics{
		{TotalSpent: dec("100")},
		{TotalSpent: dec("50")},
		{TotalSpent: dec("0")},
	}
	if got := AverageMonthlySpending(trends); !got.Equal(dec("50")) {
		t.Errorf("AverageMonthlySpending = %s, want 50", got)
	}
	if got := AverageMonthlySpending(nil); !got.IsZero() {
		t.Errorf("AverageMonthlySpending(nil) = %s, want 0", got)
	}
}

func TestSpendingByStatus(t *testing.T) {
	now := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	bills := Normalize([]core.Bill{
		bill("paid", "100", core.NewDate(2026, time.March, 1), "100"),
		bill("pending", "50", core.NewDate(2026, time.March, 20)),
		bill("partial", "100", core.NewDate(2026, time.March, 25), "40"),
		bill("overdue", "80", core.NewDate(2026, time.March, 1)),
	}, now)

	s := SpendingByStatus(bills)

	if !s.Paid.Equal(dec("100")) {
		t.Errorf("Paid = %s, want 100", s.Paid)
	}
	// Pending aggregates remaining balances: 50 pending + 60 left on the
	// partial bill.
	if !s.Pending.Equal(dec("110")) {
		t.Errorf("Pending = %s, want 110", s.Pending)
	}
	if !s.Overdue.Equal(dec("80")) {
		t.Errorf("Overdue = %s, want 80", s.Overdue)
	}
}

func TestPaymentMethodAnalysis(t *testing.T) {
	payments := []core.PaymentRecord{
		{Method: core.MethodCreditCard, Amount: dec("100")},
		{Method: core.MethodCreditCard, Amount: dec("50")},
		{Method: core.MethodCash, Amount: dec("200")},
	}

	out := PaymentMethodAnalysis(payments)
	if len(out) != 2 {
		t.Fatalf("expected 2 methods, got %d", len(out))
	}
	if out[0].Method != core.MethodCash {
		t.Errorf("out[0].Method = %s, want cash (largest total first)", out[0].Method)
	}
	cc := out[1]
	if cc.Count != 2 {
		t.Errorf("credit card Count = %d, want 2", cc.Count)
	}
	if !cc.TotalAmount.Equal(dec("150")) {
		t.Errorf("credit card TotalAmount = %s, want 150", cc.TotalAmount)
	}
	if !cc.AverageAmount.Equal(dec("75")) {
		t.Errorf("credit card AverageAmount = %s, want 75", cc.AverageAmount)
	}
}

func TestComputeYearlySummary(t *testing.T) {
	now := time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC)
	payments := []core.PaymentRecord{
		payment("p1", "b", "100", core.NewDate(2026, time.January, 10)),
		payment("p2", "b", "100", core.NewDate(2026, time.February, 10)),
		// Previous year, excluded from the yearly total.
		payment("p3", "b", "500", core.NewDate(2025, time.December, 10)),
	}
	trends := MonthlyTrends([]core.Bill{bill("b", "100", core.NewDate(2026, time.February, 20))}, payments, now)

	y := ComputeYearlySummary(payments, trends, now)

	if !y.TotalSpent.Equal(dec("200")) {
		t.Errorf("TotalSpent = %s, want 200", y.TotalSpent)
	}
	if y.MonthsCompleted != 2 {
		t.Errorf("MonthsCompleted = %d, want 2", y.MonthsCompleted)
	}
	if !y.AverageMonthly.Equal(dec("100")) {
		t.Errorf("AverageMonthly = %s, want 100", y.AverageMonthly)
	}
	if !y.ProjectedYearly.Equal(dec("1200")) {
		t.Errorf("ProjectedYearly = %s, want 1200", y.ProjectedYearly)
	}
}

func TestBuildReport(t *testing.T) {
	now := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	bills := Normalize([]core.Bill{
		bill("a", "50", core.NewDate(2026, time.March, 20), "50"),
		bill("b", "70", core.NewDate(2026, time.March, 25)),
	}, now)
	payments := []core.PaymentRecord{
		payment("p1", "a", "50", core.NewDate(2026, time.March, 10)),
	}

	r := BuildReport(bills, payments, now)

	if !r.CurrentMonthSpending.Equal(dec("50")) {
		t.Errorf("CurrentMonthSpending = %s, want 50", r.CurrentMonthSpending)
	}
	if len(r.MonthlyTrends) != TrendMonths {
		t.Errorf("MonthlyTrends length = %d, want %d", len(r.MonthlyTrends), TrendMonths)
	}
	if len(r.Charts.MonthlySpending) != TrendMonths {
		t.Errorf("chart series length = %d, want %d", len(r.Charts.MonthlySpending), TrendMonths)
	}
	if len(r.TopCategories) == 0 {
		t.Error("expected at least one top category")
	}
}
