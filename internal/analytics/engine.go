package analytics

import (
	"sort"
	"time"

	"billtrack/internal/core"

	"github.com/shopspring/decimal"
)

// TrendMonths is the length of the monthly trend window.
const TrendMonths = 6

type (
	// CategorySummary aggregates the bills of one category. PaidAmount is
	// windowed to the month under analysis; PendingAmount is the remaining
	// balance across the full payment history.
	CategorySummary struct {
		Category      core.Category   `json:"category"`
		TotalAmount   decimal.Decimal `json:"totalAmount"`
		BillCount     int             `json:"billCount"`
		PaidAmount    decimal.Decimal `json:"paidAmount"`
		PendingAmount decimal.Decimal `json:"pendingAmount"`
	}

	// MonthlyAnalytics is one entry of the trend series.
	MonthlyAnalytics struct {
		Month             core.YearMonth    `json:"month"`
		TotalSpent        decimal.Decimal   `json:"totalSpent"`
		TotalBills        int               `json:"totalBills"`
		CategoryBreakdown []CategorySummary `json:"categoryBreakdown"`
		AveragePerBill    decimal.Decimal   `json:"averagePerBill"`
	}

	// SpendingTrend compares the current month against the previous one.
	SpendingTrend struct {
		Change           decimal.Decimal `json:"change"`
		PercentageChange decimal.Decimal `json:"percentageChange"`
		IsIncreasing     bool            `json:"isIncreasing"`
	}

	// TopCategory annotates a category with its whole-percent share of all
	// current-month spending.
	TopCategory struct {
		CategorySummary
		Percentage int64 `json:"percentage"`
	}

	// StatusSpending groups amounts by derived status. Pending covers
	// pending and partial bills at their remaining balance; overdue bills
	// count at full amount.
	StatusSpending struct {
		Paid    decimal.Decimal `json:"paid"`
		Pending decimal.Decimal `json:"pending"`
		Overdue decimal.Decimal `json:"overdue"`
	}

	// MethodStats aggregates the complete payment record set by method.
	MethodStats struct {
		Method        core.PaymentMethod `json:"method"`
		Count         int                `json:"count"`
		TotalAmount   decimal.Decimal    `json:"totalAmount"`
		AverageAmount decimal.Decimal    `json:"averageAmount"`
	}

	// YearlySummary projects the current calendar year from the trend series.
	YearlySummary struct {
		TotalSpent      decimal.Decimal `json:"totalSpent"`
		AverageMonthly  decimal.Decimal `json:"averageMonthly"`
		ProjectedYearly decimal.Decimal `json:"projectedYearly"`
		MonthsCompleted int             `json:"monthsCompleted"`
	}
)

// CategoryBreakdown aggregates bills per category for the month containing
// now. PaidAmount counts payments recorded in that month against bills of
// the category. Sorted by total amount, largest first; only categories with
// at least one bill appear.
func CategoryBreakdown(bills []core.Bill, payments []core.PaymentRecord, now time.Time) []CategorySummary {
	start, end := core.YearMonthOf(now).Range()
	paidInMonth := make(map[string]decimal.Decimal)
	for _, p := range paymentsInRange(payments, start, end) {
		paidInMonth[p.BillID] = paidInMonth[p.BillID].Add(p.Amount)
	}

	index := make(map[core.Category]int)
	var out []CategorySummary
	for _, b := range bills {
		i, ok := index[b.Category]
		if !ok {
			i = len(out)
			index[b.Category] = i
			out = append(out, CategorySummary{Category: b.Category})
		}
		cs := &out[i]
		cs.TotalAmount = cs.TotalAmount.Add(b.Amount)
		cs.BillCount++
		if paid, ok := paidInMonth[b.ID]; ok {
			cs.PaidAmount = cs.PaidAmount.Add(paid)
		}
		cs.PendingAmount = cs.PendingAmount.Add(b.Remaining())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalAmount.GreaterThan(out[j].TotalAmount)
	})
	return out
}

// MonthlyTrends builds the trend series for the last TrendMonths months.
// The series always has exactly TrendMonths entries regardless of data
// sparsity; index 0 is the current month, walking backward from there.
func MonthlyTrends(bills []core.Bill, payments []core.PaymentRecord, now time.Time) []MonthlyAnalytics {
	categoryOf := make(map[string]core.Category, len(bills))
	for _, b := range bills {
		categoryOf[b.ID] = b.Category
	}

	months := core.LastNMonths(now, TrendMonths)
	trends := make([]MonthlyAnalytics, 0, len(months))
	for _, month := range months {
		start, end := month.Range()
		monthPayments := paymentsInRange(payments, start, end)

		totalSpent := decimal.Zero
		distinctBills := make(map[string]struct{})
		index := make(map[core.Category]int)
		var breakdown []CategorySummary
		for _, p := range monthPayments {
			totalSpent = totalSpent.Add(p.Amount)
			distinctBills[p.BillID] = struct{}{}

			// Payments whose bill no longer exists still count toward the
			// month total but cannot be attributed to a category.
			cat, ok := categoryOf[p.BillID]
			if !ok {
				continue
			}
			i, ok := index[cat]
			if !ok {
				i = len(breakdown)
				index[cat] = i
				breakdown = append(breakdown, CategorySummary{Category: cat})
			}
			cs := &breakdown[i]
			cs.TotalAmount = cs.TotalAmount.Add(p.Amount)
			cs.PaidAmount = cs.PaidAmount.Add(p.Amount)
			cs.BillCount++
		}
		sort.SliceStable(breakdown, func(i, j int) bool {
			return breakdown[i].TotalAmount.GreaterThan(breakdown[j].TotalAmount)
		})

		averagePerBill := decimal.Zero
		if len(distinctBills) > 0 {
			averagePerBill = core.RoundToCents(totalSpent.Div(decimal.NewFromInt(int64(len(distinctBills)))))
		}

		trends = append(trends, MonthlyAnalytics{
			Month:             month,
			TotalSpent:        totalSpent,
			TotalBills:        len(distinctBills),
			CategoryBreakdown: breakdown,
			AveragePerBill:    averagePerBill,
		})
	}
	return trends
}

// ComputeSpendingTrend derives the month-over-month delta from a trend
// series whose index 0 is the current month. Fewer than 2 months of data
// yields the zero trend.
func ComputeSpendingTrend(trends []MonthlyAnalytics) SpendingTrend {
	if len(trends) < 2 {
		return SpendingTrend{Change: decimal.Zero, PercentageChange: decimal.Zero}
	}
	current := trends[0].TotalSpent
	previous := trends[1].TotalSpent
	change := current.Sub(previous)
	percentage := decimal.Zero
	if previous.IsPositive() {
		percentage = change.Div(previous).Mul(decimal.NewFromInt(100))
	}
	return SpendingTrend{
		Change:           change,
		PercentageChange: percentage,
		IsIncreasing:     change.IsPositive(),
	}
}

// TopCategories ranks the breakdown by current-month paid amount and keeps
// the top 5, each annotated with its whole-percent share of all paid
// amounts. A zero overall paid sum yields 0 percent everywhere.
func TopCategories(breakdown []CategorySummary) []TopCategory {
	totalPaid := decimal.Zero
	for _, cs := range breakdown {
		totalPaid = totalPaid.Add(cs.PaidAmount)
	}

	ranked := make([]CategorySummary, len(breakdown))
	copy(ranked, breakdown)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PaidAmount.GreaterThan(ranked[j].PaidAmount)
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}

	out := make([]TopCategory, 0, len(ranked))
	for _, cs := range ranked {
		out = append(out, TopCategory{
			CategorySummary: cs,
			Percentage:      core.Percentage(cs.PaidAmount, totalPaid),
		})
	}
	return out
}

// AverageMonthlySpending is the arithmetic mean of totalSpent across the
// trend series, zero for an empty series.
func AverageMonthlySpending(trends []MonthlyAnalytics) decimal.Decimal {
	if len(trends) == 0 {
		return decimal.Zero
	}
	amounts := make([]decimal.Decimal, 0, len(trends))
	for _, t := range trends {
		amounts = append(amounts, t.TotalSpent)
	}
	return core.RoundToCents(core.Average(amounts))
}

// SpendingByStatus groups bill amounts by derived status. The asymmetry is
// deliberate and observable behavior: pending and partial bills contribute
// their remaining balance, overdue bills their full amount.
func SpendingByStatus(bills []core.Bill) StatusSpending {
	s := StatusSpending{Paid: decimal.Zero, Pending: decimal.Zero, Overdue: decimal.Zero}
	for _, b := range bills {
		switch b.Status {
		case core.StatusPaid:
			s.Paid = s.Paid.Add(b.Amount)
		case core.StatusPending, core.StatusPartial:
			s.Pending = s.Pending.Add(b.Amount.Sub(b.TotalPaid()))
		case core.StatusOverdue:
			s.Overdue = s.Overdue.Add(b.Amount)
		}
	}
	return s
}

// PaymentMethodAnalysis groups the complete payment record set by method,
// sorted by total amount, largest first. Not time-windowed.
func PaymentMethodAnalysis(payments []core.PaymentRecord) []MethodStats {
	index := make(map[core.PaymentMethod]int)
	var out []MethodStats
	for _, p := range payments {
		i, ok := index[p.Method]
		if !ok {
			i = len(out)
			index[p.Method] = i
			out = append(out, MethodStats{Method: p.Method, TotalAmount: decimal.Zero})
		}
		out[i].Count++
		out[i].TotalAmount = out[i].TotalAmount.Add(p.Amount)
	}
	for i := range out {
		out[i].AverageAmount = core.RoundToCents(
			out[i].TotalAmount.Div(decimal.NewFromInt(int64(out[i].Count))))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalAmount.GreaterThan(out[j].TotalAmount)
	})
	return out
}

// ComputeYearlySummary totals the current calendar year's payments and
// projects a yearly figure from the trend months belonging to this year.
func ComputeYearlySummary(payments []core.PaymentRecord, trends []MonthlyAnalytics, now time.Time) YearlySummary {
	year := now.Year()
	start := core.NewDate(year, time.January, 1)
	end := core.NewDate(year, time.December, 31)

	totalSpent := decimal.Zero
	for _, p := range paymentsInRange(payments, start, end) {
		totalSpent = totalSpent.Add(p.Amount)
	}

	var monthTotals []decimal.Decimal
	for _, t := range trends {
		if t.Month.Year == year {
			monthTotals = append(monthTotals, t.TotalSpent)
		}
	}
	averageMonthly := core.RoundToCents(core.Average(monthTotals))

	return YearlySummary{
		TotalSpent:      totalSpent,
		AverageMonthly:  averageMonthly,
		ProjectedYearly: averageMonthly.Mul(decimal.NewFromInt(12)),
		MonthsCompleted: len(monthTotals),
	}
}

func paymentsInRange(payments []core.PaymentRecord, start, end core.Date) []core.PaymentRecord {
	var out []core.PaymentRecord
	for _, p := range payments {
		if !p.PaidDate.Before(start.Time) && !p.PaidDate.After(end.Time) {
			out = append(out, p)
		}
	}
	return out
}
