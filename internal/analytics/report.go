package analytics

import (
	"time"

	"billtrack/internal/core"

	"github.com/shopspring/decimal"
)

type (
	// MonthPoint is one bar of the monthly spending chart.
	MonthPoint struct {
		Month  string          `json:"month"`
		Amount decimal.Decimal `json:"amount"`
		Bills  int             `json:"bills"`
	}

	// PiePoint is one slice of the category pie.
	PiePoint struct {
		Name       string          `json:"name"`
		Value      decimal.Decimal `json:"value"`
		Percentage int64           `json:"percentage"`
	}

	// StatusPoint is one segment of the status breakdown.
	StatusPoint struct {
		Name  string          `json:"name"`
		Value decimal.Decimal `json:"value"`
		Color string          `json:"color"`
	}

	// ChartData reshapes computed series into display-ready form. It is a
	// pure projection; no new aggregation happens here.
	ChartData struct {
		MonthlySpending []MonthPoint  `json:"monthlySpending"`
		CategoryPie     []PiePoint    `json:"categoryPie"`
		StatusBreakdown []StatusPoint `json:"statusBreakdown"`
	}

	// Report bundles every derived view for a single snapshot.
	Report struct {
		CurrentMonthSpending   decimal.Decimal    `json:"currentMonthSpending"`
		CategoryBreakdown      []CategorySummary  `json:"categoryBreakdown"`
		MonthlyTrends          []MonthlyAnalytics `json:"monthlyTrends"`
		SpendingTrend          SpendingTrend      `json:"spendingTrends"`
		TopCategories          []TopCategory      `json:"topCategories"`
		AverageMonthlySpending decimal.Decimal    `json:"averageMonthlySpending"`
		SpendingByStatus       StatusSpending     `json:"spendingByStatus"`
		PaymentMethods         []MethodStats      `json:"paymentMethodAnalysis"`
		YearlySummary          YearlySummary      `json:"yearlySummary"`
		Charts                 ChartData          `json:"chartData"`
	}
)

const (
	colorPaid    = "#10b981"
	colorPending = "#f59e0b"
	colorOverdue = "#ef4444"
)

// Charts projects the trend series, top categories and status breakdown
// into chart series.
func Charts(trends []MonthlyAnalytics, top []TopCategory, status StatusSpending) ChartData {
	monthly := make([]MonthPoint, 0, len(trends))
	for _, t := range trends {
		monthly = append(monthly, MonthPoint{
			Month:  t.Month.Name(),
			Amount: t.TotalSpent,
			Bills:  t.TotalBills,
		})
	}
	pie := make([]PiePoint, 0, len(top))
	for _, tc := range top {
		pie = append(pie, PiePoint{
			Name:       string(tc.Category),
			Value:      tc.PaidAmount,
			Percentage: tc.Percentage,
		})
	}
	return ChartData{
		MonthlySpending: monthly,
		CategoryPie:     pie,
		StatusBreakdown: []StatusPoint{
			{Name: "Paid", Value: status.Paid, Color: colorPaid},
			{Name: "Pending", Value: status.Pending, Color: colorPending},
			{Name: "Overdue", Value: status.Overdue, Color: colorOverdue},
		},
	}
}

// BuildReport computes every analytics view from one snapshot of
// status-normalized bills and the full payment record set.
func BuildReport(bills []core.Bill, payments []core.PaymentRecord, now time.Time) Report {
	start, end := core.YearMonthOf(now).Range()
	currentMonthSpending := decimal.Zero
	for _, p := range paymentsInRange(payments, start, end) {
		currentMonthSpending = currentMonthSpending.Add(p.Amount)
	}

	breakdown := CategoryBreakdown(bills, payments, now)
	trends := MonthlyTrends(bills, payments, now)
	top := TopCategories(breakdown)
	status := SpendingByStatus(bills)

	return Report{
		CurrentMonthSpending:   currentMonthSpending,
		CategoryBreakdown:      breakdown,
		MonthlyTrends:          trends,
		SpendingTrend:          ComputeSpendingTrend(trends),
		TopCategories:          top,
		AverageMonthlySpending: AverageMonthlySpending(trends),
		SpendingByStatus:       status,
		PaymentMethods:         PaymentMethodAnalysis(payments),
		YearlySummary:          ComputeYearlySummary(payments, trends, now),
		Charts:                 Charts(trends, top, status),
	}
}
