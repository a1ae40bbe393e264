package core

import (
	"fmt"
	"time"
)

// Date is a day-granular calendar date. The time component is always
// midnight UTC; comparisons never consider sub-day precision.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf strips the time component from t.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, ErrInvalidDate)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("unmarshal date %s: %w", s, ErrInvalidDate)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// YearMonthOf returns the month containing t.
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// String formats as YYYY-MM.
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Name formats as a display name, e.g. "January 2026".
func (ym YearMonth) Name() string {
	return fmt.Sprintf("%s %d", ym.Month.String(), ym.Year)
}

// ParseYearMonth parses a YYYY-MM string.
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("parse month %q: %w", s, ErrInvalidDate)
	}
	return YearMonthOf(t), nil
}

func (ym YearMonth) MarshalJSON() ([]byte, error) {
	return []byte(`"` + ym.String() + `"`), nil
}

func (ym *YearMonth) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("unmarshal month %s: %w", s, ErrInvalidDate)
	}
	parsed, err := ParseYearMonth(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*ym = parsed
	return nil
}

// Contains reports whether d falls inside the month.
func (ym YearMonth) Contains(d Date) bool {
	return d.Year() == ym.Year && d.Month() == ym.Month
}

// Range returns the first and last calendar day of the month.
func (ym YearMonth) Range() (start, end Date) {
	start = NewDate(ym.Year, ym.Month, 1)
	end = NewDate(ym.Year, ym.Month, lastDayOfMonth(ym.Year, ym.Month))
	return start, end
}

// IsOverdue reports whether d is strictly before today, day granularity.
func IsOverdue(d Date, today time.Time) bool {
	return d.Before(DateOf(today).Time)
}

// IsDueSoon reports whether d falls within [today, today+windowDays],
// both ends inclusive at day granularity.
func IsDueSoon(d Date, today time.Time, windowDays int) bool {
	t := DateOf(today)
	windowEnd := t.AddDate(0, 0, windowDays)
	return !d.Before(t.Time) && !d.After(windowEnd)
}

// DaysUntilDue returns the number of days from today until d.
// Negative means overdue; 0 means due today.
func DaysUntilDue(d Date, today time.Time) int {
	diff := d.Sub(DateOf(today).Time)
	return int(diff / (24 * time.Hour))
}

// NextDueDate advances d by the frequency's month step. The day of month
// is preserved; when the target month is shorter the date clamps to its
// last valid day (Jan 31 + monthly -> Feb 29 in a leap year). Annual
// advancement is a calendar year, which the clamped 12-month step yields.
func NextDueDate(d Date, f Frequency) Date {
	return addMonthsClamped(d, f.Months())
}

func addMonthsClamped(d Date, months int) Date {
	year, month, day := d.Date()
	total := year*12 + int(month) - 1 + months
	targetYear := total / 12
	targetMonth := time.Month(total%12 + 1)
	if last := lastDayOfMonth(targetYear, targetMonth); day > last {
		day = last
	}
	return NewDate(targetYear, targetMonth, day)
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// LastNMonths lists the n months ending at the month containing now,
// most recent first.
func LastNMonths(now time.Time, n int) []YearMonth {
	months := make([]YearMonth, 0, n)
	for i := 0; i < n; i++ {
		t := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		months = append(months, YearMonthOf(t))
	}
	return months
}
