// Package report implements the monthly aggregation pipeline: pure,
// side-effect-free transformations of a user's expense records and declared
// monthly income into the derived series rendered by dashboards and reports.
//
// Every function takes the reference date as a parameter so month bucketing is
// testable without touching the system clock.
package report

import (
	"math"
	"sort"
	"time"

	"masareef/internal/core"
)

// TrackedCategories is the fixed set surfaced in month-over-month trend
// comparisons. Expense records may carry any category string; only these
// appear in trends, and each always appears even with no matching records.
var TrackedCategories = []string{"food", "transport", "bills", "entertainment"}

type (
	// CategoryTotal is the all-time total for one category present in the input.
	CategoryTotal struct {
		Category string
		Total    core.Money
	}

	// MonthlyPoint is one bucket of the six-month income/expense series.
	MonthlyPoint struct {
		Year     int
		Month    int // 1-12
		Income   core.Money
		Expenses core.Money
	}

	// CategoryTrend compares the current calendar month against the previous
	// one for a tracked category.
	CategoryTrend struct {
		Category string
		Current  core.Money
		Previous core.Money
	}

	// HeadlineStats are the three percentage figures shown at the top of the
	// reports page. Non-finite intermediate results are coerced to zero.
	HeadlineStats struct {
		SavingsIncrease  float64
		ExpenseDecrease  float64
		BudgetCompliance float64
	}
)

// TotalSpend sums the amounts of all records in the input.
func TotalSpend(expenses []core.Expense) core.Money {
	var cents int64
	for _, e := range expenses {
		cents += e.Amount.Cents
	}
	return core.Money{Cents: cents}
}

// TotalsByCategory groups records by category and sums each group. Categories
// absent from the input produce no entry. The result is sorted by category
// name so repeated runs over the same records yield identical output.
func TotalsByCategory(expenses []core.Expense) []CategoryTotal {
	sums := make(map[string]int64)
	for _, e := range expenses {
		sums[e.Category] += e.Amount.Cents
	}
	out := make([]CategoryTotal, 0, len(sums))
	for cat, cents := range sums {
		out = append(out, CategoryTotal{Category: cat, Total: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// SixMonthSeries buckets expenses into the six calendar months ending with
// today's month, in chronological order. Bucketing uses month+year equality,
// not a rolling 30-day window. The declared income is not historized: the same
// value repeats across all six points.
func SixMonthSeries(today core.Date, expenses []core.Expense, income core.Money) []MonthlyPoint {
	series := make([]MonthlyPoint, 0, 6)
	first := time.Date(today.Year(), time.Month(today.Month()), 1, 0, 0, 0, 0, time.UTC)
	for i := 5; i >= 0; i-- {
		m := first.AddDate(0, -i, 0)
		series = append(series, MonthlyPoint{
			Year:     m.Year(),
			Month:    int(m.Month()),
			Income:   income,
			Expenses: monthTotal(expenses, m.Year(), int(m.Month())),
		})
	}
	return series
}

// CategoryTrends emits one entry per tracked category comparing the current
// calendar month with the immediately preceding one (December precedes
// January). Missing data yields a zero amount, never an omitted entry.
func CategoryTrends(today core.Date, expenses []core.Expense) []CategoryTrend {
	curY, curM := today.Year(), today.Month()
	prev := time.Date(curY, time.Month(curM), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	prevY, prevM := prev.Year(), int(prev.Month())

	trends := make([]CategoryTrend, 0, len(TrackedCategories))
	for _, cat := range TrackedCategories {
		var cur, prv int64
		for _, e := range expenses {
			if e.Category != cat {
				continue
			}
			switch {
			case e.Date.Year() == curY && e.Date.Month() == curM:
				cur += e.Amount.Cents
			case e.Date.Year() == prevY && e.Date.Month() == prevM:
				prv += e.Amount.Cents
			}
		}
		trends = append(trends, CategoryTrend{
			Category: cat,
			Current:  core.Money{Cents: cur},
			Previous: core.Money{Cents: prv},
		})
	}
	return trends
}

// MonthTotals returns the expense sums for the current and the immediately
// preceding calendar month relative to today.
func MonthTotals(today core.Date, expenses []core.Expense) (current, previous core.Money) {
	prev := time.Date(today.Year(), time.Month(today.Month()), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	current = monthTotal(expenses, today.Year(), today.Month())
	previous = monthTotal(expenses, prev.Year(), int(prev.Month()))
	return current, previous
}

// Headline computes the three percentage statistics. Any division by zero or
// otherwise non-finite result reports zero rather than propagating an error,
// so an empty record set or a zero income never breaks the dashboard.
func Headline(income, currentMonth, previousMonth core.Money) HeadlineStats {
	inc := float64(income.Cents)
	cur := float64(currentMonth.Cents)
	prv := float64(previousMonth.Cents)

	return HeadlineStats{
		SavingsIncrease:  finite(((inc-cur)/(inc-prv) - 1) * 100),
		ExpenseDecrease:  finite((prv - cur) / prv * 100),
		BudgetCompliance: finite((inc - cur) / inc * 100),
	}
}

func monthTotal(expenses []core.Expense, year, month int) core.Money {
	var cents int64
	for _, e := range expenses {
		if e.Date.Year() == year && e.Date.Month() == month {
			cents += e.Amount.Cents
		}
	}
	return core.Money{Cents: cents}
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
