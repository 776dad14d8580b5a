package services

import (
	"context"
	"fmt"
	"time"

	"masareef/internal/core"
	"masareef/internal/insights"
	"masareef/internal/records"
	"masareef/internal/report"
)

// Dashboard is the summary payload behind the landing view: declared income,
// spend totals and a short tail of recent expenses.
type Dashboard struct {
	Profile         core.Profile
	TotalSpend      core.Money
	CurrentMonth    core.Money
	ExpectedSavings core.Money
	ByCategory      []report.CategoryTotal
	RecentExpenses  []core.Expense
	GoalCount       int
}

// Report is the six-month analytics payload.
type Report struct {
	Series   []report.MonthlyPoint
	Trends   []report.CategoryTrend
	Headline report.HeadlineStats
}

const recentExpenseLimit = 5

// ReportService assembles aggregate views from one owner's records. The
// aggregates are always recomputed from the store; only generated advisories
// are cached, inside the Generator.
type ReportService struct {
	store records.Store
	gen   *insights.Generator
	now   func() time.Time
}

func NewReportService(store records.Store, gen *insights.Generator) *ReportService {
	return &ReportService{
		store: store,
		gen:   gen,
		now:   time.Now,
	}
}

func (s *ReportService) Dashboard(ctx context.Context, ownerID string) (Dashboard, error) {
	expenses, profile, err := s.ownerRecords(ctx, ownerID)
	if err != nil {
		return Dashboard{}, err
	}
	goals, err := s.store.ListGoals(ctx, ownerID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list goals: %w", err)
	}

	today := core.DateOf(s.now())
	currentMonth, _ := report.MonthTotals(today, expenses)

	recent := expenses
	if len(recent) > recentExpenseLimit {
		recent = recent[:recentExpenseLimit]
	}

	return Dashboard{
		Profile:         profile,
		TotalSpend:      report.TotalSpend(expenses),
		CurrentMonth:    currentMonth,
		ExpectedSavings: core.Money{Cents: profile.MonthlyIncome.Cents - currentMonth.Cents},
		ByCategory:      report.TotalsByCategory(expenses),
		RecentExpenses:  recent,
		GoalCount:       len(goals),
	}, nil
}

func (s *ReportService) Report(ctx context.Context, ownerID string) (Report, error) {
	expenses, profile, err := s.ownerRecords(ctx, ownerID)
	if err != nil {
		return Report{}, err
	}

	today := core.DateOf(s.now())
	currentMonth, previousMonth := report.MonthTotals(today, expenses)

	return Report{
		Series:   report.SixMonthSeries(today, expenses, profile.MonthlyIncome),
		Trends:   report.CategoryTrends(today, expenses),
		Headline: report.Headline(profile.MonthlyIncome, currentMonth, previousMonth),
	}, nil
}

// Insights builds the owner's aggregate summary and asks the generator for
// advisories. Generation itself cannot fail; only fetching the records can.
func (s *ReportService) Insights(ctx context.Context, ownerID string) ([]insights.Insight, error) {
	expenses, profile, err := s.ownerRecords(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	today := core.DateOf(s.now())
	currentMonth, previousMonth := report.MonthTotals(today, expenses)

	sum := insights.Summary{
		MonthlyIncome: profile.MonthlyIncome,
		TotalExpenses: report.TotalSpend(expenses),
		CurrentMonth:  currentMonth,
		PreviousMonth: previousMonth,
		ByCategory:    report.TotalsByCategory(expenses),
	}
	return s.gen.Generate(ctx, ownerID, sum), nil
}

func (s *ReportService) ownerRecords(ctx context.Context, ownerID string) ([]core.Expense, core.Profile, error) {
	expenses, err := s.store.ListExpenses(ctx, ownerID)
	if err != nil {
		return nil, core.Profile{}, fmt.Errorf("list expenses: %w", err)
	}
	profile, err := s.store.GetProfile(ctx, ownerID)
	if err != nil {
		return nil, core.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	return expenses, profile, nil
}
