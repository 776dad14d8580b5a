package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"masareef/internal/core"
	"masareef/internal/insights"
	"masareef/internal/records/memory"
)

func fixedNow() time.Time {
	return time.Date(2026, time.August, 20, 10, 0, 0, 0, time.UTC)
}

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.New()
	ctx := context.Background()

	if err := store.UpsertProfile(ctx, core.Profile{
		OwnerID:       "u1",
		FullName:      "Ada",
		MonthlyIncome: core.Money{Cents: 500000},
	}); err != nil {
		t.Fatal(err)
	}

	seed := []core.Expense{
		{OwnerID: "u1", Name: "groceries", Category: "food", Amount: core.Money{Cents: 200000}, Date: core.NewDate(2026, 8, 3)},
		{OwnerID: "u1", Name: "bus pass", Category: "transport", Amount: core.Money{Cents: 145000}, Date: core.NewDate(2026, 8, 10)},
		{OwnerID: "u1", Name: "electricity", Category: "bills", Amount: core.Money{Cents: 410000}, Date: core.NewDate(2026, 7, 15)},
	}
	for _, e := range seed {
		if _, err := store.InsertExpense(ctx, e); err != nil {
			t.Fatal(err)
		}
	}
	return store
}

func reportService(store *memory.Store) *ReportService {
	svc := NewReportService(store, insights.NewGenerator(nil, 8, time.Minute, nil))
	svc.now = fixedNow
	return svc
}

func TestDashboardTotals(t *testing.T) {
	store := seedStore(t)
	svc := reportService(store)

	d, err := svc.Dashboard(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}

	if d.TotalSpend.Cents != 755000 {
		t.Errorf("total spend = %d, want 755000", d.TotalSpend.Cents)
	}
	if d.CurrentMonth.Cents != 345000 {
		t.Errorf("current month = %d, want 345000", d.CurrentMonth.Cents)
	}
	if d.ExpectedSavings.Cents != 155000 {
		t.Errorf("expected savings = %d, want 155000", d.ExpectedSavings.Cents)
	}
	if d.Profile.MonthlyIncome.Cents != 500000 {
		t.Errorf("income = %d, want 500000", d.Profile.MonthlyIncome.Cents)
	}
	if len(d.ByCategory) != 3 {
		t.Errorf("category totals = %d, want 3", len(d.ByCategory))
	}
}

func TestDashboardRecentExpensesCapped(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	for i := 0; i < 8; i++ {
		if _, err := store.InsertExpense(ctx, core.Expense{
			OwnerID:  "u1",
			Name:     fmt.Sprintf("item %d", i),
			Category: "other",
			Amount:   core.Money{Cents: 100},
			Date:     core.NewDate(2026, 8, i+1),
		}); err != nil {
			t.Fatal(err)
		}
	}

	d, err := reportService(store).Dashboard(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(d.RecentExpenses) != recentExpenseLimit {
		t.Fatalf("recent expenses = %d, want %d", len(d.RecentExpenses), recentExpenseLimit)
	}
	// store lists newest first, so the tail starts with the latest entry
	if got := d.RecentExpenses[0].Date.Day(); got != 8 {
		t.Fatalf("first recent expense day = %d, want 8", got)
	}
}

func TestDashboardForUnknownOwnerIsEmpty(t *testing.T) {
	d, err := reportService(memory.New()).Dashboard(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.TotalSpend.Cents != 0 || d.Profile.MonthlyIncome.Cents != 0 {
		t.Fatalf("expected zero dashboard, got %+v", d)
	}
	if d.Profile.OwnerID != "nobody" {
		t.Fatalf("default profile should carry the owner id, got %q", d.Profile.OwnerID)
	}
}

func TestReportShape(t *testing.T) {
	store := seedStore(t)

	r, err := reportService(store).Report(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}

	if len(r.Series) != 6 {
		t.Fatalf("series length = %d, want 6", len(r.Series))
	}
	last := r.Series[5]
	if last.Year != 2026 || last.Month != 8 {
		t.Errorf("last bucket = %d-%d, want 2026-8", last.Year, last.Month)
	}
	if last.Expenses.Cents != 345000 {
		t.Errorf("current bucket spend = %d, want 345000", last.Expenses.Cents)
	}
	if last.Income.Cents != 500000 {
		t.Errorf("bucket income = %d, want 500000", last.Income.Cents)
	}
	if len(r.Trends) != 4 {
		t.Fatalf("trend entries = %d, want one per tracked category", len(r.Trends))
	}
	// income 5000, current 3450, previous 4100
	if got := r.Headline.BudgetCompliance; got < 30.9 || got > 31.1 {
		t.Errorf("budget compliance = %.2f, want ~31", got)
	}
}

func TestInsightsUsesFallbackWithoutGateway(t *testing.T) {
	store := seedStore(t)

	list, err := reportService(store).Insights(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Insights: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("insights = %d, want 3", len(list))
	}
	if list[0].Severity != core.SeverityInfo {
		t.Errorf("first entry severity = %s, want info", list[0].Severity)
	}
	// current month 3450 < previous 4100, under budget
	if list[1].Severity != core.SeveritySuccess {
		t.Errorf("change entry severity = %s, want success", list[1].Severity)
	}
	if list[2].Severity != core.SeveritySuccess {
		t.Errorf("surplus entry severity = %s, want success", list[2].Severity)
	}
}

func TestInsightsPropagatesStoreFailure(t *testing.T) {
	store := seedStore(t)
	store.FailWith(memory.OpListExpenses, context.DeadlineExceeded)

	if _, err := reportService(store).Insights(context.Background(), "u1"); err == nil {
		t.Fatal("expected store failure to propagate")
	}
}
