package core

import (
	"testing"
	"time"
)

func TestSeverityValid(t *testing.T) {
	for _, s := range []Severity{SeverityWarning, SeveritySuccess, SeverityInfo} {
		if !s.Valid() {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	if Severity("critical").Valid() {
		t.Fatalf("expected unknown severity to be invalid")
	}
}

func TestDateSameMonth(t *testing.T) {
	cases := []struct {
		a, b Date
		same bool
	}{
		{NewDate(2025, 6, 1), NewDate(2025, 6, 30), true},
		{NewDate(2025, 6, 15), NewDate(2025, 5, 15), false},
		{NewDate(2024, 6, 15), NewDate(2025, 6, 15), false},
	}
	for i, tc := range cases {
		if got := tc.a.SameMonth(tc.b); got != tc.same {
			t.Fatalf("case %d: got %v, want %v", i, got, tc.same)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		OwnerID:  "u1",
		Name:     "lunch",
		Category: "food",
		Amount:   Money{Cents: 8500},
		Date:     NewDate(2025, 6, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{OwnerID: "", Name: "a", Category: "c", Amount: Money{Cents: 1}, Date: NewDate(2025, 1, 1)},
		{OwnerID: "u1", Name: "", Category: "c", Amount: Money{Cents: 1}, Date: NewDate(2025, 1, 1)},
		{OwnerID: "u1", Name: "a", Category: "", Amount: Money{Cents: 1}, Date: NewDate(2025, 1, 1)},
		{OwnerID: "u1", Name: "a", Category: "c", Amount: Money{Cents: -1}, Date: NewDate(2025, 1, 1)},
		{OwnerID: "u1", Name: "a", Category: "c", Amount: Money{Cents: 1}, Date: Date{Time: time.Time{}}},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}

	// A zero amount is allowed, amounts are non-negative rather than positive.
	zero := good
	zero.Amount = Money{Cents: 0}
	if err := zero.Validate(); err != nil {
		t.Fatalf("expected zero amount to validate, got %v", err)
	}
}

func TestGoalValidate(t *testing.T) {
	good := Goal{
		OwnerID:        "u1",
		Name:           "new laptop",
		Target:         Money{Cents: 1500000},
		Current:        Money{Cents: 850000},
		DurationMonths: 6,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	// Current may exceed the target, it is a manually maintained running total.
	over := good
	over.Current = Money{Cents: 2000000}
	if err := over.Validate(); err != nil {
		t.Fatalf("expected over-target current to validate, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Goal)
	}{
		{"empty owner", func(g *Goal) { g.OwnerID = "" }},
		{"empty name", func(g *Goal) { g.Name = " " }},
		{"zero target", func(g *Goal) { g.Target = Money{Cents: 0} }},
		{"negative current", func(g *Goal) { g.Current = Money{Cents: -1} }},
		{"zero duration", func(g *Goal) { g.DurationMonths = 0 }},
	}
	for _, tc := range cases {
		g := good
		tc.mutate(&g)
		if err := g.Validate(); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestProfileValidate(t *testing.T) {
	if err := (Profile{OwnerID: "u1", MonthlyIncome: Money{Cents: 0}}).Validate(); err != nil {
		t.Fatalf("expected zero income to validate, got %v", err)
	}
	if err := (Profile{OwnerID: "", MonthlyIncome: Money{Cents: 100}}).Validate(); err == nil {
		t.Fatalf("expected error for empty owner")
	}
	if err := (Profile{OwnerID: "u1", MonthlyIncome: Money{Cents: -100}}).Validate(); err == nil {
		t.Fatalf("expected error for negative income")
	}
}

func TestNotificationValidate(t *testing.T) {
	good := Notification{OwnerID: "u1", Severity: SeverityWarning, Title: "over budget"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bad := good
	bad.Severity = "urgent"
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for unknown severity")
	}
}
