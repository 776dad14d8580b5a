package insights

import (
	"reflect"
	"strings"
	"testing"

	"masareef/internal/core"
)

func money(c int64) core.Money { return core.Money{Cents: c} }

func TestFallbackWithSurplus(t *testing.T) {
	sum := Summary{
		MonthlyIncome: money(500000),
		CurrentMonth:  money(345000),
		PreviousMonth: money(410000),
	}

	got := Fallback(sum)
	if len(got) != 3 {
		t.Fatalf("expected exactly 3 entries, got %d", len(got))
	}

	// Entry 1: info citing both numeric values.
	if got[0].Severity != core.SeverityInfo {
		t.Fatalf("entry 1: expected info, got %s", got[0].Severity)
	}
	if !strings.Contains(got[0].Description, "3450") || !strings.Contains(got[0].Description, "5000") {
		t.Fatalf("entry 1: expected description citing 3450 and 5000, got %q", got[0].Description)
	}

	// Entry 2: success since 3450 < 4100.
	if got[1].Severity != core.SeveritySuccess {
		t.Fatalf("entry 2: expected success, got %s", got[1].Severity)
	}

	// Entry 3: success since 5000-3450 = 1550 > 0, citing the surplus.
	if got[2].Severity != core.SeveritySuccess {
		t.Fatalf("entry 3: expected success, got %s", got[2].Severity)
	}
	if !strings.Contains(got[2].Description, "1550") {
		t.Fatalf("entry 3: expected surplus amount, got %q", got[2].Description)
	}
}

func TestFallbackOverBudget(t *testing.T) {
	sum := Summary{
		MonthlyIncome: money(500000),
		CurrentMonth:  money(520000),
		PreviousMonth: money(410000),
	}

	got := Fallback(sum)
	if len(got) != 3 {
		t.Fatalf("expected exactly 3 entries, got %d", len(got))
	}
	// Current >= previous: spend-change entry warns.
	if got[1].Severity != core.SeverityWarning {
		t.Fatalf("entry 2: expected warning, got %s", got[1].Severity)
	}
	// Income - current < 0: surplus entry warns.
	if got[2].Severity != core.SeverityWarning {
		t.Fatalf("entry 3: expected warning, got %s", got[2].Severity)
	}
}

func TestFallbackDeterministic(t *testing.T) {
	sum := Summary{
		MonthlyIncome: money(500000),
		CurrentMonth:  money(345000),
		PreviousMonth: money(410000),
	}
	first := Fallback(sum)
	for i := 0; i < 10; i++ {
		if got := Fallback(sum); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestFallbackEqualMonthsWarns(t *testing.T) {
	// current == previous is not strictly less, so the change entry warns.
	got := Fallback(Summary{
		MonthlyIncome: money(500000),
		CurrentMonth:  money(410000),
		PreviousMonth: money(410000),
	})
	if got[1].Severity != core.SeverityWarning {
		t.Fatalf("expected warning for equal months, got %s", got[1].Severity)
	}
}
