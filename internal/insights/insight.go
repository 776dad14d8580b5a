// Package insights produces the three advisory entries shown on the reports
// page. The primary path delegates to a remote text-generation gateway; a
// deterministic local fallback covers every failure mode so the dashboard
// never loses its advisory feed.
package insights

import (
	"errors"
	"fmt"

	"masareef/internal/core"
	"masareef/internal/report"
)

// Insight is one advisory entry.
type Insight struct {
	Severity    core.Severity `json:"type"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
}

// Summary is the structured aggregate handed to the generator. It is derived
// from a single owner's records; the generator never sees cross-user data.
type Summary struct {
	MonthlyIncome core.Money
	TotalExpenses core.Money
	CurrentMonth  core.Money
	PreviousMonth core.Money
	ByCategory    []report.CategoryTotal
}

var (
	ErrRateLimited     = errors.New("insights: gateway rate limit exceeded")
	ErrPaymentRequired = errors.New("insights: gateway requires payment")
)

// validateInsights enforces the response schema: exactly three entries, each
// with a known severity and a non-empty title. Violations are treated the same
// as a transport failure.
func validateInsights(list []Insight) error {
	if len(list) != 3 {
		return fmt.Errorf("insights: expected 3 entries, got %d", len(list))
	}
	for i, in := range list {
		if !in.Severity.Valid() {
			return fmt.Errorf("insights: entry %d has unknown severity %q", i, in.Severity)
		}
		if in.Title == "" {
			return fmt.Errorf("insights: entry %d has empty title", i)
		}
	}
	return nil
}
