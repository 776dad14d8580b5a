package insights

import (
	"fmt"

	"masareef/internal/core"
)

// Fallback synthesizes the three advisory entries locally. It is a pure
// function of the declared income and the two month totals: identical inputs
// always yield identical entries, which keeps it testable without the gateway.
func Fallback(sum Summary) []Insight {
	income := sum.MonthlyIncome
	current := sum.CurrentMonth
	previous := sum.PreviousMonth

	spendChange := Insight{
		Severity:    core.SeverityWarning,
		Title:       "Spending went up",
		Description: "Your expenses increased compared to last month.",
	}
	if current.Cents < previous.Cents {
		spendChange = Insight{
			Severity:    core.SeveritySuccess,
			Title:       "Spending improved",
			Description: "Your expenses decreased compared to last month.",
		}
	}

	surplus := core.Money{Cents: income.Cents - current.Cents}
	savings := Insight{
		Severity:    core.SeverityWarning,
		Title:       "Over budget",
		Description: "Try to reduce spending to reach your goals.",
	}
	if surplus.Cents > 0 {
		savings = Insight{
			Severity:    core.SeveritySuccess,
			Title:       "You have savings",
			Description: fmt.Sprintf("You saved %s this month!", surplus),
		}
	}

	return []Insight{
		{
			Severity:    core.SeverityInfo,
			Title:       "Your spending this month",
			Description: fmt.Sprintf("You spent %s this month out of a monthly income of %s.", current, income),
		},
		spendChange,
		savings,
	}
}
